package utils

// IDNPLength - длина персонального номера IDNP.
const IDNPLength = 13

var idnpWeights = [3]int{7, 3, 1}

// ValidateIDNP проверяет персональный номер IDNP: 13 цифр, последняя - контрольная
// (сумма первых 12 цифр с весами 7, 3, 1 по модулю 10).
func ValidateIDNP(number string) bool {
	if len(number) != IDNPLength {
		return false
	}
	var sum int
	for i, r := range number {
		if r < '0' || r > '9' {
			return false
		}
		if i == IDNPLength-1 {
			break
		}
		sum += int(r-'0') * idnpWeights[i%3]
	}
	return sum%10 == int(number[IDNPLength-1]-'0')
}
