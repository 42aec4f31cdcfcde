package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// ErrInvalidDateFormat возвращается, если строка не похожа ни на YYYY-MM-DD, ни на DD.MM.YYYY.
var ErrInvalidDateFormat = errors.New("invalid date format")

const (
	isoLayout = "2006-01-02"
	dotLayout = "2.1.2006"
)

// ParseFlexibleDate разбирает дату в формате YYYY-MM-DD или DD.MM.YYYY.
// Результат - календарная дата (полночь UTC).
func ParseFlexibleDate(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidDateFormat)
	}

	layout := isoLayout
	if strings.Contains(s, ".") {
		layout = dotLayout
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, text)
	}
	return t, nil
}

// CalendarDate отбрасывает время и часовой пояс, сохраняя локальные поля даты.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RangesOverlap сообщает, пересекаются ли периоды [aStart, aEnd] и [bStart, bEnd].
// Границы включаются: аренда, заканчивающаяся в день начала другой, считается пересечением.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// ToLocalDateKey возвращает ключ YYYY-MM-DD по локальным полям даты, без перевода в UTC.
func ToLocalDateKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// DaysBetween возвращает число целых календарных дней от from до to.
func DaysBetween(from, to time.Time) int {
	return int(CalendarDate(to).Sub(CalendarDate(from)).Hours() / 24)
}

// DaysInRange перечисляет все календарные дни периода [from, to] включительно.
func DaysInRange(from, to time.Time) []time.Time {
	from, to = CalendarDate(from), CalendarDate(to)
	if to.Before(from) {
		from, to = to, from
	}
	days := make([]time.Time, 0, DaysBetween(from, to)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

var displayLanguages = []language.Tag{language.Russian, language.Romanian, language.English}

var languageMatcher = language.NewMatcher(displayLanguages)

var monthNames = map[language.Tag][12]string{
	language.Russian: {"января", "февраля", "марта", "апреля", "мая", "июня",
		"июля", "августа", "сентября", "октября", "ноября", "декабря"},
	language.Romanian: {"ianuarie", "februarie", "martie", "aprilie", "mai", "iunie",
		"iulie", "august", "septembrie", "octombrie", "noiembrie", "decembrie"},
	language.English: {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
}

// DisplayLanguage сопоставляет тег языка интерфейса с поддерживаемым языком (ru по умолчанию).
func DisplayLanguage(tag string) language.Tag {
	parsed, err := language.Parse(tag)
	if err != nil {
		return language.Russian
	}
	_, idx, conf := languageMatcher.Match(parsed)
	if conf == language.No {
		return language.Russian
	}
	return displayLanguages[idx]
}

// FormatForLocale форматирует дату для языка интерфейса: «01 марта», «01 martie», «March 01».
func FormatForLocale(t time.Time, tag string) string {
	lang := DisplayLanguage(tag)
	month := monthNames[lang][t.Month()-1]
	if lang == language.English {
		return fmt.Sprintf("%s %02d", month, t.Day())
	}
	return fmt.Sprintf("%02d %s", t.Day(), month)
}
