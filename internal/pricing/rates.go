package pricing

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Rates - бизнес-параметры расчёта стоимости.
type Rates struct {
	Currency         string
	WashFee          decimal.Decimal
	MileageFeePerDay decimal.Decimal
	DeliveryFee      decimal.Decimal
	GoldCardDiscount decimal.Decimal // доля от стоимости аренды, 0.10 = 10%
	ClubCardDiscount decimal.Decimal
}

// DefaultRates возвращает параметры по умолчанию.
func DefaultRates() Rates {
	return Rates{
		Currency:         "EUR",
		WashFee:          decimal.NewFromInt(20),
		MileageFeePerDay: decimal.NewFromInt(20),
		DeliveryFee:      decimal.NewFromInt(20),
		GoldCardDiscount: decimal.NewFromFloat(0.10),
		ClubCardDiscount: decimal.NewFromFloat(0.05),
	}
}

// Validate проверяет, что сборы неотрицательны, а скидки лежат в [0, 1].
func (r Rates) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"wash_fee":                  r.WashFee,
		"unlimited_mileage_per_day": r.MileageFeePerDay,
		"delivery_fee":              r.DeliveryFee,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	one := decimal.NewFromInt(1)
	for name, v := range map[string]decimal.Decimal{
		"discounts.gold_card": r.GoldCardDiscount,
		"discounts.club_card": r.ClubCardDiscount,
	} {
		if v.IsNegative() || v.GreaterThan(one) {
			return fmt.Errorf("%s must be within [0, 1]", name)
		}
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}

// ratesFile - формат YAML-файла с параметрами. Отсутствующие поля берутся по умолчанию.
type ratesFile struct {
	Currency               string   `yaml:"currency"`
	WashFee                *float64 `yaml:"wash_fee"`
	UnlimitedMileagePerDay *float64 `yaml:"unlimited_mileage_per_day"`
	DeliveryFee            *float64 `yaml:"delivery_fee"`
	Discounts              struct {
		GoldCard *float64 `yaml:"gold_card"`
		ClubCard *float64 `yaml:"club_card"`
	} `yaml:"discounts"`
}

// ParseRates разбирает YAML поверх значений по умолчанию.
func ParseRates(data []byte) (Rates, error) {
	var f ratesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Rates{}, fmt.Errorf("failed to parse pricing config: %w", err)
	}

	r := DefaultRates()
	if f.Currency != "" {
		r.Currency = f.Currency
	}
	set := func(dst *decimal.Decimal, v *float64) {
		if v != nil {
			*dst = decimal.NewFromFloat(*v)
		}
	}
	set(&r.WashFee, f.WashFee)
	set(&r.MileageFeePerDay, f.UnlimitedMileagePerDay)
	set(&r.DeliveryFee, f.DeliveryFee)
	set(&r.GoldCardDiscount, f.Discounts.GoldCard)
	set(&r.ClubCardDiscount, f.Discounts.ClubCard)

	if err := r.Validate(); err != nil {
		return Rates{}, fmt.Errorf("invalid pricing config: %w", err)
	}
	return r, nil
}

// LoadRates читает параметры из файла. Пустой путь или отсутствующий файл дают значения по умолчанию.
func LoadRates(path string) (Rates, error) {
	if path == "" {
		return DefaultRates(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultRates(), nil
		}
		return Rates{}, fmt.Errorf("failed to read pricing config: %w", err)
	}
	return ParseRates(data)
}
