package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agamariel/rentcar/internal/models"
)

const fieldCarName = "Название/модель"

type attachment struct {
	URL string `json:"url"`
}

// flexString принимает и строку, и число.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}

type carFields struct {
	Name          string       `json:"Название/модель"`
	Category      string       `json:"Категория"`
	Rating        float64      `json:"Рейтинг"`
	Passengers    int          `json:"Количество мест"`
	Transmission  string       `json:"Тип коробки передач"`
	Fuel          string       `json:"Тип топлива"`
	Drive         string       `json:"Привод"`
	Features      []string     `json:"Список опций"`
	Status        string       `json:"Статус"`
	Photos        []attachment `json:"Фото"`
	Year          flexString   `json:"Год выпуска"`
	Engine        flexString   `json:"Двигатель"`
	Description   string       `json:"Описание"`
	DescriptionRU string       `json:"Описание рус"`
	DescriptionRO string       `json:"Описание рум"`
	DescriptionEN string       `json:"Описание англ"`
	PricePerDay   *float64     `json:"Цена за день"`
	Price2to10    *float64     `json:"Цена за 2-10 дней"`
	Price11to20   *float64     `json:"Цена за 11-20 дней"`
	Price21to29   *float64     `json:"Цена за 21-29 дней"`
	Price30Plus   *float64     `json:"Цена от 30 дней"`
}

// Значения справочников в таблице встречаются на русском, английском и румынском.
var (
	categoryValues = map[string]models.Category{
		"Седан": models.CategorySedan, "Sedan": models.CategorySedan,
		"Внедорожник": models.CategorySUV, "SUV": models.CategorySUV,
		"Хэтчбэк": models.CategoryHatchback, "Hatchback": models.CategoryHatchback,
		"Универсал": models.CategoryWagon, "Wagon": models.CategoryWagon, "Break": models.CategoryWagon,
		"Кроссовер": models.CategoryCrossover, "Crossover": models.CategoryCrossover,
		"Купе": models.CategoryCoupe, "Coupe": models.CategoryCoupe,
		"Кабриолет": models.CategoryConvertible, "Convertible": models.CategoryConvertible, "Convertibil": models.CategoryConvertible,
		"Пикап": models.CategoryPickup, "Pickup": models.CategoryPickup,
	}
	fuelValues = map[string]models.Fuel{
		"Бензин": models.FuelPetrol, "Petrol": models.FuelPetrol, "Benzină": models.FuelPetrol,
		"Дизель": models.FuelDiesel, "Diesel": models.FuelDiesel, "Motorină": models.FuelDiesel,
		"Электро": models.FuelElectric, "Electric": models.FuelElectric,
		"Гибрид": models.FuelHybrid, "Hybrid": models.FuelHybrid, "Hibrid": models.FuelHybrid,
	}
	transmissionValues = map[string]models.Transmission{
		"Автомат": models.TransmissionAutomatic, "Automatic": models.TransmissionAutomatic, "Automată": models.TransmissionAutomatic,
		"Механика": models.TransmissionManual, "Manual": models.TransmissionManual, "Manuală": models.TransmissionManual,
		"Робот": models.TransmissionRobot, "Robot": models.TransmissionRobot, "Robotizată": models.TransmissionRobot,
		"Вариатор": models.TransmissionVariator, "CVT": models.TransmissionVariator, "Variator": models.TransmissionVariator,
	}
	driveValues = map[string]models.Drive{
		"Передний": models.DriveFront, "Front": models.DriveFront, "Față": models.DriveFront,
		"Задний": models.DriveRear, "Rear": models.DriveRear, "Spate": models.DriveRear,
		"Полный": models.DriveAWD, "AWD": models.DriveAWD, "Integrală": models.DriveAWD,
		"4WD": models.Drive4WD,
	}
)

// lookup ищет значение справочника без учёта регистра и пробелов по краям.
func lookup[T ~string](table map[string]T, raw string) T {
	raw = strings.TrimSpace(raw)
	if v, ok := table[raw]; ok {
		return v
	}
	for k, v := range table {
		if strings.EqualFold(k, raw) {
			return v
		}
	}
	return ""
}

// rate возвращает тариф, а при его отсутствии - цену за день.
func rate(tier, perDay *float64) decimal.Decimal {
	switch {
	case tier != nil:
		return decimal.NewFromFloat(*tier)
	case perDay != nil:
		return decimal.NewFromFloat(*perDay)
	}
	return decimal.Zero
}

func toCar(rec Record) (models.Car, error) {
	var f carFields
	if err := json.Unmarshal(rec.Fields, &f); err != nil {
		return models.Car{}, fmt.Errorf("decode car %s: %w", rec.ID, err)
	}

	images := make([]string, 0, len(f.Photos))
	for _, p := range f.Photos {
		if p.URL != "" {
			images = append(images, p.URL)
		}
	}

	descriptions := make(map[string]string)
	for lang, text := range map[string]string{"": f.Description, "ru": f.DescriptionRU, "ro": f.DescriptionRO, "en": f.DescriptionEN} {
		if text == "" {
			continue
		}
		if lang == "" {
			lang = "default"
		}
		descriptions[lang] = text
	}

	return models.Car{
		ID:           rec.ID,
		Name:         f.Name,
		Category:     lookup(categoryValues, f.Category),
		Rate1Day:     rate(f.PricePerDay, nil),
		Rate2to10:    rate(f.Price2to10, f.PricePerDay),
		Rate11to20:   rate(f.Price11to20, f.PricePerDay),
		Rate21to29:   rate(f.Price21to29, f.PricePerDay),
		Rate30Plus:   rate(f.Price30Plus, f.PricePerDay),
		Rating:       f.Rating,
		Passengers:   f.Passengers,
		Fuel:         lookup(fuelValues, f.Fuel),
		Transmission: lookup(transmissionValues, f.Transmission),
		Drive:        lookup(driveValues, f.Drive),
		Features:     f.Features,
		Images:       images,
		Year:         string(f.Year),
		Engine:       string(f.Engine),
		Status:       f.Status,
		Descriptions: descriptions,
	}, nil
}

// FetchCars читает каталог, отсортированный по названию.
func (c *HTTPClient) FetchCars(ctx context.Context) ([]models.Car, error) {
	query := url.Values{}
	query.Set("sort[0][field]", fieldCarName)
	query.Set("sort[0][direction]", "asc")

	var records []Record
	err := logCall("fetch_cars", func() error {
		var err error
		records, err = c.list(ctx, c.cfg.CarsTable, query)
		return err
	})
	if err != nil {
		return nil, err
	}

	cars := make([]models.Car, 0, len(records))
	for _, rec := range records {
		car, err := toCar(rec)
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}
	return cars, nil
}
