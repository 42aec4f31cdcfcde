package models

import "github.com/shopspring/decimal"

// Category - класс автомобиля в каталоге.
type Category string

const (
	CategorySedan       Category = "sedan"
	CategoryConvertible Category = "convertible"
	CategoryWagon       Category = "wagon"
	CategoryCrossover   Category = "crossover"
	CategorySUV         Category = "suv"
	CategoryPickup      Category = "pickup"
	CategoryHatchback   Category = "hatchback"
	CategoryCoupe       Category = "coupe"
)

// Categories возвращает фиксированный набор категорий каталога.
func Categories() []Category {
	return []Category{
		CategorySedan,
		CategoryConvertible,
		CategoryWagon,
		CategoryCrossover,
		CategorySUV,
		CategoryPickup,
		CategoryHatchback,
		CategoryCoupe,
	}
}

// Valid сообщает, входит ли категория в закрытый набор.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Fuel - тип топлива.
type Fuel string

const (
	FuelPetrol   Fuel = "petrol"
	FuelDiesel   Fuel = "diesel"
	FuelElectric Fuel = "electric"
	FuelHybrid   Fuel = "hybrid"
)

// Transmission - тип коробки передач.
type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
	TransmissionRobot     Transmission = "robot"
	TransmissionVariator  Transmission = "variator"
)

// Drive - тип привода.
type Drive string

const (
	DriveFront Drive = "front"
	DriveRear  Drive = "rear"
	DriveAWD   Drive = "awd"
	Drive4WD   Drive = "4wd"
)

// Car представляет автомобиль из каталога. В пределах сессии не изменяется.
type Car struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Category     Category          `json:"category"`
	Rate1Day     decimal.Decimal   `json:"rate1Day"`
	Rate2to10    decimal.Decimal   `json:"rate2to10"`
	Rate11to20   decimal.Decimal   `json:"rate11to20"`
	Rate21to29   decimal.Decimal   `json:"rate21to29"`
	Rate30Plus   decimal.Decimal   `json:"rate30plus"`
	Rating       float64           `json:"rating"`
	Passengers   int               `json:"passengers"`
	Fuel         Fuel              `json:"fuel"`
	Transmission Transmission      `json:"transmission"`
	Drive        Drive             `json:"drive"`
	Features     []string          `json:"features"`
	Images       []string          `json:"images"`
	Year         string            `json:"year,omitempty"`
	Engine       string            `json:"engine,omitempty"`
	Status       string            `json:"status,omitempty"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
}
