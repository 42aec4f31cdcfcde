package models

import "time"

// Step - шаг мастера бронирования.
type Step int

const (
	StepDatesAndExtras Step = iota
	StepConfirmAndPricing
	StepPersonalInfo
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepDatesAndExtras:
		return "dates_and_extras"
	case StepConfirmAndPricing:
		return "confirm_and_pricing"
	case StepPersonalInfo:
		return "personal_info"
	case StepSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// PickupMethod - способ получения автомобиля.
type PickupMethod string

const (
	PickupOffice  PickupMethod = "office"
	PickupAirport PickupMethod = "airport"
	PickupAddress PickupMethod = "address"
)

// Valid сообщает, известен ли способ получения.
func (m PickupMethod) Valid() bool {
	return m == PickupOffice || m == PickupAirport || m == PickupAddress
}

// RequiresDelivery сообщает, платная ли доставка.
func (m PickupMethod) RequiresDelivery() bool {
	return m == PickupAirport || m == PickupAddress
}

// PaymentMethod - способ оплаты.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentOther PaymentMethod = "other"
)

// Valid сообщает, известен ли способ оплаты.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentOther
}

// DocumentSide - сторона документа клиента.
type DocumentSide string

const (
	DocumentFront DocumentSide = "front"
	DocumentBack  DocumentSide = "back"
)

// Valid сообщает, известна ли сторона документа.
func (s DocumentSide) Valid() bool {
	return s == DocumentFront || s == DocumentBack
}

// Folder возвращает каталог хранилища для стороны документа.
func (s DocumentSide) Folder() string {
	return "passport-" + string(s)
}

// CustomerInfo - персональные данные клиента (шаг 3).
type CustomerInfo struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,min=5"`
	CountryCode string `json:"countryCode" validate:"required,startswith=+"`
	IDNP        string `json:"idnp,omitempty"`
	Message     string `json:"message,omitempty"`
}

// UploadedPhotos - признаки приложенных фото документа.
type UploadedPhotos struct {
	Front bool `json:"front"`
	Back  bool `json:"back"`
}

// WizardState - накопленные данные мастера бронирования для одного автомобиля.
type WizardState struct {
	CarID            string         `json:"carId"`
	Dates            DateRange      `json:"dates"`
	PickupTime       string         `json:"pickupTime"`
	PickupMethod     PickupMethod   `json:"pickupMethod"`
	PickupAddress    string         `json:"pickupAddress,omitempty"`
	UnlimitedMileage bool           `json:"unlimitedMileage"`
	GoldCard         bool           `json:"goldCard"`
	ClubCard         bool           `json:"clubCard"`
	PaymentMethod    PaymentMethod  `json:"paymentMethod"`
	PaymentOther     string         `json:"paymentOther,omitempty"`
	Customer         CustomerInfo   `json:"customer"`
	Photos           UploadedPhotos `json:"photos"`
	PrivacyAccepted  bool           `json:"privacyAccepted"`
	ActiveImageIndex int            `json:"activeImageIndex"`
	Step             Step           `json:"step"`
}

// Значения по умолчанию для нового мастера.
const (
	DefaultPickupTime  = "10:00"
	DefaultCountryCode = "+373"
)

// NewWizardState создаёт состояние мастера со значениями по умолчанию.
func NewWizardState(carID string) WizardState {
	return WizardState{
		CarID:         carID,
		PickupTime:    DefaultPickupTime,
		PickupMethod:  PickupOffice,
		PaymentMethod: PaymentCash,
		Customer:      CustomerInfo{CountryCode: DefaultCountryCode},
		Step:          StepDatesAndExtras,
	}
}

// Extras возвращает параметры, влияющие на стоимость.
func (s WizardState) Extras() PricingExtras {
	return PricingExtras{
		UnlimitedMileage: s.UnlimitedMileage,
		PickupMethod:     s.PickupMethod,
		GoldCard:         s.GoldCard,
		ClubCard:         s.ClubCard,
	}
}

// Clone возвращает копию состояния, не разделяющую указатели на даты.
func (s WizardState) Clone() WizardState {
	out := s
	if s.Dates.From != nil {
		from := *s.Dates.From
		out.Dates.From = &from
	}
	if s.Dates.To != nil {
		to := *s.Dates.To
		out.Dates.To = &to
	}
	return out
}

// Document - файл документа клиента, приложенный к мастеру.
// Содержимое держится только в памяти до отправки.
type Document struct {
	Side        DocumentSide
	FileName    string
	ContentType string
	Data        []byte
}

// OrderConfirmation - результат успешной отправки заявки.
type OrderConfirmation struct {
	RecordID       string           `json:"recordId"`
	CreatedTime    time.Time        `json:"createdTime"`
	Pricing        PricingBreakdown `json:"pricing"`
	UploadFailures []DocumentSide   `json:"uploadFailures,omitempty"`
}
