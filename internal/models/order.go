package models

import "time"

// Статусы заявки, при которых автомобиль считается занятым.
// Бэкенд хранит их в двух формах: «подтверждена» и «подтвержден».
const (
	OrderStatusConfirmedFem  = "подтверждена"
	OrderStatusConfirmedMasc = "подтвержден"
)

// Order - заявка на аренду из внешней таблицы. Только для чтения.
type Order struct {
	ID        string   `json:"id"`
	CarIDs    []string `json:"carIds"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Status    string   `json:"status"`
}

// IsConfirmed сообщает, блокирует ли заявка доступность автомобиля.
func (o Order) IsConfirmed() bool {
	return o.Status == OrderStatusConfirmedFem || o.Status == OrderStatusConfirmedMasc
}

// HasDates сообщает, заполнены ли обе даты заявки.
func (o Order) HasDates() bool {
	return o.StartDate != "" && o.EndDate != ""
}

// References сообщает, относится ли заявка к автомобилю.
func (o Order) References(carID string) bool {
	for _, id := range o.CarIDs {
		if id == carID {
			return true
		}
	}
	return false
}

// DateRange - выбранный период аренды. Даты календарные (полночь UTC).
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Complete сообщает, заданы ли обе границы.
func (r DateRange) Complete() bool {
	return r.From != nil && r.To != nil
}

// ContactRequest - заявка на обратную связь.
type ContactRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Message  string `json:"message"`
}
