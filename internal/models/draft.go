package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftKey идентифицирует черновик: сессия браузера и автомобиль.
// Черновики разных автомобилей не пересекаются.
type DraftKey struct {
	SessionID uuid.UUID `json:"sessionId"`
	CarID     string    `json:"carId"`
}

func (k DraftKey) String() string {
	return k.SessionID.String() + "/" + k.CarID
}

// Draft - сохранённое незавершённое состояние мастера.
type Draft struct {
	Key       DraftKey    `json:"key"`
	State     WizardState `json:"state"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
