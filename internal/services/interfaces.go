package services

import (
	"context"
	"time"

	"github.com/agamariel/rentcar/internal/airtable"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/wizard"
)

// CatalogSource определяет источник автомобилей и заявок.
type CatalogSource interface {
	FetchCars(ctx context.Context) ([]models.Car, error)
	FetchOrders(ctx context.Context) ([]models.Order, error)
}

// OrderCreator определяет интерфейс создания заявки на аренду.
type OrderCreator interface {
	CreateOrder(ctx context.Context, payload airtable.OrderPayload) (*airtable.Record, error)
}

// ContactCreator определяет интерфейс создания обращения.
type ContactCreator interface {
	CreateContactRequest(ctx context.Context, req models.ContactRequest, created time.Time) (*airtable.Record, error)
}

// Notifier уведомляет клиента о принятой заявке.
type Notifier interface {
	OrderConfirmed(ctx context.Context, req wizard.SubmissionRequest, conf *models.OrderConfirmation) error
}
