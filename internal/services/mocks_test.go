package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agamariel/rentcar/internal/airtable"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/wizard"
)

type mockCatalogSource struct {
	FetchCarsFunc   func(ctx context.Context) ([]models.Car, error)
	FetchOrdersFunc func(ctx context.Context) ([]models.Order, error)
}

func (m *mockCatalogSource) FetchCars(ctx context.Context) ([]models.Car, error) {
	if m.FetchCarsFunc != nil {
		return m.FetchCarsFunc(ctx)
	}
	return []models.Car{}, nil
}

func (m *mockCatalogSource) FetchOrders(ctx context.Context) ([]models.Order, error) {
	if m.FetchOrdersFunc != nil {
		return m.FetchOrdersFunc(ctx)
	}
	return []models.Order{}, nil
}

type mockOrderCreator struct {
	CreateOrderFunc func(ctx context.Context, payload airtable.OrderPayload) (*airtable.Record, error)
}

func (m *mockOrderCreator) CreateOrder(ctx context.Context, payload airtable.OrderPayload) (*airtable.Record, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, payload)
	}
	return &airtable.Record{ID: "recOrder"}, nil
}

type mockContactCreator struct {
	CreateFunc func(ctx context.Context, req models.ContactRequest, created time.Time) (*airtable.Record, error)
}

func (m *mockContactCreator) CreateContactRequest(ctx context.Context, req models.ContactRequest, created time.Time) (*airtable.Record, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req, created)
	}
	return &airtable.Record{ID: "recContact"}, nil
}

type mockUploader struct {
	UploadFunc func(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error)
}

func (m *mockUploader) Upload(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, folder, fileName, contentType, data)
	}
	return "https://files/" + folder + "/" + fileName, nil
}

type mockNotifier struct {
	OrderConfirmedFunc func(ctx context.Context, req wizard.SubmissionRequest, conf *models.OrderConfirmation) error
}

func (m *mockNotifier) OrderConfirmed(ctx context.Context, req wizard.SubmissionRequest, conf *models.OrderConfirmation) error {
	if m.OrderConfirmedFunc != nil {
		return m.OrderConfirmedFunc(ctx, req, conf)
	}
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func car(id, name string, category models.Category, rate int64) models.Car {
	r := decimal.NewFromInt(rate)
	return models.Car{
		ID:         id,
		Name:       name,
		Category:   category,
		Rate1Day:   r,
		Rate2to10:  r,
		Rate11to20: r,
		Rate21to29: r,
		Rate30Plus: r,
	}
}
