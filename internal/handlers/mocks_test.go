package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/agamariel/rentcar/internal/auth"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/pricing"
	"github.com/agamariel/rentcar/internal/services"
	"github.com/agamariel/rentcar/internal/storage"
	"github.com/agamariel/rentcar/internal/wizard"
)

// MockCatalogService - мок каталога для тестирования handlers
type MockCatalogService struct {
	BrowseFunc       func(ctx context.Context, q models.CatalogQuery) (*models.CatalogPage, error)
	CarFunc          func(ctx context.Context, id string) (models.Car, error)
	DisabledDaysFunc func(ctx context.Context, id string) ([]time.Time, error)
}

func (m *MockCatalogService) Browse(ctx context.Context, q models.CatalogQuery) (*models.CatalogPage, error) {
	if m.BrowseFunc != nil {
		return m.BrowseFunc(ctx, q)
	}
	return &models.CatalogPage{}, nil
}

func (m *MockCatalogService) Car(ctx context.Context, id string) (models.Car, error) {
	if m.CarFunc != nil {
		return m.CarFunc(ctx, id)
	}
	return models.Car{}, services.ErrCarNotFound
}

func (m *MockCatalogService) DisabledDays(ctx context.Context, id string) ([]time.Time, error) {
	if m.DisabledDaysFunc != nil {
		return m.DisabledDaysFunc(ctx, id)
	}
	return nil, nil
}

// MockContactService - мок формы обратной связи
type MockContactService struct {
	SubmitFunc func(ctx context.Context, req models.ContactRequest) error
}

func (m *MockContactService) Submit(ctx context.Context, req models.ContactRequest) error {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}
	return nil
}

// MockGateway - мок отправки заявки
type MockGateway struct {
	SubmitFunc func(ctx context.Context, req wizard.SubmissionRequest) (*models.OrderConfirmation, error)
}

func (m *MockGateway) Submit(ctx context.Context, req wizard.SubmissionRequest) (*models.OrderConfirmation, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}
	return &models.OrderConfirmation{RecordID: "rec1"}, nil
}

// testRegistry - реестр мастеров поверх настоящего wizard.Open
type testRegistry struct {
	mu       sync.Mutex
	car      models.Car
	disabled []time.Time
	gateway  *MockGateway
	drafts   *storage.MemoryDraftStorage
	wizards  map[models.DraftKey]*wizard.Wizard
}

func newTestRegistry(disabled ...time.Time) *testRegistry {
	return &testRegistry{
		car:      testCar(),
		disabled: disabled,
		gateway:  &MockGateway{},
		drafts:   storage.NewMemoryDraftStorage(),
		wizards:  make(map[models.DraftKey]*wizard.Wizard),
	}
}

func (r *testRegistry) Open(ctx context.Context, sessionID uuid.UUID, carID string) (*wizard.Wizard, error) {
	if carID != r.car.ID {
		return nil, services.ErrCarNotFound
	}
	key := models.DraftKey{SessionID: sessionID, CarID: carID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.wizards[key]; ok {
		return w, nil
	}
	w, err := wizard.Open(ctx, wizard.Options{
		Car:          r.car,
		Key:          key,
		DisabledDays: r.disabled,
		Engine:       pricing.NewEngine(pricing.DefaultRates()),
		Gateway:      r.gateway,
		Drafts:       r.drafts,
	})
	if err != nil {
		return nil, err
	}
	r.wizards[key] = w
	return w, nil
}

func (r *testRegistry) Get(sessionID uuid.UUID, carID string) (*wizard.Wizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wizards[models.DraftKey{SessionID: sessionID, CarID: carID}]
	if !ok {
		return nil, services.ErrWizardNotOpen
	}
	return w, nil
}

func (r *testRegistry) Close(sessionID uuid.UUID, carID string) error {
	key := models.DraftKey{SessionID: sessionID, CarID: carID}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wizards[key]
	if !ok {
		return services.ErrWizardNotOpen
	}
	w.Close()
	delete(r.wizards, key)
	return nil
}

func testCar() models.Car {
	r := decimal.NewFromInt(60)
	return models.Car{
		ID:         "car-1",
		Name:       "Skoda Octavia",
		Category:   models.CategorySedan,
		Rate1Day:   r,
		Rate2to10:  r,
		Rate11to20: r,
		Rate21to29: r,
		Rate30Plus: r,
		Images:     []string{"a.jpg", "b.jpg"},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// statusOf возвращает код ответа: из HTTP-ошибки или из recorder.
func statusOf(t *testing.T, err error, rec *httptest.ResponseRecorder) int {
	t.Helper()
	if err == nil {
		return rec.Code
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	t.Fatalf("unexpected non-HTTP error: %v", err)
	return 0
}

// withSession кладёт ID сессии в контекст, как это делает SessionMiddleware.
func withSession(c echo.Context, sessionID uuid.UUID) {
	c.Set(string(auth.SessionIDKey), sessionID)
}
