package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/pricing"
	"github.com/agamariel/rentcar/internal/storage"
	"github.com/agamariel/rentcar/internal/wizard"
)

func newTestWizardService() (*WizardService, *storage.MemoryDraftStorage) {
	drafts := storage.NewMemoryDraftStorage()
	svc := NewWizardService(
		NewCatalogService(testCatalogSource()),
		pricing.NewEngine(pricing.DefaultRates()),
		NewSubmissionService(&mockOrderCreator{}, &mockUploader{}, nil),
		drafts,
	)
	svc.now = func() time.Time { return day(2024, 2, 1) }
	return svc, drafts
}

func TestWizardService_OpenGetClose(t *testing.T) {
	ctx := context.Background()
	svc, drafts := newTestWizardService()
	session := uuid.New()

	w, err := svc.Open(ctx, session, "rec1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	again, err := svc.Open(ctx, session, "rec1")
	if err != nil || again != w {
		t.Fatalf("second Open() must return the same wizard, got %p, %v", again, err)
	}

	got, err := svc.Get(session, "rec1")
	if err != nil || got != w {
		t.Fatalf("Get() = %p, %v", got, err)
	}

	if _, err := svc.Get(uuid.New(), "rec1"); !errors.Is(err, ErrWizardNotOpen) {
		t.Errorf("foreign session must not see the wizard, got %v", err)
	}

	// Дни, занятые подтверждённой заявкой, недоступны в мастере.
	if err := w.SetDates(ctx, day(2024, 3, 1), day(2024, 3, 4)); !errors.Is(err, wizard.ErrDateConflict) {
		t.Errorf("expected ErrDateConflict, got %v", err)
	}
	if err := w.SetDates(ctx, day(2024, 3, 10), day(2024, 3, 12)); err != nil {
		t.Fatalf("SetDates() error = %v", err)
	}

	if err := svc.Close(session, "rec1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !w.Closed() {
		t.Error("wizard not closed")
	}
	if _, err := svc.Get(session, "rec1"); !errors.Is(err, ErrWizardNotOpen) {
		t.Errorf("expected ErrWizardNotOpen, got %v", err)
	}
	if err := svc.Close(session, "rec1"); !errors.Is(err, ErrWizardNotOpen) {
		t.Errorf("expected ErrWizardNotOpen, got %v", err)
	}

	// Черновик переживает закрытие и восстанавливается.
	if drafts.Len() != 1 {
		t.Fatalf("drafts = %d, want 1", drafts.Len())
	}
	reopened, err := svc.Open(ctx, session, "rec1")
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if st := reopened.State(); !st.Dates.Complete() || !st.Dates.From.Equal(day(2024, 3, 10)) {
		t.Errorf("draft not restored: %+v", st.Dates)
	}
}

func TestWizardService_UnknownCar(t *testing.T) {
	svc, _ := newTestWizardService()
	if _, err := svc.Open(context.Background(), uuid.New(), "missing"); !errors.Is(err, ErrCarNotFound) {
		t.Fatalf("expected ErrCarNotFound, got %v", err)
	}
}

func TestWizardService_CloseAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestWizardService()

	w1, _ := svc.Open(ctx, uuid.New(), "rec1")
	w2, _ := svc.Open(ctx, uuid.New(), "rec2")
	if svc.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", svc.Len())
	}

	svc.CloseAll()
	if svc.Len() != 0 || !w1.Closed() || !w2.Closed() {
		t.Error("CloseAll() did not close every wizard")
	}
}

func TestWizardService_OpenWizardSeesRefreshedOrders(t *testing.T) {
	ctx := context.Background()
	source := testCatalogSource()
	orders, _ := source.FetchOrders(ctx)
	source.FetchOrdersFunc = func(ctx context.Context) ([]models.Order, error) {
		return orders, nil
	}
	catalog := NewCatalogService(source)
	svc := NewWizardService(catalog, pricing.NewEngine(pricing.DefaultRates()), NewSubmissionService(&mockOrderCreator{}, &mockUploader{}, nil), storage.NewMemoryDraftStorage())
	svc.now = func() time.Time { return day(2024, 2, 1) }
	session := uuid.New()

	w, err := svc.Open(ctx, session, "rec1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := w.SetDates(ctx, day(2024, 3, 20), day(2024, 3, 22)); err != nil {
		t.Fatalf("SetDates() error = %v", err)
	}

	// Заявки подтверждены другим клиентом после открытия мастера.
	orders = append(orders,
		models.Order{ID: "o3", CarIDs: []string{"rec1"}, StartDate: "2024-03-10", EndDate: "2024-03-12", Status: models.OrderStatusConfirmedFem},
		models.Order{ID: "o4", CarIDs: []string{"rec1"}, StartDate: "2024-03-21", EndDate: "2024-03-21", Status: models.OrderStatusConfirmedFem},
	)
	if err := catalog.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// Повторное открытие сбрасывает ставший занятым период.
	again, err := svc.Open(ctx, session, "rec1")
	if err != nil || again != w {
		t.Fatalf("second Open() = %p, %v", again, err)
	}
	v := w.Snapshot()
	if v.State.Dates.From != nil || v.Notice != wizard.NoticeDateConflict {
		t.Errorf("conflicting selection kept: %+v, notice %q", v.State.Dates, v.Notice)
	}

	if err := w.SetDates(ctx, day(2024, 3, 10), day(2024, 3, 12)); !errors.Is(err, wizard.ErrDateConflict) {
		t.Errorf("expected ErrDateConflict for newly confirmed order, got %v", err)
	}
	if err := w.SetDates(ctx, day(2024, 3, 13), day(2024, 3, 15)); err != nil {
		t.Errorf("free dates rejected: %v", err)
	}
}

func TestWizardService_EvictIdle(t *testing.T) {
	ctx := context.Background()
	svc, drafts := newTestWizardService()
	now := day(2024, 2, 1)
	svc.now = func() time.Time { return now }

	idleSession, activeSession := uuid.New(), uuid.New()
	idle, err := svc.Open(ctx, idleSession, "rec1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := idle.SetDates(ctx, day(2024, 3, 10), day(2024, 3, 12)); err != nil {
		t.Fatalf("SetDates() error = %v", err)
	}
	if _, err := svc.Open(ctx, activeSession, "rec2"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	now = now.Add(20 * time.Minute)
	if _, err := svc.Get(activeSession, "rec2"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	now = now.Add(15 * time.Minute)
	if n := svc.EvictIdle(30 * time.Minute); n != 1 {
		t.Fatalf("EvictIdle() = %d, want 1", n)
	}
	if !idle.Closed() {
		t.Error("idle wizard not closed")
	}
	if _, err := svc.Get(idleSession, "rec1"); !errors.Is(err, ErrWizardNotOpen) {
		t.Errorf("expected ErrWizardNotOpen, got %v", err)
	}
	if _, err := svc.Get(activeSession, "rec2"); err != nil {
		t.Errorf("active wizard evicted: %v", err)
	}

	// Черновик выгруженного мастера сохраняется.
	if drafts.Len() != 1 {
		t.Fatalf("drafts = %d, want 1", drafts.Len())
	}
	reopened, err := svc.Open(ctx, idleSession, "rec1")
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if st := reopened.State(); !st.Dates.Complete() {
		t.Errorf("draft not restored after eviction: %+v", st.Dates)
	}
}
