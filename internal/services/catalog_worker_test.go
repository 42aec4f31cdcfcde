package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agamariel/rentcar/internal/airtable"
	"github.com/agamariel/rentcar/internal/models"
)

func TestCatalogWorker_InitialRefreshAndStop(t *testing.T) {
	var calls int32
	refreshed := make(chan struct{}, 10)
	svc := NewCatalogService(&mockCatalogSource{
		FetchCarsFunc: func(ctx context.Context) ([]models.Car, error) {
			atomic.AddInt32(&calls, 1)
			refreshed <- struct{}{}
			return nil, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	NewCatalogWorker(svc, time.Hour).Start(ctx)

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not refresh on start")
	}
	cancel()

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCatalogWorker_RetriesAfterRateLimit(t *testing.T) {
	var calls int32
	svc := NewCatalogService(&mockCatalogSource{
		FetchCarsFunc: func(ctx context.Context) ([]models.Car, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return nil, airtable.RateLimitError{RetryAfter: 30 * time.Second}
			}
			return []models.Car{car("rec1", "A", models.CategorySedan, 10)}, nil
		},
	})

	w := NewCatalogWorker(svc, time.Hour)
	var slept time.Duration
	w.sleep = func(ctx context.Context, d time.Duration) { slept = d }

	w.refresh(context.Background())

	if slept != 30*time.Second {
		t.Errorf("slept = %s, want 30s", slept)
	}
	if _, err := svc.Car(context.Background(), "rec1"); err != nil {
		t.Errorf("snapshot not refreshed after retry: %v", err)
	}
}

func TestNewCatalogWorker_DefaultInterval(t *testing.T) {
	w := NewCatalogWorker(NewCatalogService(&mockCatalogSource{}), 0)
	if w.interval != DefaultCatalogRefreshInterval {
		t.Errorf("interval = %s, want %s", w.interval, DefaultCatalogRefreshInterval)
	}
}
