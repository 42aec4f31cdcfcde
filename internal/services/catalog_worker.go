package services

import (
	"context"
	"errors"
	"time"

	"github.com/agamariel/rentcar/internal/airtable"
	"github.com/agamariel/rentcar/internal/logger"
)

const DefaultCatalogRefreshInterval = 10 * time.Minute

// CatalogWorker периодически обновляет снимок каталога.
type CatalogWorker struct {
	catalog  *CatalogService
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration)
}

func NewCatalogWorker(catalog *CatalogService, interval time.Duration) *CatalogWorker {
	if interval <= 0 {
		interval = DefaultCatalogRefreshInterval
	}
	return &CatalogWorker{
		catalog:  catalog,
		interval: interval,
		sleep:    sleepContext,
	}
}

// Start запускает воркер в отдельной горутине и останавливается по ctx.Done().
func (w *CatalogWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		w.refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.refresh(ctx)
			}
		}
	}()
}

func (w *CatalogWorker) refresh(ctx context.Context) {
	err := w.catalog.Refresh(ctx)
	if err == nil {
		return
	}

	var rl airtable.RateLimitError
	if errors.As(err, &rl) {
		logger.Warn("catalog refresh rate limited, retrying", "retry_after", rl.RetryAfter)
		w.sleep(ctx, rl.RetryAfter)
		if err = w.catalog.Refresh(ctx); err == nil {
			return
		}
	}
	if ctx.Err() == nil {
		logger.Error("catalog refresh failed, keeping previous snapshot", "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
