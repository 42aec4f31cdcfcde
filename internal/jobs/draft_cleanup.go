// Package jobs содержит периодические задачи сервиса.
package jobs

import (
	"context"
	"time"

	"github.com/agamariel/rentcar/internal/logger"
)

// DraftPurger удаляет черновики, не обновлявшиеся с указанного момента.
type DraftPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DraftCleanup удаляет устаревшие черновики мастера.
type DraftCleanup struct {
	drafts    DraftPurger
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time
}

// NewDraftCleanup создаёт задачу очистки черновиков старше retention.
func NewDraftCleanup(drafts DraftPurger, retention time.Duration) *DraftCleanup {
	return &DraftCleanup{
		drafts:    drafts,
		retention: retention,
		timeout:   time.Minute,
		now:       time.Now,
	}
}

// Run выполняет одну очистку.
func (j *DraftCleanup) Run(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cutoff := j.now().Add(-j.retention)
	deleted, err := j.drafts.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error("failed to purge stale drafts", "cutoff", cutoff, "error", err)
		return 0, err
	}

	logger.Info("stale drafts purged", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}
