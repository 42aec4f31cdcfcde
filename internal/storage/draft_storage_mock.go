package storage

import (
	"context"
	"time"

	"github.com/agamariel/rentcar/internal/models"
)

// MockDraftStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockDraftStorage struct {
	LoadFunc            func(ctx context.Context, key models.DraftKey) (*models.Draft, error)
	SaveFunc            func(ctx context.Context, draft *models.Draft) error
	DeleteFunc          func(ctx context.Context, key models.DraftKey) error
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockDraftStorage) Load(ctx context.Context, key models.DraftKey) (*models.Draft, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, key)
	}
	return nil, ErrDraftNotFound
}

func (m *MockDraftStorage) Save(ctx context.Context, draft *models.Draft) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, draft)
	}
	return nil
}

func (m *MockDraftStorage) Delete(ctx context.Context, key models.DraftKey) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *MockDraftStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteOlderThanFunc != nil {
		return m.DeleteOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}
