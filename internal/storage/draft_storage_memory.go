package storage

import (
	"context"
	"sync"
	"time"

	"github.com/agamariel/rentcar/internal/models"
)

// MemoryDraftStorage хранит черновики в памяти процесса.
// Используется, когда DATABASE_URI не задан.
type MemoryDraftStorage struct {
	mu     sync.RWMutex
	drafts map[models.DraftKey]models.Draft
	now    func() time.Time
}

// NewMemoryDraftStorage создаёт пустое хранилище.
func NewMemoryDraftStorage() *MemoryDraftStorage {
	return &MemoryDraftStorage{
		drafts: make(map[models.DraftKey]models.Draft),
		now:    time.Now,
	}
}

func (s *MemoryDraftStorage) Load(_ context.Context, key models.DraftKey) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[key]
	if !ok {
		return nil, ErrDraftNotFound
	}
	d.State = d.State.Clone()
	return &d, nil
}

func (s *MemoryDraftStorage) Save(_ context.Context, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft.UpdatedAt = s.now()
	stored := *draft
	stored.State = draft.State.Clone()
	s.drafts[draft.Key] = stored
	return nil
}

func (s *MemoryDraftStorage) Delete(_ context.Context, key models.DraftKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[key]; !ok {
		return ErrDraftNotFound
	}
	delete(s.drafts, key)
	return nil
}

func (s *MemoryDraftStorage) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, d := range s.drafts {
		if d.UpdatedAt.Before(cutoff) {
			delete(s.drafts, k)
			n++
		}
	}
	return n, nil
}

// Len возвращает число черновиков.
func (s *MemoryDraftStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}
