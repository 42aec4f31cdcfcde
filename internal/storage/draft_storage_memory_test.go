package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agamariel/rentcar/internal/models"
)

func TestMemoryDraftStorage_SaveLoadDelete(t *testing.T) {
	s := NewMemoryDraftStorage()
	ctx := context.Background()
	key := models.DraftKey{SessionID: uuid.New(), CarID: "rec1"}

	if _, err := s.Load(ctx, key); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("Load() on empty storage error = %v, want ErrDraftNotFound", err)
	}

	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	from := want
	state := models.NewWizardState("rec1")
	state.Dates.From = &from

	if err := s.Save(ctx, &models.Draft{Key: key, State: state}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Изменение исходного состояния не должно влиять на сохранённое.
	*state.Dates.From = want.AddDate(0, 0, 5)

	got, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.State.Dates.From.Equal(want) {
		t.Errorf("stored From = %v, want %v", got.State.Dates.From, want)
	}

	// Изменение загруженного состояния тоже не должно влиять на сохранённое.
	*got.State.Dates.From = want.AddDate(0, 0, 7)
	again, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !again.State.Dates.From.Equal(want) {
		t.Errorf("stored From after mutating loaded copy = %v, want %v", again.State.Dates.From, want)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	other := models.DraftKey{SessionID: key.SessionID, CarID: "rec2"}
	if _, err := s.Load(ctx, other); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("drafts of different cars must not collide, got %v", err)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, key); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("second Delete() error = %v, want ErrDraftNotFound", err)
	}
}

func TestMemoryDraftStorage_DeleteOlderThan(t *testing.T) {
	s := NewMemoryDraftStorage()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	old := models.DraftKey{SessionID: uuid.New(), CarID: "old"}
	fresh := models.DraftKey{SessionID: uuid.New(), CarID: "fresh"}

	_ = s.Save(ctx, &models.Draft{Key: old, State: models.NewWizardState("old")})
	current = base.Add(48 * time.Hour)
	_ = s.Save(ctx, &models.Draft{Key: fresh, State: models.NewWizardState("fresh")})

	n, err := s.DeleteOlderThan(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, err := s.Load(ctx, fresh); err != nil {
		t.Errorf("fresh draft must survive: %v", err)
	}
}
