package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agamariel/rentcar/internal/models"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftStorage определяет интерфейс для работы с черновиками мастера.
type DraftStorage interface {
	Load(ctx context.Context, key models.DraftKey) (*models.Draft, error)
	Save(ctx context.Context, draft *models.Draft) error
	Delete(ctx context.Context, key models.DraftKey) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PostgresDraftStorage реализует DraftStorage для PostgreSQL.
type PostgresDraftStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresDraftStorage создаёт новый экземпляр PostgresDraftStorage.
func NewPostgresDraftStorage(pool *pgxpool.Pool) *PostgresDraftStorage {
	return &PostgresDraftStorage{pool: pool}
}

// Load возвращает черновик по ключу.
func (s *PostgresDraftStorage) Load(ctx context.Context, key models.DraftKey) (*models.Draft, error) {
	query := `
		SELECT state, updated_at
		FROM wizard_drafts
		WHERE session_id = $1 AND car_id = $2
	`

	var raw []byte
	draft := &models.Draft{Key: key}
	err := s.pool.QueryRow(ctx, query, key.SessionID, key.CarID).Scan(&raw, &draft.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	if err := json.Unmarshal(raw, &draft.State); err != nil {
		return nil, fmt.Errorf("failed to decode draft state: %w", err)
	}

	return draft, nil
}

// Save создаёт или перезаписывает черновик.
func (s *PostgresDraftStorage) Save(ctx context.Context, draft *models.Draft) error {
	query := `
		INSERT INTO wizard_drafts (session_id, car_id, state, step, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (session_id, car_id)
		DO UPDATE SET state = EXCLUDED.state, step = EXCLUDED.step, updated_at = NOW()
		RETURNING updated_at
	`

	raw, err := json.Marshal(draft.State)
	if err != nil {
		return fmt.Errorf("failed to encode draft state: %w", err)
	}

	err = s.pool.QueryRow(ctx, query,
		draft.Key.SessionID,
		draft.Key.CarID,
		raw,
		int(draft.State.Step),
	).Scan(&draft.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	return nil
}

// Delete удаляет черновик.
func (s *PostgresDraftStorage) Delete(ctx context.Context, key models.DraftKey) error {
	query := `DELETE FROM wizard_drafts WHERE session_id = $1 AND car_id = $2`

	result, err := s.pool.Exec(ctx, query, key.SessionID, key.CarID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrDraftNotFound
	}

	return nil
}

// DeleteOlderThan удаляет черновики, не изменявшиеся с момента cutoff.
func (s *PostgresDraftStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM wizard_drafts WHERE updated_at < $1`

	result, err := s.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale drafts: %w", err)
	}

	return result.RowsAffected(), nil
}
