package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agamariel/rentcar/internal/airtable"
	"github.com/agamariel/rentcar/internal/models"
)

func TestContactService_Submit(t *testing.T) {
	ctx := context.Background()
	valid := models.ContactRequest{FullName: " Ion Popescu ", Email: "ion@example.com", Phone: "+37369123456", Message: "Есть ли детское кресло?"}

	t.Run("forwards trimmed request", func(t *testing.T) {
		var got models.ContactRequest
		var created time.Time
		svc := NewContactService(&mockContactCreator{CreateFunc: func(ctx context.Context, req models.ContactRequest, c time.Time) (*airtable.Record, error) {
			got, created = req, c
			return &airtable.Record{ID: "rec1"}, nil
		}})
		svc.now = func() time.Time { return day(2024, 3, 1) }

		if err := svc.Submit(ctx, valid); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if got.FullName != "Ion Popescu" {
			t.Errorf("FullName = %q", got.FullName)
		}
		if !created.Equal(day(2024, 3, 1)) {
			t.Errorf("created = %v", created)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		req := valid
		req.Email = "nope"
		svc := NewContactService(&mockContactCreator{})
		if err := svc.Submit(ctx, req); !errors.Is(err, ErrInvalidContact) {
			t.Fatalf("expected ErrInvalidContact, got %v", err)
		}
	})

	t.Run("backend down", func(t *testing.T) {
		svc := NewContactService(&mockContactCreator{CreateFunc: func(ctx context.Context, req models.ContactRequest, c time.Time) (*airtable.Record, error) {
			return nil, errors.New("connection reset")
		}})
		if err := svc.Submit(ctx, valid); !errors.Is(err, ErrNetworkUnavailable) {
			t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
		}
	})
}
