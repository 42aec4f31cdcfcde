package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/agamariel/rentcar/internal/models"
)

// ContactService пересылает обращения с сайта в таблицу обращений.
type ContactService struct {
	creator  ContactCreator
	validate *validator.Validate
	now      func() time.Time
}

func NewContactService(creator ContactCreator) *ContactService {
	return &ContactService{
		creator:  creator,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Submit проверяет и сохраняет обращение.
func (s *ContactService) Submit(ctx context.Context, req models.ContactRequest) error {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)

	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}

	if _, err := s.creator.CreateContactRequest(ctx, req, s.now()); err != nil {
		return classifyBackendError(err)
	}
	return nil
}
