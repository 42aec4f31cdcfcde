package services

import (
	"errors"
	"fmt"

	"github.com/agamariel/rentcar/internal/airtable"
)

var (
	ErrNetworkUnavailable = errors.New("backend is unavailable")
	ErrSubmissionRejected = errors.New("submission rejected by backend")
	ErrCarNotFound        = errors.New("car not found")
	ErrWizardNotOpen      = errors.New("wizard is not open")
	ErrInvalidContact     = errors.New("invalid contact request")
)

// SubmissionRejectedError - бэкенд отклонил заявку. Содержит код и пояснение сервиса.
type SubmissionRejectedError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *SubmissionRejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", ErrSubmissionRejected, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrSubmissionRejected, e.StatusCode, e.Detail)
}

func (e *SubmissionRejectedError) Unwrap() []error {
	return []error{ErrSubmissionRejected, e.Err}
}

// classifyBackendError приводит ошибку клиента таблиц к ошибкам сервиса.
func classifyBackendError(err error) error {
	var apiErr *airtable.APIError
	if errors.As(err, &apiErr) {
		return &SubmissionRejectedError{StatusCode: apiErr.StatusCode, Detail: apiErr.Message, Err: err}
	}
	return fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)
}
