package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/utils"
)

var validate = validator.New()

// CanGoNext сообщает, выполнены ли требования текущего шага.
func (w *Wizard) CanGoNext() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canGoNextLocked()
}

func (w *Wizard) canGoNextLocked() bool {
	if w.closed || w.submitting {
		return false
	}
	switch w.state.Step {
	case models.StepDatesAndExtras:
		return w.state.Dates.Complete()
	case models.StepConfirmAndPricing:
		return true
	case models.StepPersonalInfo:
		return w.state.Dates.Complete() && validatePersonalInfo(w.state) == nil
	}
	return false
}

// validatePersonalInfo проверяет данные шага 3.
func validatePersonalInfo(st models.WizardState) error {
	if err := validate.Struct(st.Customer); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("customer.%s failed %q check", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	if st.Customer.IDNP != "" && !utils.ValidateIDNP(st.Customer.IDNP) {
		return errors.New("customer.IDNP checksum mismatch")
	}
	if st.PickupMethod == models.PickupAddress && st.PickupAddress == "" {
		return errors.New("pickup address is required for delivery")
	}
	if st.PaymentMethod == models.PaymentOther && st.PaymentOther == "" {
		return errors.New("payment details are required")
	}
	if !st.PrivacyAccepted {
		return errors.New("privacy policy must be accepted")
	}
	return nil
}

// GoNext переходит к следующему шагу. На шаге 3 отправляет заявку.
// Во время отправки мастер не блокируется: чтение состояния, закрытие и сброс доступны.
// Если за время отправки мастер закрыли или сбросили, результат отбрасывается.
func (w *Wizard) GoNext(ctx context.Context) (models.Step, error) {
	w.mu.Lock()

	if err := w.usableLocked(); err != nil {
		step := w.state.Step
		w.mu.Unlock()
		return step, err
	}

	switch w.state.Step {
	case models.StepDatesAndExtras:
		defer w.mu.Unlock()
		if !w.state.Dates.Complete() {
			return w.state.Step, fmt.Errorf("%w: rental dates are not selected", ErrStepBlocked)
		}
		w.reloadDisabledLocked(ctx)
		if w.datesConflictLocked() {
			err := w.dateConflictLocked()
			w.persistLocked(ctx)
			return w.state.Step, err
		}
		w.state.Step = models.StepConfirmAndPricing
		w.notice = NoticeNone
		w.persistLocked(ctx)
		return w.state.Step, nil

	case models.StepConfirmAndPricing:
		defer w.mu.Unlock()
		w.state.Step = models.StepPersonalInfo
		w.notice = NoticeNone
		w.persistLocked(ctx)
		return w.state.Step, nil
	}

	// Шаг 3: отправка.
	if !w.state.Dates.Complete() {
		defer w.mu.Unlock()
		return w.state.Step, fmt.Errorf("%w: rental dates are not selected", ErrStepBlocked)
	}
	if err := validatePersonalInfo(w.state); err != nil {
		defer w.mu.Unlock()
		return w.state.Step, fmt.Errorf("%w: %v", ErrStepBlocked, err)
	}
	w.reloadDisabledLocked(ctx)
	if w.datesConflictLocked() {
		defer w.mu.Unlock()
		err := w.dateConflictLocked()
		w.persistLocked(ctx)
		return w.state.Step, err
	}

	req := w.submissionRequestLocked()
	gen := w.generation
	w.submitting = true
	w.lastErr = nil
	w.mu.Unlock()

	logger.Info("submitting reservation", "key", w.key.String(), "days", req.Pricing.Days, "total", req.Pricing.Total.String())
	conf, err := w.gateway.Submit(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		logger.Info("discarding submission result for reset wizard", "key", w.key.String(), "error", err)
		return w.state.Step, ErrWizardClosed
	}
	w.submitting = false

	if err != nil {
		w.lastErr = err
		return w.state.Step, err
	}

	w.confirmation = conf
	w.state.Step = models.StepSubmitted
	w.documents = make(map[models.DocumentSide]models.Document)
	w.notice = NoticeNone
	w.clearDraftLocked(ctx)
	return w.state.Step, nil
}

func (w *Wizard) submissionRequestLocked() SubmissionRequest {
	docs := make([]models.Document, 0, len(w.documents))
	for _, d := range w.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Side < docs[j].Side })

	p, _ := w.pricingLocked()
	return SubmissionRequest{
		State:     w.state.Clone(),
		Car:       w.car,
		Pricing:   p,
		Documents: docs,
	}
}

// GoBack возвращается на предыдущий шаг. На первом шаге ничего не делает.
func (w *Wizard) GoBack(ctx context.Context) (models.Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.usableLocked(); err != nil {
		return w.state.Step, err
	}
	if w.state.Step == models.StepDatesAndExtras {
		return w.state.Step, nil
	}
	w.state.Step--
	w.notice = NoticeNone
	w.persistLocked(ctx)
	return w.state.Step, nil
}

// Reset возвращает мастер к начальному состоянию и удаляет черновик.
// Незавершённая отправка продолжается, но её результат не будет применён.
func (w *Wizard) Reset(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWizardClosed
	}
	w.generation++
	w.submitting = false
	w.state = models.NewWizardState(w.car.ID)
	w.documents = make(map[models.DocumentSide]models.Document)
	w.notice = NoticeNone
	w.lastErr = nil
	w.confirmation = nil
	w.clearDraftLocked(ctx)
	return nil
}

// Close закрывает мастер. Черновик незавершённой заявки сохраняется.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.generation++
	w.submitting = false
	w.closed = true
	w.documents = nil
}
