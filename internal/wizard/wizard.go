// Package wizard реализует пошаговый мастер бронирования автомобиля.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agamariel/rentcar/internal/availability"
	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/pricing"
	"github.com/agamariel/rentcar/internal/storage"
)

// Gateway отправляет заявку во внешний сервис заказов.
type Gateway interface {
	Submit(ctx context.Context, req SubmissionRequest) (*models.OrderConfirmation, error)
}

// SubmissionRequest - всё, что мастер передаёт на отправку.
type SubmissionRequest struct {
	State     models.WizardState
	Car       models.Car
	Pricing   models.PricingBreakdown
	Documents []models.Document
}

// DraftRepository хранит черновики мастера. Ключ - сессия и автомобиль.
type DraftRepository interface {
	Load(ctx context.Context, key models.DraftKey) (*models.Draft, error)
	Save(ctx context.Context, draft *models.Draft) error
	Delete(ctx context.Context, key models.DraftKey) error
}

// Notice - уведомление для пользователя после последней операции.
type Notice string

const (
	NoticeNone          Notice = ""
	NoticeDateConflict  Notice = "date_conflict"
	NoticeDraftRestored Notice = "draft_restored"
)

// Options - зависимости мастера.
type Options struct {
	Car          models.Car
	Key          models.DraftKey
	DisabledDays []time.Time
	// LoadDisabledDays перечитывает занятые дни перед выбором дат и отправкой.
	// Если nil, используется только DisabledDays.
	LoadDisabledDays func(ctx context.Context) ([]time.Time, error)
	Engine           *pricing.Engine
	Gateway          Gateway
	Drafts           DraftRepository
	// Now задаёт текущее время; если nil, прошедшие даты не блокируются.
	Now func() time.Time
}

// View - снимок мастера для отображения.
type View struct {
	State        models.WizardState        `json:"state"`
	Pricing      *models.PricingBreakdown  `json:"pricing,omitempty"`
	CanGoNext    bool                      `json:"canGoNext"`
	Submitting   bool                      `json:"submitting"`
	Notice       Notice                    `json:"notice,omitempty"`
	Confirmation *models.OrderConfirmation `json:"confirmation,omitempty"`
	LastError    string                    `json:"lastError,omitempty"`
}

// Wizard - мастер бронирования одного автомобиля. Безопасен для конкурентного использования.
type Wizard struct {
	mu sync.Mutex

	car          models.Car
	key          models.DraftKey
	disabled     availability.DaySet
	loadDisabled func(ctx context.Context) ([]time.Time, error)
	engine       *pricing.Engine
	gateway      Gateway
	drafts       DraftRepository
	now          func() time.Time

	state        models.WizardState
	documents    map[models.DocumentSide]models.Document
	notice       Notice
	lastErr      error
	confirmation *models.OrderConfirmation

	submitting bool
	generation uint64
	closed     bool
}

// Open создаёт мастер и восстанавливает черновик, если он есть.
func Open(ctx context.Context, opts Options) (*Wizard, error) {
	if opts.Car.ID == "" {
		return nil, errors.New("car is required")
	}
	if opts.Engine == nil || opts.Gateway == nil || opts.Drafts == nil {
		return nil, errors.New("pricing engine, gateway and draft repository are required")
	}

	w := &Wizard{
		car:          opts.Car,
		key:          opts.Key,
		disabled:     availability.NewDaySet(opts.DisabledDays),
		loadDisabled: opts.LoadDisabledDays,
		engine:       opts.Engine,
		gateway:      opts.Gateway,
		drafts:       opts.Drafts,
		now:          opts.Now,
		state:        models.NewWizardState(opts.Car.ID),
		documents:    make(map[models.DocumentSide]models.Document),
	}
	w.key.CarID = opts.Car.ID

	draft, err := w.drafts.Load(ctx, w.key)
	switch {
	case errors.Is(err, storage.ErrDraftNotFound):
	case err != nil:
		logger.Warn("failed to load wizard draft, starting empty", "key", w.key.String(), "error", err)
	case draft.State.CarID == opts.Car.ID:
		w.restore(draft.State)
	}

	return w, nil
}

// restore применяет сохранённое состояние, приводя его к допустимому виду.
func (w *Wizard) restore(saved models.WizardState) {
	st := saved.Clone()
	// Файлы документов в черновик не попадают.
	st.Photos = models.UploadedPhotos{}
	if st.Step == models.StepSubmitted || st.Step < models.StepDatesAndExtras {
		st.Step = models.StepDatesAndExtras
	}
	if st.Customer.CountryCode == "" {
		st.Customer.CountryCode = models.DefaultCountryCode
	}
	if !st.PickupMethod.Valid() {
		st.PickupMethod = models.PickupOffice
	}
	if !st.PaymentMethod.Valid() {
		st.PaymentMethod = models.PaymentCash
	}

	w.state = st
	w.notice = NoticeDraftRestored

	if w.rangeUnavailable(st.Dates) {
		w.state.Dates = models.DateRange{}
		w.state.Step = models.StepDatesAndExtras
		w.notice = NoticeDateConflict
		return
	}
	if !st.Dates.Complete() {
		w.state.Step = models.StepDatesAndExtras
	}
}

// Key возвращает ключ черновика.
func (w *Wizard) Key() models.DraftKey {
	return w.key
}

// Car возвращает автомобиль мастера.
func (w *Wizard) Car() models.Car {
	return w.car
}

// State возвращает копию текущего состояния.
func (w *Wizard) State() models.WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

// Step возвращает текущий шаг.
func (w *Wizard) Step() models.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Step
}

// Closed сообщает, закрыт ли мастер.
func (w *Wizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Pricing рассчитывает стоимость, если даты выбраны.
func (w *Wizard) Pricing() (models.PricingBreakdown, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pricingLocked()
}

func (w *Wizard) pricingLocked() (models.PricingBreakdown, bool) {
	if !w.state.Dates.Complete() {
		return models.PricingBreakdown{}, false
	}
	return w.engine.Compute(*w.state.Dates.From, *w.state.Dates.To, w.car, w.state.Extras()), true
}

// Snapshot возвращает снимок для отображения.
func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		State:        w.state.Clone(),
		CanGoNext:    w.canGoNextLocked(),
		Submitting:   w.submitting,
		Notice:       w.notice,
		Confirmation: w.confirmation,
	}
	if p, ok := w.pricingLocked(); ok {
		v.Pricing = &p
	}
	if w.lastErr != nil {
		v.LastError = w.lastErr.Error()
	}
	return v
}

// usableLocked проверяет, можно ли менять состояние.
func (w *Wizard) usableLocked() error {
	switch {
	case w.closed:
		return ErrWizardClosed
	case w.submitting:
		return ErrSubmissionInFlight
	case w.state.Step == models.StepSubmitted:
		return ErrWizardSubmitted
	}
	return nil
}

// mutate выполняет изменение состояния и сохраняет черновик.
func (w *Wizard) mutate(ctx context.Context, fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.usableLocked(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if errors.Is(err, ErrDateConflict) {
			w.persistLocked(ctx)
		}
		return err
	}
	w.notice = NoticeNone
	w.persistLocked(ctx)
	return nil
}

// persistLocked сохраняет черновик. Ошибка записи не прерывает работу мастера.
func (w *Wizard) persistLocked(ctx context.Context) {
	draft := &models.Draft{
		Key:       w.key,
		State:     w.state.Clone(),
		UpdatedAt: time.Now(),
	}
	if err := w.drafts.Save(ctx, draft); err != nil {
		logger.Warn("failed to save wizard draft", "key", w.key.String(), "error", err)
	}
}

func (w *Wizard) clearDraftLocked(ctx context.Context) {
	if err := w.drafts.Delete(ctx, w.key); err != nil && !errors.Is(err, storage.ErrDraftNotFound) {
		logger.Warn("failed to delete wizard draft", "key", w.key.String(), "error", err)
	}
}

func fieldError(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidField, field, fmt.Sprintf(format, args...))
}
