package wizard

import (
	"context"
	"time"

	"github.com/agamariel/rentcar/internal/availability"
	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/utils"
)

// SelectDate обрабатывает щелчок по дню календаря.
// Первый щелчок задаёт начало периода, второй - конец. Щелчок раньше начала меняет границы местами.
// Если в период попадает занятый день, обе даты сбрасываются и возвращается ErrDateConflict.
func (w *Wizard) SelectDate(ctx context.Context, day time.Time) error {
	return w.mutate(ctx, func() error {
		w.reloadDisabledLocked(ctx)
		day = utils.CalendarDate(day)
		if w.dayUnavailable(day) {
			return w.dateConflictLocked()
		}

		r := w.state.Dates
		if r.From == nil || r.To != nil {
			w.state.Dates = models.DateRange{From: &day}
			return nil
		}

		from, to := *r.From, day
		if to.Before(from) {
			from, to = to, from
		}
		return w.applyRangeLocked(from, to)
	})
}

// SetDates задаёт период целиком.
func (w *Wizard) SetDates(ctx context.Context, from, to time.Time) error {
	return w.mutate(ctx, func() error {
		w.reloadDisabledLocked(ctx)
		from, to = utils.CalendarDate(from), utils.CalendarDate(to)
		if to.Before(from) {
			from, to = to, from
		}
		return w.applyRangeLocked(from, to)
	})
}

// ClearDates сбрасывает выбранный период.
func (w *Wizard) ClearDates(ctx context.Context) error {
	return w.mutate(ctx, func() error {
		w.state.Dates = models.DateRange{}
		if w.state.Step != models.StepDatesAndExtras {
			w.state.Step = models.StepDatesAndExtras
		}
		return nil
	})
}

// RefreshDisabledDays перечитывает занятые дни.
// Выбранный период, ставший недоступным, сбрасывается с уведомлением NoticeDateConflict.
func (w *Wizard) RefreshDisabledDays(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.submitting || w.state.Step == models.StepSubmitted {
		return
	}
	if w.loadDisabled == nil {
		return
	}
	w.reloadDisabledLocked(ctx)
	if w.datesConflictLocked() {
		_ = w.dateConflictLocked()
		w.persistLocked(ctx)
	}
}

// reloadDisabledLocked обновляет набор занятых дней. При ошибке остаётся прежний набор.
func (w *Wizard) reloadDisabledLocked(ctx context.Context) {
	if w.loadDisabled == nil {
		return
	}
	days, err := w.loadDisabled(ctx)
	if err != nil {
		logger.Warn("failed to reload disabled days, using previous set", "key", w.key.String(), "error", err)
		return
	}
	w.disabled = availability.NewDaySet(days)
}

// datesConflictLocked - выбранный период пересекается с занятыми днями.
func (w *Wizard) datesConflictLocked() bool {
	r := w.state.Dates
	if r.From == nil && r.To == nil {
		return false
	}
	return w.rangeUnavailable(r)
}

func (w *Wizard) applyRangeLocked(from, to time.Time) error {
	r := models.DateRange{From: &from, To: &to}
	if w.rangeUnavailable(r) {
		return w.dateConflictLocked()
	}
	w.state.Dates = r
	return nil
}

func (w *Wizard) dateConflictLocked() error {
	w.state.Dates = models.DateRange{}
	w.state.Step = models.StepDatesAndExtras
	w.notice = NoticeDateConflict
	return ErrDateConflict
}

// dayUnavailable - день занят или уже прошёл.
func (w *Wizard) dayUnavailable(day time.Time) bool {
	if w.disabled.Contains(day) {
		return true
	}
	if w.now != nil && day.Before(utils.CalendarDate(w.now())) {
		return true
	}
	return false
}

func (w *Wizard) rangeUnavailable(r models.DateRange) bool {
	switch {
	case r.Complete():
		if w.dayUnavailable(*r.From) || w.dayUnavailable(*r.To) {
			return true
		}
		return w.disabled.IntersectsRange(*r.From, *r.To)
	case r.From != nil:
		return w.dayUnavailable(*r.From)
	case r.To != nil:
		return w.dayUnavailable(*r.To)
	}
	return false
}
