package jobs

import (
	"time"

	"github.com/agamariel/rentcar/internal/logger"
)

// IdleEvictor закрывает мастера, простаивающие дольше maxIdle.
type IdleEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// WizardEviction выгружает из памяти брошенные мастера. Черновики остаются в хранилище.
type WizardEviction struct {
	wizards IdleEvictor
	maxIdle time.Duration
}

func NewWizardEviction(wizards IdleEvictor, maxIdle time.Duration) *WizardEviction {
	return &WizardEviction{wizards: wizards, maxIdle: maxIdle}
}

// Run выполняет одну выгрузку и возвращает число закрытых мастеров.
func (j *WizardEviction) Run() int {
	evicted := j.wizards.EvictIdle(j.maxIdle)
	if evicted > 0 {
		logger.Info("idle wizards evicted", "evicted", evicted, "max_idle", j.maxIdle)
	}
	return evicted
}

// interval - период запуска: четверть допустимого простоя, но не реже раза в минуту.
func (j *WizardEviction) interval() time.Duration {
	d := j.maxIdle / 4
	if d < time.Minute {
		d = time.Minute
	}
	return d
}
