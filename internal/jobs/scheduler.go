package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/agamariel/rentcar/internal/logger"
)

// Scheduler запускает периодические задачи по расписанию cron.
type Scheduler struct {
	cron    *cron.Cron
	cleanup *DraftCleanup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler создаёт планировщик и регистрирует очистку черновиков.
// Расписание - стандартное выражение cron или дескриптор вроде @daily.
func NewScheduler(schedule string, cleanup *DraftCleanup) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    c,
		cleanup: cleanup,
		ctx:     ctx,
		cancel:  cancel,
	}

	if _, err := c.AddFunc(schedule, s.purgeDrafts); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid draft cleanup schedule %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) purgeDrafts() {
	_, _ = s.cleanup.Run(s.ctx)
}

// Start запускает планировщик.
func (s *Scheduler) Start() {
	logger.Info("starting cron scheduler", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop(ctx context.Context) {
	logger.Info("stopping cron scheduler")
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.cancel()
		<-done.Done()
	}
	s.cancel()
	logger.Info("cron scheduler stopped")
}

// EvictIdleWizards регистрирует периодическую выгрузку простаивающих мастеров.
func (s *Scheduler) EvictIdleWizards(job *WizardEviction) {
	s.cron.Schedule(cron.Every(job.interval()), cron.FuncJob(func() { job.Run() }))
}

// Next возвращает время ближайшего запуска.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
