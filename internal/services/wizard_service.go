package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/pricing"
	"github.com/agamariel/rentcar/internal/storage"
	"github.com/agamariel/rentcar/internal/wizard"
)

// DefaultWizardIdleTimeout - время бездействия, после которого мастер выгружается из памяти.
const DefaultWizardIdleTimeout = 30 * time.Minute

// WizardService хранит открытые мастера по сессии и автомобилю.
type WizardService struct {
	catalog *CatalogService
	engine  *pricing.Engine
	gateway wizard.Gateway
	drafts  storage.DraftStorage
	now     func() time.Time

	mu      sync.Mutex
	wizards map[models.DraftKey]*openWizard
}

type openWizard struct {
	wizard   *wizard.Wizard
	lastSeen time.Time
}

func NewWizardService(catalog *CatalogService, engine *pricing.Engine, gateway wizard.Gateway, drafts storage.DraftStorage) *WizardService {
	return &WizardService{
		catalog: catalog,
		engine:  engine,
		gateway: gateway,
		drafts:  drafts,
		now:     time.Now,
		wizards: make(map[models.DraftKey]*openWizard),
	}
}

// Open открывает мастер для автомобиля или возвращает уже открытый.
// Занятые дни перечитываются из снимка каталога при каждом выборе дат.
func (s *WizardService) Open(ctx context.Context, sessionID uuid.UUID, carID string) (*wizard.Wizard, error) {
	key := models.DraftKey{SessionID: sessionID, CarID: carID}

	if w, ok := s.touch(key); ok {
		w.RefreshDisabledDays(ctx)
		return w, nil
	}

	car, err := s.catalog.Car(ctx, carID)
	if err != nil {
		return nil, err
	}
	disabled, err := s.catalog.DisabledDays(ctx, carID)
	if err != nil {
		return nil, err
	}

	w, err := wizard.Open(ctx, wizard.Options{
		Car:          car,
		Key:          key,
		DisabledDays: disabled,
		LoadDisabledDays: func(ctx context.Context) ([]time.Time, error) {
			return s.catalog.DisabledDays(ctx, carID)
		},
		Engine:  s.engine,
		Gateway: s.gateway,
		Drafts:  s.drafts,
		Now:     s.now,
	})
	if err != nil {
		return nil, fmt.Errorf("open wizard: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.wizards[key]; ok && !existing.wizard.Closed() {
		existing.lastSeen = s.now()
		w.Close()
		return existing.wizard, nil
	}
	s.wizards[key] = &openWizard{wizard: w, lastSeen: s.now()}
	return w, nil
}

// Get возвращает открытый мастер.
func (s *WizardService) Get(sessionID uuid.UUID, carID string) (*wizard.Wizard, error) {
	w, ok := s.touch(models.DraftKey{SessionID: sessionID, CarID: carID})
	if !ok {
		return nil, ErrWizardNotOpen
	}
	return w, nil
}

// touch отмечает обращение к открытому мастеру.
func (s *WizardService) touch(key models.DraftKey) (*wizard.Wizard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.wizards[key]
	if !ok || entry.wizard.Closed() {
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry.wizard, true
}

// Close закрывает мастер. Черновик незавершённой заявки остаётся в хранилище.
func (s *WizardService) Close(sessionID uuid.UUID, carID string) error {
	key := models.DraftKey{SessionID: sessionID, CarID: carID}

	s.mu.Lock()
	entry, ok := s.wizards[key]
	delete(s.wizards, key)
	s.mu.Unlock()

	if !ok {
		return ErrWizardNotOpen
	}
	entry.wizard.Close()
	return nil
}

// EvictIdle закрывает мастера, к которым не обращались дольше maxIdle, и возвращает их число.
// Черновики остаются: при следующем Open состояние восстановится.
func (s *WizardService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var idle []*wizard.Wizard
	for key, entry := range s.wizards {
		if entry.wizard.Closed() || entry.lastSeen.Before(cutoff) {
			idle = append(idle, entry.wizard)
			delete(s.wizards, key)
		}
	}
	s.mu.Unlock()

	for _, w := range idle {
		w.Close()
	}
	return len(idle)
}

// CloseAll закрывает все мастера при остановке сервера.
func (s *WizardService) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.wizards {
		entry.wizard.Close()
		delete(s.wizards, key)
	}
}

// Len возвращает число открытых мастеров.
func (s *WizardService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wizards)
}
