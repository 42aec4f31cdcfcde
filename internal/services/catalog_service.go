package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agamariel/rentcar/internal/availability"
	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/models"
)

const DefaultPerPage = 9

// CatalogSnapshot - согласованная пара списков автомобилей и заявок.
type CatalogSnapshot struct {
	Cars      []models.Car
	Orders    []models.Order
	FetchedAt time.Time
}

// CatalogService хранит последний снимок каталога и отвечает на запросы по нему.
type CatalogService struct {
	source CatalogSource
	now    func() time.Time

	refreshMu sync.Mutex
	mu        sync.RWMutex
	snapshot  *CatalogSnapshot
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(source CatalogSource) *CatalogService {
	return &CatalogService{source: source, now: time.Now}
}

// Refresh параллельно загружает автомобили и заявки.
// Снимок заменяется, только если обе загрузки успешны.
func (s *CatalogService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var (
		cars   []models.Car
		orders []models.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cars, err = s.source.FetchCars(gctx)
		if err != nil {
			return fmt.Errorf("fetch cars: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		orders, err = s.source.FetchOrders(gctx)
		if err != nil {
			return fmt.Errorf("fetch orders: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)
	}

	snap := &CatalogSnapshot{Cars: cars, Orders: orders, FetchedAt: s.now()}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	logger.Info("catalog refreshed", "cars", len(cars), "orders", len(orders))
	return nil
}

// Snapshot возвращает текущий снимок, загружая его при первом обращении или по требованию.
func (s *CatalogService) Snapshot(ctx context.Context, force bool) (*CatalogSnapshot, error) {
	if !force {
		s.mu.RLock()
		snap := s.snapshot
		s.mu.RUnlock()
		if snap != nil {
			return snap, nil
		}
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, nil
}

// Browse возвращает страницу каталога: доступность, категория, сортировка, пагинация.
func (s *CatalogService) Browse(ctx context.Context, q models.CatalogQuery) (*models.CatalogPage, error) {
	snap, err := s.Snapshot(ctx, q.Refresh)
	if err != nil {
		return nil, err
	}

	cars := availability.FilterAvailable(snap.Cars, snap.Orders, q.Range)

	if q.Category != "" {
		filtered := make([]models.Car, 0, len(cars))
		for _, c := range cars {
			if c.Category == q.Category {
				filtered = append(filtered, c)
			}
		}
		cars = filtered
	} else {
		cars = append([]models.Car(nil), cars...)
	}

	sortCars(cars, q.Sort, q.Dir)

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(cars)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	return &models.CatalogPage{
		Cars:         cars[start:end],
		Total:        total,
		Page:         page,
		PerPage:      perPage,
		TotalPages:   totalPages,
		VisiblePages: VisiblePages(page, totalPages),
		FetchedAt:    snap.FetchedAt,
	}, nil
}

func sortCars(cars []models.Car, field models.SortField, dir models.SortDirection) {
	desc := dir == models.SortDesc
	var less func(a, b models.Car) bool
	switch field {
	case models.SortByPrice:
		less = func(a, b models.Car) bool { return a.Rate1Day.LessThan(b.Rate1Day) }
	default:
		less = func(a, b models.Car) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
	sort.SliceStable(cars, func(i, j int) bool {
		if desc {
			return less(cars[j], cars[i])
		}
		return less(cars[i], cars[j])
	})
}

// VisiblePages строит окно навигации: 1 … p-1 p p+1 … N. Пропуск обозначается нулём.
func VisiblePages(page, totalPages int) []int {
	switch {
	case totalPages <= 1:
		return []int{}
	case totalPages <= 7:
		out := make([]int, totalPages)
		for i := range out {
			out[i] = i + 1
		}
		return out
	case page <= 4:
		return []int{1, 2, 3, 4, 5, 0, totalPages}
	case page >= totalPages-3:
		return []int{1, 0, totalPages - 4, totalPages - 3, totalPages - 2, totalPages - 1, totalPages}
	default:
		return []int{1, 0, page - 1, page, page + 1, 0, totalPages}
	}
}

// Car возвращает автомобиль по идентификатору.
func (s *CatalogService) Car(ctx context.Context, id string) (models.Car, error) {
	snap, err := s.Snapshot(ctx, false)
	if err != nil {
		return models.Car{}, err
	}
	for _, c := range snap.Cars {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Car{}, ErrCarNotFound
}

// DisabledDays возвращает дни, занятые подтверждёнными заявками автомобиля.
func (s *CatalogService) DisabledDays(ctx context.Context, id string) ([]time.Time, error) {
	if _, err := s.Car(ctx, id); err != nil {
		return nil, err
	}
	snap, err := s.Snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	return availability.DisabledDays(id, snap.Orders), nil
}

// IsUnavailable сообщает, что ошибка вызвана недоступностью бэкенда.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable)
}
