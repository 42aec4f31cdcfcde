// Package availability определяет, какие автомобили свободны на запрошенный период.
package availability

import (
	"sort"
	"time"

	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/utils"
)

// booking - подтверждённая заявка с разобранными датами.
type booking struct {
	start time.Time
	end   time.Time
}

// confirmedBookings собирает подтверждённые заявки автомобиля с корректными датами.
// Заявка с неразборчивыми датами пропускается: автомобиль остаётся доступным.
func confirmedBookings(carID string, orders []models.Order) []booking {
	var out []booking
	for _, o := range orders {
		if !o.References(carID) || !o.IsConfirmed() || !o.HasDates() {
			continue
		}
		start, err := utils.ParseFlexibleDate(o.StartDate)
		if err != nil {
			logger.Warn("skipping order with unparseable start date", "order_id", o.ID, "car_id", carID, "error", err)
			continue
		}
		end, err := utils.ParseFlexibleDate(o.EndDate)
		if err != nil {
			logger.Warn("skipping order with unparseable end date", "order_id", o.ID, "car_id", carID, "error", err)
			continue
		}
		if end.Before(start) {
			start, end = end, start
		}
		out = append(out, booking{start: start, end: end})
	}
	return out
}

// IsAvailable сообщает, свободен ли автомобиль на период [from, to].
func IsAvailable(carID string, orders []models.Order, from, to time.Time) bool {
	from, to = utils.CalendarDate(from), utils.CalendarDate(to)
	if to.Before(from) {
		from, to = to, from
	}
	for _, b := range confirmedBookings(carID, orders) {
		if utils.RangesOverlap(from, to, b.start, b.end) {
			return false
		}
	}
	return true
}

// FilterAvailable возвращает автомобили, свободные на запрошенный период.
// Если период задан не полностью, список возвращается без изменений.
func FilterAvailable(cars []models.Car, orders []models.Order, r models.DateRange) []models.Car {
	if !r.Complete() {
		return cars
	}

	out := make([]models.Car, 0, len(cars))
	for _, car := range cars {
		if IsAvailable(car.ID, orders, *r.From, *r.To) {
			out = append(out, car)
		}
	}
	return out
}

// DisabledDays возвращает отсортированные календарные дни, занятые подтверждёнными заявками автомобиля.
func DisabledDays(carID string, orders []models.Order) []time.Time {
	seen := make(map[string]time.Time)
	for _, b := range confirmedBookings(carID, orders) {
		for _, d := range utils.DaysInRange(b.start, b.end) {
			seen[utils.ToLocalDateKey(d)] = d
		}
	}

	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// DaySet - множество календарных дней по ключу YYYY-MM-DD.
type DaySet map[string]struct{}

// NewDaySet строит множество из списка дней.
func NewDaySet(days []time.Time) DaySet {
	set := make(DaySet, len(days))
	for _, d := range days {
		set[utils.ToLocalDateKey(d)] = struct{}{}
	}
	return set
}

// Contains сообщает, входит ли день в множество.
func (s DaySet) Contains(d time.Time) bool {
	_, ok := s[utils.ToLocalDateKey(d)]
	return ok
}

// IntersectsRange сообщает, попадает ли хотя бы один день множества в период [from, to].
func (s DaySet) IntersectsRange(from, to time.Time) bool {
	if len(s) == 0 {
		return false
	}
	for _, d := range utils.DaysInRange(from, to) {
		if s.Contains(d) {
			return true
		}
	}
	return false
}
