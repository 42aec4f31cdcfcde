package availability

import (
	"testing"
	"time"

	"github.com/agamariel/rentcar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func carIDs(cars []models.Car) []string {
	ids := make([]string, 0, len(cars))
	for _, c := range cars {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestFilterAvailable_Scenarios(t *testing.T) {
	cars := []models.Car{{ID: "rec1", Name: "Skoda Octavia"}, {ID: "rec2", Name: "Toyota RAV4"}}
	orders := []models.Order{
		{ID: "o1", CarIDs: []string{"rec1"}, StartDate: "2024-03-04", EndDate: "2024-03-10", Status: "подтверждена"},
	}

	t.Run("overlapping confirmed order excludes car", func(t *testing.T) {
		got := FilterAvailable(cars, orders, models.DateRange{From: day(2024, 3, 1), To: day(2024, 3, 5)})
		assert.Equal(t, []string{"rec2"}, carIDs(got))
	})

	t.Run("range before order keeps car", func(t *testing.T) {
		got := FilterAvailable(cars, orders, models.DateRange{From: day(2024, 3, 1), To: day(2024, 3, 3)})
		assert.Equal(t, []string{"rec1", "rec2"}, carIDs(got))
	})

	t.Run("boundary day counts as overlap", func(t *testing.T) {
		got := FilterAvailable(cars, orders, models.DateRange{From: day(2024, 3, 10), To: day(2024, 3, 12)})
		assert.Equal(t, []string{"rec2"}, carIDs(got))
	})

	t.Run("incomplete range returns input unchanged", func(t *testing.T) {
		got := FilterAvailable(cars, orders, models.DateRange{From: day(2024, 3, 5)})
		assert.Equal(t, cars, got)
		got = FilterAvailable(cars, orders, models.DateRange{})
		assert.Equal(t, cars, got)
	})

	t.Run("inverted range is normalized", func(t *testing.T) {
		got := FilterAvailable(cars, orders, models.DateRange{From: day(2024, 3, 5), To: day(2024, 3, 1)})
		assert.Equal(t, []string{"rec2"}, carIDs(got))
	})
}

func TestFilterAvailable_OrderQualification(t *testing.T) {
	cars := []models.Car{{ID: "rec1"}}
	r := models.DateRange{From: day(2024, 3, 1), To: day(2024, 3, 5)}

	tests := []struct {
		name      string
		order     models.Order
		available bool
	}{
		{"masculine confirmed form", models.Order{CarIDs: []string{"rec1"}, StartDate: "2024-03-02", EndDate: "2024-03-03", Status: "подтвержден"}, false},
		{"new order does not block", models.Order{CarIDs: []string{"rec1"}, StartDate: "2024-03-02", EndDate: "2024-03-03", Status: "новая"}, true},
		{"other car does not block", models.Order{CarIDs: []string{"rec9"}, StartDate: "2024-03-02", EndDate: "2024-03-03", Status: "подтверждена"}, true},
		{"missing end date does not block", models.Order{CarIDs: []string{"rec1"}, StartDate: "2024-03-02", Status: "подтверждена"}, true},
		{"unparseable date fails open", models.Order{CarIDs: []string{"rec1"}, StartDate: "soon", EndDate: "2024-03-03", Status: "подтверждена"}, true},
		{"dotted dates are normalized", models.Order{CarIDs: []string{"rec1"}, StartDate: "04.03.2024", EndDate: "10.03.2024", Status: "подтверждена"}, false},
		{"multi-car order blocks each car", models.Order{CarIDs: []string{"rec7", "rec1"}, StartDate: "2024-03-05", EndDate: "2024-03-06", Status: "подтверждена"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAvailable(cars, []models.Order{tt.order}, r)
			assert.Equal(t, tt.available, len(got) == 1)
		})
	}
}

func TestDisabledDays(t *testing.T) {
	orders := []models.Order{
		{CarIDs: []string{"rec1"}, StartDate: "2024-03-04", EndDate: "2024-03-06", Status: "подтверждена"},
		{CarIDs: []string{"rec1"}, StartDate: "06.03.2024", EndDate: "07.03.2024", Status: "подтвержден"},
		{CarIDs: []string{"rec1"}, StartDate: "2024-03-20", EndDate: "2024-03-21", Status: "отменена"},
		{CarIDs: []string{"rec2"}, StartDate: "2024-03-01", EndDate: "2024-03-01", Status: "подтверждена"},
	}

	days := DisabledDays("rec1", orders)
	require.Len(t, days, 4)
	assert.Equal(t, *day(2024, 3, 4), days[0])
	assert.Equal(t, *day(2024, 3, 7), days[3])

	set := NewDaySet(days)
	assert.True(t, set.Contains(*day(2024, 3, 5)))
	assert.False(t, set.Contains(*day(2024, 3, 8)))
	assert.True(t, set.IntersectsRange(*day(2024, 3, 1), *day(2024, 3, 4)))
	assert.False(t, set.IntersectsRange(*day(2024, 3, 8), *day(2024, 3, 12)))
}
