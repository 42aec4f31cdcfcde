package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/utils"
)

// CatalogService - операции каталога, нужные обработчикам.
type CatalogService interface {
	Browse(ctx context.Context, q models.CatalogQuery) (*models.CatalogPage, error)
	Car(ctx context.Context, id string) (models.Car, error)
	DisabledDays(ctx context.Context, id string) ([]time.Time, error)
}

// CatalogHandler обрабатывает HTTP-запросы каталога автомобилей.
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler создаёт новый экземпляр CatalogHandler.
func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List обрабатывает GET /api/cars.
func (h *CatalogHandler) List(c echo.Context) error {
	q, err := parseCatalogQuery(c)
	if err != nil {
		return err
	}

	page, err := h.catalog.Browse(c.Request().Context(), q)
	if err != nil {
		return httpError(err, "browse catalog")
	}

	return c.JSON(http.StatusOK, page)
}

// Get обрабатывает GET /api/cars/:id.
func (h *CatalogHandler) Get(c echo.Context) error {
	car, err := h.catalog.Car(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err, "get car")
	}
	return c.JSON(http.StatusOK, car)
}

// DisabledDays обрабатывает GET /api/cars/:id/disabled-days.
func (h *CatalogHandler) DisabledDays(c echo.Context) error {
	days, err := h.catalog.DisabledDays(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err, "get disabled days")
	}

	keys := make([]string, 0, len(days))
	for _, d := range days {
		keys = append(keys, utils.ToLocalDateKey(d))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"carId": c.Param("id"),
		"days":  keys,
	})
}

// parseCatalogQuery разбирает параметры просмотра каталога.
func parseCatalogQuery(c echo.Context) (models.CatalogQuery, error) {
	q := models.CatalogQuery{
		Category: models.Category(c.QueryParam("category")),
		Sort:     models.SortField(c.QueryParam("sort")),
		Dir:      models.SortDirection(c.QueryParam("dir")),
	}

	if q.Category != "" && !q.Category.Valid() {
		return q, echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}
	switch q.Sort {
	case "", models.SortByName, models.SortByPrice:
	default:
		return q, echo.NewHTTPError(http.StatusBadRequest, "sort must be name or price")
	}
	switch q.Dir {
	case "", models.SortAsc, models.SortDesc:
	default:
		return q, echo.NewHTTPError(http.StatusBadRequest, "dir must be asc or desc")
	}

	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("perPage", &q.PerPage).
		Bool("refresh", &q.Refresh).
		BindError()
	if err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	if q.Range, err = parseRange(c.QueryParam("from"), c.QueryParam("to")); err != nil {
		return q, err
	}

	return q, nil
}

// parseRange разбирает необязательный период; перевёрнутые даты меняются местами.
func parseRange(fromText, toText string) (models.DateRange, error) {
	var r models.DateRange
	if fromText != "" {
		from, err := utils.ParseFlexibleDate(fromText)
		if err != nil {
			return r, echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		r.From = &from
	}
	if toText != "" {
		to, err := utils.ParseFlexibleDate(toText)
		if err != nil {
			return r, echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		r.To = &to
	}
	if r.Complete() && r.To.Before(*r.From) {
		r.From, r.To = r.To, r.From
	}
	return r, nil
}
