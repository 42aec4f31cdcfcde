package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/services"
	"github.com/agamariel/rentcar/internal/wizard"
)

// httpError переводит ошибку сервиса или мастера в HTTP-ошибку.
func httpError(err error, operation string) *echo.HTTPError {
	var rejected *services.SubmissionRejectedError

	switch {
	case errors.Is(err, wizard.ErrStepBlocked):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, wizard.ErrInvalidField):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, wizard.ErrDateConflict),
		errors.Is(err, wizard.ErrSubmissionInFlight),
		errors.Is(err, wizard.ErrWizardClosed),
		errors.Is(err, wizard.ErrWizardSubmitted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrCarNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "car not found")
	case errors.Is(err, services.ErrWizardNotOpen):
		return echo.NewHTTPError(http.StatusNotFound, "wizard is not open")
	case errors.Is(err, services.ErrInvalidContact):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &rejected):
		msg := "submission rejected"
		if rejected.Detail != "" {
			msg += ": " + rejected.Detail
		}
		return echo.NewHTTPError(http.StatusBadGateway, msg)
	case services.IsUnavailable(err):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "backend is unavailable, retry later")
	}

	logger.Error("request failed", "operation", operation, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
