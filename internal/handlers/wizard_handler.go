package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agamariel/rentcar/internal/auth"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/utils"
	"github.com/agamariel/rentcar/internal/wizard"
)

// MaxDocumentSize - предельный размер фото документа.
const MaxDocumentSize = 10 << 20

// WizardRegistry хранит открытые мастера по сессии и автомобилю.
type WizardRegistry interface {
	Open(ctx context.Context, sessionID uuid.UUID, carID string) (*wizard.Wizard, error)
	Get(sessionID uuid.UUID, carID string) (*wizard.Wizard, error)
	Close(sessionID uuid.UUID, carID string) error
}

// WizardHandler обрабатывает шаги мастера бронирования.
type WizardHandler struct {
	wizards WizardRegistry
}

// NewWizardHandler создаёт новый экземпляр WizardHandler.
func NewWizardHandler(wizards WizardRegistry) *WizardHandler {
	return &WizardHandler{wizards: wizards}
}

type selectDateRequest struct {
	Date string `json:"date"`
}

type setDatesRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// extrasRequest - частичное обновление параметров шага 1 и оплаты.
// Отсутствующие поля не меняются.
type extrasRequest struct {
	PickupTime       *string `json:"pickupTime"`
	PickupMethod     *string `json:"pickupMethod"`
	PickupAddress    *string `json:"pickupAddress"`
	UnlimitedMileage *bool   `json:"unlimitedMileage"`
	GoldCard         *bool   `json:"goldCard"`
	ClubCard         *bool   `json:"clubCard"`
	PaymentMethod    *string `json:"paymentMethod"`
	PaymentOther     *string `json:"paymentOther"`
	ActiveImageIndex *int    `json:"activeImageIndex"`
}

type customerRequest struct {
	Customer        *models.CustomerInfo `json:"customer"`
	PrivacyAccepted *bool                `json:"privacyAccepted"`
}

// Open обрабатывает POST /api/wizard/:carId.
func (h *WizardHandler) Open(c echo.Context) error {
	sessionID, err := auth.GetSessionIDFromContext(c)
	if err != nil {
		return err
	}

	w, err := h.wizards.Open(c.Request().Context(), sessionID, c.Param("carId"))
	if err != nil {
		return httpError(err, "open wizard")
	}

	return c.JSON(http.StatusOK, w.Snapshot())
}

// View обрабатывает GET /api/wizard/:carId.
func (h *WizardHandler) View(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

// Close обрабатывает DELETE /api/wizard/:carId. Черновик сохраняется.
func (h *WizardHandler) Close(c echo.Context) error {
	sessionID, err := auth.GetSessionIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.wizards.Close(sessionID, c.Param("carId")); err != nil {
		return httpError(err, "close wizard")
	}
	return c.NoContent(http.StatusNoContent)
}

// Reset обрабатывает POST /api/wizard/:carId/reset.
func (h *WizardHandler) Reset(c echo.Context) error {
	return h.apply(c, "reset wizard", func(ctx context.Context, w *wizard.Wizard) error {
		return w.Reset(ctx)
	})
}

// SelectDate обрабатывает POST /api/wizard/:carId/dates/select - щелчок по дню календаря.
func (h *WizardHandler) SelectDate(c echo.Context) error {
	var req selectDateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	day, err := utils.ParseFlexibleDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}

	return h.apply(c, "select date", func(ctx context.Context, w *wizard.Wizard) error {
		return w.SelectDate(ctx, day)
	})
}

// SetDates обрабатывает PUT /api/wizard/:carId/dates.
func (h *WizardHandler) SetDates(c echo.Context) error {
	var req setDatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if req.From == "" || req.To == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "from and to are required")
	}
	r, err := parseRange(req.From, req.To)
	if err != nil {
		return err
	}

	return h.apply(c, "set dates", func(ctx context.Context, w *wizard.Wizard) error {
		return w.SetDates(ctx, *r.From, *r.To)
	})
}

// ClearDates обрабатывает DELETE /api/wizard/:carId/dates.
func (h *WizardHandler) ClearDates(c echo.Context) error {
	return h.apply(c, "clear dates", func(ctx context.Context, w *wizard.Wizard) error {
		return w.ClearDates(ctx)
	})
}

// UpdateExtras обрабатывает PATCH /api/wizard/:carId/extras.
func (h *WizardHandler) UpdateExtras(c echo.Context) error {
	var req extrasRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	update := wizard.ExtrasUpdate{
		PickupTime:       req.PickupTime,
		PickupAddress:    req.PickupAddress,
		UnlimitedMileage: req.UnlimitedMileage,
		GoldCard:         req.GoldCard,
		ClubCard:         req.ClubCard,
		PaymentOther:     req.PaymentOther,
		ActiveImageIndex: req.ActiveImageIndex,
	}
	if req.PickupMethod != nil {
		method := models.PickupMethod(*req.PickupMethod)
		update.PickupMethod = &method
	}
	if req.PaymentMethod != nil {
		method := models.PaymentMethod(*req.PaymentMethod)
		update.PaymentMethod = &method
	}

	return h.apply(c, "update extras", func(ctx context.Context, w *wizard.Wizard) error {
		return w.UpdateExtras(ctx, update)
	})
}

// UpdateCustomer обрабатывает PATCH /api/wizard/:carId/customer.
func (h *WizardHandler) UpdateCustomer(c echo.Context) error {
	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	return h.apply(c, "update customer", func(ctx context.Context, w *wizard.Wizard) error {
		if req.Customer != nil {
			if err := w.SetCustomer(ctx, *req.Customer); err != nil {
				return err
			}
		}
		if req.PrivacyAccepted != nil {
			return w.SetPrivacyAccepted(ctx, *req.PrivacyAccepted)
		}
		return nil
	})
}

// AttachDocument обрабатывает PUT /api/wizard/:carId/documents/:side (multipart, поле file).
func (h *WizardHandler) AttachDocument(c echo.Context) error {
	side := models.DocumentSide(c.Param("side"))
	if !side.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "side must be front or back")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if header.Size > MaxDocumentSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large")
	}

	file, err := header.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxDocumentSize+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read file")
	}
	if len(data) > MaxDocumentSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large")
	}

	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = http.DetectContentType(data)
	}

	doc := models.Document{
		Side:        side,
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}

	return h.apply(c, "attach document", func(ctx context.Context, w *wizard.Wizard) error {
		return w.AttachDocument(ctx, doc)
	})
}

// RemoveDocument обрабатывает DELETE /api/wizard/:carId/documents/:side.
func (h *WizardHandler) RemoveDocument(c echo.Context) error {
	side := models.DocumentSide(c.Param("side"))
	return h.apply(c, "remove document", func(ctx context.Context, w *wizard.Wizard) error {
		return w.RemoveDocument(ctx, side)
	})
}

// Next обрабатывает POST /api/wizard/:carId/next. На шаге 3 отправляет заявку.
func (h *WizardHandler) Next(c echo.Context) error {
	return h.apply(c, "next step", func(ctx context.Context, w *wizard.Wizard) error {
		_, err := w.GoNext(ctx)
		return err
	})
}

// Back обрабатывает POST /api/wizard/:carId/back.
func (h *WizardHandler) Back(c echo.Context) error {
	return h.apply(c, "previous step", func(ctx context.Context, w *wizard.Wizard) error {
		_, err := w.GoBack(ctx)
		return err
	})
}

// wizard возвращает открытый мастер текущей сессии.
func (h *WizardHandler) wizard(c echo.Context) (*wizard.Wizard, error) {
	sessionID, err := auth.GetSessionIDFromContext(c)
	if err != nil {
		return nil, err
	}

	w, err := h.wizards.Get(sessionID, c.Param("carId"))
	if err != nil {
		return nil, httpError(err, "get wizard")
	}
	return w, nil
}

// apply выполняет операцию над мастером и отвечает его снимком.
// При конфликте дат снимок отдаётся с кодом 409: даты уже сброшены.
func (h *WizardHandler) apply(c echo.Context, operation string, fn func(ctx context.Context, w *wizard.Wizard) error) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}

	if err := fn(c.Request().Context(), w); err != nil {
		if errors.Is(err, wizard.ErrDateConflict) {
			return c.JSON(http.StatusConflict, w.Snapshot())
		}
		return httpError(err, operation)
	}

	return c.JSON(http.StatusOK, w.Snapshot())
}
