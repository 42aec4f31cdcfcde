package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agamariel/rentcar/internal/models"
)

// ContactService принимает заявки на обратную связь.
type ContactService interface {
	Submit(ctx context.Context, req models.ContactRequest) error
}

// ContactHandler обрабатывает форму обратной связи.
type ContactHandler struct {
	contacts ContactService
}

// NewContactHandler создаёт новый экземпляр ContactHandler.
func NewContactHandler(contacts ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit обрабатывает POST /api/contact.
func (h *ContactHandler) Submit(c echo.Context) error {
	var req models.ContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	if err := h.contacts.Submit(c.Request().Context(), req); err != nil {
		return httpError(err, "submit contact request")
	}

	return c.NoContent(http.StatusAccepted)
}
