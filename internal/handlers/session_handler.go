package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agamariel/rentcar/internal/auth"
	"github.com/agamariel/rentcar/internal/logger"
)

// SessionHandler выдаёт анонимные сессии браузера.
type SessionHandler struct {
	secret     string
	expiration time.Duration
}

// NewSessionHandler создаёт новый экземпляр SessionHandler.
func NewSessionHandler(secret string, expiration time.Duration) *SessionHandler {
	return &SessionHandler{
		secret:     secret,
		expiration: expiration,
	}
}

// Create обрабатывает POST /api/session.
func (h *SessionHandler) Create(c echo.Context) error {
	sessionID, token, err := auth.IssueSession(h.secret, h.expiration)
	if err != nil {
		logger.Error("failed to issue session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	// Токен в cookie и заголовке, как и в теле ответа
	auth.SetSessionCookie(c, token, h.expiration)
	c.Response().Header().Set("Authorization", "Bearer "+token)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"token":      token,
		"expires_at": time.Now().Add(h.expiration).UTC(),
	})
}
