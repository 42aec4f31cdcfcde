// Package auth выдаёт и проверяет анонимные токены сессии браузера.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenExpiration - срок жизни токена сессии по умолчанию.
const DefaultTokenExpiration = 30 * 24 * time.Hour

// Claims содержит идентификатор сессии в JWT токене.
type Claims struct {
	SessionID uuid.UUID `json:"session_id"`
	jwt.RegisteredClaims
}

var (
	// ErrInvalidToken возвращается при невалидном токене.
	ErrInvalidToken = errors.New("invalid token")
)

// IssueSession создаёт новую сессию и токен для неё.
func IssueSession(secret string, expiration time.Duration) (uuid.UUID, string, error) {
	sessionID := uuid.New()
	token, err := GenerateSessionToken(sessionID, secret, expiration)
	if err != nil {
		return uuid.Nil, "", err
	}
	return sessionID, token, nil
}

// GenerateSessionToken генерирует JWT токен для сессии.
func GenerateSessionToken(sessionID uuid.UUID, secret string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken валидирует JWT токен и возвращает claims.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверка метода подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.SessionID != uuid.Nil {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
