// Package logger - тонкая обёртка над log/slog с глобальным логгером приложения.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// Initialize настраивает глобальный логгер: уровень и формат (text или json).
func Initialize(level, format string) {
	InitializeWithWriter(os.Stdout, level, format)
}

// InitializeWithWriter настраивает глобальный логгер с произвольным приёмником.
func InitializeWithWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get возвращает глобальный логгер, при необходимости создавая его с настройками по умолчанию.
func Get() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		Initialize("info", "text")
		mu.RLock()
		l = defaultLogger
		mu.RUnlock()
	}
	return l
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// WithService возвращает логгер с именем сервиса.
func WithService(name string) *slog.Logger {
	return Get().With("service", name)
}

// ExternalServiceCall пишет debug-запись о вызове внешнего сервиса.
func ExternalServiceCall(service, operation string, args ...any) {
	all := append([]any{"service", service, "operation", operation}, args...)
	Get().Debug("→ external service call", all...)
}

// ExternalServiceResult пишет результат вызова внешнего сервиса.
// Ошибка пишется на уровне error, успех - на уровне debug.
func ExternalServiceResult(service, operation string, err error, args ...any) {
	all := append([]any{"service", service, "operation", operation}, args...)
	if err != nil {
		all = append(all, "error", err)
		Get().Error("← external service call failed", all...)
		return
	}
	Get().Debug("← external service call succeeded", all...)
}
