package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig - настройки логирования.
type LogConfig struct {
	// Level - DEBUG, INFO, WARN, ERROR. По умолчанию INFO.
	Level string

	// Format - "json" (по умолчанию) или "text".
	Format string
}

// ParseLevel переводит строку в slog.Level.
// Возможные значения: DEBUG, INFO, WARN, ERROR. По умолчанию: INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger инициализирует глобальный логгер.
//
// Переменные LOG_LEVEL и LOG_FORMAT имеют приоритет над конфигурацией:
//   - "json" (по умолчанию) - JSON формат для production
//   - "text" - человекочитаемый формат для разработки
func SetupLogger(cfg LogConfig) *slog.Logger {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}

	logger := NewLogger(os.Stdout, cfg)
	slog.SetDefault(logger)
	return logger
}

// NewLogger создаёт логгер, пишущий в w.
func NewLogger(w io.Writer, cfg LogConfig) *slog.Logger {
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// Ключи контекста для передачи данных в логгер.
type ctxKey string

const (
	// CtxLogger - ключ для логгера в контексте.
	CtxLogger ctxKey = "logger"
)

// WithLogger добавляет логгер в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext извлекает логгер из контекста.
// Если логгер не найден, возвращает глобальный.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithTaskID возвращает логгер с добавленным task_id.
func WithTaskID(logger *slog.Logger, taskID string) *slog.Logger {
	return logger.With("task_id", taskID)
}

// WithProjectKey возвращает логгер с добавленным project_key.
func WithProjectKey(logger *slog.Logger, projectKey string) *slog.Logger {
	return logger.With("project_key", projectKey)
}
