// Package billing проверяет, разрешён ли организации анализ проектов.
package billing

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shaiso/Analyzer/internal/domain"
)

// DefaultMessage - текст отказа по умолчанию. {organization} заменяется ключом организации.
const DefaultMessage = "Organization {organization} is not allowed to execute project analysis"

// ValidationError - отказ в анализе. Текст показывается пользователю как есть.
type ValidationError struct {
	Organization string
	Message      string
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	return e.Message
}

// Config - настройки валидатора.
type Config struct {
	// BlockedOrganizations - ключи организаций без права анализа.
	BlockedOrganizations []string

	// Message - шаблон текста отказа.
	Message string

	Logger *slog.Logger
}

// Validator - проверка биллинга по списку заблокированных организаций.
type Validator struct {
	blocked map[string]struct{}
	message string
	logger  *slog.Logger
}

// NewValidator создаёт валидатор.
func NewValidator(cfg Config) *Validator {
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	blocked := make(map[string]struct{}, len(cfg.BlockedOrganizations))
	for _, key := range cfg.BlockedOrganizations {
		if key = strings.TrimSpace(key); key != "" {
			blocked[key] = struct{}{}
		}
	}

	return &Validator{
		blocked: blocked,
		message: cfg.Message,
		logger:  cfg.Logger,
	}
}

// CheckOnProjectAnalysis возвращает *ValidationError, если организации анализ запрещён.
func (v *Validator) CheckOnProjectAnalysis(_ context.Context, org domain.Organization) error {
	if _, denied := v.blocked[org.Key]; !denied {
		return nil
	}

	v.logger.Info("project analysis denied by billing", "organization", org.Key)

	return &ValidationError{
		Organization: org.Key,
		Message:      strings.ReplaceAll(v.message, "{organization}", org.Key),
	}
}

// IsBlocked возвращает true для заблокированной организации.
func (v *Validator) IsBlocked(orgKey string) bool {
	_, denied := v.blocked[orgKey]
	return denied
}
