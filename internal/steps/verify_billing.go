package steps

import (
	"context"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/pipeline"
)

// VerifyBillingStep проверяет, что организации разрешён анализ проекта.
type VerifyBillingStep struct {
	validator BillingValidator
}

// NewVerifyBillingStep создаёт шаг.
func NewVerifyBillingStep(validator BillingValidator) *VerifyBillingStep {
	return &VerifyBillingStep{validator: validator}
}

// Description возвращает описание шага.
func (s *VerifyBillingStep) Description() string {
	return "Verify billing"
}

// Execute выполняет шаг. Отказ валидатора становится ошибкой пользователя с тем же текстом.
func (s *VerifyBillingStep) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	md, err := tc.Metadata.Get()
	if err != nil {
		return err
	}

	if err := s.validator.CheckOnProjectAnalysis(ctx, md.Organization); err != nil {
		return pipeline.WrapUserError(err)
	}
	return nil
}
