package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
)

// LoadQualityGateStep определяет quality gate проекта.
//
// Порядок: короткоживущая ветка - фиксированный gate; свойство
// sonar.qualitygate - gate с этим id, если он существует; иначе gate
// организации по умолчанию.
type LoadQualityGateStep struct {
	gates                   QualityGateService
	shortLivingBranchGateID int64
}

// NewLoadQualityGateStep создаёт шаг.
func NewLoadQualityGateStep(gates QualityGateService, shortLivingBranchGateID int64) *LoadQualityGateStep {
	return &LoadQualityGateStep{gates: gates, shortLivingBranchGateID: shortLivingBranchGateID}
}

// Description возвращает описание шага.
func (s *LoadQualityGateStep) Description() string {
	return "Load Quality gate"
}

// Execute выполняет шаг.
func (s *LoadQualityGateStep) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	md, err := tc.Metadata.Get()
	if err != nil {
		return err
	}

	gate, err := s.resolve(ctx, tc, md)
	if err != nil {
		return err
	}

	tc.Logger.Debug("quality gate loaded", "gate_id", gate.ID, "gate", gate.Name)

	return tc.QualityGate.Set(gate)
}

func (s *LoadQualityGateStep) resolve(ctx context.Context, tc *analysis.TaskContext, md *domain.AnalysisMetadata) (*domain.QualityGate, error) {
	if md.IsShortLivingBranch() {
		gate, found, err := s.gates.FindByID(ctx, s.shortLivingBranchGateID)
		if err != nil {
			return nil, fmt.Errorf("find quality gate %d: %w", s.shortLivingBranchGateID, err)
		}
		if !found {
			return nil, fmt.Errorf("%w: short-living branch gate %d", ErrGateNotFound, s.shortLivingBranchGateID)
		}
		return gate, nil
	}

	value, ok := md.QualityGateProperty()
	if !ok {
		return s.findDefault(ctx, md)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: Unsupported value (%s) in property %s", ErrMalformedProperty, value, domain.PropertyQualityGate)
	}

	gate, found, err := s.gates.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find quality gate %d: %w", id, err)
	}
	if !found {
		tc.Logger.Warn("quality gate from project property not found, using default", "gate_id", id)
		return s.findDefault(ctx, md)
	}
	return gate, nil
}

func (s *LoadQualityGateStep) findDefault(ctx context.Context, md *domain.AnalysisMetadata) (*domain.QualityGate, error) {
	gate, err := s.gates.FindDefault(ctx, md.Organization)
	if err != nil {
		return nil, fmt.Errorf("find default quality gate: %w", err)
	}
	return gate, nil
}
