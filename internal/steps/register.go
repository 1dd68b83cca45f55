package steps

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/shaiso/Analyzer/internal/pipeline"
)

// Settings - параметры шагов, не являющиеся внешними компонентами.
type Settings struct {
	// Fs - файловая система рабочей директории.
	Fs afero.Fs
	// WorkDir - куда распаковываются отчёты.
	WorkDir string
	// DefaultOrganizationKey - организация по умолчанию.
	DefaultOrganizationKey string
	// ShortLivingBranchGateID - id gate коротких веток.
	ShortLivingBranchGateID int64
}

// Dependencies - внешние компоненты шагов.
type Dependencies struct {
	Settings     Settings
	Reports      ReportSource
	Components   ComponentStore
	Measures     MeasureStore
	Indexer      ProjectIndexer
	Billing      BillingValidator
	QualityGates QualityGateService
	Rules        RuleRepository
}

// Provide регистрирует внешние компоненты в реестре под их интерфейсами.
// Nil-компоненты пропускаются: их отсутствие обнаружит Register.
func Provide(reg *pipeline.Registry, deps Dependencies) error {
	return errors.Join(
		pipeline.Provide(reg, deps.Settings),
		provideIfSet(reg, deps.Reports),
		provideIfSet(reg, deps.Components),
		provideIfSet(reg, deps.Measures),
		provideIfSet(reg, deps.Indexer),
		provideIfSet(reg, deps.Billing),
		provideIfSet(reg, deps.QualityGates),
		provideIfSet(reg, deps.Rules),
	)
}

func provideIfSet[T any](reg *pipeline.Registry, component T) error {
	if any(component) == nil {
		return nil
	}
	return pipeline.Provide(reg, component)
}

// Register строит шаги каталога REPORT из компонентов реестра и регистрирует их.
// Ошибка называет первый отсутствующий тип.
func Register(reg *pipeline.Registry) error {
	settings, err := pipeline.Resolve[Settings](reg)
	if err != nil {
		return err
	}
	if settings.Fs == nil {
		settings.Fs = afero.NewOsFs()
	}

	reports, err := pipeline.Resolve[ReportSource](reg)
	if err != nil {
		return err
	}
	components, err := pipeline.Resolve[ComponentStore](reg)
	if err != nil {
		return err
	}
	measures, err := pipeline.Resolve[MeasureStore](reg)
	if err != nil {
		return err
	}
	indexer, err := pipeline.Resolve[ProjectIndexer](reg)
	if err != nil {
		return err
	}
	billing, err := pipeline.Resolve[BillingValidator](reg)
	if err != nil {
		return err
	}
	gates, err := pipeline.Resolve[QualityGateService](reg)
	if err != nil {
		return err
	}
	rules, err := pipeline.Resolve[RuleRepository](reg)
	if err != nil {
		return err
	}

	all := []pipeline.Step{
		NewExtractReportStep(reports, settings.Fs, settings.WorkDir),
		NewLoadReportMetadataStep(settings.DefaultOrganizationKey),
		NewVerifyBillingStep(billing),
		NewBuildComponentTreeStep(components),
		NewLoadActiveRulesStep(rules),
		NewLoadQualityGateStep(gates, settings.ShortLivingBranchGateID),
		NewDuplicationMeasuresStep(
			NewFullDuplicationMeasuresStep(),
			NewIncrementalDuplicationMeasuresStep(measures),
		),
		NewPersistComponentsStep(components),
		NewPersistMeasuresStep(measures),
		NewIndexAnalysisStep(indexer),
		NewPublishTaskResultStep(),
	}
	for _, s := range all {
		if err := reg.Register(s); err != nil {
			return fmt.Errorf("register %q: %w", s.Description(), err)
		}
	}
	return nil
}
