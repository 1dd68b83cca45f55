package steps

import (
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/pipeline"
)

// ReportCatalog возвращает каталог шагов задачи REPORT.
func ReportCatalog() *pipeline.Catalog {
	return pipeline.NewCatalog(domain.TaskTypeReport,
		pipeline.StepType[*ExtractReportStep](),
		pipeline.StepType[*LoadReportMetadataStep](),
		pipeline.StepType[*VerifyBillingStep](),
		pipeline.StepType[*BuildComponentTreeStep](),
		pipeline.StepType[*LoadActiveRulesStep](),
		pipeline.StepType[*LoadQualityGateStep](),
		pipeline.StepType[*DuplicationMeasuresStep](),
		pipeline.StepType[*PersistComponentsStep](),
		pipeline.StepType[*PersistMeasuresStep](),
		pipeline.StepType[*IndexAnalysisStep](),
		pipeline.StepType[*PublishTaskResultStep](),
	)
}

// Catalogs возвращает каталоги всех поддерживаемых типов задач.
func Catalogs() []*pipeline.Catalog {
	return []*pipeline.Catalog{ReportCatalog()}
}
