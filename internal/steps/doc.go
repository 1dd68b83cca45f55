// Package steps содержит шаги pipeline'а задачи REPORT и их сборку.
//
// # Каталог
//
// ReportCatalog задаёт порядок шагов:
//
//	ExtractReportStep             распаковка отчёта в рабочую директорию
//	LoadReportMetadataStep        метаданные анализа + проверка задачи
//	VerifyBillingStep             проверка биллинга организации
//	BuildComponentTreeStep        дерево компонентов с переиспользованием UUID
//	LoadActiveRulesStep           активные правила профилей качества
//	LoadQualityGateStep           quality gate проекта
//	DuplicationMeasuresStep       показатели дублирования (full | incremental)
//	PersistComponentsStep         сохранение компонентов
//	PersistMeasuresStep           сохранение показателей
//	IndexAnalysisStep             синхронизация поискового индекса
//	PublishTaskResultStep         итог задачи
//
// # Сборка
//
// Внешние компоненты (хранилища, биллинг, индекс) регистрируются в
// pipeline.Registry через Provide, затем Register строит шаги из реестра:
//
//	reg := pipeline.NewRegistry()
//	steps.Provide(reg, deps)
//	if err := steps.Register(reg); err != nil {
//	    // не хватает зависимости, тип назван в ошибке
//	}
//	reg.Seal()
//	exec, err := pipeline.Assemble(steps.ReportCatalog(), reg)
//
// Шаги общаются только через holder'ы analysis.TaskContext.
package steps
