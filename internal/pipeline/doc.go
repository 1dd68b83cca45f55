// Package pipeline - ядро выполнения задачи: шаги, реестр, каталог, executor.
//
// # Обзор
//
// Задача обрабатывается как упорядоченная последовательность шагов. Шаги не
// вызывают друг друга: они читают и пишут holder'ы общего
// analysis.TaskContext, который executor передаёт в каждый шаг.
//
// # Интерфейс Step
//
//	type Step interface {
//	    Description() string
//	    Execute(ctx context.Context, tc *analysis.TaskContext) error
//	}
//
// # Registry
//
// Registry разрешает компоненты по идентичности типа (reflect.Type), а не по
// строковому имени:
//
//	reg := pipeline.NewRegistry()
//	reg.Register(steps.NewExtractReportStep(src, fs, dir))   // ключ *steps.ExtractReportStep
//	pipeline.Provide[steps.BillingValidator](reg, validator) // ключ steps.BillingValidator
//	reg.Seal()
//
// После Seal реестр неизменяем и может разделяться между задачами.
//
// # Catalog и Executor
//
// Catalog - упорядоченный список типов шагов для типа задачи. Assemble
// разрешает все записи каталога заранее, поэтому отсутствующая регистрация
// обнаруживается до выполнения первого шага:
//
//	exec, err := pipeline.Assemble(catalog, reg, pipeline.WithObserver(metrics))
//	if err != nil {
//	    // errors.Is(err, pipeline.ErrComponentNotFound)
//	}
//	err = exec.Execute(ctx, tc)
//
// # Ошибки
//
// KindOf классифицирует ошибку шага:
//   - KindUser - *UserError, сообщение для конечного пользователя
//   - KindDefect - любая другая ошибка: ошибка проводки или нарушенный инвариант
//   - KindCanceled - отмена контекста вызывающим слоем
//
// Executor не преобразует одну категорию в другую и возвращает ошибку шага
// без изменений. Повторов на этом уровне нет.
//
// # Условные шаги
//
// ModeDispatch объединяет две стратегии (полный и инкрементальный анализ) под
// одной записью каталога и вызывает ровно одну из них по
// AnalysisMetadata.Mode().
package pipeline
