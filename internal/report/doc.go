// Package report работает с отчётом сканера: zip-архивом с JSON-файлами.
//
// Файлы отчёта:
//   - metadata.json      - метаданные анализа (проект, организация, ветка, режим)
//   - components.json    - плоский список компонентов со ссылками на детей
//   - active_rules.json  - правила, активные в профилях качества сканера
//   - duplications.json  - блоки дублирования по файлам
//
// Архив распаковывается в рабочую директорию на afero.Fs, что позволяет
// тестам работать в памяти (afero.NewMemMapFs), а воркеру на диске.
package report
