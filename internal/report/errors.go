package report

import "errors"

// Ошибки отчёта.
var (
	// ErrFileNotFound - файл отсутствует в распакованном отчёте.
	ErrFileNotFound = errors.New("report file not found")

	// ErrUnsafePath - элемент архива выходит за пределы рабочей директории.
	ErrUnsafePath = errors.New("unsafe path in report archive")

	// ErrMalformed - файл отчёта не удалось разобрать.
	ErrMalformed = errors.New("malformed report file")
)
