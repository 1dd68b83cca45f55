package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Ошибки сборки и выполнения pipeline'а.
var (
	// ErrComponentNotFound - тип не зарегистрирован в реестре.
	ErrComponentNotFound = errors.New("component not found")

	// ErrDuplicateComponent - тип уже зарегистрирован.
	ErrDuplicateComponent = errors.New("component already registered")

	// ErrRegistrySealed - регистрация после Seal.
	ErrRegistrySealed = errors.New("registry is sealed")

	// ErrNotAStep - компонент из каталога не реализует Step.
	ErrNotAStep = errors.New("component is not a step")

	// ErrUnknownMode - ModeDispatch получил режим без стратегии.
	ErrUnknownMode = errors.New("unknown analysis mode")

	// ErrCanceled - выполнение прервано на границе шагов.
	ErrCanceled = errors.New("pipeline canceled")
)

// UserError - ошибка, предназначенная конечному пользователю.
//
// Останавливает pipeline и становится итогом задачи. Это штатный путь
// неудачи (некорректный отчёт, отказ биллинга), а не сбой.
type UserError struct {
	Message string
	Err     error
}

// Error реализует интерфейс error.
func (e *UserError) Error() string {
	return e.Message
}

// Unwrap возвращает исходную ошибку.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError создаёт UserError с форматированным сообщением.
func NewUserError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// WrapUserError превращает ошибку внешнего компонента в UserError,
// сохраняя её текст дословно.
func WrapUserError(err error) *UserError {
	return &UserError{Message: err.Error(), Err: err}
}

// Kind - категория ошибки шага.
type Kind int

const (
	// KindNone - ошибки нет.
	KindNone Kind = iota

	// KindUser - ошибка для пользователя.
	KindUser

	// KindDefect - ошибка проводки или нарушенный инвариант.
	KindDefect

	// KindCanceled - контекст отменён вызывающим слоем.
	KindCanceled
)

// String возвращает имя категории (используется как label метрик).
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "success"
	case KindUser:
		return "user_error"
	case KindDefect:
		return "defect"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// KindOf классифицирует ошибку.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return KindUser
	}

	if errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}

	return KindDefect
}

// IsUserFacing возвращает true для ошибок, предназначенных пользователю.
func IsUserFacing(err error) bool {
	return KindOf(err) == KindUser
}
