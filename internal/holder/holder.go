package holder

import (
	"errors"
	"fmt"
)

// Ошибки holder'ов. Обе означают ошибку проводки, а не ошибку данных.
var (
	// ErrNotSet - значение запрошено до того, как его записал предыдущий шаг.
	ErrNotSet = errors.New("holder not populated")

	// ErrAlreadySet - повторная запись в holder, который пишется один раз.
	ErrAlreadySet = errors.New("holder already populated")
)

// Holder хранит ноль или одно значение типа T.
type Holder[T any] struct {
	name         string
	value        T
	present      bool
	overwritable bool
}

// New создаёт holder, который можно записать ровно один раз.
// name попадает в сообщения об ошибках.
func New[T any](name string) *Holder[T] {
	return &Holder[T]{name: name}
}

// NewOverwritable создаёт holder, допускающий перезапись (например, результат задачи).
func NewOverwritable[T any](name string) *Holder[T] {
	return &Holder[T]{name: name, overwritable: true}
}

// Name возвращает имя holder'а.
func (h *Holder[T]) Name() string {
	return h.name
}

// Set записывает значение.
// Возвращает ErrAlreadySet при повторной записи в неперезаписываемый holder.
func (h *Holder[T]) Set(value T) error {
	if h.present && !h.overwritable {
		return fmt.Errorf("%w: %s", ErrAlreadySet, h.name)
	}
	h.value = value
	h.present = true
	return nil
}

// Get возвращает значение или ErrNotSet, если значение ещё не записано.
func (h *Holder[T]) Get() (T, error) {
	if !h.present {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotSet, h.name)
	}
	return h.value, nil
}

// IsPresent сообщает, записано ли значение. Никогда не падает.
func (h *Holder[T]) IsPresent() bool {
	return h.present
}
