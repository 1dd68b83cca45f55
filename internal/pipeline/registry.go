package pipeline

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry - реестр компонентов задачи.
//
// Компоненты (шаги и их зависимости) разрешаются по идентичности типа.
// Регистрация возможна только до Seal; после Seal реестр только читается
// и может использоваться несколькими задачами одновременно.
type Registry struct {
	mu         sync.RWMutex
	components map[reflect.Type]any
	sealed     bool
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[reflect.Type]any),
	}
}

// Register регистрирует шаг под его конкретным типом.
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("register: nil step")
	}
	return r.register(reflect.TypeOf(step), step)
}

// MustRegister регистрирует шаги и паникует при ошибке.
// Используется при сборке контейнера, где ошибка - баг проводки.
func (r *Registry) MustRegister(steps ...Step) {
	for _, s := range steps {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Provide регистрирует компонент под типом T (как правило, интерфейсом).
func Provide[T any](r *Registry, component T) error {
	t := reflect.TypeFor[T]()
	if any(component) == nil {
		return fmt.Errorf("provide %s: nil component", t)
	}
	return r.register(t, component)
}

func (r *Registry) register(t reflect.Type, component any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %s", ErrRegistrySealed, t)
	}
	if _, exists := r.components[t]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, t)
	}

	r.components[t] = component
	return nil
}

// Resolve возвращает компонент, зарегистрированный под типом T.
func Resolve[T any](r *Registry) (T, error) {
	var zero T

	c, err := r.Lookup(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}

	v, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrComponentNotFound, reflect.TypeFor[T]())
	}
	return v, nil
}

// Lookup возвращает компонент по типу.
// Ошибка называет точный неразрешённый тип: "component not found: *steps.ExtractReportStep".
func (r *Registry) Lookup(t reflect.Type) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.components[t]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, t)
	}
	return c, nil
}

// ResolveStep возвращает шаг по типу.
func (r *Registry) ResolveStep(t reflect.Type) (Step, error) {
	c, err := r.Lookup(t)
	if err != nil {
		return nil, err
	}

	step, ok := c.(Step)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAStep, t)
	}
	return step, nil
}

// Has проверяет, зарегистрирован ли тип.
func (r *Registry) Has(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.components[t]
	return exists
}

// Seal запрещает дальнейшую регистрацию.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed возвращает true после Seal.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Types возвращает имена всех зарегистрированных типов.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.components))
	for t := range r.components {
		types = append(types, t.String())
	}
	sort.Strings(types)
	return types
}

// Count возвращает количество зарегистрированных компонентов.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}
