package pipeline

import (
	"reflect"

	"github.com/shaiso/Analyzer/internal/domain"
)

// Catalog - упорядоченный список шагов, задающий pipeline типа задачи.
// Неизменяем после создания.
type Catalog struct {
	taskType domain.TaskType
	steps    []reflect.Type
}

// NewCatalog создаёт каталог для типа задачи.
func NewCatalog(taskType domain.TaskType, steps ...reflect.Type) *Catalog {
	cp := make([]reflect.Type, len(steps))
	copy(cp, steps)
	return &Catalog{taskType: taskType, steps: cp}
}

// TaskType возвращает тип задачи каталога.
func (c *Catalog) TaskType() domain.TaskType {
	return c.taskType
}

// Steps возвращает копию упорядоченного списка типов шагов.
func (c *Catalog) Steps() []reflect.Type {
	cp := make([]reflect.Type, len(c.steps))
	copy(cp, c.steps)
	return cp
}

// Len возвращает количество шагов.
func (c *Catalog) Len() int {
	return len(c.steps)
}
