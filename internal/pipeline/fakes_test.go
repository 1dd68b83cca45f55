package pipeline

import (
	"context"

	"github.com/shaiso/Analyzer/internal/analysis"
)

// recorder записывает порядок вызова шагов.
type recorder struct {
	calls []string
}

func (r *recorder) record(name string) {
	r.calls = append(r.calls, name)
}

// Разные типы нужны потому, что реестр различает шаги по типу.

type stepA struct {
	rec *recorder
	err error
}

func (s *stepA) Description() string { return "step A" }
func (s *stepA) Execute(_ context.Context, _ *analysis.TaskContext) error {
	s.rec.record("A")
	return s.err
}

type stepB struct {
	rec *recorder
	err error
}

func (s *stepB) Description() string { return "step B" }
func (s *stepB) Execute(_ context.Context, _ *analysis.TaskContext) error {
	s.rec.record("B")
	return s.err
}

type stepC struct {
	rec *recorder
	err error
}

func (s *stepC) Description() string { return "step C" }
func (s *stepC) Execute(_ context.Context, _ *analysis.TaskContext) error {
	s.rec.record("C")
	return s.err
}

// countingStep считает вызовы (для проверки условных шагов).
type countingStep struct {
	name  string
	calls int
}

func (s *countingStep) Description() string { return s.name }
func (s *countingStep) Execute(_ context.Context, _ *analysis.TaskContext) error {
	s.calls++
	return nil
}

type validator interface {
	Check() error
}

type okValidator struct{}

func (okValidator) Check() error { return nil }
