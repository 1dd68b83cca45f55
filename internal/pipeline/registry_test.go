package pipeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRegistry_RegisterAndResolveStep(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}
	a := &stepA{rec: rec}

	if err := r.Register(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("expected 1 component, got %d", r.Count())
	}

	step, err := r.ResolveStep(StepType[*stepA]())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step != a {
		t.Error("resolved step should be the registered instance")
	}

	got, err := Resolve[*stepA](r)
	if err != nil || got != a {
		t.Errorf("Resolve[*stepA] = %v, %v", got, err)
	}
}

func TestRegistry_MissingNamesExactType(t *testing.T) {
	r := NewRegistry()

	_, err := r.ResolveStep(StepType[*stepB]())
	if !errors.Is(err, ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "*pipeline.stepB") {
		t.Errorf("error should name the missing type, got %q", err)
	}
}

func TestRegistry_ProvideInterface(t *testing.T) {
	r := NewRegistry()

	if err := Provide[validator](r, okValidator{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := Resolve[validator](r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Check() != nil {
		t.Error("expected resolved validator")
	}

	// Конкретный тип не зарегистрирован - только интерфейс
	if _, err := Resolve[okValidator](r); !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("resolution must be by declared type, got %v", err)
	}
}

func TestRegistry_ProvideNil(t *testing.T) {
	r := NewRegistry()
	if err := Provide[validator](r, nil); err == nil {
		t.Error("expected error for nil component")
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	r.Register(&stepA{rec: rec})
	err := r.Register(&stepA{rec: rec})
	if !errors.Is(err, ErrDuplicateComponent) {
		t.Errorf("expected ErrDuplicateComponent, got %v", err)
	}
}

func TestRegistry_Sealed(t *testing.T) {
	r := NewRegistry()
	r.Seal()

	if !r.Sealed() {
		t.Error("registry should be sealed")
	}

	err := r.Register(&stepA{rec: &recorder{}})
	if !errors.Is(err, ErrRegistrySealed) {
		t.Errorf("expected ErrRegistrySealed, got %v", err)
	}
	if r.Has(StepType[*stepA]()) {
		t.Error("step must not be registered after Seal")
	}
}

func TestRegistry_NotAStep(t *testing.T) {
	r := NewRegistry()
	Provide[validator](r, okValidator{})

	_, err := r.ResolveStep(reflect.TypeFor[validator]())
	if !errors.Is(err, ErrNotAStep) {
		t.Errorf("expected ErrNotAStep, got %v", err)
	}
}

func TestRegistry_Types(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}
	r.MustRegister(&stepB{rec: rec}, &stepA{rec: rec})

	types := r.Types()
	want := []string{"*pipeline.stepA", "*pipeline.stepB"}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("expected %v, got %v", want, types)
	}
}

func TestRegistry_MustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	r.MustRegister(&stepA{rec: rec}, &stepA{rec: rec})
}
