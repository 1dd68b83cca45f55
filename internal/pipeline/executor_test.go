package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/holder"
)

type observed struct {
	step string
	kind Kind
}

type fakeObserver struct {
	steps []observed
}

func (o *fakeObserver) ObserveStep(_ domain.TaskType, step string, _ time.Duration, kind Kind) {
	o.steps = append(o.steps, observed{step: step, kind: kind})
}

func newTestCatalog() *Catalog {
	return NewCatalog(domain.TaskTypeReport,
		StepType[*stepA](),
		StepType[*stepB](),
		StepType[*stepC](),
	)
}

func newTaskContext() *analysis.TaskContext {
	return analysis.NewTaskContext(domain.NewReportTask("u", "k", "o", "ok", ""), nil)
}

func TestExecutor_RunsInCatalogOrder(t *testing.T) {
	rec := &recorder{}
	r := NewRegistry()
	// Порядок регистрации не влияет на порядок выполнения
	r.MustRegister(&stepC{rec: rec}, &stepA{rec: rec}, &stepB{rec: rec})
	r.Seal()

	exec, err := Assemble(newTestCatalog(), r)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if err := exec.Execute(context.Background(), newTaskContext()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("expected %v, got %v", want, rec.calls)
	}

	if !reflect.DeepEqual(exec.Descriptions(), []string{"step A", "step B", "step C"}) {
		t.Errorf("unexpected descriptions: %v", exec.Descriptions())
	}
}

func TestAssemble_MissingStepFailsBeforeExecution(t *testing.T) {
	rec := &recorder{}
	r := NewRegistry()
	r.MustRegister(&stepA{rec: rec}, &stepC{rec: rec})

	exec, err := Assemble(newTestCatalog(), r)
	if !errors.Is(err, ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
	if exec != nil {
		t.Error("executor must not be returned")
	}
	if !strings.Contains(err.Error(), "*pipeline.stepB") {
		t.Errorf("error should name the missing step, got %q", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("no step should execute, got %v", rec.calls)
	}
}

func TestExecutor_UserErrorStopsPipeline(t *testing.T) {
	rec := &recorder{}
	userErr := NewUserError("report for project %s is invalid", "p1")

	r := NewRegistry()
	r.MustRegister(&stepA{rec: rec}, &stepB{rec: rec, err: userErr}, &stepC{rec: rec})
	obs := &fakeObserver{}

	exec, err := Assemble(newTestCatalog(), r, WithObserver(obs))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	err = exec.Execute(context.Background(), newTaskContext())
	if err != userErr {
		t.Fatalf("user error must be returned unchanged, got %v", err)
	}
	if KindOf(err) != KindUser {
		t.Errorf("expected KindUser, got %v", KindOf(err))
	}

	if !reflect.DeepEqual(rec.calls, []string{"A", "B"}) {
		t.Errorf("step C must not run, got %v", rec.calls)
	}

	want := []observed{{"step A", KindNone}, {"step B", KindUser}}
	if !reflect.DeepEqual(obs.steps, want) {
		t.Errorf("expected observations %v, got %v", want, obs.steps)
	}
}

func TestExecutor_DefectPropagatesUnchanged(t *testing.T) {
	rec := &recorder{}
	h := holder.New[int]("tree")
	_, defect := h.Get()

	r := NewRegistry()
	r.MustRegister(&stepA{rec: rec, err: defect}, &stepB{rec: rec}, &stepC{rec: rec})

	exec, _ := Assemble(newTestCatalog(), r)
	err := exec.Execute(context.Background(), newTaskContext())

	if err != defect {
		t.Fatalf("defect must be returned unchanged, got %v", err)
	}
	if !errors.Is(err, holder.ErrNotSet) {
		t.Errorf("expected ErrNotSet, got %v", err)
	}
	if KindOf(err) != KindDefect {
		t.Errorf("expected KindDefect, got %v", KindOf(err))
	}
	if IsUserFacing(err) {
		t.Error("defect must not be classified as user-facing")
	}
	if !reflect.DeepEqual(rec.calls, []string{"A"}) {
		t.Errorf("only step A should run, got %v", rec.calls)
	}
}

func TestExecutor_CanceledAtStepBoundary(t *testing.T) {
	rec := &recorder{}
	r := NewRegistry()
	r.MustRegister(&stepA{rec: rec}, &stepB{rec: rec}, &stepC{rec: rec})

	exec, _ := Assemble(newTestCatalog(), r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Execute(ctx, newTaskContext())
	if !errors.Is(err, ErrCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if KindOf(err) != KindCanceled {
		t.Errorf("expected KindCanceled, got %v", KindOf(err))
	}
	if len(rec.calls) != 0 {
		t.Errorf("no step should run, got %v", rec.calls)
	}
}

func TestExecutor_PanicIsNotRecovered(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(&panicStep{})
	exec, _ := Assemble(NewCatalog(domain.TaskTypeReport, StepType[*panicStep]()), r)

	defer func() {
		if recover() == nil {
			t.Error("executor must not swallow panics")
		}
	}()
	exec.Execute(context.Background(), newTaskContext())
}

type panicStep struct{}

func (panicStep) Description() string { return "panic" }
func (panicStep) Execute(context.Context, *analysis.TaskContext) error {
	panic("broken invariant")
}

func TestAssembleAll(t *testing.T) {
	rec := &recorder{}
	r := NewRegistry()
	r.MustRegister(&stepA{rec: rec}, &stepB{rec: rec}, &stepC{rec: rec})

	other := NewCatalog("OTHER", StepType[*stepC]())
	execs, err := AssembleAll(r, []*Catalog{newTestCatalog(), other})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(execs) != 2 {
		t.Fatalf("expected 2 executors, got %d", len(execs))
	}
	if execs["OTHER"].TaskType() != "OTHER" {
		t.Error("executor should keep task type")
	}
}

func TestCatalog_StepsIsCopy(t *testing.T) {
	c := newTestCatalog()
	steps := c.Steps()
	steps[0] = nil

	if c.Steps()[0] == nil {
		t.Error("catalog must be immutable")
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 steps, got %d", c.Len())
	}
}
