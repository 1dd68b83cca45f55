package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/index"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/queue"
	"github.com/shaiso/Analyzer/internal/repo"
)

// --- fakes ---

type fakeQueue struct {
	tasks    map[uuid.UUID]*domain.Task
	archives map[uuid.UUID][]byte
	filter   repo.TaskFilter
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{tasks: map[uuid.UUID]*domain.Task{}, archives: map[uuid.UUID][]byte{}}
}

func (q *fakeQueue) Submit(_ context.Context, task *domain.Task, archive []byte) error {
	q.tasks[task.ID] = task
	q.archives[task.ID] = archive
	return nil
}

func (q *fakeQueue) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	t, ok := q.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return t, nil
}

func (q *fakeQueue) List(_ context.Context, filter repo.TaskFilter) ([]domain.Task, error) {
	q.filter = filter
	var out []domain.Task
	for _, t := range q.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (q *fakeQueue) Cancel(_ context.Context, id uuid.UUID) error {
	t, ok := q.tasks[id]
	if !ok {
		return repo.ErrNotFound
	}
	if t.Status != domain.TaskStatusPending {
		return fmt.Errorf("%w: task %s is %s", repo.ErrInvalidState, id, t.Status)
	}
	t.MarkCanceled()
	return nil
}

func (q *fakeQueue) CountByStatus(context.Context) (map[domain.TaskStatus]int, error) {
	counts := map[domain.TaskStatus]int{}
	for _, t := range q.tasks {
		counts[t.Status]++
	}
	return counts, nil
}

type fakeProjects struct{}

func (fakeProjects) EnsureProject(_ context.Context, key, name string) (*repo.ProjectRecord, error) {
	if name == "" {
		name = key
	}
	return &repo.ProjectRecord{UUID: "uuid-" + key, Key: key, Name: name}, nil
}

type fakeOrgs struct{}

func (fakeOrgs) Ensure(_ context.Context, key string) (*domain.Organization, error) {
	return &domain.Organization{UUID: "uuid-" + key, Key: key}, nil
}

type fakeNotifier struct {
	pending []uuid.UUID
	err     error
}

func (n *fakeNotifier) PublishTaskPending(_ context.Context, task *domain.Task) error {
	n.pending = append(n.pending, task.ID)
	return n.err
}

type fakeSearcher struct{ query string }

func (s *fakeSearcher) Search(_ context.Context, query string, _ int) ([]index.Document, error) {
	s.query = query
	return []index.Document{{Key: "my-project:src/a.go", Qualifier: "FIL", Language: "go", ProjectUUID: "p-1"}}, nil
}

type describedStep struct{}

func (describedStep) Description() string { return "Extract report" }

func (describedStep) Execute(context.Context, *analysis.TaskContext) error { return nil }

// --- helpers ---

type testCLI struct {
	backend  *Backend
	queue    *fakeQueue
	notifier *fakeNotifier
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	jsonMode bool
}

func newTestCLI() *testCLI {
	c := &testCLI{queue: newFakeQueue(), notifier: &fakeNotifier{}}
	c.backend = &Backend{
		Fs:    afero.NewMemMapFs(),
		Tasks: c.queue,
		Submitter: queue.NewSubmitter(queue.Config{
			Tasks:               c.queue,
			Projects:            fakeProjects{},
			Organizations:       fakeOrgs{},
			Notifier:            c.notifier,
			DefaultOrganization: "default-organization",
			Logger:              slog.New(slog.NewTextHandler(io.Discard, nil)),
		}),
	}
	return c
}

func (c *testCLI) run(t *testing.T, newCmd func(BackendFn, func() *Output) *cobra.Command, args ...string) error {
	t.Helper()

	backendFn := func(context.Context) (*Backend, error) { return c.backend, nil }
	outputFn := func() *Output { return NewOutputTo(&c.stdout, &c.stderr, c.jsonMode) }

	cmd := newCmd(backendFn, outputFn)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(context.Background())
}

func (c *testCLI) addTask(status domain.TaskStatus) *domain.Task {
	task := domain.NewReportTask("p-1", "my-project", "o-1", "default-organization", "admin")
	task.Status = status
	c.queue.tasks[task.ID] = task
	return task
}

// --- submit ---

func TestSubmit_Directory(t *testing.T) {
	c := newTestCLI()
	afero.WriteFile(c.backend.Fs, "/reports/r1/metadata.json", []byte(`{"project_key":"my-project"}`), 0o644)
	afero.WriteFile(c.backend.Fs, "/reports/r1/components.json", []byte(`[]`), 0o644)

	if err := c.run(t, NewSubmitCmd, "/reports/r1", "--submitter", "admin"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if len(c.queue.tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(c.queue.tasks))
	}
	for id, task := range c.queue.tasks {
		if task.ComponentKey != "my-project" || task.ComponentUUID != "uuid-my-project" {
			t.Errorf("component = %s/%s", task.ComponentKey, task.ComponentUUID)
		}
		if task.OrganizationKey != "default-organization" {
			t.Errorf("organization = %s", task.OrganizationKey)
		}
		if task.Status != domain.TaskStatusPending || task.SubmitterLogin != "admin" {
			t.Errorf("task = %+v", task)
		}

		zr, err := zip.NewReader(bytes.NewReader(c.queue.archives[id]), int64(len(c.queue.archives[id])))
		if err != nil {
			t.Fatalf("archive is not a zip: %v", err)
		}
		if len(zr.File) != 2 {
			t.Errorf("archive files = %d, want 2", len(zr.File))
		}
	}

	if len(c.notifier.pending) != 1 {
		t.Errorf("notifications = %d, want 1", len(c.notifier.pending))
	}
	if !strings.Contains(c.stderr.String(), "Task submitted") {
		t.Errorf("stderr = %q", c.stderr.String())
	}
}

func TestSubmit_ZipRequiresProjectKey(t *testing.T) {
	c := newTestCLI()
	afero.WriteFile(c.backend.Fs, "/reports/r1.zip", []byte("PK"), 0o644)

	err := c.run(t, NewSubmitCmd, "/reports/r1.zip")
	if !errors.Is(err, queue.ErrProjectKeyRequired) {
		t.Fatalf("err = %v, want ErrProjectKeyRequired", err)
	}

	if err := c.run(t, NewSubmitCmd, "/reports/r1.zip", "--project", "zipped", "--organization", "acme"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	for _, task := range c.queue.tasks {
		if task.ComponentKey != "zipped" || task.OrganizationKey != "acme" {
			t.Errorf("task = %s/%s", task.ComponentKey, task.OrganizationKey)
		}
	}
}

func TestSubmit_NotificationFailureIsWarning(t *testing.T) {
	c := newTestCLI()
	c.notifier.err = errors.New("no amqp channel available")
	afero.WriteFile(c.backend.Fs, "/r.zip", []byte("PK"), 0o644)

	if err := c.run(t, NewSubmitCmd, "/r.zip", "--project", "p"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(c.queue.tasks) != 1 {
		t.Errorf("task must be saved, got %d", len(c.queue.tasks))
	}
	if !strings.Contains(c.stderr.String(), "Warning: task saved, notification failed") {
		t.Errorf("stderr = %q", c.stderr.String())
	}
}

func TestSubmit_MissingPath(t *testing.T) {
	c := newTestCLI()

	if err := c.run(t, NewSubmitCmd, "/nope"); err == nil {
		t.Fatal("expected error for missing report")
	}
}

// --- task ---

func TestTaskList_FilterAndValidation(t *testing.T) {
	c := newTestCLI()
	c.addTask(domain.TaskStatusPending)

	if err := c.run(t, NewTaskCmd, "list", "--status", "RUNNING"); err == nil {
		t.Fatal("expected error for unknown status")
	}

	if err := c.run(t, NewTaskCmd, "list", "--status", "PENDING", "--component", "my-project", "--limit", "5"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if c.queue.filter.Status == nil || *c.queue.filter.Status != domain.TaskStatusPending {
		t.Errorf("status filter = %v", c.queue.filter.Status)
	}
	if c.queue.filter.ComponentKey != "my-project" || c.queue.filter.Limit != 5 {
		t.Errorf("filter = %+v", c.queue.filter)
	}
	if !strings.Contains(c.stdout.String(), "my-project") {
		t.Errorf("stdout = %q", c.stdout.String())
	}
}

func TestTaskShow(t *testing.T) {
	c := newTestCLI()
	task := c.addTask(domain.TaskStatusFailed)
	task.ErrorType = domain.ErrorTypeUser
	task.ErrorMessage = "Organization acme is not allowed to execute project analysis"

	if err := c.run(t, NewTaskCmd, "show", task.ID.String()); err != nil {
		t.Fatalf("show: %v", err)
	}
	out := c.stdout.String()
	if !strings.Contains(out, "[USER] Organization acme is not allowed") {
		t.Errorf("stdout = %q", out)
	}

	if err := c.run(t, NewTaskCmd, "show", "not-a-uuid"); err == nil {
		t.Error("expected error for invalid id")
	}
	if err := c.run(t, NewTaskCmd, "show", uuid.NewString()); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTaskShow_JSON(t *testing.T) {
	c := newTestCLI()
	c.jsonMode = true
	task := c.addTask(domain.TaskStatusPending)

	if err := c.run(t, NewTaskCmd, "show", task.ID.String()); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(c.stdout.String(), `"status": "PENDING"`) {
		t.Errorf("stdout = %q", c.stdout.String())
	}
}

func TestTaskCancel(t *testing.T) {
	c := newTestCLI()
	pending := c.addTask(domain.TaskStatusPending)
	running := c.addTask(domain.TaskStatusInProgress)

	if err := c.run(t, NewTaskCmd, "cancel", pending.ID.String()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if pending.Status != domain.TaskStatusCanceled {
		t.Errorf("status = %s, want CANCELED", pending.Status)
	}

	err := c.run(t, NewTaskCmd, "cancel", running.ID.String())
	if !errors.Is(err, repo.ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}
}

func TestTaskStats(t *testing.T) {
	c := newTestCLI()
	c.addTask(domain.TaskStatusPending)
	c.addTask(domain.TaskStatusPending)
	c.addTask(domain.TaskStatusSuccess)

	if err := c.run(t, NewTaskCmd, "stats"); err != nil {
		t.Fatalf("stats: %v", err)
	}
	out := c.stdout.String()
	pendingAt := strings.Index(out, "PENDING")
	successAt := strings.Index(out, "SUCCESS")
	if pendingAt < 0 || successAt < 0 || pendingAt > successAt {
		t.Errorf("stats not sorted by status: %q", out)
	}
}

// --- catalog / search / migrate ---

func TestCatalog(t *testing.T) {
	c := newTestCLI()
	c.backend.Pipelines = func() (map[domain.TaskType]*pipeline.Executor, error) {
		reg := pipeline.NewRegistry()
		reg.MustRegister(describedStep{})
		reg.Seal()
		e, err := pipeline.Assemble(pipeline.NewCatalog(domain.TaskTypeReport, reflect.TypeOf(describedStep{})), reg)
		if err != nil {
			return nil, err
		}
		return map[domain.TaskType]*pipeline.Executor{domain.TaskTypeReport: e}, nil
	}

	if err := c.run(t, NewCatalogCmd); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if !strings.Contains(c.stdout.String(), "1  Extract report") {
		t.Errorf("stdout = %q", c.stdout.String())
	}

	err := c.run(t, NewCatalogCmd, "--type", "PROJECT_EXPORT")
	if !errors.Is(err, ErrUnknownTaskType) {
		t.Errorf("err = %v, want ErrUnknownTaskType", err)
	}
}

func TestSearch(t *testing.T) {
	c := newTestCLI()
	s := &fakeSearcher{}
	c.backend.Search = func() (Searcher, error) { return s, nil }

	if err := c.run(t, NewSearchCmd, "a.go"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if s.query != "a.go" {
		t.Errorf("query = %q", s.query)
	}
	if !strings.Contains(c.stdout.String(), "my-project:src/a.go") {
		t.Errorf("stdout = %q", c.stdout.String())
	}
}

func TestMigrate(t *testing.T) {
	c := newTestCLI()
	called := false
	c.backend.Migrate = func(context.Context) error {
		called = true
		return nil
	}

	if err := c.run(t, NewMigrateCmd); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !called {
		t.Error("migrate was not called")
	}
}
