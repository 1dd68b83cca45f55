package steps

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/report"
)

type testEnv struct {
	fs         afero.Fs
	reports    *fakeReports
	components *fakeComponents
	measures   *fakeMeasures
	indexer    *fakeIndexer
	billing    *fakeBilling
	gates      *fakeGates
	rules      fakeRules
}

func newTestEnv() *testEnv {
	return &testEnv{
		fs:         afero.NewMemMapFs(),
		reports:    &fakeReports{archives: map[uuid.UUID][]byte{}},
		components: &fakeComponents{},
		measures:   &fakeMeasures{},
		indexer:    &fakeIndexer{},
		billing:    &fakeBilling{},
		gates:      newGates(),
		rules: fakeRules{
			{Repository: "go", Rule: "S100"}: {Key: domain.RuleKey{Repository: "go", Rule: "S100"}, Status: domain.RuleStatusReady},
		},
	}
}

func (e *testEnv) deps() Dependencies {
	return Dependencies{
		Settings: Settings{
			Fs:                      e.fs,
			WorkDir:                 "/work",
			DefaultOrganizationKey:  testDefaultOrg,
			ShortLivingBranchGateID: domain.ShortLivingBranchGateID,
		},
		Reports:      e.reports,
		Components:   e.components,
		Measures:     e.measures,
		Indexer:      e.indexer,
		Billing:      e.billing,
		QualityGates: e.gates,
		Rules:        e.rules,
	}
}

func (e *testEnv) assemble(t *testing.T) *pipeline.Executor {
	t.Helper()
	reg := pipeline.NewRegistry()
	if err := Provide(reg, e.deps()); err != nil {
		t.Fatalf("provide: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.Seal()

	exec, err := pipeline.Assemble(ReportCatalog(), reg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return exec
}

// upload кладёт отчёт задачи в fakeReports.
func (e *testEnv) upload(t *testing.T, task *domain.Task, rf reportFiles) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name string, v any) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Fatal(err)
		}
	}
	add(report.FileMetadata, rf.metadata)
	add(report.FileComponents, rf.components)
	if rf.activeRules != nil {
		add(report.FileActiveRules, rf.activeRules)
	}
	if rf.duplications != nil {
		add(report.FileDuplications, rf.duplications)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	e.reports.archives[task.ID] = buf.Bytes()
}

func TestReportCatalog_Order(t *testing.T) {
	exec := newTestEnv().assemble(t)

	want := []string{
		"Extract report",
		"Load analysis metadata",
		"Verify billing",
		"Build tree of components",
		"Load quality profiles",
		"Load Quality gate",
		"Compute duplication measures",
		"Persist components",
		"Persist measures",
		"Index analysis",
		"Publish task results",
	}
	if got := exec.Descriptions(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected catalog order:\n got %v\nwant %v", got, want)
	}
	if exec.TaskType() != domain.TaskTypeReport {
		t.Errorf("unexpected task type %s", exec.TaskType())
	}
}

func TestReportPipeline_EndToEnd(t *testing.T) {
	env := newTestEnv()
	exec := env.assemble(t)

	task := newTask()
	rf := duplicationReport()
	rf.activeRules = []report.ActiveRule{{RuleRepository: "go", RuleKey: "S100", Severity: "MAJOR"}}
	rf.metadata.Properties = map[string]string{domain.PropertyQualityGate: "7"}
	env.upload(t, task, rf)

	tc := analysis.NewTaskContext(task, nil)
	defer tc.Close()

	if err := exec.Execute(context.Background(), tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := tc.Result.Get()
	if err != nil {
		t.Fatalf("result should be published: %v", err)
	}
	if result.ProjectKey != testProjectKey || result.Components != 4 || result.ActiveRules != 1 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.QualityGateID != 7 || result.QualityGateName != "Strict" {
		t.Errorf("unexpected gate in result %+v", result)
	}
	if !strings.Contains(result.Summary, "16.0% duplicated lines") {
		t.Errorf("unexpected summary %q", result.Summary)
	}

	if env.components.calls != 1 || env.components.upserted == nil {
		t.Error("components should be persisted once")
	}
	if env.measures.saved[testProjectKey].DuplicatedLines != 24 {
		t.Errorf("unexpected saved measures %v", env.measures.saved)
	}
	if env.measures.lastCalls != 0 {
		t.Error("full analysis must not read previous measures")
	}
	if !reflect.DeepEqual(env.indexer.indexed, []string{testProjectUUID}) {
		t.Errorf("unexpected indexed projects %v", env.indexer.indexed)
	}
}

func TestReportPipeline_BillingDenialStopsPipeline(t *testing.T) {
	env := newTestEnv()
	env.billing.err = errors.New("Organization acme is not allowed to analyze projects")
	exec := env.assemble(t)

	task := newTask()
	env.upload(t, task, defaultReport())
	tc := analysis.NewTaskContext(task, nil)
	defer tc.Close()

	err := exec.Execute(context.Background(), tc)
	if pipeline.KindOf(err) != pipeline.KindUser {
		t.Fatalf("expected user error, got %v", err)
	}
	if err.Error() != "Organization acme is not allowed to analyze projects" {
		t.Errorf("unexpected message %q", err)
	}
	if tc.Tree.IsPresent() || env.components.calls != 0 || len(env.indexer.indexed) != 0 {
		t.Error("no step after billing may run")
	}
}

func TestReportPipeline_CloseRemovesWorkDir(t *testing.T) {
	env := newTestEnv()
	exec := env.assemble(t)

	task := newTask()
	env.upload(t, task, defaultReport())
	tc := analysis.NewTaskContext(task, nil)

	if err := exec.Execute(context.Background(), tc); err != nil {
		t.Fatal(err)
	}
	dir, _ := tc.ReportDir.Get()
	if err := tc.Close(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := afero.DirExists(env.fs, dir.Path); ok {
		t.Error("work dir should be removed")
	}
}

func TestRegister_MissingDependencyNamesType(t *testing.T) {
	deps := newTestEnv().deps()
	deps.Indexer = nil

	reg := pipeline.NewRegistry()
	if err := Provide(reg, deps); err != nil {
		t.Fatal(err)
	}

	err := Register(reg)
	if !errors.Is(err, pipeline.ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "steps.ProjectIndexer") {
		t.Errorf("error should name the missing type, got %q", err)
	}
}

func TestAssemble_MissingStepFailsBeforeAnyStep(t *testing.T) {
	env := newTestEnv()
	reg := pipeline.NewRegistry()
	reg.MustRegister(NewExtractReportStep(env.reports, env.fs, "/work"))

	_, err := pipeline.Assemble(ReportCatalog(), reg)
	if !errors.Is(err, pipeline.ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "*steps.LoadReportMetadataStep") {
		t.Errorf("error should name the first missing step, got %q", err)
	}
}
