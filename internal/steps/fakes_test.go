package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/report"
	"github.com/shaiso/Analyzer/internal/repo"
)

const (
	testProjectUUID = "5b9c3f6e-0000-4000-8000-000000000001"
	testProjectKey  = "org.acme:app"
	testOrgUUID     = "org-uuid"
	testOrgKey      = "acme"
	testDefaultOrg  = "default-organization"
)

// fakeReports отдаёт архивы по id задачи.
type fakeReports struct {
	archives map[uuid.UUID][]byte
	err      error
}

func (f *fakeReports) OpenReport(_ context.Context, taskID uuid.UUID) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.archives[taskID]
	if !ok {
		return nil, fmt.Errorf("task input %s: %w", taskID, repo.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeComponents struct {
	existing map[string]string
	upserted *domain.Component
	calls    int
}

func (f *fakeComponents) UUIDsByProject(context.Context, string) (map[string]string, error) {
	if f.existing == nil {
		return map[string]string{}, nil
	}
	return f.existing, nil
}

func (f *fakeComponents) Upsert(_ context.Context, _ string, root *domain.Component) error {
	f.calls++
	f.upserted = root
	return nil
}

type fakeMeasures struct {
	previous  domain.DuplicationMeasures
	saved     domain.DuplicationMeasures
	lastCalls int
}

func (f *fakeMeasures) LastDuplications(context.Context, string) (domain.DuplicationMeasures, error) {
	f.lastCalls++
	return f.previous, nil
}

func (f *fakeMeasures) SaveDuplications(_ context.Context, _ *domain.AnalysisMetadata, _ *domain.Component, m domain.DuplicationMeasures) error {
	f.saved = m
	return nil
}

type fakeIndexer struct {
	indexed []string
}

func (f *fakeIndexer) Index(_ context.Context, projectUUID string) error {
	f.indexed = append(f.indexed, projectUUID)
	return nil
}

type fakeBilling struct {
	err  error
	seen []domain.Organization
}

func (f *fakeBilling) CheckOnProjectAnalysis(_ context.Context, org domain.Organization) error {
	f.seen = append(f.seen, org)
	return f.err
}

type fakeGates struct {
	byID     map[int64]*domain.QualityGate
	def      *domain.QualityGate
	idCalls  []int64
	defCalls int
}

func (f *fakeGates) FindByID(_ context.Context, id int64) (*domain.QualityGate, bool, error) {
	f.idCalls = append(f.idCalls, id)
	g, ok := f.byID[id]
	return g, ok, nil
}

func (f *fakeGates) FindDefault(context.Context, domain.Organization) (*domain.QualityGate, error) {
	f.defCalls++
	if f.def == nil {
		return nil, errors.New("no default gate")
	}
	return f.def, nil
}

type fakeRules map[domain.RuleKey]domain.Rule

func (f fakeRules) FindByKey(key domain.RuleKey) (domain.Rule, bool) {
	r, ok := f[key]
	return r, ok
}

// reportFiles - содержимое отчёта для тестов.
type reportFiles struct {
	metadata     report.Metadata
	components   []report.Component
	activeRules  []report.ActiveRule
	duplications []report.Duplication
}

func defaultReport() reportFiles {
	return reportFiles{
		metadata: report.Metadata{
			ProjectKey:       testProjectKey,
			OrganizationKey:  testOrgKey,
			RootComponentRef: 1,
		},
		components: []report.Component{
			{Ref: 1, Type: "PROJECT", Name: "App", ChildRefs: []int{2}},
			{Ref: 2, Type: "DIRECTORY", Path: "src", ChildRefs: []int{3, 4}},
			{Ref: 3, Type: "FILE", Path: "src/a.go", Language: "go", Lines: 100},
			{Ref: 4, Type: "FILE", Path: "src/b.go", Language: "go", Lines: 50},
		},
	}
}

func writeJSON(t *testing.T, fsys afero.Fs, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeReport пишет отчёт в dir на fsys.
func writeReport(t *testing.T, fsys afero.Fs, dir string, rf reportFiles) {
	t.Helper()
	writeJSON(t, fsys, filepath.Join(dir, report.FileMetadata), rf.metadata)
	writeJSON(t, fsys, filepath.Join(dir, report.FileComponents), rf.components)
	if rf.activeRules != nil {
		writeJSON(t, fsys, filepath.Join(dir, report.FileActiveRules), rf.activeRules)
	}
	if rf.duplications != nil {
		writeJSON(t, fsys, filepath.Join(dir, report.FileDuplications), rf.duplications)
	}
}

func newTask() *domain.Task {
	return domain.NewReportTask(testProjectUUID, testProjectKey, testOrgUUID, testOrgKey, "jdoe")
}

// newTaskContextWithReport создаёт контекст с уже распакованным отчётом.
func newTaskContextWithReport(t *testing.T, rf reportFiles) *analysis.TaskContext {
	t.Helper()
	fsys := afero.NewMemMapFs()
	writeReport(t, fsys, "/work/r", rf)

	tc := analysis.NewTaskContext(newTask(), nil)
	if err := tc.ReportDir.Set(report.NewDir(fsys, "/work/r")); err != nil {
		t.Fatal(err)
	}
	return tc
}

// withMetadata заполняет метаданные в обход шага загрузки.
func withMetadata(t *testing.T, tc *analysis.TaskContext, mutate func(*domain.AnalysisMetadata)) *domain.AnalysisMetadata {
	t.Helper()
	md := &domain.AnalysisMetadata{
		AnalysisUUID:     "analysis-1",
		RootComponentRef: 1,
		Project:          domain.Project{UUID: testProjectUUID, Key: testProjectKey, Name: testProjectKey},
		Organization:     domain.Organization{UUID: testOrgUUID, Key: testOrgKey},
		Branch:           domain.Branch{Name: "master", Type: domain.BranchTypeLong, IsMain: true},
		Properties:       map[string]string{},
	}
	if mutate != nil {
		mutate(md)
	}
	if err := tc.Metadata.Set(md); err != nil {
		t.Fatal(err)
	}
	return md
}
