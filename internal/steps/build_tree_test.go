package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/report"
)

func TestBuildComponentTree(t *testing.T) {
	store := &fakeComponents{existing: map[string]string{
		testProjectKey + ":src":      "dir-uuid",
		testProjectKey + ":src/a.go": "a-uuid",
	}}
	tc := newTaskContextWithReport(t, defaultReport())
	withMetadata(t, tc, nil)

	if err := NewBuildComponentTreeStep(store).Execute(context.Background(), tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root, err := tc.Tree.Get()
	if err != nil {
		t.Fatal(err)
	}
	if root.UUID != testProjectUUID || root.Key != testProjectKey {
		t.Errorf("root should carry project identity, got %s/%s", root.UUID, root.Key)
	}
	if root.Count() != 4 {
		t.Errorf("expected 4 components, got %d", root.Count())
	}

	dir := root.Children[0]
	if dir.UUID != "dir-uuid" || dir.Parent != root {
		t.Errorf("directory should reuse uuid and link parent, got %+v", dir)
	}

	a, b := dir.Children[0], dir.Children[1]
	if a.UUID != "a-uuid" || a.Status != domain.FileStatusChanged {
		t.Errorf("known file: got uuid %q status %s", a.UUID, a.Status)
	}
	if b.UUID == "" || b.UUID == "a-uuid" || b.Status != domain.FileStatusAdded {
		t.Errorf("new file: got uuid %q status %s", b.UUID, b.Status)
	}
	if b.Key != testProjectKey+":src/b.go" || b.Lines != 50 {
		t.Errorf("unexpected file %+v", b)
	}
}

func TestBuildComponentTree_ReportStatusWins(t *testing.T) {
	rf := defaultReport()
	rf.components[2].Status = "SAME"
	tc := newTaskContextWithReport(t, rf)
	withMetadata(t, tc, nil)

	if err := NewBuildComponentTreeStep(&fakeComponents{}).Execute(context.Background(), tc); err != nil {
		t.Fatal(err)
	}
	root, _ := tc.Tree.Get()
	if got := root.Files()[0].Status; got != domain.FileStatusSame {
		t.Errorf("expected SAME, got %s", got)
	}
}

func TestBuildComponentTree_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		components []report.Component
	}{
		{
			name:       "missing child",
			components: []report.Component{{Ref: 1, Type: "PROJECT", ChildRefs: []int{9}}},
		},
		{
			name: "cycle",
			components: []report.Component{
				{Ref: 1, Type: "PROJECT", ChildRefs: []int{2}},
				{Ref: 2, Type: "DIRECTORY", Path: "d", ChildRefs: []int{1}},
			},
		},
		{
			name:       "missing root",
			components: []report.Component{{Ref: 5, Type: "PROJECT"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf := defaultReport()
			rf.components = tt.components
			tc := newTaskContextWithReport(t, rf)
			withMetadata(t, tc, nil)

			err := NewBuildComponentTreeStep(&fakeComponents{}).Execute(context.Background(), tc)
			if !errors.Is(err, ErrInvalidTree) {
				t.Fatalf("expected ErrInvalidTree, got %v", err)
			}
			if kind := pipeline.KindOf(err); kind != pipeline.KindUser {
				t.Errorf("kind = %s, want user", kind)
			}
			if tc.Tree.IsPresent() {
				t.Error("tree must not be set")
			}
		})
	}
}
