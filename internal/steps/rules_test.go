package steps

import (
	"context"
	"reflect"
	"testing"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/report"
)

func TestLoadActiveRules(t *testing.T) {
	repoRules := fakeRules{
		{Repository: "go", Rule: "S100"}: {Key: domain.RuleKey{Repository: "go", Rule: "S100"}, Status: domain.RuleStatusReady, PluginKey: "golang"},
		{Repository: "go", Rule: "S200"}: {Key: domain.RuleKey{Repository: "go", Rule: "S200"}, Status: domain.RuleStatusBeta, PluginKey: "golang"},
		{Repository: "go", Rule: "OLD"}:  {Key: domain.RuleKey{Repository: "go", Rule: "OLD"}, Status: domain.RuleStatusRemoved, PluginKey: "golang"},
	}

	rf := defaultReport()
	rf.activeRules = []report.ActiveRule{
		{RuleRepository: "go", RuleKey: "S100", Severity: "MAJOR", Params: map[string]string{"max": "10", "format": "^[a-z]+$"}},
		{RuleRepository: "go", RuleKey: "S200", Severity: "MINOR"},
		{RuleRepository: "go", RuleKey: "OLD", Severity: "MAJOR"},
		{RuleRepository: "go", RuleKey: "UNKNOWN", Severity: "MAJOR"},
	}
	tc := newTaskContextWithReport(t, rf)

	if err := NewLoadActiveRulesStep(repoRules).Execute(context.Background(), tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set, err := tc.ActiveRules.Get()
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 active rules, got %d: %v", len(set), set)
	}

	if _, ok := set.Get(domain.RuleKey{Repository: "go", Rule: "OLD"}); ok {
		t.Error("removed rule must be excluded")
	}
	if _, ok := set.Get(domain.RuleKey{Repository: "go", Rule: "UNKNOWN"}); ok {
		t.Error("unknown rule must be excluded")
	}

	withParams, _ := set.Get(domain.RuleKey{Repository: "go", Rule: "S100"})
	want := map[string]string{"max": "10", "format": "^[a-z]+$"}
	if !reflect.DeepEqual(withParams.Params, want) {
		t.Errorf("params should be preserved exactly, got %v", withParams.Params)
	}
	if withParams.PluginKey != "golang" || withParams.Severity != "MAJOR" {
		t.Errorf("unexpected active rule %+v", withParams)
	}

	noParams, _ := set.Get(domain.RuleKey{Repository: "go", Rule: "S200"})
	if noParams.Params == nil || len(noParams.Params) != 0 {
		t.Errorf("expected empty non-nil params, got %#v", noParams.Params)
	}
}

func TestLoadActiveRules_NoFile(t *testing.T) {
	tc := newTaskContextWithReport(t, defaultReport())

	if err := NewLoadActiveRulesStep(fakeRules{}).Execute(context.Background(), tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set, _ := tc.ActiveRules.Get()
	if len(set) != 0 {
		t.Errorf("expected empty set, got %v", set)
	}
}
