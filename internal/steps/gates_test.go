package steps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/pipeline"
)

func newGates() *fakeGates {
	return &fakeGates{
		byID: map[int64]*domain.QualityGate{
			domain.ShortLivingBranchGateID: {ID: domain.ShortLivingBranchGateID, Name: "Short-living branches"},
			7: {ID: 7, Name: "Strict"},
		},
		def: &domain.QualityGate{ID: 1, Name: "Sonar way"},
	}
}

func newGateContext(t *testing.T, mutate func(*domain.AnalysisMetadata)) *analysis.TaskContext {
	tc := analysis.NewTaskContext(newTask(), nil)
	withMetadata(t, tc, mutate)
	return tc
}

func TestLoadQualityGate_ShortLivingBranchIgnoresProperty(t *testing.T) {
	gates := newGates()
	tc := newGateContext(t, func(md *domain.AnalysisMetadata) {
		md.Branch = domain.Branch{Name: "feature", Type: domain.BranchTypeShort}
		md.Properties[domain.PropertyQualityGate] = "7"
	})

	step := NewLoadQualityGateStep(gates, domain.ShortLivingBranchGateID)
	if err := step.Execute(context.Background(), tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gate, _ := tc.QualityGate.Get()
	if gate != gates.byID[domain.ShortLivingBranchGateID] {
		t.Errorf("expected short-living branch gate, got %+v", gate)
	}
	if len(gates.idCalls) != 1 || gates.idCalls[0] != domain.ShortLivingBranchGateID {
		t.Errorf("expected lookup by fixed id only, got %v", gates.idCalls)
	}
}

func TestLoadQualityGate_MalformedProperty(t *testing.T) {
	tc := newGateContext(t, func(md *domain.AnalysisMetadata) {
		md.Properties[domain.PropertyQualityGate] = "abc"
	})

	err := NewLoadQualityGateStep(newGates(), domain.ShortLivingBranchGateID).Execute(context.Background(), tc)
	if !errors.Is(err, ErrMalformedProperty) {
		t.Fatalf("expected ErrMalformedProperty, got %v", err)
	}
	if pipeline.KindOf(err) != pipeline.KindDefect {
		t.Errorf("malformed property is a defect, got %v", pipeline.KindOf(err))
	}
	if !strings.Contains(err.Error(), "Unsupported value (abc) in property sonar.qualitygate") {
		t.Errorf("message should name property and value, got %q", err)
	}
	if tc.QualityGate.IsPresent() {
		t.Error("gate must not be set")
	}
}

func TestLoadQualityGate_NoPropertyUsesDefault(t *testing.T) {
	for _, value := range []string{"", "   "} {
		gates := newGates()
		tc := newGateContext(t, func(md *domain.AnalysisMetadata) {
			if value != "" {
				md.Properties[domain.PropertyQualityGate] = value
			}
		})

		if err := NewLoadQualityGateStep(gates, domain.ShortLivingBranchGateID).Execute(context.Background(), tc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		gate, _ := tc.QualityGate.Get()
		if gate != gates.def {
			t.Errorf("value %q: expected default gate, got %+v", value, gate)
		}
		if len(gates.idCalls) != 0 {
			t.Errorf("value %q: no id lookup expected, got %v", value, gates.idCalls)
		}
	}
}

func TestLoadQualityGate_ValidProperty(t *testing.T) {
	gates := newGates()
	tc := newGateContext(t, func(md *domain.AnalysisMetadata) {
		md.Properties[domain.PropertyQualityGate] = "7"
	})

	if err := NewLoadQualityGateStep(gates, domain.ShortLivingBranchGateID).Execute(context.Background(), tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gate, _ := tc.QualityGate.Get()
	if gate != gates.byID[7] {
		t.Errorf("expected the exact gate instance, got %+v", gate)
	}
}

func TestLoadQualityGate_UnknownIDFallsBackToDefault(t *testing.T) {
	gates := newGates()
	tc := newGateContext(t, func(md *domain.AnalysisMetadata) {
		md.Properties[domain.PropertyQualityGate] = "99"
	})

	if err := NewLoadQualityGateStep(gates, domain.ShortLivingBranchGateID).Execute(context.Background(), tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gate, _ := tc.QualityGate.Get()
	if gate != gates.def {
		t.Errorf("expected default gate, got %+v", gate)
	}
}

func TestLoadQualityGate_ShortLivingGateMissing(t *testing.T) {
	gates := newGates()
	delete(gates.byID, domain.ShortLivingBranchGateID)
	tc := newGateContext(t, func(md *domain.AnalysisMetadata) {
		md.Branch.Type = domain.BranchTypeShort
	})

	err := NewLoadQualityGateStep(gates, domain.ShortLivingBranchGateID).Execute(context.Background(), tc)
	if !errors.Is(err, ErrGateNotFound) {
		t.Fatalf("expected ErrGateNotFound, got %v", err)
	}
}

func TestVerifyBilling_FailureMessageVerbatim(t *testing.T) {
	billing := &fakeBilling{err: errors.New("This organization cannot execute project analysis")}
	tc := analysis.NewTaskContext(newTask(), nil)
	withMetadata(t, tc, nil)

	err := NewVerifyBillingStep(billing).Execute(context.Background(), tc)
	if pipeline.KindOf(err) != pipeline.KindUser {
		t.Fatalf("expected user error, got %v", err)
	}
	if err.Error() != "This organization cannot execute project analysis" {
		t.Errorf("message should be verbatim, got %q", err.Error())
	}
}

func TestVerifyBilling_SuccessKeepsTaskOrganization(t *testing.T) {
	rf := defaultReport()
	tc := newTaskContextWithReport(t, rf)
	billing := &fakeBilling{}

	if err := NewLoadReportMetadataStep(testDefaultOrg).Execute(context.Background(), tc); err != nil {
		t.Fatal(err)
	}
	if err := NewVerifyBillingStep(billing).Execute(context.Background(), tc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	md, _ := tc.Metadata.Get()
	if md.Organization.Key != tc.Task.OrganizationKey {
		t.Errorf("expected organization %q, got %q", tc.Task.OrganizationKey, md.Organization.Key)
	}
	if len(billing.seen) != 1 || billing.seen[0].Key != testOrgKey {
		t.Errorf("validator should see the task organization, got %v", billing.seen)
	}
}

func TestVerifyBilling_MetadataNotLoaded(t *testing.T) {
	err := NewVerifyBillingStep(&fakeBilling{}).Execute(context.Background(), analysis.NewTaskContext(newTask(), nil))
	if pipeline.KindOf(err) != pipeline.KindDefect {
		t.Fatalf("expected defect for empty holder, got %v", err)
	}
}
