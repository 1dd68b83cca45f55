package steps

import (
	"context"

	"github.com/google/uuid"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/pipeline"
	"github.com/shaiso/Analyzer/internal/report"
)

// LoadReportMetadataStep читает metadata.json, сверяет его с задачей и
// заполняет AnalysisMetadata. Единственный шаг, который пишет метаданные.
type LoadReportMetadataStep struct {
	defaultOrgKey string
}

// NewLoadReportMetadataStep создаёт шаг. defaultOrgKey - организация,
// в которую можно загружать отчёты без ключа организации.
func NewLoadReportMetadataStep(defaultOrgKey string) *LoadReportMetadataStep {
	return &LoadReportMetadataStep{defaultOrgKey: defaultOrgKey}
}

// Description возвращает описание шага.
func (s *LoadReportMetadataStep) Description() string {
	return "Load analysis metadata"
}

// Execute выполняет шаг.
func (s *LoadReportMetadataStep) Execute(_ context.Context, tc *analysis.TaskContext) error {
	dir, err := tc.ReportDir.Get()
	if err != nil {
		return err
	}

	rm, err := dir.ReadMetadata()
	if err != nil {
		return reportContentError(err)
	}

	if err := s.checkTask(tc.Task.ComponentKey, tc.Task.ComponentUUID, rm.ProjectKey); err != nil {
		return err
	}
	if err := s.checkOrganization(tc.Task.OrganizationKey, rm.OrganizationKey); err != nil {
		return err
	}

	md := &domain.AnalysisMetadata{
		AnalysisUUID:     uuid.NewString(),
		AnalysisDate:     rm.AnalysisDate,
		RootComponentRef: rm.RootComponentRef,
		Project: domain.Project{
			UUID: tc.Task.ComponentUUID,
			Key:  rm.ProjectKey,
			Name: rm.ProjectKey,
		},
		Organization: domain.Organization{
			UUID: tc.Task.OrganizationUUID,
			Key:  tc.Task.OrganizationKey,
		},
		Branch:                  toBranch(rm),
		Incremental:             rm.Incremental,
		CrossProjectDuplication: rm.CrossProjectDuplication,
		QProfiles:               toQProfiles(rm.QProfiles),
		Plugins:                 toPlugins(rm.Plugins),
		Properties:              rm.Properties,
	}
	if md.Properties == nil {
		md.Properties = map[string]string{}
	}

	tc.Logger.Info("analysis metadata loaded",
		"project_key", md.Project.Key,
		"analysis_uuid", md.AnalysisUUID,
		"mode", md.Mode().String(),
		"branch", md.Branch.Name,
	)

	return tc.Metadata.Set(md)
}

func (s *LoadReportMetadataStep) checkTask(componentKey, componentUUID, reportProjectKey string) error {
	if componentKey == "" {
		return pipeline.NewUserError(
			"Compute Engine task component key is null. Project with UUID %s must have been deleted since report was uploaded. Can not proceed.",
			componentUUID)
	}
	if componentKey != reportProjectKey {
		return pipeline.NewUserError(
			"ProjectKey in report (%s) is not consistent with projectKey under which the report has been submitted (%s)",
			reportProjectKey, componentKey)
	}
	return nil
}

func (s *LoadReportMetadataStep) checkOrganization(taskOrgKey, reportOrgKey string) error {
	if reportOrgKey == "" {
		if taskOrgKey != s.defaultOrgKey {
			return pipeline.NewUserError(
				"Report does not specify an OrganizationKey but it has been submitted to another organization (%s) than the default one (%s)",
				taskOrgKey, s.defaultOrgKey)
		}
		return nil
	}
	if reportOrgKey != taskOrgKey {
		return pipeline.NewUserError(
			"OrganizationKey in report (%s) is not consistent with organizationKey under which the report as been submitted (%s)",
			reportOrgKey, taskOrgKey)
	}
	return nil
}

func toBranch(rm *report.Metadata) domain.Branch {
	if rm.BranchName == "" {
		return domain.Branch{Name: "master", Type: domain.BranchTypeLong, IsMain: true}
	}
	typ := domain.BranchTypeLong
	if domain.BranchType(rm.BranchType) == domain.BranchTypeShort {
		typ = domain.BranchTypeShort
	}
	return domain.Branch{Name: rm.BranchName, Type: typ}
}

func toQProfiles(in map[string]report.QProfile) map[string]domain.QProfile {
	out := make(map[string]domain.QProfile, len(in))
	for lang, qp := range in {
		out[lang] = domain.QProfile{
			Key:      qp.Key,
			Name:     qp.Name,
			Language: qp.Language,
			RulesAt:  qp.RulesUpdatedAt,
		}
	}
	return out
}

func toPlugins(in map[string]report.Plugin) map[string]domain.Plugin {
	out := make(map[string]domain.Plugin, len(in))
	for key, p := range in {
		out[key] = domain.Plugin{
			Key:           p.Key,
			BasePluginKey: p.BasePluginKey,
			UpdatedAt:     p.UpdatedAt,
		}
	}
	return out
}
