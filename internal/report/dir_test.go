package report

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestDir_ReadMetadata(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/r/metadata.json", []byte(`{
		"analysis_date": "2024-03-01T10:00:00Z",
		"project_key": "org.acme:app",
		"branch_type": "SHORT",
		"root_component_ref": 1,
		"incremental": true,
		"properties": {"sonar.qualitygate": "7"}
	}`), 0o644)

	md, err := NewDir(fsys, "/r").ReadMetadata()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.ProjectKey != "org.acme:app" {
		t.Errorf("expected project key, got %q", md.ProjectKey)
	}
	if !md.Incremental {
		t.Error("expected incremental=true")
	}
	if md.RootComponentRef != 1 {
		t.Errorf("expected root ref 1, got %d", md.RootComponentRef)
	}
	if md.Properties["sonar.qualitygate"] != "7" {
		t.Errorf("expected property, got %v", md.Properties)
	}
}

func TestDir_MissingMetadata(t *testing.T) {
	_, err := NewDir(afero.NewMemMapFs(), "/r").ReadMetadata()
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestDir_MalformedComponents(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/r/components.json", []byte(`{not json`), 0o644)

	_, err := NewDir(fsys, "/r").ReadComponents()
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDir_OptionalFiles(t *testing.T) {
	dir := NewDir(afero.NewMemMapFs(), "/r")

	rules, err := dir.ReadActiveRules()
	if err != nil || rules != nil {
		t.Errorf("missing active_rules.json should be empty, got %v, %v", rules, err)
	}

	dups, err := dir.ReadDuplications()
	if err != nil || dups != nil {
		t.Errorf("missing duplications.json should be empty, got %v, %v", dups, err)
	}
}

func TestDir_Remove(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/r/metadata.json", []byte(`{}`), 0o644)

	if err := NewDir(fsys, "/r").Remove(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := afero.DirExists(fsys, "/r"); ok {
		t.Error("directory should be removed")
	}

	// Пустой Dir не падает
	if err := (Dir{}).Remove(); err != nil {
		t.Errorf("empty Dir remove: %v", err)
	}
}
