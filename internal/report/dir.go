package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// Dir - распакованный отчёт на файловой системе.
type Dir struct {
	Fs   afero.Fs
	Path string
}

// NewDir создаёт Dir.
func NewDir(fsys afero.Fs, path string) Dir {
	return Dir{Fs: fsys, Path: path}
}

// Has проверяет наличие файла в отчёте.
func (d Dir) Has(name string) bool {
	ok, err := afero.Exists(d.Fs, filepath.Join(d.Path, name))
	return err == nil && ok
}

// ReadMetadata читает metadata.json.
func (d Dir) ReadMetadata() (*Metadata, error) {
	var md Metadata
	if err := d.readJSON(FileMetadata, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// ReadComponents читает components.json.
func (d Dir) ReadComponents() ([]Component, error) {
	var components []Component
	if err := d.readJSON(FileComponents, &components); err != nil {
		return nil, err
	}
	return components, nil
}

// ReadActiveRules читает active_rules.json. Отсутствие файла означает пустой список.
func (d Dir) ReadActiveRules() ([]ActiveRule, error) {
	var rules []ActiveRule
	if err := d.readJSON(FileActiveRules, &rules); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rules, nil
}

// ReadDuplications читает duplications.json. Отсутствие файла означает отсутствие дублирования.
func (d Dir) ReadDuplications() ([]Duplication, error) {
	var dups []Duplication
	if err := d.readJSON(FileDuplications, &dups); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dups, nil
}

// Remove удаляет рабочую директорию отчёта.
func (d Dir) Remove() error {
	if d.Fs == nil || d.Path == "" {
		return nil
	}
	return d.Fs.RemoveAll(d.Path)
}

func (d Dir) readJSON(name string, v any) error {
	data, err := afero.ReadFile(d.Fs, filepath.Join(d.Path, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	return nil
}
