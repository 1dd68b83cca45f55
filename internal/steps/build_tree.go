package steps

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/Analyzer/internal/analysis"
	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/report"
)

// BuildComponentTreeStep строит дерево компонентов из components.json.
//
// Компоненты, ключи которых уже известны проекту, получают прежний UUID,
// новые - свежий. Корень всегда получает UUID проекта из задачи.
type BuildComponentTreeStep struct {
	store ComponentStore
}

// NewBuildComponentTreeStep создаёт шаг.
func NewBuildComponentTreeStep(store ComponentStore) *BuildComponentTreeStep {
	return &BuildComponentTreeStep{store: store}
}

// Description возвращает описание шага.
func (s *BuildComponentTreeStep) Description() string {
	return "Build tree of components"
}

// Execute выполняет шаг.
func (s *BuildComponentTreeStep) Execute(ctx context.Context, tc *analysis.TaskContext) error {
	dir, err := tc.ReportDir.Get()
	if err != nil {
		return err
	}
	md, err := tc.Metadata.Get()
	if err != nil {
		return err
	}

	components, err := dir.ReadComponents()
	if err != nil {
		return reportContentError(err)
	}

	existing, err := s.store.UUIDsByProject(ctx, md.Project.UUID)
	if err != nil {
		return fmt.Errorf("load component uuids: %w", err)
	}

	b := treeBuilder{
		byRef:      make(map[int]report.Component, len(components)),
		visited:    make(map[int]bool, len(components)),
		existing:   existing,
		projectKey: md.Project.Key,
	}
	for _, c := range components {
		b.byRef[c.Ref] = c
	}

	root, err := b.build(md.RootComponentRef, nil)
	if err != nil {
		return reportContentError(err)
	}
	root.UUID = md.Project.UUID
	root.Key = md.Project.Key
	if root.Name == "" {
		root.Name = md.Project.Name
	}

	tc.Logger.Debug("component tree built",
		"components", root.Count(),
		"files", len(root.Files()),
		"known", len(existing),
	)

	return tc.Tree.Set(root)
}

type treeBuilder struct {
	byRef      map[int]report.Component
	visited    map[int]bool
	existing   map[string]string
	projectKey string
}

func (b *treeBuilder) build(ref int, parent *domain.Component) (*domain.Component, error) {
	rc, ok := b.byRef[ref]
	if !ok {
		return nil, fmt.Errorf("%w: component ref %d not found in report", ErrInvalidTree, ref)
	}
	if b.visited[ref] {
		return nil, fmt.Errorf("%w: component ref %d referenced twice", ErrInvalidTree, ref)
	}
	b.visited[ref] = true

	node := &domain.Component{
		Ref:      rc.Ref,
		Key:      b.keyOf(rc),
		Name:     rc.Name,
		Type:     domain.ComponentType(rc.Type),
		Path:     rc.Path,
		Language: rc.Language,
		Lines:    rc.Lines,
		Parent:   parent,
	}
	if node.Name == "" {
		node.Name = rc.Path
	}

	prev, known := b.existing[node.Key]
	if known {
		node.UUID = prev
	} else {
		node.UUID = uuid.NewString()
	}

	if node.IsFile() {
		node.Status = fileStatus(rc.Status, known)
	}

	for _, childRef := range rc.ChildRefs {
		child, err := b.build(childRef, node)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

func (b *treeBuilder) keyOf(rc report.Component) string {
	if rc.Key != "" {
		return rc.Key
	}
	if rc.Path == "" {
		return b.projectKey
	}
	return b.projectKey + ":" + rc.Path
}

func fileStatus(s string, known bool) domain.FileStatus {
	switch domain.FileStatus(s) {
	case domain.FileStatusSame, domain.FileStatusChanged, domain.FileStatusAdded:
		return domain.FileStatus(s)
	}
	if known {
		return domain.FileStatusChanged
	}
	return domain.FileStatusAdded
}
