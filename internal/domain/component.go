package domain

// ComponentType - уровень компонента в дереве.
type ComponentType string

const (
	ComponentTypeProject   ComponentType = "PROJECT"
	ComponentTypeModule    ComponentType = "MODULE"
	ComponentTypeDirectory ComponentType = "DIRECTORY"
	ComponentTypeFile      ComponentType = "FILE"
)

// FileStatus - состояние файла относительно предыдущего анализа.
type FileStatus string

const (
	FileStatusSame    FileStatus = "SAME"
	FileStatusChanged FileStatus = "CHANGED"
	FileStatusAdded   FileStatus = "ADDED"
)

// Component - узел дерева компонентов (проект → модули → директории → файлы).
//
// Структура дерева не меняется после шага построения дерева;
// атрибуты узлов (UUID и т.п.) могут заполняться позже.
type Component struct {
	Ref      int
	UUID     string
	Key      string
	Name     string
	Type     ComponentType
	Path     string
	Language string
	Lines    int
	Status   FileStatus

	Parent   *Component
	Children []*Component
}

// IsFile возвращает true для файлов.
func (c *Component) IsFile() bool {
	return c.Type == ComponentTypeFile
}

// Walk обходит поддерево в pre-order. fn возвращает false, чтобы не спускаться в детей.
func (c *Component) Walk(fn func(*Component) bool) {
	if !fn(c) {
		return
	}
	for _, child := range c.Children {
		child.Walk(fn)
	}
}

// WalkPostOrder обходит поддерево так, что дети посещаются раньше родителя.
func (c *Component) WalkPostOrder(fn func(*Component)) {
	for _, child := range c.Children {
		child.WalkPostOrder(fn)
	}
	fn(c)
}

// Files возвращает все файлы поддерева.
func (c *Component) Files() []*Component {
	var files []*Component
	c.Walk(func(n *Component) bool {
		if n.IsFile() {
			files = append(files, n)
		}
		return true
	})
	return files
}

// Count возвращает количество узлов поддерева.
func (c *Component) Count() int {
	n := 0
	c.Walk(func(*Component) bool {
		n++
		return true
	})
	return n
}
