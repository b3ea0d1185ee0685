package aspect

import "slices"

// Module is a named collection of classes that can be woven together.
type Module struct {
	name    string
	classes []*Class
}

// NewModule creates a module holding classes.
func NewModule(name string, classes ...*Class) *Module {
	m := &Module{name: name}
	return m.Add(classes...)
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Add appends classes to the module, skipping nil and already present ones.
func (m *Module) Add(classes ...*Class) *Module {
	for _, class := range classes {
		if class == nil || slices.Contains(m.classes, class) {
			continue
		}
		m.classes = append(m.classes, class)
	}

	return m
}

// Classes returns the member classes in insertion order.
func (m *Module) Classes() []*Class {
	return slices.Clone(m.classes)
}
