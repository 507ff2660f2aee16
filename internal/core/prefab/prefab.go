package prefab

import (
	"slices"

	"github.com/zeusync/sectors/internal/core/models"
)

// Prefab is a named template listing a default component set.
// A prefab is immutable once registered; Components hands out clones.
type Prefab struct {
	name       string
	parent     string
	persisted  bool
	order      []models.ComponentKind
	components map[models.ComponentKind]models.Component
}

// New builds a persisted prefab without a parent. Later components replace
// earlier ones of the same kind.
func New(name string, components ...models.Component) *Prefab {
	p := &Prefab{
		name:       name,
		persisted:  true,
		components: make(map[models.ComponentKind]models.Component, len(components)),
	}
	for _, c := range components {
		p.set(c)
	}
	return p
}

func (p *Prefab) set(c models.Component) {
	if c == nil {
		return
	}
	kind := c.Kind()
	if _, ok := p.components[kind]; !ok {
		p.order = append(p.order, kind)
	}
	p.components[kind] = c
}

func (p *Prefab) Name() string { return p.name }

// Parent is the name of the prefab this one inherits from, empty if none.
func (p *Prefab) Parent() string { return p.parent }

// Persisted reports whether entities built from the prefab should be saved with the world.
func (p *Prefab) Persisted() bool { return p.persisted }

func (p *Prefab) HasComponent(kind models.ComponentKind) bool {
	_, ok := p.components[kind]
	return ok
}

// Component returns a clone of the prefab's component of kind.
func (p *Prefab) Component(kind models.ComponentKind) (models.Component, bool) {
	c, ok := p.components[kind]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Components returns clones of every component in declaration order.
func (p *Prefab) Components() []models.Component {
	out := make([]models.Component, 0, len(p.order))
	for _, kind := range p.order {
		out = append(out, p.components[kind].Clone())
	}
	return out
}

// Kinds returns the component kinds in declaration order.
func (p *Prefab) Kinds() []models.ComponentKind {
	return slices.Clone(p.order)
}

// derive builds a child of p: the parent's components first, then the child's overrides.
func (p *Prefab) derive(name string, persisted bool, components []models.Component) *Prefab {
	child := New(name)
	child.parent = p.name
	child.persisted = persisted
	for _, kind := range p.order {
		child.set(p.components[kind].Clone())
	}
	for _, c := range components {
		child.set(c)
	}
	return child
}
