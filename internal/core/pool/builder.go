package pool

import (
	"errors"
	"fmt"

	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/internal/core/models/interfaces"
	"github.com/zeusync/sectors/internal/core/prefab"
)

var (
	ErrBuilderConsumed = errors.New("entity builder already built")
	ErrNoTarget        = errors.New("entity builder has no target pool")
)

// Builder accumulates a prefab and component overrides, then commits them into
// its target pool. A builder produces at most one entity.
type Builder struct {
	target  interfaces.EntityPool
	prefabs interfaces.PrefabResolver

	prefab     *prefab.Prefab
	id         models.EntityID
	order      []models.ComponentKind
	components map[models.ComponentKind]models.Component
	built      bool
}

func NewBuilder(target interfaces.EntityPool, prefabs interfaces.PrefabResolver) *Builder {
	return &Builder{
		target:     target,
		prefabs:    prefabs,
		components: make(map[models.ComponentKind]models.Component),
	}
}

// AddPrefab applies the named prefab. It reports false, changing nothing, when
// the name does not resolve.
func (b *Builder) AddPrefab(name string) bool {
	if b.prefabs == nil {
		return false
	}
	pf, ok := b.prefabs.Resolve(name)
	if !ok {
		return false
	}
	b.AddPrefabHandle(pf)
	return true
}

// AddPrefabHandle copies the prefab's components in, replacing components of the same kind.
func (b *Builder) AddPrefabHandle(pf *prefab.Prefab) *Builder {
	if pf == nil {
		return b
	}
	for _, c := range pf.Components() {
		b.AddComponent(c)
	}
	b.prefab = pf
	return b
}

func (b *Builder) AddComponent(c models.Component) *Builder {
	if c == nil {
		return b
	}
	kind := c.Kind()
	if _, ok := b.components[kind]; !ok {
		b.order = append(b.order, kind)
	}
	b.components[kind] = c
	return b
}

func (b *Builder) AddComponents(cs ...models.Component) *Builder {
	for _, c := range cs {
		b.AddComponent(c)
	}
	return b
}

func (b *Builder) RemoveComponent(kind models.ComponentKind) *Builder {
	if _, ok := b.components[kind]; !ok {
		return b
	}
	delete(b.components, kind)
	for i, k := range b.order {
		if k == kind {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return b
}

func (b *Builder) Component(kind models.ComponentKind) (models.Component, bool) {
	c, ok := b.components[kind]
	return c, ok
}

func (b *Builder) HasComponent(kind models.ComponentKind) bool {
	_, ok := b.components[kind]
	return ok
}

// Components returns the accumulated components in insertion order.
func (b *Builder) Components() []models.Component {
	out := make([]models.Component, 0, len(b.order))
	for _, kind := range b.order {
		out = append(out, b.components[kind])
	}
	return out
}

// Prefab returns the last prefab applied, nil if none.
func (b *Builder) Prefab() *prefab.Prefab { return b.prefab }

// SetID overrides the identity the entity is created with.
func (b *Builder) SetID(id models.EntityID) *Builder {
	b.id = id
	return b
}

func (b *Builder) ID() models.EntityID { return b.id }

// Target is the pool the builder commits into.
func (b *Builder) Target() interfaces.EntityPool { return b.target }

func (b *Builder) Build() (models.EntityRef, error) {
	return b.commit(true)
}

// BuildWithoutLifecycleEvents commits without firing lifecycle events.
func (b *Builder) BuildWithoutLifecycleEvents() (models.EntityRef, error) {
	return b.commit(false)
}

func (b *Builder) commit(lifecycleEvents bool) (models.EntityRef, error) {
	if b.built {
		return models.NullRef, ErrBuilderConsumed
	}
	if b.target == nil {
		return models.NullRef, ErrNoTarget
	}
	b.built = true

	ref, err := b.target.Commit(b.id, b.Components(), lifecycleEvents)
	if err != nil {
		return models.NullRef, fmt.Errorf("build entity: %w", err)
	}
	return ref, nil
}
