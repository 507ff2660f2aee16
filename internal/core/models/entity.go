package models

// EntityID is the process-wide identity of an entity. It is unique across every
// pool of a sector manager and is never reused once allocated.
type EntityID uint64

// NullID is reserved for the null handle and is never allocated.
const NullID EntityID = 0

// ComponentKind identifies a registered component type
type ComponentKind uint64

// Component is a typed data payload attached to an entity.
// Pools attach components by kind, so at most one component of a kind
// lives on an entity at a time.
type Component interface {
	Kind() ComponentKind
	Clone() Component
}

// Resolver is what a handle forwards to. Pools implement it.
type Resolver interface {
	Exists(EntityID) bool
	HasComponent(EntityID, ComponentKind) bool
	Component(EntityID, ComponentKind) (Component, bool)
	AddComponent(EntityID, Component) bool
	RemoveComponent(EntityID, ComponentKind) bool
	Destroy(EntityID)
}

// EntityRef is a cheap, comparable handle to an entity. The zero value is NullRef.
// Holding a ref does not keep the entity alive.
type EntityRef struct {
	id    EntityID
	owner Resolver
}

// NullRef denotes "no entity".
var NullRef = EntityRef{}

// NewEntityRef binds id to the resolver that owns it. A NullID or nil owner yields NullRef.
func NewEntityRef(id EntityID, owner Resolver) EntityRef {
	if id == NullID || owner == nil {
		return NullRef
	}
	return EntityRef{id: id, owner: owner}
}

func (r EntityRef) ID() EntityID { return r.id }

func (r EntityRef) IsNull() bool { return r.id == NullID || r.owner == nil }

// Exists reports whether the entity is currently stored by its owner.
func (r EntityRef) Exists() bool {
	if r.IsNull() {
		return false
	}
	return r.owner.Exists(r.id)
}

func (r EntityRef) HasComponent(kind ComponentKind) bool {
	if r.IsNull() {
		return false
	}
	return r.owner.HasComponent(r.id, kind)
}

func (r EntityRef) Component(kind ComponentKind) (Component, bool) {
	if r.IsNull() {
		return nil, false
	}
	return r.owner.Component(r.id, kind)
}

// AddComponent attaches c, replacing any component of the same kind.
// It reports false when the entity does not exist.
func (r EntityRef) AddComponent(c Component) bool {
	if r.IsNull() || c == nil {
		return false
	}
	return r.owner.AddComponent(r.id, c)
}

func (r EntityRef) RemoveComponent(kind ComponentKind) bool {
	if r.IsNull() {
		return false
	}
	return r.owner.RemoveComponent(r.id, kind)
}

// Destroy removes the entity from its owning pool, firing lifecycle events.
func (r EntityRef) Destroy() {
	if r.IsNull() {
		return
	}
	r.owner.Destroy(r.id)
}

// Owner returns the resolver the handle forwards to, nil for NullRef.
func (r EntityRef) Owner() Resolver { return r.owner }
