package pool

import (
	"iter"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/zeusync/sectors/internal/core/components"
	"github.com/zeusync/sectors/internal/core/events/bus"
	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/internal/core/models/interfaces"
	"github.com/zeusync/sectors/internal/core/observability/log"
	"github.com/zeusync/sectors/internal/core/prefab"
	"github.com/zeusync/sectors/pkg/geom"
	"github.com/zeusync/sectors/pkg/sequence"
)

var _ interfaces.EntityPool = (*Pool)(nil)

type componentSet map[models.ComponentKind]models.Component

// Pool stores the entities of one sector. A Pool is not safe for concurrent
// use; callers serialize access the same way they serialize the sector manager.
type Pool struct {
	id   uuid.UUID
	name string
	env  *Env
	log  log.Log

	entities   map[models.EntityID]componentSet
	destroying map[models.EntityID]struct{}
}

// New creates an empty pool sharing env with its sibling pools.
func New(env *Env, name string) *Pool {
	id := uuid.New()
	return &Pool{
		id:         id,
		name:       name,
		env:        env,
		log:        env.log.With(log.Sector(name), log.String("pool", id.String())),
		entities:   make(map[models.EntityID]componentSet),
		destroying: make(map[models.EntityID]struct{}),
	}
}

func (p *Pool) ID() uuid.UUID { return p.id }
func (p *Pool) Name() string  { return p.name }

func (p *Pool) Create(components ...models.Component) models.EntityRef {
	return p.create(components, true)
}

func (p *Pool) CreateFromSeq(components iter.Seq[models.Component]) models.EntityRef {
	if components == nil {
		return p.create(nil, true)
	}
	return p.create(slices.Collect(components), true)
}

func (p *Pool) CreateFromPrefabName(name string) models.EntityRef {
	pf, ok := p.resolve(name)
	if !ok {
		return models.NullRef
	}
	return p.CreateFromPrefab(pf)
}

func (p *Pool) CreateFromPrefab(pf *prefab.Prefab) models.EntityRef {
	if pf == nil {
		return models.NullRef
	}
	return p.create(pf.Components(), true)
}

func (p *Pool) CreateNamedAt(name string, position geom.Vec3) models.EntityRef {
	pf, ok := p.resolve(name)
	if !ok {
		return models.NullRef
	}
	return p.CreateAt(pf, position)
}

// CreateAt instantiates pf with its location moved to position. Prefabs without
// a location component ignore the position.
func (p *Pool) CreateAt(pf *prefab.Prefab, position geom.Vec3) models.EntityRef {
	if pf == nil {
		return models.NullRef
	}
	comps := pf.Components()
	if loc := findLocation(comps); loc != nil {
		loc.Position = position
	}
	return p.create(comps, true)
}

func (p *Pool) CreateAtRotated(pf *prefab.Prefab, position geom.Vec3, rotation geom.Quat) models.EntityRef {
	if pf == nil {
		return models.NullRef
	}
	comps := pf.Components()
	if loc := findLocation(comps); loc != nil {
		loc.Position = position
		loc.Rotation = rotation
	}
	return p.create(comps, true)
}

func (p *Pool) CreateWithoutLifecycleEvents(components ...models.Component) models.EntityRef {
	return p.create(components, false)
}

func (p *Pool) CreateFromPrefabNameWithoutLifecycleEvents(name string) models.EntityRef {
	pf, ok := p.resolve(name)
	if !ok {
		return models.NullRef
	}
	return p.CreateFromPrefabWithoutLifecycleEvents(pf)
}

func (p *Pool) CreateFromPrefabWithoutLifecycleEvents(pf *prefab.Prefab) models.EntityRef {
	if pf == nil {
		return models.NullRef
	}
	return p.create(pf.Components(), false)
}

// CreateEntityWithID stores an entity under a caller-chosen identity. The identity
// must not be live in any pool sharing this pool's Env.
func (p *Pool) CreateEntityWithID(id models.EntityID, components ...models.Component) (models.EntityRef, error) {
	if id == models.NullID {
		return models.NullRef, ErrReservedIdentity
	}
	return p.Commit(id, components, true)
}

// CreateEntityRefWithID returns a handle for id without storing anything. A live
// id is bound to whichever pool sharing the Env owns it. Otherwise the handle is
// bound to this pool and the identity is withheld from allocation so a later
// CreateEntityWithID can claim it.
func (p *Pool) CreateEntityRefWithID(id models.EntityID) models.EntityRef {
	if id == models.NullID {
		return models.NullRef
	}
	if owner, ok := p.env.OwnerOf(id); ok {
		return models.NewEntityRef(id, owner)
	}
	p.env.ids.Reserve(id)
	return models.NewEntityRef(id, p)
}

func (p *Pool) Commit(id models.EntityID, components []models.Component, lifecycleEvents bool) (models.EntityRef, error) {
	if id == models.NullID {
		next, err := p.env.ids.Next()
		if err != nil {
			return models.NullRef, err
		}
		id = next
	} else {
		p.env.ids.Reserve(id)
	}
	if err := p.env.claim(id, p); err != nil {
		return models.NullRef, err
	}

	set := p.env.sets.Get()
	for _, c := range components {
		if c != nil {
			set[c.Kind()] = c
		}
	}
	p.entities[id] = set

	ref := models.NewEntityRef(id, p)
	if lifecycleEvents {
		p.publish(bus.EntityCreated, ref, set)
	}
	return ref, nil
}

func (p *Pool) create(components []models.Component, lifecycleEvents bool) models.EntityRef {
	ref, err := p.Commit(models.NullID, components, lifecycleEvents)
	if err != nil {
		p.log.Error("entity creation failed", log.Error(err))
		return models.NullRef
	}
	return ref
}

// Destroy fires the destroyed event and removes the entity. Unknown ids are ignored.
func (p *Pool) Destroy(id models.EntityID) {
	set, ok := p.entities[id]
	if !ok {
		return
	}
	if _, busy := p.destroying[id]; busy {
		return
	}
	p.destroying[id] = struct{}{}
	defer delete(p.destroying, id)

	p.publish(bus.EntityDestroyed, models.NewEntityRef(id, p), set)
	p.remove(id)
}

func (p *Pool) DestroyEntityWithoutEvents(ref models.EntityRef) {
	if ref.IsNull() {
		return
	}
	p.remove(ref.ID())
}

func (p *Pool) remove(id models.EntityID) {
	set, ok := p.entities[id]
	if !ok {
		return
	}
	delete(p.entities, id)
	p.env.release(id, p)
	p.env.sets.Put(set)
}

// AllEntities enumerates a snapshot of this pool's entities in identity order.
func (p *Pool) AllEntities() *sequence.Iterator[models.EntityRef] {
	return sequence.From(p.refs(p.sortedIDs()))
}

// EntitiesWith enumerates entities carrying every listed kind. No kinds matches all.
func (p *Pool) EntitiesWith(kinds ...models.ComponentKind) *sequence.Iterator[models.EntityRef] {
	ids := slices.DeleteFunc(p.sortedIDs(), func(id models.EntityID) bool {
		set := p.entities[id]
		for _, kind := range kinds {
			if _, ok := set[kind]; !ok {
				return true
			}
		}
		return false
	})
	return sequence.From(p.refs(ids))
}

func (p *Pool) ActiveEntityCount() int {
	return len(p.entities)
}

func (p *Pool) ExistingEntity(id models.EntityID) models.EntityRef {
	if _, ok := p.entities[id]; !ok {
		return models.NullRef
	}
	return models.NewEntityRef(id, p)
}

func (p *Pool) Exists(id models.EntityID) bool {
	_, ok := p.entities[id]
	return ok
}

func (p *Pool) HasComponent(id models.EntityID, kind models.ComponentKind) bool {
	_, ok := p.entities[id][kind]
	return ok
}

func (p *Pool) Component(id models.EntityID, kind models.ComponentKind) (models.Component, bool) {
	c, ok := p.entities[id][kind]
	return c, ok
}

func (p *Pool) AddComponent(id models.EntityID, c models.Component) bool {
	set, ok := p.entities[id]
	if !ok || c == nil {
		return false
	}
	set[c.Kind()] = c
	return true
}

func (p *Pool) RemoveComponent(id models.EntityID, kind models.ComponentKind) bool {
	set, ok := p.entities[id]
	if !ok {
		return false
	}
	if _, ok = set[kind]; !ok {
		return false
	}
	delete(set, kind)
	return true
}

func (p *Pool) Clear() {
	if len(p.entities) == 0 {
		return
	}
	ids := slices.Collect(maps.Keys(p.entities))
	p.env.releaseAll(p, ids)
	for _, set := range p.entities {
		p.env.sets.Put(set)
	}
	p.entities = make(map[models.EntityID]componentSet)
	p.log.Debug("sector cleared", log.Int("entities", len(ids)))
}

func (p *Pool) resolve(name string) (*prefab.Prefab, bool) {
	pf, ok := p.env.prefabs.Resolve(name)
	if !ok {
		p.log.Warn("unable to instantiate unknown prefab", log.String("prefab", name))
	}
	return pf, ok
}

func (p *Pool) publish(typ bus.EventType, ref models.EntityRef, set componentSet) {
	kinds := slices.Sorted(maps.Keys(set))
	if err := p.env.events.Publish(bus.NewEvent(typ, p.name, ref, kinds)); err != nil {
		p.log.Error("lifecycle handler failed",
			log.String("event", string(typ)), log.Entity(ref.ID()), log.Error(err))
	}
}

func (p *Pool) sortedIDs() []models.EntityID {
	return slices.Sorted(maps.Keys(p.entities))
}

func (p *Pool) refs(ids []models.EntityID) []models.EntityRef {
	out := make([]models.EntityRef, len(ids))
	for i, id := range ids {
		out[i] = models.NewEntityRef(id, p)
	}
	return out
}

func findLocation(comps []models.Component) *components.Location {
	for _, c := range comps {
		if loc, ok := c.(*components.Location); ok {
			return loc
		}
	}
	return nil
}
