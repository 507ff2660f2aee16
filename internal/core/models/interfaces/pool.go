package interfaces

import (
	"iter"

	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/internal/core/prefab"
	"github.com/zeusync/sectors/pkg/geom"
	"github.com/zeusync/sectors/pkg/sequence"
)

// EntityPool owns one partition (sector) of the entity space.
// Pools never emit identities owned by another pool.
type EntityPool interface {
	models.Resolver

	Name() string

	// Entity creation. Every variant fires lifecycle events.

	Create(components ...models.Component) models.EntityRef
	CreateFromSeq(components iter.Seq[models.Component]) models.EntityRef
	CreateFromPrefabName(name string) models.EntityRef
	CreateFromPrefab(p *prefab.Prefab) models.EntityRef
	CreateNamedAt(name string, position geom.Vec3) models.EntityRef
	CreateAt(p *prefab.Prefab, position geom.Vec3) models.EntityRef
	CreateAtRotated(p *prefab.Prefab, position geom.Vec3, rotation geom.Quat) models.EntityRef

	// Creation without lifecycle events, for bulk loading.

	CreateWithoutLifecycleEvents(components ...models.Component) models.EntityRef
	CreateFromPrefabNameWithoutLifecycleEvents(name string) models.EntityRef
	CreateFromPrefabWithoutLifecycleEvents(p *prefab.Prefab) models.EntityRef

	// Caller-supplied identities

	CreateEntityWithID(id models.EntityID, components ...models.Component) (models.EntityRef, error)
	CreateEntityRefWithID(id models.EntityID) models.EntityRef

	// Commit stores a fully specified entity. A NullID asks the pool to allocate one.
	Commit(id models.EntityID, components []models.Component, lifecycleEvents bool) (models.EntityRef, error)

	// Destruction

	DestroyEntityWithoutEvents(ref models.EntityRef)

	// Queries

	AllEntities() *sequence.Iterator[models.EntityRef]
	EntitiesWith(kinds ...models.ComponentKind) *sequence.Iterator[models.EntityRef]
	ActiveEntityCount() int
	ExistingEntity(id models.EntityID) models.EntityRef

	// Clear drops every entity without per-entity events.
	Clear()
}

// PrefabResolver resolves prefab names. Unknown names report false.
type PrefabResolver interface {
	Resolve(name string) (*prefab.Prefab, bool)
}
