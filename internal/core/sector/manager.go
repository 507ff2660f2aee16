package sector

import (
	"iter"
	"slices"
	"sync"

	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/internal/core/models/interfaces"
	"github.com/zeusync/sectors/internal/core/observability/log"
	"github.com/zeusync/sectors/internal/core/pool"
	"github.com/zeusync/sectors/internal/core/prefab"
	"github.com/zeusync/sectors/pkg/geom"
	"github.com/zeusync/sectors/pkg/sequence"
)

// DefaultSectorName names the pool every manager starts with.
const DefaultSectorName = "default"

// Manager presents an ordered set of pools as one entity space.
//
// Lookups (ExistingEntity, HasComponent, ActiveEntityCount) search every pool in
// insertion order. Creation, destruction and enumeration go to the pool chosen
// by the creation policy only.
//
// The pool list is guarded so pools may be added while other goroutines read;
// the pools themselves expect callers to serialize access.
type Manager struct {
	env    *pool.Env
	log    log.Log
	policy CreationPolicy

	mu    sync.RWMutex
	pools []interfaces.EntityPool
}

type Option func(*Manager)

func WithCreationPolicy(policy CreationPolicy) Option {
	return func(m *Manager) {
		if policy != nil {
			m.policy = policy
		}
	}
}

// WithDefaultSectorName renames the pool the manager is constructed with.
func WithDefaultSectorName(name string) Option {
	return func(m *Manager) {
		m.pools[0] = pool.New(m.env, name)
	}
}

// NewManager creates a manager owning a single default pool.
func NewManager(env *pool.Env, opts ...Option) *Manager {
	m := &Manager{
		env:    env,
		log:    env.Logger().With(log.String("component", "sector-manager")),
		policy: FirstPool,
		pools:  []interfaces.EntityPool{pool.New(env, DefaultSectorName)},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddPool appends a new pool sharing the manager's environment. Pools are never
// removed or reordered.
func (m *Manager) AddPool(name string) *pool.Pool {
	p := pool.New(m.env, name)
	m.mu.Lock()
	m.pools = append(m.pools, p)
	count := len(m.pools)
	m.mu.Unlock()

	m.log.Info("sector added", log.Sector(name), log.Int("sectors", count))
	return p
}

// Pools returns the pools in insertion order.
func (m *Manager) Pools() []interfaces.EntityPool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.pools)
}

// DefaultPool is the pool the creation policy selects.
func (m *Manager) DefaultPool() interfaces.EntityPool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.policy(slices.Clone(m.pools))
}

// Env exposes the environment shared by the manager's pools.
func (m *Manager) Env() *pool.Env { return m.env }

func (m *Manager) NewBuilder() *pool.Builder {
	return pool.NewBuilder(m.DefaultPool(), m.env.Prefabs())
}

// NewBuilderFromName returns a builder pre-populated from the named prefab, or
// false when no prefab has that name.
func (m *Manager) NewBuilderFromName(prefabName string) (*pool.Builder, bool) {
	b := m.NewBuilder()
	if !b.AddPrefab(prefabName) {
		return nil, false
	}
	return b, true
}

func (m *Manager) NewBuilderFromPrefab(p *prefab.Prefab) *pool.Builder {
	return m.NewBuilder().AddPrefabHandle(p)
}

func (m *Manager) Create(components ...models.Component) models.EntityRef {
	return m.DefaultPool().Create(components...)
}

func (m *Manager) CreateFromSeq(components iter.Seq[models.Component]) models.EntityRef {
	return m.DefaultPool().CreateFromSeq(components)
}

func (m *Manager) CreateFromPrefabName(name string) models.EntityRef {
	return m.DefaultPool().CreateFromPrefabName(name)
}

func (m *Manager) CreateFromPrefab(p *prefab.Prefab) models.EntityRef {
	return m.DefaultPool().CreateFromPrefab(p)
}

func (m *Manager) CreateNamedAt(name string, position geom.Vec3) models.EntityRef {
	return m.DefaultPool().CreateNamedAt(name, position)
}

func (m *Manager) CreateAt(p *prefab.Prefab, position geom.Vec3) models.EntityRef {
	return m.DefaultPool().CreateAt(p, position)
}

func (m *Manager) CreateAtRotated(p *prefab.Prefab, position geom.Vec3, rotation geom.Quat) models.EntityRef {
	return m.DefaultPool().CreateAtRotated(p, position, rotation)
}

func (m *Manager) CreateWithoutLifecycleEvents(components ...models.Component) models.EntityRef {
	return m.DefaultPool().CreateWithoutLifecycleEvents(components...)
}

func (m *Manager) CreateFromPrefabNameWithoutLifecycleEvents(name string) models.EntityRef {
	return m.DefaultPool().CreateFromPrefabNameWithoutLifecycleEvents(name)
}

func (m *Manager) CreateFromPrefabWithoutLifecycleEvents(p *prefab.Prefab) models.EntityRef {
	return m.DefaultPool().CreateFromPrefabWithoutLifecycleEvents(p)
}

// CreateEntityWithID creates with a caller-chosen identity. It fails with
// pool.ErrDuplicateIdentity when any pool already holds id.
func (m *Manager) CreateEntityWithID(id models.EntityID, components ...models.Component) (models.EntityRef, error) {
	return m.DefaultPool().CreateEntityWithID(id, components...)
}

func (m *Manager) CreateEntityRefWithID(id models.EntityID) models.EntityRef {
	return m.DefaultPool().CreateEntityRefWithID(id)
}

// Destroy removes id from the default pool. Entities held by other pools are
// left alone and the misroute is logged.
func (m *Manager) Destroy(id models.EntityID) {
	target := m.DefaultPool()
	if !target.Exists(id) {
		m.warnMisrouted("destroy", target, id)
		return
	}
	target.Destroy(id)
}

func (m *Manager) DestroyEntityWithoutEvents(ref models.EntityRef) {
	if ref.IsNull() {
		return
	}
	target := m.DefaultPool()
	if !target.Exists(ref.ID()) {
		m.warnMisrouted("destroy without events", target, ref.ID())
		return
	}
	target.DestroyEntityWithoutEvents(ref)
}

// AllEntities enumerates the default pool only.
func (m *Manager) AllEntities() *sequence.Iterator[models.EntityRef] {
	return m.DefaultPool().AllEntities()
}

// EntitiesWith filters the default pool only.
func (m *Manager) EntitiesWith(kinds ...models.ComponentKind) *sequence.Iterator[models.EntityRef] {
	return m.DefaultPool().EntitiesWith(kinds...)
}

// ActiveEntityCount sums the live entities of every pool.
func (m *Manager) ActiveEntityCount() int {
	count := 0
	for _, p := range m.Pools() {
		count += p.ActiveEntityCount()
	}
	return count
}

// ExistingEntity returns the first pool's non-null handle for id, or NullRef.
func (m *Manager) ExistingEntity(id models.EntityID) models.EntityRef {
	for _, p := range m.Pools() {
		if ref := p.ExistingEntity(id); !ref.IsNull() {
			return ref
		}
	}
	return models.NullRef
}

// HasComponent reports whether any pool holds id with a component of kind.
func (m *Manager) HasComponent(id models.EntityID, kind models.ComponentKind) bool {
	for _, p := range m.Pools() {
		if p.HasComponent(id, kind) {
			return true
		}
	}
	return false
}

// Clear empties every pool without per-entity events.
func (m *Manager) Clear() {
	pools := m.Pools()
	for _, p := range pools {
		p.Clear()
	}
	m.log.Debug("all sectors cleared", log.Int("sectors", len(pools)))
}

func (m *Manager) warnMisrouted(op string, target interfaces.EntityPool, id models.EntityID) {
	owner, ok := m.env.OwnerOf(id)
	if !ok {
		return
	}
	m.log.Warn("entity is not owned by the default sector, ignoring",
		log.String("op", op),
		log.Entity(id),
		log.String("default", target.Name()),
		log.Sector(owner.Name()),
	)
}
