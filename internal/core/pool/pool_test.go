package pool

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/sectors/internal/core/components"
	"github.com/zeusync/sectors/internal/core/events/bus"
	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/pkg/geom"
)

func TestCreateAndLookup(t *testing.T) {
	env, rec := newTestEnv(t)
	p := New(env, "default")

	first := p.Create()
	second := p.Create(&health{Max: 5, Current: 5})

	require.False(t, first.IsNull())
	assert.Less(t, first.ID(), second.ID())
	assert.Equal(t, 2, p.ActiveEntityCount())
	assert.Equal(t, second, p.ExistingEntity(second.ID()))
	assert.True(t, p.HasComponent(second.ID(), healthKind))
	assert.False(t, p.HasComponent(first.ID(), healthKind))
	assert.Equal(t, models.NullRef, p.ExistingEntity(9999))
	assert.Equal(t, 2, rec.count(bus.EntityCreated))

	created := rec.events[1]
	assert.Equal(t, "default", created.Sector)
	assert.Equal(t, second, created.Entity)
	assert.Equal(t, []models.ComponentKind{healthKind}, created.Kinds)
}

func TestCreateFromSeq(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")

	ref := p.CreateFromSeq(slices.Values([]models.Component{&health{Max: 3}, &tag{Label: "a"}}))
	assert.True(t, ref.HasComponent(healthKind))
	assert.True(t, ref.HasComponent(tagKind))

	empty := p.CreateFromSeq(nil)
	assert.True(t, empty.Exists())
}

func TestLaterComponentOfSameKindWins(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")

	ref := p.Create(&health{Max: 1}, &health{Max: 2})
	c, ok := ref.Component(healthKind)
	require.True(t, ok)
	assert.Equal(t, 2, c.(*health).Max)
}

func TestDestroyFiresEventBeforeRemoval(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")
	ref := p.Create(&health{Max: 7})

	sawComponent := false
	_, err := env.Events().Subscribe(bus.EntityDestroyed, func(e bus.Event) error {
		_, sawComponent = e.Entity.Component(healthKind)
		e.Entity.Destroy()
		return nil
	})
	require.NoError(t, err)

	p.Destroy(ref.ID())
	assert.True(t, sawComponent)
	assert.Zero(t, p.ActiveEntityCount())
	assert.False(t, ref.Exists())

	assert.NotPanics(t, func() { p.Destroy(ref.ID()) })
}

func TestIdentitiesAreNeverReused(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")

	seen := map[models.EntityID]bool{}
	for range 5 {
		ref := p.Create()
		seen[ref.ID()] = true
		p.Destroy(ref.ID())
	}
	p.Create()
	p.Clear()
	ref := p.Create()
	assert.False(t, seen[ref.ID()])
	assert.Len(t, seen, 5)
}

func TestWithoutLifecycleEvents(t *testing.T) {
	env, rec := newTestEnv(t)
	p := New(env, "default")

	a := p.CreateWithoutLifecycleEvents(&health{})
	b := p.CreateFromPrefabNameWithoutLifecycleEvents("creature")
	c := p.CreateFromPrefabWithoutLifecycleEvents(nil)
	assert.False(t, a.IsNull())
	assert.False(t, b.IsNull())
	assert.True(t, c.IsNull())

	p.DestroyEntityWithoutEvents(a)
	p.DestroyEntityWithoutEvents(models.NullRef)

	assert.Empty(t, rec.events)
	assert.Equal(t, 1, p.ActiveEntityCount())
}

func TestCreateFromPrefab(t *testing.T) {
	env, rec := newTestEnv(t)
	p := New(env, "default")

	ref := p.CreateFromPrefabName("creature")
	require.False(t, ref.IsNull())
	c, ok := ref.Component(healthKind)
	require.True(t, ok)
	assert.Equal(t, 10, c.(*health).Max)

	c.(*health).Current = 1
	other := p.CreateFromPrefabName("creature")
	oc, _ := other.Component(healthKind)
	assert.Equal(t, 10, oc.(*health).Current, "prefab components are cloned per entity")

	assert.True(t, p.CreateFromPrefabName("does-not-exist").IsNull())
	assert.True(t, p.CreateFromPrefab(nil).IsNull())
	assert.Equal(t, 2, p.ActiveEntityCount())
	assert.Equal(t, 2, rec.count(bus.EntityCreated))
}

func TestCreateAtWritesLocation(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")
	marker, _ := env.Prefabs().Resolve("marker")
	creature, _ := env.Prefabs().Resolve("creature")
	pos := geom.Vec3{X: 1, Y: 2, Z: 3}
	rot := geom.Quat{Y: 1}

	placed := p.CreateAt(marker, pos)
	loc, ok := placed.Component(components.LocationKind)
	require.True(t, ok)
	assert.Equal(t, pos, loc.(*components.Location).Position)
	assert.Equal(t, geom.Identity, loc.(*components.Location).Rotation)

	rotated := p.CreateAtRotated(marker, pos, rot)
	loc, _ = rotated.Component(components.LocationKind)
	assert.Equal(t, rot, loc.(*components.Location).Rotation)

	named := p.CreateNamedAt("marker", pos)
	loc, _ = named.Component(components.LocationKind)
	assert.Equal(t, pos, loc.(*components.Location).Position)

	noLocation := p.CreateAt(creature, pos)
	assert.False(t, noLocation.HasComponent(components.LocationKind))

	assert.True(t, p.CreateNamedAt("nope", pos).IsNull())
	assert.True(t, p.CreateAtRotated(nil, pos, rot).IsNull())
}

func TestCreateEntityWithID(t *testing.T) {
	env, rec := newTestEnv(t)
	first := New(env, "first")
	second := New(env, "second")

	ref, err := second.CreateEntityWithID(42, &health{Max: 1})
	require.NoError(t, err)
	assert.Equal(t, models.EntityID(42), ref.ID())
	assert.Equal(t, 1, rec.count(bus.EntityCreated))

	owner, ok := env.OwnerOf(42)
	require.True(t, ok)
	assert.Same(t, second, owner)

	_, err = first.CreateEntityWithID(42)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	_, err = second.CreateEntityWithID(42)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	_, err = first.CreateEntityWithID(models.NullID)
	assert.ErrorIs(t, err, ErrReservedIdentity)

	assert.Greater(t, first.Create().ID(), models.EntityID(42), "allocation moves past explicit ids")
}

func TestCreateEntityRefWithID(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")

	ref := p.CreateEntityRefWithID(100)
	assert.Equal(t, models.EntityID(100), ref.ID())
	assert.False(t, ref.Exists())
	assert.Zero(t, p.ActiveEntityCount())
	assert.True(t, p.ExistingEntity(100).IsNull())
	assert.True(t, p.CreateEntityRefWithID(models.NullID).IsNull())

	allocated := p.Create()
	assert.Greater(t, allocated.ID(), models.EntityID(100))

	created, err := p.CreateEntityWithID(100)
	require.NoError(t, err)
	assert.Equal(t, ref, created)
	assert.True(t, ref.Exists())
	assert.Equal(t, ref, p.CreateEntityRefWithID(100))
}

func TestCreateEntityRefWithIDBindsToOwner(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")
	other := New(env, "other")

	owned, err := other.CreateEntityWithID(42, &health{Max: 3})
	require.NoError(t, err)

	ref := p.CreateEntityRefWithID(42)
	assert.Equal(t, owned, ref)
	assert.True(t, ref.Exists())
	assert.True(t, ref.HasComponent(healthKind))

	ref.Destroy()
	assert.False(t, other.Exists(42))
}

func TestEntitiesWith(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")

	a := p.Create(&health{})
	b := p.Create(&health{}, &tag{})
	c := p.Create(&tag{})

	assert.Equal(t, []models.EntityRef{a, b, c}, p.AllEntities().Collect())
	assert.Equal(t, []models.EntityRef{a, b}, p.EntitiesWith(healthKind).Collect())
	assert.Equal(t, []models.EntityRef{b}, p.EntitiesWith(healthKind, tagKind).Collect())
	assert.Equal(t, 3, p.EntitiesWith().Count())
	assert.Zero(t, p.EntitiesWith(components.LocationKind).Count())
}

func TestComponentMutationThroughRef(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")
	ref := p.Create()

	assert.True(t, ref.AddComponent(&tag{Label: "x"}))
	assert.True(t, p.HasComponent(ref.ID(), tagKind))
	assert.True(t, ref.RemoveComponent(tagKind))
	assert.False(t, ref.RemoveComponent(tagKind))
	assert.False(t, ref.AddComponent(nil))

	p.Destroy(ref.ID())
	assert.False(t, ref.AddComponent(&tag{}))
	assert.False(t, ref.RemoveComponent(tagKind))
}

func TestClearReleasesIdentities(t *testing.T) {
	env, rec := newTestEnv(t)
	first := New(env, "first")
	second := New(env, "second")

	ref, err := first.CreateEntityWithID(7)
	require.NoError(t, err)
	first.Create()
	before := len(rec.events)

	first.Clear()
	assert.Zero(t, first.ActiveEntityCount())
	assert.False(t, ref.Exists())
	assert.Len(t, rec.events, before, "clear fires no per-entity events")

	_, ok := env.OwnerOf(7)
	assert.False(t, ok)
	_, err = second.CreateEntityWithID(7)
	assert.NoError(t, err)

	assert.NotPanics(t, second.Clear)
	assert.NotPanics(t, New(env, "empty").Clear)
}

func TestRemovedComponentsDoNotLeak(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")

	for range 8 {
		ref := p.Create(&health{Max: 1}, &tag{Label: "old"})
		ref.Destroy()
	}
	cleared := p.Create(&tag{Label: "cleared"})
	p.Clear()
	assert.False(t, cleared.Exists())

	for range 8 {
		ref := p.Create()
		assert.False(t, ref.HasComponent(healthKind))
		assert.False(t, ref.HasComponent(tagKind))
		assert.Empty(t, p.EntitiesWith(tagKind).Collect())
		ref.Destroy()
	}
}

func TestHandlerErrorDoesNotFailCreation(t *testing.T) {
	env, _ := newTestEnv(t)
	_, err := env.Events().Subscribe(bus.EntityCreated, func(bus.Event) error {
		return assert.AnError
	})
	require.NoError(t, err)

	p := New(env, "default")
	ref := p.Create()
	assert.True(t, ref.Exists())
}

func TestIDAllocator(t *testing.T) {
	next := func(a *IDAllocator) models.EntityID {
		t.Helper()
		id, err := a.Next()
		require.NoError(t, err)
		return id
	}

	a := NewIDAllocator(0)
	assert.Equal(t, models.EntityID(1), next(a))
	a.Reserve(10)
	assert.Equal(t, models.EntityID(11), a.Peek())
	a.Reserve(5)
	assert.Equal(t, models.EntityID(11), next(a))

	b := NewIDAllocator(500)
	assert.Equal(t, models.EntityID(500), next(b))

	t.Run("Exhaustion", func(t *testing.T) {
		c := NewIDAllocator(math.MaxUint64 - 1)
		assert.Equal(t, models.EntityID(math.MaxUint64-1), next(c))
		assert.Equal(t, models.EntityID(math.MaxUint64), next(c))

		for range 3 {
			id, err := c.Next()
			assert.ErrorIs(t, err, ErrIdentitiesExhausted)
			assert.Equal(t, models.NullID, id)
		}
		c.Reserve(7)
		_, err := c.Next()
		assert.ErrorIs(t, err, ErrIdentitiesExhausted, "reserve never rewinds an exhausted allocator")
	})

	t.Run("Reserve maximum", func(t *testing.T) {
		d := NewIDAllocator(1)
		d.Reserve(math.MaxUint64)
		assert.Equal(t, models.NullID, d.Peek())
		_, err := d.Next()
		assert.ErrorIs(t, err, ErrIdentitiesExhausted)
	})
}

func TestMaximumIdentityNeverWrapsToNull(t *testing.T) {
	env, _ := newTestEnv(t)
	p := New(env, "default")
	first := p.Create()

	top, err := p.CreateEntityWithID(math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, models.EntityID(math.MaxUint64), top.ID())

	ref := p.Create()
	assert.True(t, ref.IsNull())
	assert.Equal(t, 2, p.ActiveEntityCount(), "nothing stored under the null id")
	assert.False(t, p.Exists(models.NullID))

	_, err = p.Commit(models.NullID, nil, false)
	assert.ErrorIs(t, err, ErrIdentitiesExhausted)

	again := p.Create()
	assert.True(t, again.IsNull(), "allocation does not restart from the bottom")
	assert.Equal(t, []models.EntityRef{first, top}, p.AllEntities().Collect())

	below, err := p.CreateEntityWithID(first.ID() + 1000)
	require.NoError(t, err, "explicit identities are still accepted")
	assert.True(t, below.Exists())
}

func TestEnvDefaults(t *testing.T) {
	env := NewEnv(nil, nil, nil, WithFirstID(1000))
	p := New(env, "default")

	assert.Equal(t, models.EntityID(1000), p.Create().ID())
	assert.True(t, p.CreateFromPrefabName("anything").IsNull())
	assert.NotEmpty(t, p.ID().String())
	assert.Equal(t, "default", p.Name())
}
