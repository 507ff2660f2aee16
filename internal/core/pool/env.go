package pool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zeusync/sectors/internal/core/events/bus"
	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/internal/core/models/interfaces"
	"github.com/zeusync/sectors/internal/core/observability/log"
	"github.com/zeusync/sectors/internal/core/prefab"
	"github.com/zeusync/sectors/pkg/generic"
)

var (
	ErrReservedIdentity    = errors.New("entity id is reserved for the null handle")
	ErrDuplicateIdentity   = errors.New("entity id already in use")
	ErrIdentitiesExhausted = errors.New("entity id space exhausted")
)

// IDAllocator hands out entity identities in increasing order. An identity is
// never handed out twice, even after the entity it named is destroyed.
// A cursor of zero means every identity up to the maximum has been used.
type IDAllocator struct {
	next atomic.Uint64
}

// NewIDAllocator starts allocation at first. Zero is reserved, so a zero first starts at 1.
func NewIDAllocator(first models.EntityID) *IDAllocator {
	if first == models.NullID {
		first = 1
	}
	a := &IDAllocator{}
	a.next.Store(uint64(first))
	return a
}

// Next allocates an identity. Once the maximum identity has been handed out or
// reserved it fails with ErrIdentitiesExhausted instead of wrapping to NullID.
func (a *IDAllocator) Next() (models.EntityID, error) {
	for {
		cur := a.next.Load()
		if cur == uint64(models.NullID) {
			return models.NullID, ErrIdentitiesExhausted
		}
		// cur+1 wraps to zero after the last identity, marking the space exhausted.
		if a.next.CompareAndSwap(cur, cur+1) {
			return models.EntityID(cur), nil
		}
	}
}

// Reserve makes sure id is never allocated by moving the cursor past it.
func (a *IDAllocator) Reserve(id models.EntityID) {
	for {
		cur := a.next.Load()
		if cur == uint64(models.NullID) || uint64(id) < cur {
			return
		}
		if a.next.CompareAndSwap(cur, uint64(id)+1) {
			return
		}
	}
}

// Peek returns the identity the next allocation will return, NullID when exhausted.
func (a *IDAllocator) Peek() models.EntityID {
	return models.EntityID(a.next.Load())
}

// Env is the state every pool of one sector manager shares: the identity
// allocator, the ledger of which pool owns which live identity, the prefab
// resolver, the lifecycle bus and the logger.
type Env struct {
	ids     *IDAllocator
	prefabs interfaces.PrefabResolver
	events  bus.EventBus
	log     log.Log

	// sets recycles the component maps of removed entities across pools.
	sets *generic.Pool[componentSet]

	mu     sync.Mutex
	owners map[models.EntityID]*Pool
}

type EnvOption func(*Env)

// WithFirstID sets the first identity the allocator hands out.
func WithFirstID(id models.EntityID) EnvOption {
	return func(e *Env) { e.ids = NewIDAllocator(id) }
}

// NewEnv builds a shared environment. Nil collaborators are replaced by an empty
// prefab library, a fresh bus and a no-op logger.
func NewEnv(prefabs interfaces.PrefabResolver, events bus.EventBus, logger log.Log, opts ...EnvOption) *Env {
	if prefabs == nil {
		prefabs = prefab.NewLibrary()
	}
	if events == nil {
		events = bus.New()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	e := &Env{
		ids:     NewIDAllocator(1),
		prefabs: prefabs,
		events:  events,
		log:     logger,
		sets: generic.NewPool(
			func() componentSet { return make(componentSet) },
			func(set componentSet) { clear(set) },
		),
		owners: make(map[models.EntityID]*Pool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Env) IDs() *IDAllocator                  { return e.ids }
func (e *Env) Prefabs() interfaces.PrefabResolver { return e.prefabs }
func (e *Env) Events() bus.EventBus               { return e.events }
func (e *Env) Logger() log.Log                    { return e.log }

// OwnerOf returns the pool holding id, if any.
func (e *Env) OwnerOf(id models.EntityID) (*Pool, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.owners[id]
	return p, ok
}

// claim records p as the owner of id. Identities are unique across all pools.
func (e *Env) claim(id models.EntityID, p *Pool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if owner, ok := e.owners[id]; ok {
		return fmt.Errorf("%w: %d is owned by sector %s", ErrDuplicateIdentity, id, owner.name)
	}
	e.owners[id] = p
	return nil
}

func (e *Env) release(id models.EntityID, p *Pool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.owners[id] == p {
		delete(e.owners, id)
	}
}

func (e *Env) releaseAll(p *Pool, ids []models.EntityID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		if e.owners[id] == p {
			delete(e.owners, id)
		}
	}
}
