package components

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/sectors/internal/core/models"
)

var (
	ErrEmptyName         = errors.New("component name is empty")
	ErrNilFactory        = errors.New("component factory is nil")
	ErrAlreadyRegistered = errors.New("component already registered")
	ErrKindCollision     = errors.New("component kind collision")
	ErrKindMismatch      = errors.New("component factory kind mismatch")
	ErrUnknownComponent  = errors.New("unknown component")
)

// Factory returns a fresh, zero-valued component ready to be decoded into.
// It must return a pointer so decoders can fill it.
type Factory func() models.Component

// KindOf derives the kind of the component registered under name.
func KindOf(name string) models.ComponentKind {
	return models.ComponentKind(xxhash.Sum64String(name))
}

type entry struct {
	name    string
	kind    models.ComponentKind
	factory Factory
}

// Registry is the closed set of component kinds known to a store.
// Queries by kind only make sense for kinds registered here.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*entry
	byKind map[models.ComponentKind]*entry
}

// NewRegistry returns a registry with the built-in components registered.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]*entry),
		byKind: make(map[models.ComponentKind]*entry),
	}
	r.MustRegister(LocationName, func() models.Component { return &Location{Rotation: DefaultRotation()} })
	return r
}

// Register adds a component under name. The factory's kind must equal KindOf(name).
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyName
	}
	if factory == nil {
		return ErrNilFactory
	}
	kind := KindOf(name)
	if got := factory().Kind(); got != kind {
		return fmt.Errorf("%w: %s reports %d, expected %d", ErrKindMismatch, name, got, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	if other, ok := r.byKind[kind]; ok {
		return fmt.Errorf("%w: %s and %s", ErrKindCollision, name, other.name)
	}
	e := &entry{name: name, kind: kind, factory: factory}
	r.byName[name] = e
	r.byKind[kind] = e
	return nil
}

func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// New instantiates a zero component by registered name.
func (r *Registry) New(name string) (models.Component, error) {
	r.mu.RLock()
	e, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	return e.factory(), nil
}

func (r *Registry) Lookup(name string) (models.ComponentKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return 0, false
	}
	return e.kind, true
}

// Name returns the registered name of kind.
func (r *Registry) Name(kind models.ComponentKind) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byKind[kind]
	if !ok {
		return "", false
	}
	return e.name, true
}

// Names lists registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
