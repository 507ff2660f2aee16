package prefab

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrEmptyName     = errors.New("prefab name is empty")
	ErrDuplicate     = errors.New("prefab already registered")
	ErrUnknownParent = errors.New("unknown parent prefab")
	ErrCycle         = errors.New("prefab inheritance cycle")
)

// Library resolves prefabs by name. It is safe for concurrent use.
type Library struct {
	mu      sync.RWMutex
	prefabs map[string]*Prefab
}

func NewLibrary() *Library {
	return &Library{prefabs: make(map[string]*Prefab)}
}

// Register adds p. Names are unique within a library.
func (l *Library) Register(p *Prefab) error {
	if p == nil || p.name == "" {
		return ErrEmptyName
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.prefabs[p.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, p.name)
	}
	l.prefabs[p.name] = p
	return nil
}

// registerAll adds every prefab or none of them.
func (l *Library) registerAll(ps []*Prefab) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range ps {
		if p == nil || p.name == "" {
			return ErrEmptyName
		}
		if _, ok := l.prefabs[p.name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, p.name)
		}
	}
	for _, p := range ps {
		l.prefabs[p.name] = p
	}
	return nil
}

// Resolve looks a prefab up by name. Unknown names report false, never an error.
func (l *Library) Resolve(name string) (*Prefab, bool) {
	if name == "" {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.prefabs[name]
	return p, ok
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.prefabs)
}

// Names lists registered prefab names, sorted.
func (l *Library) Names() []string {
	l.mu.RLock()
	names := make([]string, 0, len(l.prefabs))
	for name := range l.prefabs {
		names = append(names, name)
	}
	l.mu.RUnlock()
	sort.Strings(names)
	return names
}
