package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeusync/sectors/internal/core/components"
	"github.com/zeusync/sectors/internal/core/events/bus"
	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/internal/core/prefab"
)

var (
	healthKind = components.KindOf("health")
	tagKind    = components.KindOf("tag")
)

type health struct {
	Max     int `yaml:"max"`
	Current int `yaml:"current"`
}

func (h *health) Kind() models.ComponentKind { return healthKind }
func (h *health) Clone() models.Component {
	c := *h
	return &c
}

type tag struct {
	Label string `yaml:"label"`
}

func (t *tag) Kind() models.ComponentKind { return tagKind }
func (t *tag) Clone() models.Component {
	c := *t
	return &c
}

type recorder struct {
	events []bus.Event
}

func (r *recorder) handle(e bus.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count(typ bus.EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

// newTestEnv returns an env with "creature" (health) and "marker" (health, location) prefabs
// and a recorder subscribed to every lifecycle event.
func newTestEnv(t *testing.T) (*Env, *recorder) {
	t.Helper()
	lib := prefab.NewLibrary()
	require.NoError(t, lib.Register(prefab.New("creature", &health{Max: 10, Current: 10})))
	require.NoError(t, lib.Register(prefab.New("marker",
		&health{Max: 1, Current: 1},
		&components.Location{Rotation: components.DefaultRotation()},
	)))

	rec := &recorder{}
	events := bus.New()
	_, err := events.SubscribeAll(rec.handle)
	require.NoError(t, err)
	return NewEnv(lib, events, nil), rec
}
