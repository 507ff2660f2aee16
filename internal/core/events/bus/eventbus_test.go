package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/sectors/internal/core/models"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ Event, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	_, err := b.Subscribe(EntityCreated, func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent(EntityCreated, "default", models.NullRef, nil)))
	require.NoError(t, b.Publish(NewEvent(EntityDestroyed, "default", models.NullRef, nil)))

	require.Len(t, got, 1)
	assert.Equal(t, EntityCreated, got[0].Type)
	assert.Equal(t, "default", got[0].Sector)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestSubscribeAllSeesEveryType(t *testing.T) {
	b := New()
	var types []EventType
	sub, err := b.SubscribeAll(func(e Event) error {
		types = append(types, e.Type)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, EventType(""), sub.EventType())

	_ = b.Publish(NewEvent(EntityCreated, "", models.NullRef, nil))
	_ = b.Publish(NewEvent(EntityDestroyed, "", models.NullRef, nil))
	assert.Equal(t, []EventType{EntityCreated, EntityDestroyed}, types)
}

func TestDeliveryOrderFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := range 3 {
		_, _ = b.Subscribe(EntityCreated, func(Event) error {
			order = append(order, i)
			return nil
		})
	}
	_ = b.Publish(NewEvent(EntityCreated, "", models.NullRef, nil))
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA, errB := errors.New("a"), errors.New("b")
	_, _ = b.Subscribe(EntityCreated, func(Event) error { return errA })
	_, _ = b.Subscribe(EntityCreated, func(Event) error { return errB })

	err := b.Publish(NewEvent(EntityCreated, "", models.NullRef, nil))
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe(EntityCreated, func(Event) error { count++; return nil })
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())

	_ = b.Publish(NewEvent(EntityCreated, "", models.NullRef, nil))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	assert.False(t, sub.IsActive())
	_ = b.Publish(NewEvent(EntityCreated, "", models.NullRef, nil))

	assert.Equal(t, 1, count)
	assert.NoError(t, b.Unsubscribe(nil))
}

func TestNilHandlerRejected(t *testing.T) {
	_, err := New().Subscribe(EntityCreated, nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe(EntityCreated, func(Event) error { return nil })
	_ = b.Publish(NewEvent(EntityCreated, "", models.NullRef, nil))
	assert.Zero(t, b.Metrics().Published)

	obs := &testObserver{}
	b.AddObserver(obs)
	b.AddObserver(obs)
	_ = b.Publish(NewEvent(EntityCreated, "", models.NullRef, nil))

	m := b.Metrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(1), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent(EntityCreated, "", models.NullRef, nil))
	assert.Equal(t, 1, obs.publishCount)
}

func TestHandlerMayPublish(t *testing.T) {
	b := New()
	destroyed := 0
	_, _ = b.Subscribe(EntityCreated, func(e Event) error {
		return b.Publish(NewEvent(EntityDestroyed, e.Sector, e.Entity, nil))
	})
	_, _ = b.Subscribe(EntityDestroyed, func(Event) error { destroyed++; return nil })

	require.NoError(t, b.Publish(NewEvent(EntityCreated, "", models.NullRef, nil)))
	assert.Equal(t, 1, destroyed)
}
