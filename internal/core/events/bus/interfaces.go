package bus

import (
	"time"

	"github.com/zeusync/sectors/internal/core/models"
)

// EventBus is an in-process pub/sub bus for entity lifecycle events.
//
// - Delivery is synchronous: Publish calls handlers in the caller goroutine, in
//   subscription order.
// - Handler errors are joined and returned from Publish; publishing pools log
//   them and carry on.
// - Metrics are only collected while at least one observer is registered.
// - All methods are safe for concurrent use. Handlers may publish or subscribe.
type EventBus interface {
	// Publish delivers the event to every active subscriber of event.Type and to
	// every catch-all subscriber.
	Publish(event Event) error
	// Subscribe registers a handler for one event type.
	Subscribe(eventType EventType, handler EventHandler) (Subscription, error)
	// SubscribeAll registers a handler for every event type.
	SubscribeAll(handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// Metrics returns a snapshot of the counters.
	Metrics() EventBusMetrics
}

// EventType is the routing key of an event.
type EventType string

const (
	// EntityCreated fires after an entity and its initial components are stored.
	EntityCreated EventType = "entity.created"
	// EntityDestroyed fires before an entity's components are dropped, so
	// handlers can still read them through the ref.
	EntityDestroyed EventType = "entity.destroyed"
)

// Event describes one lifecycle change. Treat it as read-only.
type Event struct {
	Type      EventType
	Sector    string
	Entity    models.EntityRef
	Kinds     []models.ComponentKind
	Timestamp time.Time
}

// NewEvent stamps an event with the current time.
func NewEvent(typ EventType, sector string, entity models.EntityRef, kinds []models.ComponentKind) Event {
	return Event{Type: typ, Sector: sector, Entity: entity, Kinds: kinds, Timestamp: time.Now()}
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription is a registered handler.
type Subscription interface {
	ID() string
	// EventType is empty for catch-all subscriptions.
	EventType() EventType
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries. Observers should return quickly.
type EventBusObserver interface {
	OnPublish(event Event)
	OnDelivered(event Event, handlers int, err error, duration time.Duration)
}

// EventBusMetrics is updated only while at least one observer is registered.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
