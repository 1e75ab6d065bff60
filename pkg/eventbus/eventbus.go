package eventbus

import (
	"reflect"
	"sync"
)

// Handler is a function that handles an event.
type Handler func(event interface{})

// EventBus provides in-process pub/sub. Subscribers register per event type;
// publishers hand over plain structs. Pointer events are dereferenced before
// dispatch, so handlers always receive the event by value.
type EventBus struct {
	handlers map[reflect.Type][]Handler
	mu       sync.RWMutex
}

// New creates a new EventBus.
func New() *EventBus {
	return &EventBus{
		handlers: make(map[reflect.Type][]Handler),
	}
}

// Subscribe registers a handler for the type of the given event value.
func (e *EventBus) Subscribe(eventType interface{}, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := reflect.TypeOf(normalize(eventType))
	e.handlers[t] = append(e.handlers[t], handler)
}

// Publish delivers an event to all subscribers asynchronously.
// Each handler runs in its own goroutine; publish order is not delivery order.
func (e *EventBus) Publish(event interface{}) {
	event = normalize(event)
	for _, handler := range e.match(event) {
		go handler(event)
	}
}

// PublishSync delivers an event to all subscribers on the calling goroutine,
// returning after every handler has run.
func (e *EventBus) PublishSync(event interface{}) {
	event = normalize(event)
	for _, handler := range e.match(event) {
		handler(event)
	}
}

// match snapshots the handler list for the event's concrete type.
func (e *EventBus) match(event interface{}) []Handler {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return append([]Handler(nil), e.handlers[reflect.TypeOf(event)]...)
}

// HasSubscribers returns true if there are subscribers for the event type.
func (e *EventBus) HasSubscribers(eventType interface{}) bool {
	return e.SubscriberCount(eventType) > 0
}

// SubscriberCount returns the number of subscribers for an event type.
func (e *EventBus) SubscriberCount(eventType interface{}) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.handlers[reflect.TypeOf(normalize(eventType))])
}

func normalize(event interface{}) interface{} {
	v := reflect.ValueOf(event)
	if v.Kind() == reflect.Ptr && !v.IsNil() {
		return v.Elem().Interface()
	}
	return event
}
