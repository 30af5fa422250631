package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/mindstorm/internal/event/topic"
)

// Event is a typed notification. Events are immutable once created.
type Event[T any] struct {
	// Type is the hierarchical event type (e.g., "operation.addChild").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string
}

// NewEvent creates an event with a fresh id.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// TopicProvider is implemented by every Event.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// PayloadOf extracts a typed payload from a type-erased event. Events
// built with an interface payload are unwrapped too.
func PayloadOf[T any](ev any) (T, bool) {
	if e, ok := ev.(Event[T]); ok {
		return e.Payload, true
	}
	if e, ok := ev.(Event[any]); ok {
		p, ok := e.Payload.(T)
		return p, ok
	}
	var zero T
	return zero, false
}
