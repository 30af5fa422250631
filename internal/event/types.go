package event

import "context"

// Priority orders the handlers of one event; lower runs first.
type Priority int

const (
	// PriorityCritical is for handlers that keep core state consistent,
	// such as the undo log.
	PriorityCritical Priority = 0

	// PriorityHigh is for presentation handlers.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority for scripts.
	PriorityNormal Priority = 200

	// PriorityLow is for metrics and logging handlers that run last.
	PriorityLow Priority = 300
)

func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handler receives published events. The event is an Event[T]; use
// PayloadOf to get at the payload.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// FilterFunc decides whether an event is delivered to a subscription.
type FilterFunc func(event any) bool

// Stats counts bus activity since creation.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}
