package event

import (
	"sync/atomic"

	"github.com/dshills/mindstorm/internal/event/topic"
)

// SubscriptionState is the delivery state of a subscription.
type SubscriptionState int32

// Subscription states. A cancelled subscription never becomes active again.
const (
	SubscriptionStateActive SubscriptionState = iota
	SubscriptionStatePaused
	SubscriptionStateCancelled
)

func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SubscriptionConfig holds the options a subscription was made with.
type SubscriptionConfig struct {
	Priority Priority
	// Filter drops events it returns false for.
	Filter FilterFunc
	// Once cancels the subscription after its first successful delivery.
	Once bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce cancels the subscription after it handles one event.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

// Subscription is a registered handler.
type Subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
	config  SubscriptionConfig
	state   atomic.Int32
}

// ID returns the subscription id, used by Bus.Unsubscribe.
func (s *Subscription) ID() string { return s.id }

func (s *Subscription) Topic() topic.Topic { return s.pattern }
func (s *Subscription) Config() SubscriptionConfig { return s.config }

func (s *Subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// IsActive reports whether events are delivered.
func (s *Subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

// Pause stops delivery until Resume.
func (s *Subscription) Pause() {
	s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStatePaused))
}

// Resume undoes Pause. It has no effect on a cancelled subscription.
func (s *Subscription) Resume() {
	s.state.CompareAndSwap(int32(SubscriptionStatePaused), int32(SubscriptionStateActive))
}

// Cancel stops delivery for good.
func (s *Subscription) Cancel() {
	s.state.Store(int32(SubscriptionStateCancelled))
}

func (s *Subscription) accepts(ev any) bool {
	return s.IsActive() && (s.config.Filter == nil || s.config.Filter(ev))
}
