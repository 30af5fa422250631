package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/mindstorm/internal/event/topic"
)

// Bus delivers events to subscribers.
type Bus interface {
	// Publish delivers event to every matching subscription, in priority
	// order, on the caller's goroutine. It returns the handler failures
	// joined together.
	Publish(ctx context.Context, event any) error

	Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (*Subscription, error)
	SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error)
	Unsubscribe(sub *Subscription) error

	Stats() Stats
}

// bus is the default synchronous Bus.
type bus struct {
	mu   sync.RWMutex
	subs []*Subscription

	config busConfig

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) Bus {
	b := &bus{}
	for _, opt := range opts {
		opt(&b.config)
	}
	return b
}

// Subscribe registers handler for topics matching pattern.
func (b *bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: handler,
		config:  SubscriptionConfig{Priority: PriorityNormal},
	}
	for _, opt := range opts {
		opt(&sub.config)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, sub)
	// Sort by priority; equal priorities keep subscription order.
	slices.SortStableFunc(b.subs, func(x, y *Subscription) int {
		return int(x.config.Priority) - int(y.config.Priority)
	})
	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function.
func (b *bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe cancels and removes sub.
func (b *bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()
	if !b.remove(sub) {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (b *bus) remove(sub *Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.Index(b.subs, sub)
	if i < 0 {
		return false
	}
	b.subs = slices.Delete(b.subs, i, i+1)
	return true
}

// match returns the active subscriptions for t in delivery order.
func (b *bus) match(t topic.Topic) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []*Subscription
	for _, s := range b.subs {
		if s.IsActive() && t.Matches(s.pattern) {
			out = append(out, s)
		}
	}
	return out
}

// Publish delivers event synchronously.
func (b *bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || tp.EventTopic() == "" {
		return ErrInvalidEvent
	}
	t := tp.EventTopic()
	b.eventsPublished.Add(1)

	var errs []error
	for _, sub := range b.match(t) {
		if !sub.accepts(event) {
			continue
		}
		if err := b.deliver(ctx, sub, t, event); err != nil {
			errs = append(errs, err)
			continue
		}
		b.eventsDelivered.Add(1)
		if sub.config.Once {
			sub.Cancel()
			b.remove(sub)
		}
	}
	return errors.Join(errs...)
}

// deliver runs one handler, converting a panic into a PanicError.
func (b *bus) deliver(ctx context.Context, sub *Subscription, t topic.Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			pe := &PanicError{
				SubscriptionID: sub.id,
				Topic:          t.String(),
				Value:          r,
				Stack:          string(debug.Stack()),
			}
			if b.config.panicHandler != nil {
				b.config.panicHandler(pe)
			}
			err = pe
		}
	}()

	if herr := sub.handler.Handle(ctx, event); herr != nil {
		b.handlerErrors.Add(1)
		return &HandlerError{SubscriptionID: sub.id, Topic: t.String(), Err: herr}
	}
	return nil
}

// Stats returns current bus counters.
func (b *bus) Stats() Stats {
	b.mu.RLock()
	active := 0
	for _, s := range b.subs {
		if s.IsActive() {
			active++
		}
	}
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: active,
	}
}

// String describes the bus for logs.
func (b *bus) String() string {
	s := b.Stats()
	return fmt.Sprintf("bus(subs=%d published=%d)", s.ActiveSubscribers, s.EventsPublished)
}
