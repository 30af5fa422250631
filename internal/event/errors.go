package event

import (
	"errors"
	"fmt"
)

// Bus errors.
var (
	ErrInvalidEvent         = errors.New("event has no topic")
	ErrInvalidTopic         = errors.New("invalid topic")
	ErrSubscriptionNotFound = errors.New("no such subscription")
	ErrNilHandler           = errors.New("nil handler")

	// ErrHandlerPanic matches every PanicError.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError is a handler's error together with where it happened.
type HandlerError struct {
	SubscriptionID string
	Topic          string
	Err            error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s on %s: %v", e.SubscriptionID, e.Topic, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError is a recovered handler panic. Stack is the handler's stack
// at the time of the panic.
type PanicError struct {
	SubscriptionID string
	Topic          string
	Value          any
	Stack          string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler %s on %s panicked: %v", e.SubscriptionID, e.Topic, e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
