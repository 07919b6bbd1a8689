package emitter

import (
	"context"
	"errors"
	"fmt"
)

// ErrListenerPanic is wrapped by a ListenerError whose listener panicked.
var ErrListenerPanic = errors.New("listener panicked")

// ListenerError wraps a failure of a single listener during EmitAsPromise.
type ListenerError struct {
	EventType    string
	ListenerType string
	Err          error
	// Recovered holds the panic value when the listener panicked.
	Recovered any
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("event '%s' listener '%s': %v", e.EventType, e.ListenerType, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// Outcome is the settled result of one listener: either a value or an error.
type Outcome struct {
	Value any
	Err   error
}

// Fulfilled reports whether the listener settled without an error.
func (o Outcome) Fulfilled() bool {
	return o.Err == nil
}

// Subscription is the handle returned by every registration. Cancelling it
// removes the listener.
type Subscription struct {
	typ    string
	ctx    context.Context
	cancel context.CancelFunc
}

// Type returns the event type the listener is registered for.
func (s *Subscription) Type() string {
	return s.typ
}

// Cancel removes the listener. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Done returns a channel closed once the listener is removed for any reason.
func (s *Subscription) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Err returns nil while the listener is registered and context.Canceled
// afterwards, or the linked context's error if that removed it.
func (s *Subscription) Err() error {
	return s.ctx.Err()
}
