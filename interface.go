package emitter

import (
	"context"
	"reflect"
)

// Listener handles events. The returned value is collected by EmitAsPromise
// and EmitAsGenerator and ignored by Emit.
type Listener interface {
	HandleEvent(event *Event) any
}

// ListenerFunc adapts an ordinary function to the Listener interface.
type ListenerFunc func(event *Event) any

// HandleEvent calls f(event).
func (f ListenerFunc) HandleEvent(event *Event) any {
	return f(event)
}

// Awaitable is a listener result that settles later. EmitAsPromise waits
// for it before invoking the next listener.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// ListenerOptions configures a single registration.
type ListenerOptions struct {
	// Context removes the listener once it is done.
	Context context.Context
}

// ListenerOption mutates ListenerOptions.
type ListenerOption func(*ListenerOptions)

// WithContext links the listener to ctx: when ctx is done the listener is
// removed, whether or not it already ran.
func WithContext(ctx context.Context) ListenerOption {
	return func(o *ListenerOptions) {
		o.Context = ctx
	}
}

func newListenerOptions(opts ...ListenerOption) ListenerOptions {
	var options ListenerOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.Context == nil {
		options.Context = context.Background()
	}
	return options
}

// sameListener compares listeners by identity. Function listeners are
// compared by code pointer since Go funcs are not comparable.
func sameListener(a, b Listener) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	if ta.Kind() == reflect.Func {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}

	if !ta.Comparable() {
		return false
	}

	return a == b
}
