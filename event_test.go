package emitter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent("greet", "hello")

	assert.Equal(t, "greet", event.Type())
	assert.Equal(t, "hello", event.Data())
	assert.False(t, event.DefaultPrevented())
	assert.False(t, event.PropagationStopped())
	assert.Nil(t, event.StoppedBy())
	assert.False(t, event.ImmediatePropagationStopped())
	assert.Equal(t, "Event(greet)", event.String())
}

func TestPreventDefaultIsIdempotent(t *testing.T) {
	event := NewEvent("greet", nil)
	event.PreventDefault()
	event.PreventDefault()

	assert.True(t, event.DefaultPrevented())
}

func TestStopOutsideDispatchHasNoEffect(t *testing.T) {
	event := NewEvent("greet", nil)
	event.StopPropagation()
	event.StopImmediatePropagation()

	assert.False(t, event.PropagationStopped())
	assert.False(t, event.ImmediatePropagationStopped())
}

func TestStopImmediatePropagation(t *testing.T) {
	em := newTestEmitter()
	first := &testListener{handle: func(e *Event) {
		e.StopImmediatePropagation()
		assert.True(t, e.ImmediatePropagationStopped())
	}}
	typed := &testListener{}
	all := &testListener{}

	em.On("hello", first)
	em.On("hello", typed)
	em.OnAny(all)

	event := NewEvent("hello", nil)
	assert.True(t, em.Emit(event))
	assert.Equal(t, 1, first.Calls())
	assert.Equal(t, 0, typed.Calls())
	assert.Equal(t, 0, all.Calls())

	// Immediate stop belongs to the dispatch call, not to the envelope.
	assert.False(t, event.ImmediatePropagationStopped())
	assert.False(t, event.PropagationStopped())
}

func TestStopImmediatePropagationDoesNotAffectOtherEmission(t *testing.T) {
	em := newTestEmitter()
	second := &testListener{}

	em.Once("hello", &testListener{handle: func(e *Event) { e.StopImmediatePropagation() }})
	em.On("hello", second)

	event := NewEvent("hello", nil)
	em.Emit(event)
	assert.Equal(t, 0, second.Calls())

	em.Emit(event)
	assert.Equal(t, 1, second.Calls())
}

func TestStopImmediatePropagationIsScopedToEmitter(t *testing.T) {
	one := newTestEmitter()
	two := newTestEmitter()
	received := &testListener{}

	one.On("hello", &testListener{handle: func(e *Event) { e.StopImmediatePropagation() }})
	one.On("hello", &testListener{})
	two.On("hello", received)

	event := NewEvent("hello", nil)
	one.Emit(event)
	two.Emit(event)

	assert.Equal(t, 1, received.Calls())
}

func TestStopPropagationAcrossEmitters(t *testing.T) {
	one := newTestEmitter()
	two := newTestEmitter()
	order := &callOrder{}

	one.On("greet", &testListener{name: "one-1", order: order})
	one.On("greet", &testListener{name: "one-2", order: order, handle: func(e *Event) { e.StopPropagation() }})
	one.On("greet", &testListener{name: "one-3", order: order})
	one.OnAny(&testListener{name: "one-any", order: order})
	two.On("greet", &testListener{name: "two-1", order: order})
	two.OnAny(&testListener{name: "two-any", order: order})

	event := one.CreateEvent("greet", "hello")

	assert.True(t, one.Emit(event))
	assert.True(t, event.PropagationStopped())
	assert.Same(t, one, event.StoppedBy())

	assert.True(t, two.Emit(event))
	assert.Equal(t, []string{"one-1", "one-2", "two-1", "two-any"}, order.Names())
}

func TestStoppedEventIsNotRedeliveredBySameEmitter(t *testing.T) {
	em := newTestEmitter()
	after := &testListener{}

	em.Once("greet", &testListener{handle: func(e *Event) { e.StopPropagation() }})
	em.On("greet", after)

	event := NewEvent("greet", nil)
	em.Emit(event)
	em.Emit(event)

	assert.Equal(t, 0, after.Calls())
}

func TestForwardEventToAnotherEmitter(t *testing.T) {
	one := newTestEmitter()
	two := newTestEmitter()
	var received *Event
	listener := &testListener{handle: func(e *Event) { received = e }}

	one.On("one", ListenerFunc(func(e *Event) any {
		two.Emit(e)
		return nil
	}))
	two.On("one", listener)

	event := NewEvent("one", "hello")
	assert.True(t, one.Emit(event))
	assert.Equal(t, 1, listener.Calls())
	assert.Same(t, event, received)
}

func TestStopPropagationInForwardedEmission(t *testing.T) {
	one := newTestEmitter()
	two := newTestEmitter()
	after := &testListener{}
	downstream := &testListener{}

	one.On("x", ListenerFunc(func(e *Event) any {
		two.Emit(e)
		return nil
	}))
	one.On("x", after)
	two.On("x", &testListener{handle: func(e *Event) { e.StopPropagation() }})
	two.On("x", downstream)

	event := NewEvent("x", nil)
	assert.True(t, one.Emit(event))

	assert.Same(t, two, event.StoppedBy())
	assert.Equal(t, 0, downstream.Calls())
	assert.Equal(t, 1, after.Calls())
}

func TestEmitAsPromiseAfterAnotherEmitterStopped(t *testing.T) {
	one := newTestEmitter()
	two := newTestEmitter()

	one.On("greet", ListenerFunc(func(e *Event) any { return e }))
	one.On("greet", ListenerFunc(func(e *Event) any {
		e.StopPropagation()
		return e
	}))
	one.On("greet", ListenerFunc(func(e *Event) any { return "unreached" }))
	two.On("greet", ListenerFunc(func(e *Event) any { return "two-1" }))
	two.On("greet", ListenerFunc(func(e *Event) any { return "two-2" }))

	event := one.CreateEvent("greet", "hello")

	assert.Equal(t, []any{event, event}, Values(one.EmitAsPromise(context.Background(), event)))
	assert.Equal(t, []any{"two-1", "two-2"}, Values(two.EmitAsPromise(context.Background(), event)))
	assert.Empty(t, one.EmitAsPromise(context.Background(), event))
}
