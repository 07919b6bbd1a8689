package emitter

import "sync"

// AnyEvent is the key catch-all listeners are registered under.
// Catch-all listeners receive every event type, after the type-specific ones.
const AnyEvent = "*"

// Event is the envelope handed to listeners for one occurrence of an event
// type. The same envelope may be emitted by several emitters; propagation
// state is recorded per emitter so forwarding stays meaningful.
type Event struct {
	typ  string
	data any

	mu               sync.Mutex
	defaultPrevented bool
	stoppedBy        *Emitter
	frames           []*frame
}

// frame is the per-dispatch-call state of an event.
type frame struct {
	emitter          *Emitter
	immediateStopped bool
}

// NewEvent creates an envelope for the given type and payload.
func NewEvent(typ string, data any) *Event {
	return &Event{typ: typ, data: data}
}

// Type returns the event type.
func (e *Event) Type() string {
	return e.typ
}

// Data returns the event payload, nil if there is none.
func (e *Event) Data() any {
	return e.data
}

// PreventDefault marks the event as default-prevented. It does not stop
// propagation; acting on the flag is up to whoever emitted the event.
func (e *Event) PreventDefault() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaultPrevented
}

// StopPropagation stops delivery of the event by the emitter currently
// dispatching it. Other emitters sharing the envelope keep delivering it.
// Calling it outside of a dispatch has no effect.
func (e *Event) StopPropagation() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f := e.top(); f != nil {
		e.stoppedBy = f.emitter
	}
}

// StoppedBy returns the emitter that stopped propagation, or nil.
func (e *Event) StoppedBy() *Emitter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stoppedBy
}

// PropagationStopped reports whether any emitter stopped propagation.
func (e *Event) PropagationStopped() bool {
	return e.StoppedBy() != nil
}

// StopImmediatePropagation prevents the remaining listeners of the current
// dispatch call from being invoked.
func (e *Event) StopImmediatePropagation() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f := e.top(); f != nil {
		f.immediateStopped = true
	}
}

// ImmediatePropagationStopped reports whether the current dispatch call was
// stopped by StopImmediatePropagation.
func (e *Event) ImmediatePropagationStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f := e.top(); f != nil {
		return f.immediateStopped
	}
	return false
}

// String implements fmt.Stringer.
func (e *Event) String() string {
	return "Event(" + e.typ + ")"
}

func (e *Event) top() *frame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1]
}

// push makes f the innermost frame while one of its listeners runs.
func (e *Event) push(f *frame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frames = append(e.frames, f)
}

func (e *Event) pop(f *frame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.frames) - 1; i >= 0; i-- {
		if e.frames[i] == f {
			e.frames = append(e.frames[:i:i], e.frames[i+1:]...)
			return
		}
	}
}

// halted reports whether dispatch of f must stop before the next listener.
func (e *Event) halted(f *frame) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return f.immediateStopped || (e.stoppedBy != nil && e.stoppedBy == f.emitter)
}

func (e *Event) immediateStopped(f *frame) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return f.immediateStopped
}
