package emitter

import (
	"context"
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"
)

// Emit invokes every listener matching the event type, in order, and
// reports whether there were any. A panicking listener aborts the emission
// and the panic reaches the caller.
//
// StopPropagation only halts the emitter that was dispatching the event when
// it was called. Another emitter handed the same envelope afterwards still
// delivers it to all of its listeners and returns true if it has any; only
// the stopping emitter skips the envelope from then on.
func (em *Emitter) Emit(event *Event) bool {
	planned := em.resolve(event.typ)
	defer em.forget(event)

	if len(planned) == 0 {
		return false
	}

	f := &frame{emitter: em}
	for _, ent := range planned {
		if em.halted(event, f) {
			break
		}
		if !ent.active() {
			continue
		}
		em.invoke(ent, event, f)
	}

	return true
}

// EmitType emits the envelope CreateEvent returns for typ and data.
func (em *Emitter) EmitType(typ string, data any) bool {
	return em.Emit(em.CreateEvent(typ, data))
}

// Dispatch emits a prebuilt event. It is an alias of Emit.
func (em *Emitter) Dispatch(event *Event) bool {
	return em.Emit(event)
}

// EmitAsPromise invokes the matching listeners one after another, waiting
// for each Awaitable result before moving on, and returns the settled
// outcome of every invoked listener in order.
//
// Failures never abort the emission: a listener that panics, returns an
// error or returns an Awaitable that rejects yields an Outcome whose Err is
// a *ListenerError, and the next listener runs. Dispatch stops early when
// ctx is done.
func (em *Emitter) EmitAsPromise(ctx context.Context, event *Event) []Outcome {
	planned := em.resolve(event.typ)
	defer em.forget(event)

	outcomes := make([]Outcome, 0, len(planned))
	f := &frame{emitter: em}
	for _, ent := range planned {
		if err := ctx.Err(); err != nil {
			em.logger.WithFields(logrus.Fields{
				"type":  event.typ,
				"error": err,
			}).Debug("emission cancelled")
			break
		}
		if em.halted(event, f) {
			break
		}
		if !ent.active() {
			continue
		}

		outcome, ok := em.settle(ctx, ent, event, f)
		if ok {
			outcomes = append(outcomes, outcome)
		}
	}

	return outcomes
}

// EmitAsGenerator returns a sequence yielding the result of each matching
// listener. Nothing runs until the sequence is ranged over, and a listener is
// invoked only when its result is pulled: breaking out of the loop leaves the
// remaining listeners untouched.
func (em *Emitter) EmitAsGenerator(event *Event) iter.Seq[any] {
	return func(yield func(any) bool) {
		planned := em.resolve(event.typ)
		defer em.forget(event)

		f := &frame{emitter: em}
		for _, ent := range planned {
			if em.halted(event, f) {
				return
			}
			if !ent.active() {
				continue
			}

			value, ok := em.invoke(ent, event, f)
			if !ok {
				continue
			}
			if !yield(value) {
				return
			}
		}
	}
}

// Values maps outcomes to their value, or to their error when rejected.
func Values(outcomes []Outcome) []any {
	out := make([]any, len(outcomes))
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			out[i] = outcome.Err
			continue
		}
		out[i] = outcome.Value
	}
	return out
}

// invoke calls a single listener on behalf of the dispatch frame f.
// It reports false when a one-time listener was already consumed.
func (em *Emitter) invoke(ent *entry, event *Event, f *frame) (any, bool) {
	if ent.once && !ent.fired.CompareAndSwap(false, true) {
		return nil, false
	}

	event.push(f)
	defer func() {
		event.pop(f)
		if ent.once {
			em.removeEntry(ent)
		}
	}()

	return ent.listener.HandleEvent(event), true
}

func (em *Emitter) settle(ctx context.Context, ent *entry, event *Event, f *frame) (outcome Outcome, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err := em.fail(ent, event, fmt.Errorf("%w: %v", ErrListenerPanic, r))
			err.Recovered = r
			outcome, ok = Outcome{Err: err}, true
		}
	}()

	value, ok := em.invoke(ent, event, f)
	if !ok {
		return Outcome{}, false
	}

	switch v := value.(type) {
	case Awaitable:
		settled, err := v.Await(ctx)
		if err != nil {
			return Outcome{Err: em.fail(ent, event, err)}, true
		}
		return Outcome{Value: settled}, true
	case error:
		return Outcome{Err: em.fail(ent, event, v)}, true
	}

	return Outcome{Value: value}, true
}

func (em *Emitter) fail(ent *entry, event *Event, cause error) *ListenerError {
	err := &ListenerError{
		EventType:    event.typ,
		ListenerType: fmt.Sprintf("%T", ent.listener),
		Err:          cause,
	}

	em.recordError(err)
	em.logger.WithFields(logrus.Fields{
		"type":     event.typ,
		"listener": err.ListenerType,
	}).WithError(cause).Warn("listener failed")

	return err
}

// halted reports whether f must stop before its next listener: either the
// current dispatch was stopped immediately, or this emitter stopped the
// event's propagation.
func (em *Emitter) halted(event *Event, f *frame) bool {
	if !event.halted(f) {
		return false
	}

	em.logger.WithFields(logrus.Fields{
		"type":      event.typ,
		"immediate": event.immediateStopped(f),
	}).Debug("propagation stopped")

	return true
}
