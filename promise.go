package emitter

import (
	"context"
	"fmt"
)

// Promise is an Awaitable backed by a goroutine. Listeners return one from
// Async to hand EmitAsPromise a result that settles later.
type Promise struct {
	done  chan struct{}
	value any
	err   error
}

// Async runs fn in its own goroutine and returns a Promise for its result.
// A panic inside fn settles the promise with an error wrapping
// ErrListenerPanic.
func Async(fn func() (any, error)) *Promise {
	p := &Promise{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				p.err = fmt.Errorf("%w: %v", ErrListenerPanic, r)
			}
		}()
		p.value, p.err = fn()
	}()
	return p
}

// Resolved returns a Promise already settled with value.
func Resolved(value any) *Promise {
	p := &Promise{done: make(chan struct{}), value: value}
	close(p.done)
	return p
}

// Rejected returns a Promise already settled with err.
func Rejected(err error) *Promise {
	p := &Promise{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel closed once the promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}
