// Package emitter provides a synchronous, ordered publish/subscribe
// dispatcher for in-process events.
//
// Listeners are registered against event types and invoked one at a time,
// type-specific listeners first and catch-all listeners last. Emission comes
// in three flavours:
//   - Emit invokes every listener and reports whether any existed
//   - EmitAsPromise collects the settled outcome of every listener
//   - EmitAsGenerator yields listener results lazily
//
// Basic usage:
//
//	em := emitter.New()
//	em.On("greet", emitter.ListenerFunc(func(e *emitter.Event) any {
//		return "hello, " + e.Data().(string)
//	}))
//	em.EmitType("greet", "world")
package emitter

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure"
	"github.com/openframebox/emitter/internal/lens"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Emitter owns a listener registry and dispatches events to it.
// Listener code may freely register and remove listeners during dispatch:
// every emission works on a snapshot taken before the first listener runs.
type Emitter struct {
	id     string
	config Config
	logger logrus.FieldLogger

	mu        sync.Mutex
	listeners *lens.List[*entry]
	events    *cache.Cache

	errorsMu sync.Mutex
	errors   []*ListenerError
}

// entry is a single registration owned by the registry.
type entry struct {
	key      string
	listener Listener
	once     bool
	ctx      context.Context
	cancel   context.CancelFunc
	fired    atomic.Bool
}

func (ent *entry) active() bool {
	if ent.ctx.Err() != nil {
		return false
	}
	return !(ent.once && ent.fired.Load())
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger used by the emitter.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(em *Emitter) {
		em.logger = logger
	}
}

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(em *Emitter) {
		em.config = config
	}
}

// New creates an Emitter.
func New(opts ...Option) *Emitter {
	em := &Emitter{
		id:        uuid.NewString(),
		config:    DefaultConfig(),
		listeners: lens.New[*entry](),
		errors:    make([]*ListenerError, 0),
	}

	for _, opt := range opts {
		opt(em)
	}

	if em.logger == nil {
		logger := logrus.New()
		if level, err := logrus.ParseLevel(em.config.LogLevel); err == nil {
			logger.SetLevel(level)
		}
		em.logger = logger
	}

	if em.config.EventCacheTTL > 0 {
		em.events = cache.New(em.config.EventCacheTTL, 0)
	}

	em.logger = em.logger.WithField("emitter", em.id)

	return em
}

// ID returns the unique identifier of the emitter.
func (em *Emitter) ID() string {
	return em.id
}

// On appends a listener for the given event type.
func (em *Emitter) On(typ string, listener Listener, opts ...ListenerOption) *Subscription {
	return em.addListener(typ, listener, false, false, opts)
}

// Once appends a listener that is removed after its first invocation.
func (em *Emitter) Once(typ string, listener Listener, opts ...ListenerOption) *Subscription {
	return em.addListener(typ, listener, true, false, opts)
}

// EarlyOn prepends a listener for the given event type.
func (em *Emitter) EarlyOn(typ string, listener Listener, opts ...ListenerOption) *Subscription {
	return em.addListener(typ, listener, false, true, opts)
}

// EarlyOnce prepends a listener that is removed after its first invocation.
func (em *Emitter) EarlyOnce(typ string, listener Listener, opts ...ListenerOption) *Subscription {
	return em.addListener(typ, listener, true, true, opts)
}

// OnAny appends a catch-all listener.
func (em *Emitter) OnAny(listener Listener, opts ...ListenerOption) *Subscription {
	return em.On(AnyEvent, listener, opts...)
}

// OnceAny appends a one-time catch-all listener.
func (em *Emitter) OnceAny(listener Listener, opts ...ListenerOption) *Subscription {
	return em.Once(AnyEvent, listener, opts...)
}

// EarlyOnAny prepends a catch-all listener. It still runs after every
// type-specific listener.
func (em *Emitter) EarlyOnAny(listener Listener, opts ...ListenerOption) *Subscription {
	return em.EarlyOn(AnyEvent, listener, opts...)
}

// EarlyOnceAny prepends a one-time catch-all listener.
func (em *Emitter) EarlyOnceAny(listener Listener, opts ...ListenerOption) *Subscription {
	return em.EarlyOnce(AnyEvent, listener, opts...)
}

func (em *Emitter) addListener(typ string, listener Listener, once, early bool, opts []ListenerOption) *Subscription {
	options := newListenerOptions(opts...)
	ctx, cancel := context.WithCancel(options.Context)

	ent := &entry{
		key:      typ,
		listener: listener,
		once:     once,
		ctx:      ctx,
		cancel:   cancel,
	}

	em.mu.Lock()
	if early {
		em.listeners.Prepend(typ, ent)
	} else {
		em.listeners.Append(typ, ent)
	}
	em.mu.Unlock()

	context.AfterFunc(ctx, func() {
		em.deleteEntry(ent)
	})

	em.logger.WithFields(logrus.Fields{
		"type":     typ,
		"listener": fmt.Sprintf("%T", listener),
		"once":     once,
		"early":    early,
	}).Debug("listener added")

	return &Subscription{typ: typ, ctx: ctx, cancel: cancel}
}

// RemoveListener removes every registration of listener under typ.
// Function listeners are matched by code pointer: two closures built from the
// same function literal count as the same listener even when they capture
// different state, so removing one removes both. Cancel the Subscription
// returned at registration, or register a pointer listener, to remove a
// single closure.
func (em *Emitter) RemoveListener(typ string, listener Listener) {
	em.mu.Lock()
	var removed []*entry
	for _, ent := range em.listeners.Get(typ) {
		if sameListener(ent.listener, listener) {
			em.listeners.Delete(typ, ent)
			removed = append(removed, ent)
		}
	}
	em.mu.Unlock()

	for _, ent := range removed {
		ent.cancel()
	}

	if len(removed) > 0 {
		em.logger.WithField("type", typ).Debug("listener removed")
	}
}

// RemoveAllListeners removes every listener of the given types. Without
// arguments it clears the emitter entirely.
func (em *Emitter) RemoveAllListeners(types ...string) {
	em.mu.Lock()
	var removed []*entry
	if len(types) == 0 {
		removed = em.listeners.GetAll()
		em.listeners.Clear()
		if em.events != nil {
			em.events.Flush()
		}
	} else {
		for _, typ := range types {
			removed = append(removed, em.listeners.Get(typ)...)
			em.listeners.DeleteAll(typ)
		}
	}
	em.mu.Unlock()

	for _, ent := range removed {
		ent.cancel()
	}

	em.logger.WithFields(logrus.Fields{
		"types":   types,
		"removed": len(removed),
	}).Debug("listeners removed")
}

// Listeners returns an ordered snapshot of listeners. Without arguments it
// returns every listener in registration order. With event types it returns
// the listeners an emission of those types would invoke: the type-specific
// ones for each type followed by the catch-all ones.
func (em *Emitter) Listeners(types ...string) []Listener {
	var entries []*entry
	if len(types) == 0 {
		em.mu.Lock()
		entries = em.listeners.GetAll()
		em.mu.Unlock()
	} else {
		entries = em.resolve(types...)
	}

	out := make([]Listener, 0, len(entries))
	for _, ent := range entries {
		if ent.active() {
			out = append(out, ent.listener)
		}
	}
	return out
}

// ListenerCount returns len(em.Listeners(types...)).
func (em *Emitter) ListenerCount(types ...string) int {
	return len(em.Listeners(types...))
}

// CreateEvent returns an envelope for typ and data. Calls with identical
// arguments return the same envelope until it is emitted or the configured
// cache TTL passes. Payloads that are not comparable with == (maps, slices,
// funcs) always get a fresh envelope.
func (em *Emitter) CreateEvent(typ string, data any) *Event {
	if em.events == nil || !cacheable(data) {
		return NewEvent(typ, data)
	}

	key, ok := eventKey(typ, data)
	if !ok {
		return NewEvent(typ, data)
	}

	if cached, found := em.events.Get(key); found {
		if event := cached.(*Event); sameData(event.data, data) {
			return event
		}
	}

	event := NewEvent(typ, data)
	em.events.SetDefault(key, event)
	return event
}

// Errors returns a copy of every listener error recorded by EmitAsPromise.
func (em *Emitter) Errors() []*ListenerError {
	em.errorsMu.Lock()
	defer em.errorsMu.Unlock()

	errorsCopy := make([]*ListenerError, len(em.errors))
	copy(errorsCopy, em.errors)
	return errorsCopy
}

// ClearErrors clears all recorded errors.
func (em *Emitter) ClearErrors() {
	em.errorsMu.Lock()
	defer em.errorsMu.Unlock()
	em.errors = make([]*ListenerError, 0)
}

func (em *Emitter) recordError(err *ListenerError) {
	em.errorsMu.Lock()
	defer em.errorsMu.Unlock()
	em.errors = append(em.errors, err)
}

// resolve returns the listeners an emission of types would invoke.
// Entries already cancelled or spent are left out.
func (em *Emitter) resolve(types ...string) []*entry {
	em.mu.Lock()
	defer em.mu.Unlock()

	var planned []*entry
	for _, typ := range types {
		if typ != AnyEvent {
			planned = append(planned, em.listeners.Get(typ)...)
		}
	}
	planned = append(planned, em.listeners.Get(AnyEvent)...)

	out := planned[:0]
	for _, ent := range planned {
		if ent.active() {
			out = append(out, ent)
		}
	}
	return out
}

func (em *Emitter) deleteEntry(ent *entry) {
	em.mu.Lock()
	em.listeners.Delete(ent.key, ent)
	em.mu.Unlock()
}

// removeEntry drops a spent one-time entry.
func (em *Emitter) removeEntry(ent *entry) {
	em.deleteEntry(ent)
	ent.cancel()
	em.logger.WithField("type", ent.key).Debug("one-time listener removed")
}

// forget evicts event from the envelope cache once it has been emitted.
func (em *Emitter) forget(event *Event) {
	if em.events == nil {
		return
	}

	if !cacheable(event.data) {
		return
	}

	key, ok := eventKey(event.typ, event.data)
	if !ok {
		return
	}

	if cached, found := em.events.Get(key); found && cached.(*Event) == event {
		em.events.Delete(key)
	}
}

func eventKey(typ string, data any) (string, bool) {
	hash, err := hashstructure.Hash(data, nil)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s:%d", typ, hash), true
}

// cacheable reports whether data can be checked for identity with ==.
func cacheable(data any) bool {
	return data == nil || reflect.TypeOf(data).Comparable()
}

// sameData reports whether a cached payload is identical to data. Both must
// be cacheable; the structural hash only narrows the lookup.
func sameData(cached, data any) bool {
	if cached == nil || data == nil {
		return cached == nil && data == nil
	}

	if reflect.TypeOf(cached) != reflect.TypeOf(data) {
		return false
	}

	return cached == data
}
