package emitter

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/sirupsen/logrus"
)

// ForwardTo publishes the envelopes of the given event types on bus, under
// the topic ForwardPrefix+type. Without types every event is forwarded.
// The envelope itself is published, so emitters on the other side of the bus
// share its propagation state. The returned function stops forwarding.
//
// EventBus holds its lock while running synchronous handlers, so a handler
// of bus must not emit into an emitter that forwards to the same bus.
func (em *Emitter) ForwardTo(bus EventBus.BusPublisher, types ...string) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())

	forward := ListenerFunc(func(event *Event) any {
		bus.Publish(em.config.ForwardPrefix+event.Type(), event)
		return nil
	})

	if len(types) == 0 {
		types = []string{AnyEvent}
	}

	for _, typ := range types {
		em.On(typ, forward, WithContext(ctx))
	}

	em.logger.WithField("types", types).Debug("forwarding to bus")

	return cancel
}

// ListenTo subscribes to the bus topics ForwardPrefix+type for each given
// type and emits every envelope received. Publishers on these topics must
// publish a single *Event argument. The returned function unsubscribes.
func (em *Emitter) ListenTo(bus EventBus.BusSubscriber, types ...string) (func(), error) {
	handler := func(event *Event) {
		em.Emit(event)
	}

	topics := make([]string, 0, len(types))
	unsubscribe := func() {
		for _, topic := range topics {
			if err := bus.Unsubscribe(topic, handler); err != nil {
				em.logger.WithFields(logrus.Fields{
					"topic": topic,
				}).WithError(err).Warn("could not unsubscribe from bus")
			}
		}
	}

	for _, typ := range types {
		topic := em.config.ForwardPrefix + typ
		if err := bus.Subscribe(topic, handler); err != nil {
			unsubscribe()
			return nil, err
		}
		topics = append(topics, topic)
	}

	em.logger.WithField("topics", topics).Debug("listening to bus")

	return unsubscribe, nil
}
