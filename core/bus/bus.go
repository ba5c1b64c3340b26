// Package bus provides a topic-based publish/subscribe event bus.
// Delivery is synchronous and in subscription order; a panicking subscriber
// is logged and skipped so one consumer cannot break the others. Payloads
// are shared by reference and must be treated as read-only.
package bus

import (
	"sync"

	"go.uber.org/zap"

	"costcalc/internal/logging"
)

// TopicComputed carries a types.ComputedEvent after every successful compute
const TopicComputed = "calculator:computed"

// Handler receives published payloads for a topic
type Handler func(payload interface{})

// Bus is a topic pub/sub hub. Construct explicit instances; there is no
// ambient global.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID int
	logger *zap.Logger
}

type subscription struct {
	id      int
	handler Handler
}

// New creates an empty bus
func New() *Bus {
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logging.Logger,
	}
}

// Subscribe registers a handler for a topic and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers a payload to every subscriber of the topic, in
// subscription order. Publishing to a topic with no subscribers is a no-op.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(topic, s, payload)
	}
}

func (b *Bus) deliver(topic string, s subscription, payload interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("event subscriber panicked",
				zap.String("topic", topic),
				zap.Any("panic", rec))
		}
	}()
	s.handler(payload)
}

// SubscriberCount returns the number of subscribers for a topic
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
