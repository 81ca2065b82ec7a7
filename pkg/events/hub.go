// Package events implements the publish/subscribe hub used to dispatch UI
// and host events to script callbacks. Subscriptions are keyed by generated
// identifiers; topics are plain names chosen by the publisher.
package events

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrEmptyTopic = errors.New("events: empty topic")
	ErrNilHandler = errors.New("events: nil handler")
)

// Handler receives the arguments of a published event.
type Handler[T any] func(topic string, args []T) error

type subscription[T any] struct {
	id      string
	topic   string
	handler Handler[T]
	release func()
}

// Hub routes published events to the handlers subscribed to their topic, in
// subscription order. It is safe for concurrent use; handlers run on the
// publishing goroutine, outside the hub's lock, so a handler may subscribe
// or unsubscribe.
type Hub[T any] struct {
	mu     sync.RWMutex
	byID   map[string]*subscription[T]
	topics map[string][]*subscription[T]
	logger *slog.Logger
}

// NewHub creates an empty hub. A nil logger discards.
func NewHub[T any](logger *slog.Logger) *Hub[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub[T]{
		byID:   make(map[string]*subscription[T]),
		topics: make(map[string][]*subscription[T]),
		logger: logger,
	}
}

// Subscribe registers h for topic and returns the subscription identifier.
func (h *Hub[T]) Subscribe(topic string, handler Handler[T]) (string, error) {
	return h.SubscribeWithRelease(topic, handler, nil)
}

// SubscribeWithRelease is Subscribe with a release hook. release runs once,
// outside the hub's lock, when the subscription is removed.
func (h *Hub[T]) SubscribeWithRelease(topic string, handler Handler[T], release func()) (string, error) {
	if topic == "" {
		return "", ErrEmptyTopic
	}
	if handler == nil {
		return "", ErrNilHandler
	}
	sub := &subscription[T]{id: uuid.NewString(), topic: topic, handler: handler, release: release}

	h.mu.Lock()
	h.byID[sub.id] = sub
	h.topics[topic] = append(h.topics[topic], sub)
	h.mu.Unlock()

	h.logger.Debug("subscribe", slog.String("topic", topic), slog.String("id", sub.id))
	return sub.id, nil
}

// Unsubscribe removes a subscription and runs its release hook. It reports
// whether id was known.
func (h *Hub[T]) Unsubscribe(id string) bool {
	sub, ok := h.remove(id)
	if !ok {
		return false
	}
	if sub.release != nil {
		sub.release()
	}
	h.logger.Debug("unsubscribe", slog.String("topic", sub.topic), slog.String("id", id))
	return true
}

func (h *Hub[T]) remove(id string) (*subscription[T], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.byID[id]
	if !ok {
		return nil, false
	}
	delete(h.byID, id)
	subs := h.topics[sub.topic]
	for i, s := range subs {
		if s == sub {
			// Copy so a Publish iterating the old slice is unaffected.
			next := make([]*subscription[T], 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			subs = next
			break
		}
	}
	if len(subs) == 0 {
		delete(h.topics, sub.topic)
	} else {
		h.topics[sub.topic] = subs
	}
	return sub, true
}

// Publish calls every handler subscribed to topic and returns how many ran.
// Dispatch stops at the first handler error, which is returned.
func (h *Hub[T]) Publish(topic string, args ...T) (int, error) {
	h.mu.RLock()
	subs := h.topics[topic]
	h.mu.RUnlock()

	called := 0
	for _, sub := range subs {
		h.mu.RLock()
		_, live := h.byID[sub.id]
		h.mu.RUnlock()
		if !live {
			continue
		}
		called++
		if err := sub.handler(topic, args); err != nil {
			h.logger.Debug("handler failed", slog.String("topic", topic), slog.String("id", sub.id), slog.Any("error", err))
			return called, err
		}
	}
	return called, nil
}

// Count returns the number of subscriptions for topic.
func (h *Hub[T]) Count(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Topic returns the topic of a subscription.
func (h *Hub[T]) Topic(id string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sub, ok := h.byID[id]
	if !ok {
		return "", false
	}
	return sub.topic, true
}
