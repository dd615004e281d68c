// Package notify fans orchestrator events out to subscribers.
package notify

import (
	"sort"
	"sync"

	"github.com/tantralabs/sena/logger"
	"github.com/tantralabs/sena/models"
)

// Sink delivers an event to one subscriber.
type Sink interface {
	Deliver(subscriber string, event models.Event) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(subscriber string, event models.Event) error

func (f SinkFunc) Deliver(subscriber string, event models.Event) error {
	return f(subscriber, event)
}

type subscription struct {
	sink  Sink
	types map[models.EventType]bool
}

// Hub is safe for concurrent use. Delivery is synchronous but a failing or
// panicking sink is logged and skipped, it never reaches the caller.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]*subscription)}
}

func expand(types []models.EventType) []models.EventType {
	if len(types) == 0 {
		return models.EventTypes
	}
	out := make([]models.EventType, 0, len(types))
	for _, t := range types {
		if t == models.EventAll {
			return models.EventTypes
		}
		out = append(out, t)
	}
	return out
}

// Subscribe adds types to subscriber's subscription, replacing its sink.
// No types, or EventAll, means every type.
func (h *Hub) Subscribe(subscriber string, sink Sink, types ...models.EventType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.subs[subscriber]
	if !ok {
		s = &subscription{types: make(map[models.EventType]bool)}
		h.subs[subscriber] = s
	}
	s.sink = sink
	for _, t := range expand(types) {
		s.types[t] = true
	}
}

// Unsubscribe removes types from subscriber. No types, or EventAll, removes
// the subscriber entirely.
func (h *Hub) Unsubscribe(subscriber string, types ...models.EventType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.subs[subscriber]
	if !ok {
		return
	}
	for _, t := range expand(types) {
		delete(s.types, t)
	}
	if len(s.types) == 0 {
		delete(h.subs, subscriber)
	}
}

// Subscribers lists who receives events of type t, sorted.
func (h *Hub) Subscribers(t models.EventType) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var names []string
	for name, s := range h.subs {
		if s.types[t] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (h *Hub) Notify(event models.Event) {
	h.mu.RLock()
	targets := make(map[string]Sink)
	for name, s := range h.subs {
		if s.types[event.Type] {
			targets[name] = s.sink
		}
	}
	h.mu.RUnlock()

	for name, sink := range targets {
		deliver(name, sink, event)
	}
}

func deliver(name string, sink Sink, event models.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Notification sink for %s panicked: %v", name, r)
		}
	}()
	if err := sink.Deliver(name, event); err != nil {
		logger.Warnf("Failed to notify %s of %s: %v", name, event.Type, err)
	}
}

// LogSink writes events to the structured logger.
type LogSink struct{}

func (LogSink) Deliver(subscriber string, event models.Event) error {
	l := logger.With("subscriber", subscriber, "type", string(event.Type), "agent", event.Agent)
	if event.Decision != nil {
		l = l.With("action", string(event.Decision.Action), "price", event.Decision.Price, "pnl", event.Decision.ProfitLoss)
	}
	if event.Type == models.EventError {
		l.Warn(event.Message)
	} else {
		l.Info(event.Message)
	}
	return nil
}
