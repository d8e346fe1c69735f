// Package events fans store change events out to the contexts that
// subscribed to them.
package events

import (
	"sync"
	"time"

	"rolstat/domain/core"
	"rolstat/internal"
	"rolstat/ports"
)

// Hub delivers change events synchronously, in subscription order, to every
// subscriber whose origin differs from the event's. Events from
// core.OriginExternal have no known writer and reach every subscriber.
type Hub struct {
	mu   sync.RWMutex
	subs []*subscription
	log  *internal.Logger
}

type subscription struct {
	id     core.ID
	origin core.Origin
	fn     func(ports.ChangeEvent)
	hub    *Hub
	once   sync.Once
}

// NewHub creates an empty hub
func NewHub(logger *internal.Logger) *Hub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Hub{log: logger.Named("events")}
}

// Subscribe registers fn for events written by any origin other than origin
func (h *Hub) Subscribe(origin core.Origin, fn func(ports.ChangeEvent)) ports.Subscription {
	s := &subscription{id: core.NewID(), origin: origin, fn: fn, hub: h}

	h.mu.Lock()
	h.subs = append(h.subs, s)
	total := len(h.subs)
	h.mu.Unlock()

	h.log.Debug("subscriber %s registered for origin %s (total: %d)", s.id, origin, total)
	return s
}

// Publish delivers ev. A panicking subscriber is logged and does not prevent
// delivery to the others.
func (h *Hub) Publish(ev ports.ChangeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	subs := make([]*subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, s := range subs {
		if ev.Origin != core.OriginExternal && s.origin == ev.Origin {
			continue
		}
		h.deliver(s, ev)
	}
}

func (h *Hub) deliver(s *subscription, ev ports.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("subscriber %s panicked on %s: %v", s.id, ev.Key, r)
		}
	}()
	s.fn(ev)
}

// Len returns the number of active subscriptions
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (s *subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		for i, other := range h.subs {
			if other == s {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				break
			}
		}
		remaining := len(h.subs)
		h.mu.Unlock()
		h.log.Debug("subscriber %s unregistered (remaining: %d)", s.id, remaining)
	})
}

var _ ports.ChangeNotifier = (*Hub)(nil)
var _ ports.ChangePublisher = (*Hub)(nil)
