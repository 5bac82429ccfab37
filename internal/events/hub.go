package events

import (
	"sync"
	"sync/atomic"

	"grimm.is/rampart/internal/clock"
)

// DefaultBuffer is the channel size used when Subscribe is given none.
const DefaultBuffer = 256

// Hub fans events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu        sync.RWMutex
	subs      map[*Subscription]struct{}
	published atomic.Uint64
}

// Subscription receives events on C until Close is called.
type Subscription struct {
	C <-chan Event

	ch      chan Event
	types   map[EventType]bool // nil receives everything
	hub     *Hub
	dropped atomic.Uint64
	once    sync.Once
}

// NewHub creates a new event hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Publish stamps e if needed and offers it to every matching subscriber.
func (h *Hub) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = clock.Now()
	}
	h.published.Add(1)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.types != nil && !sub.types[e.Type] {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			sub.dropped.Add(1)
		}
	}
}

// Subscribe registers for the given types, or for all events when none
// are given. bufSize <= 0 uses DefaultBuffer.
func (h *Hub) Subscribe(bufSize int, types ...EventType) *Subscription {
	if bufSize <= 0 {
		bufSize = DefaultBuffer
	}
	sub := &Subscription{ch: make(chan Event, bufSize), hub: h}
	sub.C = sub.ch
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Published counts every event handed to Publish.
func (h *Hub) Published() uint64 {
	return h.published.Load()
}

// Len is the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// Dropped counts events missed because C was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}
