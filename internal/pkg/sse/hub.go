package sse

import (
	"sync"
)

const (
	EventOrderChanged        = "order.changed"
	EventOrderDeleted        = "order.deleted"
	EventAvailabilityChanged = "availability.changed"
	EventWorkerRemoved       = "worker.removed"
)

// Event is one planning change pushed to connected screens.
type Event struct {
	Event string
	Data  interface{}
}

// Publisher is the write side of the hub. A nil Publisher drops events.
type Publisher interface {
	Publish(event Event)
}

// Hub fans planning changes out to every connected subscriber.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its event channel and a
// cleanup function that must be called once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)
	h.subscribers[ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers, ch)
		close(ch)
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers. Slow subscribers miss events
// instead of blocking the publisher.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// TotalSubscribers returns the number of active subscribers
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}

// Publish is nil-safe so optional hubs can be passed around freely.
func Publish(p Publisher, event string, data interface{}) {
	if p == nil {
		return
	}
	p.Publish(Event{Event: event, Data: data})
}
