package hub

import (
	"log/slog"
	"sync"

	"github.com/atikulmunna/deskwatch/internal/model"
)

const subscriberBuffer = 256

// Sink is the presentation boundary. Emit must not block the caller.
type Sink interface {
	Emit(topic string, event model.Event)
}

// Message is what subscribers receive.
type Message struct {
	Topic string
	Event model.Event
}

// Hub fans events out to every subscriber. A subscriber that falls behind
// loses events rather than stalling the pipeline.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
	status      *Message // last watcher status, replayed to late subscribers
	dropped     int64
	closed      bool
	logger      *slog.Logger
}

// New creates an empty Hub. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[chan Message]struct{}),
		logger:      logger,
	}
}

// Subscribe returns a buffered channel that receives every emitted event.
// If watching has already been announced, that status is delivered first.
func (h *Hub) Subscribe() <-chan Message {
	ch := make(chan Message, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	if h.status != nil {
		ch <- *h.status
	}
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		if ch == sub {
			delete(h.subscribers, ch)
			close(ch)
			return
		}
	}
}

// Emit delivers event to all subscribers without blocking.
func (h *Hub) Emit(topic string, event model.Event) {
	msg := Message{Topic: topic, Event: event}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if event.Type == model.EventWatcherStatus {
		h.status = &msg
	}

	for ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			h.dropped++
			h.logger.Warn("dropped event for slow subscriber", "type", event.Type, "dropped_total", h.dropped)
		}
	}
}

// Dropped returns the total number of events dropped due to slow subscribers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close closes every subscriber channel. Later emits are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
