package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handler consumes one event synchronously.
type Handler func(Event)

// Bus dispatches events to handlers in registration order.
//
// Emit is single-threaded: it must only be called from the engine
// goroutine. Events emitted from inside a handler are queued and
// dispatched after the current event has reached every handler, so
// delivery order is always FIFO.
//
// Streams are the goroutine-safe side: each stream is a buffered channel
// fed after handlers run. A full stream drops the event rather than
// stall the engine.
type Bus struct {
	handlers    []Handler
	queue       []Event
	dispatching bool

	mu      sync.Mutex
	streams map[string]chan Event
	dropped uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{streams: make(map[string]chan Event)}
}

// Subscribe registers a synchronous handler.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Emit delivers e to every handler and stream. Missing id/time are filled in.
func (b *Bus) Emit(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.queue = append(b.queue, e)
	if b.dispatching {
		return
	}

	b.dispatching = true
	defer func() { b.dispatching = false }()
	for len(b.queue) > 0 {
		ev := b.queue[0]
		b.queue = b.queue[1:]
		for _, h := range b.handlers {
			h(ev)
		}
		b.broadcast(ev)
	}
	b.queue = nil
}

// Stream opens a buffered subscription for a consumer goroutine.
func (b *Bus) Stream(buffer int) (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.streams[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unstream closes and removes a stream. Unknown ids are ignored.
func (b *Bus) Unstream(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.streams[id]; ok {
		delete(b.streams, id)
		close(ch)
	}
}

// Close ends every stream.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.streams {
		delete(b.streams, id)
		close(ch)
	}
}

// Dropped returns how many stream deliveries were discarded.
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *Bus) broadcast(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.streams {
		select {
		case ch <- e:
		default:
			b.dropped++
			if b.dropped%100 == 1 {
				slog.Warn("event stream full, dropping", "stream", id, "type", e.Type, "dropped", b.dropped)
			}
		}
	}
}
