package presence

import (
	"sync"

	"github.com/FeiJiang1234/presencekit/pkg/broker"
)

// Feed bridges broker events to per-client channels for streaming. Sends
// are non-blocking: a client whose buffer is full misses events instead
// of stalling the emitting operation.
type Feed struct {
	mu      sync.RWMutex
	clients map[chan broker.Event]struct{}
	buffer  int
	closed  bool
}

// NewFeed creates a feed. Each subscriber channel buffers up to buffer
// events; a minimum of 1 is enforced.
func NewFeed(buffer int) *Feed {
	return &Feed{
		clients: make(map[chan broker.Event]struct{}),
		buffer:  max(buffer, 1),
	}
}

// Observe fans the event out to every subscribed client.
func (f *Feed) Observe(ev broker.Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a listener channel. The caller must Unsubscribe it
// when done. A closed feed returns an already-closed channel.
func (f *Feed) Subscribe() chan broker.Event {
	ch := make(chan broker.Event, f.buffer)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		close(ch)
		return ch
	}
	f.clients[ch] = struct{}{}
	return ch
}

// Unsubscribe removes the listener and closes its channel. Safe to call
// for a channel that was already removed.
func (f *Feed) Unsubscribe(ch chan broker.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.clients[ch]; ok {
		delete(f.clients, ch)
		close(ch)
	}
}

// Close closes the feed and every subscriber channel. Idempotent.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for ch := range f.clients {
		close(ch)
	}
	clear(f.clients)
}
