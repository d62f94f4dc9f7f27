// Package events broadcasts named state-change events to in-process
// listeners such as the activity feed.
package events

import (
	"sync"
	"time"

	"github.com/deltacrown/crownwatch/internal/reconcile"
)

// Event names broadcast after every applied change.
const (
	TournamentStateChanged = "tournament:state-changed"
	NotificationsUpdated   = "notifications:updated"
)

// Event carries the full applied snapshot as its detail.
type Event struct {
	Name   string
	Detail reconcile.Snapshot
	At     time.Time
}

// DefaultBuffer is the channel capacity used when Subscribe gets a
// non-positive size.
const DefaultBuffer = 16

// Bus fans events out to subscribers. Publish never blocks; a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}
	closed  bool
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{clients: make(map[chan Event]struct{})}
}

// Subscribe registers a listener. The returned cancel func removes it and
// closes the channel; calling it more than once is safe.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.clients[ch]; ok {
				delete(b.clients, ch)
				close(ch)
			}
		})
	}
}

// Publish sends ev to every subscriber. A zero At is set to now.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscribers get a closed
// channel and later publishes go nowhere.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.clients {
		delete(b.clients, ch)
		close(ch)
	}
}
