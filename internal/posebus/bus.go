// Package posebus fans published poses out to any number of subscribers and
// exposes the stream on the debug HTTP routes.
package posebus

import (
	"sync"

	"github.com/google/uuid"

	"github.com/banshee-data/uwbpose/internal/pose"
)

// subscriberBuffer is how many poses a slow subscriber may fall behind before
// poses are dropped for it.
const subscriberBuffer = 16

// Bus is a pose topic. Publish never blocks: a subscriber whose buffer is
// full misses that pose.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string]chan pose.Stamped
	latest      pose.Stamped
	hasLatest   bool
	closing     bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string]chan pose.Stamped),
	}
}

// Subscribe creates a new channel for receiving poses. The ID is used to
// identify the channel when unsubscribing. Subscribing to a closed bus
// returns an already closed channel.
func (b *Bus) Subscribe() (string, <-chan pose.Stamped) {
	id := uuid.NewString()
	ch := make(chan pose.Stamped, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closing {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Publish records p as the latest pose and offers it to every subscriber.
func (b *Bus) Publish(p pose.Stamped) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closing {
		return
	}
	b.latest = p
	b.hasLatest = true
	for _, ch := range b.subscribers {
		select {
		case ch <- p:
		default:
			// subscriber is behind, skip so the poll loop never blocks
		}
	}
}

// Latest returns the most recently published pose.
func (b *Bus) Latest() (pose.Stamped, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.hasLatest
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close closes all subscribed channels. Later publishes are dropped.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closing {
		return nil
	}
	b.closing = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	return nil
}
