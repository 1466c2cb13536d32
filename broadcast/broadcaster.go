// Package broadcast fans listing change events out to connected SSE
// clients. It is the server-side replacement for the original client's
// browser-storage cross-tab sync: every connected map client observes the
// same stream, and the server remains the single source of truth.
package broadcast

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// clientBufferSize bounds how many events a slow client may fall behind
// before it starts missing them.
const clientBufferSize = 32

// Broadcaster manages connected clients and delivers events to all of them.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]chan Event
	log     *logrus.Logger
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster(log *logrus.Logger) *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]chan Event),
		log:     log,
	}
}

// Subscribe registers a new client and returns its id and event channel.
// The channel is closed when the client is removed.
func (b *Broadcaster) Subscribe() (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clientID := uuid.New().String()
	ch := make(chan Event, clientBufferSize)
	b.clients[clientID] = ch

	b.log.WithField("client_id", clientID).Debug("sse client subscribed")
	return clientID, ch
}

// Unsubscribe removes a client and closes its channel. Safe to call for an
// already-removed id.
func (b *Broadcaster) Unsubscribe(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[clientID]; ok {
		delete(b.clients, clientID)
		close(ch)
		b.log.WithField("client_id", clientID).Debug("sse client unsubscribed")
	}
}

// Publish delivers an event to every connected client. A client whose
// buffer is full skips the event rather than blocking the publisher.
func (b *Broadcaster) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for clientID, ch := range b.clients {
		select {
		case ch <- event:
		default:
			b.log.WithField("client_id", clientID).Warn("sse client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close unsubscribes every client, closing all channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for clientID, ch := range b.clients {
		delete(b.clients, clientID)
		close(ch)
	}
}
