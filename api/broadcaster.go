package api

import "sync"

// Broadcaster fans a stream of StateSnapshots out to every connected
// WebSocket client. There is exactly one VM behind the API (spec.md §5's
// single-mutator model), so unlike a per-session debugger there is no
// subscription filtering — every client sees every snapshot.
type Broadcaster struct {
	mu         sync.RWMutex
	clients    map[chan StateSnapshot]bool
	broadcast  chan StateSnapshot
	register   chan chan StateSnapshot
	unregister chan chan StateSnapshot
	done       chan struct{}
}

// NewBroadcaster creates and starts a new snapshot broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		clients:    make(map[chan StateSnapshot]bool),
		broadcast:  make(chan StateSnapshot, 256),
		register:   make(chan chan StateSnapshot),
		unregister: make(chan chan StateSnapshot),
		done:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case ch := <-b.register:
			b.mu.Lock()
			b.clients[ch] = true
			b.mu.Unlock()

		case ch := <-b.unregister:
			b.mu.Lock()
			if b.clients[ch] {
				delete(b.clients, ch)
				close(ch)
			}
			b.mu.Unlock()

		case snap := <-b.broadcast:
			b.mu.RLock()
			for ch := range b.clients {
				select {
				case ch <- snap:
				default:
					// slow client, drop this snapshot rather than block
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for ch := range b.clients {
				close(ch)
			}
			b.clients = make(map[chan StateSnapshot]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new client channel for snapshot delivery.
func (b *Broadcaster) Subscribe() chan StateSnapshot {
	ch := make(chan StateSnapshot, 64)
	b.register <- ch
	return ch
}

// Unsubscribe removes and closes a client channel.
func (b *Broadcaster) Unsubscribe(ch chan StateSnapshot) {
	b.unregister <- ch
}

// Publish sends a snapshot to every subscribed client, non-blocking.
func (b *Broadcaster) Publish(snap StateSnapshot) {
	select {
	case b.broadcast <- snap:
	default:
	}
}

// Close shuts down the broadcaster and closes all client channels.
func (b *Broadcaster) Close() {
	close(b.done)
}
