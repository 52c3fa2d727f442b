// Package feed pushes live inventory updates to every connected viewer.
// A single Hub owns the viewer registry; any component that changes
// inventory (webhook ingestion, reservations, coordinate enrichment)
// hands the refreshed listing set to BroadcastListings and the hub fans
// it out. Delivery is best-effort: a viewer that cannot keep up is
// dropped, never waited on.
package feed

import (
	"context"
	"log"
	"sync"

	"github.com/thedjrox/Leftover-Locator/internal/model"
)

// EventNewRestaurant is the message type emitted on every inventory
// change. Clients receive the full current listing set and replace
// their local state with it, so all viewers converge after any change.
const EventNewRestaurant = "new-restaurant"

// Message is the envelope written to viewers.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub maintains the set of connected viewers and fans broadcast
// messages out to them.
type Hub struct {
	viewers    map[*Viewer]bool
	broadcast  chan Message
	register   chan *Viewer
	unregister chan *Viewer
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a hub with no viewers. Run must be started before
// Register/Unregister are used.
func NewHub() *Hub {
	return &Hub{
		viewers:    make(map[*Viewer]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *Viewer),
		unregister: make(chan *Viewer),
		done:       make(chan struct{}),
	}
}

// Run processes viewer lifecycle and broadcast events until ctx is
// canceled. On cancellation every viewer's send channel is closed so
// write pumps terminate and connections drain; this is the shutdown
// path, run before the storage handle is closed.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllViewers()
			close(h.done)
			return

		case v := <-h.register:
			h.mu.Lock()
			h.viewers[v] = true
			total := len(h.viewers)
			h.mu.Unlock()
			log.Printf("feed: viewer connected (total=%d)", total)

		case v := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.viewers[v]; ok {
				delete(h.viewers, v)
				close(v.send)
			}
			total := len(h.viewers)
			h.mu.Unlock()
			log.Printf("feed: viewer disconnected (total=%d)", total)

		case msg := <-h.broadcast:
			h.broadcastToViewers(msg)
		}
	}
}

// Register attaches a viewer to the hub. A no-op once Run has returned,
// so connections racing with shutdown do not hang.
func (h *Hub) Register(v *Viewer) {
	select {
	case h.register <- v:
	case <-h.done:
	}
}

// Unregister detaches a viewer. Safe to call for a viewer the hub has
// already dropped, and a no-op once Run has returned.
func (h *Hub) Unregister(v *Viewer) {
	select {
	case h.unregister <- v:
	case <-h.done:
	}
}

// broadcastToViewers delivers msg to every viewer whose send buffer has
// room. A full buffer means the viewer is too slow or gone; it is
// dropped on the spot rather than stalling the fan-out.
func (h *Hub) broadcastToViewers(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var drop []*Viewer
	for v := range h.viewers {
		select {
		case v.send <- msg:
		default:
			drop = append(drop, v)
		}
	}
	for _, v := range drop {
		close(v.send)
		delete(h.viewers, v)
		log.Printf("feed: dropped slow viewer (total=%d)", len(h.viewers))
	}
}

// closeAllViewers terminates every connection during shutdown.
func (h *Hub) closeAllViewers() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.viewers {
		close(v.send)
		delete(h.viewers, v)
	}
	log.Printf("feed: closed all viewers on shutdown")
}

// BroadcastListings queues the full current listing set for delivery to
// every viewer. Never blocks: when the broadcast buffer is full the
// update is dropped, because the next inventory change will carry a
// fresher snapshot anyway.
func (h *Hub) BroadcastListings(listings []model.Listing) {
	msg := Message{Event: EventNewRestaurant, Data: listings}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("feed: broadcast buffer full, dropping snapshot of %d listings", len(listings))
	}
}

// ViewerCount returns the number of connected viewers.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}
