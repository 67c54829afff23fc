// Package notify is the live fan-out channel. One goroutine owns the
// connected-client set and the ring of recent events; everything reaches it
// through channels, so registration, removal and broadcast never race.
//
// Delivery is at-most-once and best-effort: a slow client is dropped rather
// than allowed to stall the fan-out, and a client that connects after an
// event was broadcast does not receive it. Upload and reply events are also
// persisted by their producers; the broadcast is purely a latency
// optimization for clients that are already connected.
package notify

import (
	"context"
	"log/slog"

	"teamshare/internal/models"
)

const (
	// recentCap bounds the in-memory history handed to dashboard loads.
	// Restart clears it; that is a design choice, not an accident.
	recentCap = 256

	clientBuffer = 64
)

type Hub struct {
	log        *slog.Logger
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.Event
	snapshot   chan chan []models.Event

	recent []models.Event
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.Event, clientBuffer),
		snapshot:   make(chan chan []models.Event),
	}
}

// Run owns all hub state until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case reply := <-h.snapshot:
			out := make([]models.Event, len(h.recent))
			copy(out, h.recent)
			reply <- out

		case ev := <-h.broadcast:
			h.remember(ev)
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					// Client cannot keep up; cut it loose instead of
					// blocking everyone else.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish hands ev to the fan-out loop. Events are broadcast in the order
// the hub receives them; nothing beyond that is guaranteed.
func (h *Hub) Publish(ev models.Event) {
	h.broadcast <- ev
}

// Recent returns a snapshot of the ring buffer, oldest first.
func (h *Hub) Recent() []models.Event {
	reply := make(chan []models.Event, 1)
	h.snapshot <- reply
	return <-reply
}

func (h *Hub) remember(ev models.Event) {
	h.recent = append(h.recent, ev)
	if len(h.recent) > recentCap {
		h.recent = h.recent[len(h.recent)-recentCap:]
	}
}
