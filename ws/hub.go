// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/refresh"
	"github.com/danielhkuo/livepoll/results"
	"github.com/gorilla/websocket"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps incoming frames. Clients only send control frames.
	maxMessageSize = 512

	sendBufferSize      = 64
	broadcastBufferSize = 256
)

// Message types pushed to clients.
const (
	TypeOverlay = "overlay"
	TypeEvent   = "event"
)

// Message is the JSON envelope of every frame sent to a client.
type Message struct {
	Type    string `json:"type"`
	PollID  string `json:"poll_id,omitempty"`
	Payload any    `json:"payload"`
}

// SnapshotSource gives the hub the state to send to a client on connect.
type SnapshotSource interface {
	Snapshot() refresh.Snapshot
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Overlays are embedded in streaming software running on other origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	pollID string // empty means every poll
}

type outbound struct {
	pollID string
	data   []byte
}

// Hub pushes overlay updates and notifications to connected overlay clients.
type Hub struct {
	src        SnapshotSource
	clients    map[*client]bool
	broadcast  chan outbound
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub(src SnapshotSource) *Hub {
	return &Hub{
		src:        src,
		clients:    make(map[*client]bool),
		broadcast:  make(chan outbound, broadcastBufferSize),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			slog.Info("ws: client connected", "poll_id", c.pollID, "total_clients", h.ClientCount())

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			slog.Info("ws: client disconnected", "total_clients", h.ClientCount())

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if c.pollID != "" && msg.pollID != "" && c.pollID != msg.pollID {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					slog.Warn("ws: dropping message for slow client")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishSnapshot sends a fresh overlay for every poll. Register it with
// refresh.Loop.OnChange.
func (h *Hub) PublishSnapshot(s refresh.Snapshot) {
	for _, p := range s.Polls {
		h.enqueue(p.ID, Message{
			Type:    TypeOverlay,
			PollID:  p.ID,
			Payload: results.Overlay(p, s.Transactions),
		})
	}
}

// Follow forwards bus events to clients until ch closes or ctx ends.
func (h *Hub) Follow(ctx context.Context, ch <-chan models.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			h.enqueue(ev.PollID, Message{Type: TypeEvent, PollID: ev.PollID, Payload: ev})
		}
	}
}

func (h *Hub) enqueue(pollID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("ws: failed to encode message", "type", msg.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- outbound{pollID: pollID, data: data}:
	default:
		slog.Warn("ws: broadcast queue full, dropping message", "type", msg.Type)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS handles GET /ws. The optional ?poll= query limits the feed to
// one poll. The client first receives the current overlay of each poll it
// follows.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws: upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		pollID: r.URL.Query().Get("poll"),
	}
	c.sendInitial(h.src.Snapshot())

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) sendInitial(s refresh.Snapshot) {
	for _, p := range s.Polls {
		if c.pollID != "" && p.ID != c.pollID {
			continue
		}
		data, err := json.Marshal(Message{
			Type:    TypeOverlay,
			PollID:  p.ID,
			Payload: results.Overlay(p, s.Transactions),
		})
		if err != nil {
			continue
		}
		select {
		case c.send <- data:
		default:
			return
		}
	}
}

// readPump discards client frames and keeps the read deadline moving while
// pongs arrive.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("ws: unexpected close error", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
