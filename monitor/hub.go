// Package monitor serves reactor state to remote consoles over HTTP and
// websocket.
package monitor

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/telemetry"
)

const writeWait = 10 * time.Second

// Message types sent on the websocket stream.
const (
	TypeSnapshot = "snapshot"
	TypeEvent    = "event"
)

// Message is one frame of the websocket stream.
type Message struct {
	Type     string              `json:"type"`
	Snapshot *telemetry.Snapshot `json:"snapshot,omitempty"`
	Event    *telemetry.Event    `json:"event,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots and events out to connected websocket clients.
// A client that falls SendBuffer messages behind is dropped.
type Hub struct {
	log        *slog.Logger
	upgrader   websocket.Upgrader
	sendBuffer int

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  *telemetry.Snapshot
	frame   []byte // Last snapshot frame, replayed to new clients

	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// NewHub creates a hub and starts its broadcaster goroutine.
func NewHub(cfg config.MonitorConfig, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		log:        logger,
		sendBuffer: max(cfg.SendBuffer, 1),
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, max(cfg.BroadcastBuffer, 1)),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	h.wg.Add(1)
	go h.run()
	return h
}

// PublishSnapshot stores the snapshot for /api/reactors and streams it.
func (h *Hub) PublishSnapshot(s *telemetry.Snapshot) {
	data, err := json.Marshal(Message{Type: TypeSnapshot, Snapshot: s})
	if err != nil {
		h.log.Error("encoding snapshot", "error", err)
		return
	}
	h.mu.Lock()
	h.latest = s
	h.frame = data
	h.mu.Unlock()
	h.publish(data)
}

// PublishEvent streams one effect record.
func (h *Hub) PublishEvent(ev telemetry.Event) {
	data, err := json.Marshal(Message{Type: TypeEvent, Event: &ev})
	if err != nil {
		h.log.Error("encoding event", "error", err)
		return
	}
	h.publish(data)
}

// publish never blocks the simulation; frames are dropped when the queue is full.
func (h *Hub) publish(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.log.Debug("monitor queue full, frame dropped")
	}
}

// Latest returns the last published snapshot, or nil.
func (h *Hub) Latest() *telemetry.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.log.Info("monitor client connected", "remote", c.conn.RemoteAddr().String())

		case c := <-h.unregister:
			h.remove(c)

		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					delete(h.clients, c)
					close(c.send)
					h.log.Warn("monitor client too slow, dropped", "remote", c.conn.RemoteAddr().String())
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Info("monitor client disconnected", "remote", c.conn.RemoteAddr().String())
	}
}

// writePump drains a client's queue until the hub closes it.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards client frames and unregisters on disconnect.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Close disconnects every client and stops the broadcaster.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
	})
	return nil
}
