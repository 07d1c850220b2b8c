// Package ws broadcasts decoded samples to websocket clients.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bft-labs/whisker/internal/ports"
	"github.com/bft-labs/whisker/pkg/frame"
)

// SamplesPath is the route clients connect to.
const SamplesPath = "/samples"

const (
	clientBuffer = 64
	writeWait    = time.Second
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Broadcaster fans samples out to every connected client as JSON text
// messages. A client that falls behind loses messages rather than
// stalling the others.
type Broadcaster struct {
	upgrader websocket.Upgrader
	logger   ports.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewBroadcaster creates a Broadcaster with no clients.
func NewBroadcaster(logger ports.Logger) *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Handler returns an http.Handler serving SamplesPath.
func (b *Broadcaster) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(SamplesPath, b)
	return mux
}

// ServeHTTP upgrades the request and keeps the client registered until
// it disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", ports.Err(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}
	b.add(c)
	b.logger.Info("websocket client connected",
		ports.String("client", c.id),
		ports.String("remote", r.RemoteAddr),
	)

	go b.writeLoop(c)

	// Incoming messages are ignored; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	b.remove(c)
	_ = conn.Close()
	b.logger.Info("websocket client disconnected", ports.String("client", c.id))
}

func (b *Broadcaster) writeLoop(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.logger.Debug("websocket write failed",
				ports.String("client", c.id),
				ports.Err(err),
			)
			_ = c.conn.Close()
			return
		}
	}
}

func (b *Broadcaster) add(c *client) {
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
}

func (b *Broadcaster) remove(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()
}

// Broadcast sends each sample to every client in order.
func (b *Broadcaster) Broadcast(samples []frame.Sample) {
	if len(samples) == 0 {
		return
	}

	msgs := make([][]byte, 0, len(samples))
	for _, s := range samples {
		msg, err := json.Marshal(s)
		if err != nil {
			b.logger.Error("marshal sample", ports.Err(err))
			continue
		}
		msgs = append(msgs, msg)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for c := range b.clients {
		for _, msg := range msgs {
			select {
			case c.send <- msg:
			default:
			}
		}
	}
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
		_ = c.conn.Close()
	}
}
