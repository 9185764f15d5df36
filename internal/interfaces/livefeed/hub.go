package livefeed

import (
	"context"
	"net/http"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"

	"github.com/pickemlabs/survivor-pool/internal/domain/gameevent"
	"github.com/pickemlabs/survivor-pool/internal/platform/logging"
)

type Config struct {
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	ReadLimit      int64
	SendBufferSize int
	Workers        int
	CheckOrigin    func(r *http.Request) bool
}

func DefaultConfig() Config {
	return Config{
		WriteTimeout:   10 * time.Second,
		PingInterval:   30 * time.Second,
		ReadLimit:      1024,
		SendBufferSize: 64,
		Workers:        8,
		CheckOrigin:    func(*http.Request) bool { return true },
	}
}

func (c Config) normalized() Config {
	defaults := DefaultConfig()
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = defaults.PingInterval
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = defaults.ReadLimit
	}
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = defaults.SendBufferSize
	}
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = defaults.CheckOrigin
	}
	return c
}

// eventFrame is the wire shape pushed to subscribers.
type eventFrame struct {
	Type        string `json:"type"`
	GameID      int64  `json:"gameId"`
	TeamID      *int64 `json:"teamId,omitempty"`
	Description string `json:"description,omitempty"`
	ScoreHome   *int   `json:"scoreHome,omitempty"`
	ScoreAway   *int   `json:"scoreAway,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// client's send channel is never closed; drop signals writePump through
// done instead, so a broadcast working from a stale snapshot can still send
// safely.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub fans persisted game events out to websocket subscribers. It satisfies
// the sync pipeline's notification sink: Publish never blocks, and a
// subscriber that cannot keep up is dropped rather than slowing the rest.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	workers  *ants.Pool
	config   Config
	logger   *logging.Logger
}

func NewHub(cfg Config, logger *logging.Logger) (*Hub, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.normalized()

	workers, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		workers: workers,
		config:  cfg,
		logger:  logger,
	}, nil
}

// Publish encodes each event once and hands the fan-out to the worker pool.
// When the pool is saturated the frame is delivered inline; slow consumers
// are still shed through their send buffers.
func (h *Hub) Publish(ctx context.Context, events []gameevent.Event) {
	for _, event := range events {
		frame, err := encodeFrame(event)
		if err != nil {
			h.logger.WarnContext(ctx, "encode live event failed", "event_id", event.ID, "error", err)
			continue
		}
		if err := h.workers.Submit(func() { h.broadcast(frame) }); err != nil {
			h.broadcast(frame)
		}
	}
}

func encodeFrame(event gameevent.Event) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	encoded, err := sonic.Marshal(eventFrame{
		Type:        event.Type,
		GameID:      event.GameID,
		TeamID:      event.TeamID,
		Description: event.Description,
		ScoreHome:   event.ScoreHome,
		ScoreAway:   event.ScoreAway,
		CreatedAt:   event.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	_, _ = buf.Write(encoded)
	out := make([]byte, len(buf.B))
	copy(out, buf.B)
	return out, nil
}

func (h *Hub) broadcast(frame []byte) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- frame:
		default:
			h.drop(c)
		}
	}
}

// HandleWS upgrades the request and serves the subscription until the peer
// goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.config.SendBufferSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.InfoContext(r.Context(), "live feed subscriber connected", "subscribers", count)

	go h.writePump(c)
	h.readPump(c)
}

// ServeHTTP lets the hub be mounted directly on a route.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.HandleWS(w, r)
}

// SubscriberCount reports current connections, used by health reporting.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops every subscriber and releases the worker pool.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		close(c.done)
		_ = c.conn.Close()
	}
	h.workers.Release()
}

// drop detaches a subscriber exactly once. Removal from the map decides the
// winner when the read pump, the write pump, and a slow-consumer broadcast
// race to drop the same client.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if ok {
		close(c.done)
		_ = c.conn.Close()
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(time.Second))
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// readPump consumes control frames; the feed is one-directional and any
// inbound payload beyond pongs is ignored.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(h.config.ReadLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
