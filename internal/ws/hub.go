// Package ws streams book and trade events to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/internal/event"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

const (
	// DefaultSendBuffer is how many frames may queue for one client before
	// it is dropped as too slow.
	DefaultSendBuffer = 64
	// DefaultWriteWait bounds a single frame write.
	DefaultWriteWait = 10 * time.Second
)

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// SnapshotSource returns the current book, or nil when it has none.
type SnapshotSource func(ctx context.Context) (*orderv1.Book, error)

type conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	SetWriteDeadline(t time.Time) error
	Close() error
}

// client owns the outgoing queue of one connection. Only its writer
// goroutine touches conn for writing.
type client struct {
	conn conn
	send chan []byte
	quit chan struct{}
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.quit) })
}

// Hub fans events out to every connected client. Broadcasting never blocks
// on a client: a client whose queue is full is disconnected.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	sources    []SnapshotSource
	logger     logger.Interface
	sendBuffer int
	writeWait  time.Duration
}

// NewHub creates a hub. New clients first receive a book.updated frame from
// the first source that returns a book.
func NewHub(log logger.Interface, sources ...SnapshotSource) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		sources:    sources,
		logger:     log,
		sendBuffer: DefaultSendBuffer,
		writeWait:  DefaultWriteWait,
	}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves one websocket connection until the client goes away.
func (h *Hub) Handler(c *websocket.Conn) {
	h.serve(context.Background(), c)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(err, logger.NewField("action", "encode_ws_message"))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow websocket client", logger.NewField("queued", len(c.send)))
			delete(h.clients, c)
			c.stop()
		}
	}
}

// HandleBookUpdated is subscribed to event.TopicBookUpdated.
func (h *Hub) HandleBookUpdated(_ context.Context, payload any) {
	if book, ok := payload.(*orderv1.Book); ok {
		h.Broadcast(Message{Type: event.TopicBookUpdated, Data: book})
	}
}

// HandleTradeExecuted is subscribed to event.TopicTradeExecuted.
func (h *Hub) HandleTradeExecuted(_ context.Context, payload any) {
	if trade, ok := payload.(*orderv1.Trade); ok {
		h.Broadcast(Message{Type: event.TopicTradeExecuted, Data: trade})
	}
}

// serve returns once the reader and the writer of c have both exited.
func (h *Hub) serve(ctx context.Context, c conn) {
	cl := &client{
		conn: c,
		send: make(chan []byte, max(h.sendBuffer, 1)),
		quit: make(chan struct{}),
	}
	h.register(ctx, cl)

	written := make(chan struct{})
	go func() {
		defer close(written)
		h.writePump(cl)
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(cl)
	<-written
}

// register queues the initial snapshot ahead of any broadcast, then adds c.
func (h *Hub) register(ctx context.Context, c *client) {
	if book := h.snapshot(ctx); book != nil {
		data, err := json.Marshal(Message{Type: event.TopicBookUpdated, Data: book})
		if err == nil {
			c.send <- data
		}
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.stop()
}

// writePump writes queued frames until the client is stopped or a write
// fails. Closing the connection on exit unblocks the reader in serve.
func (h *Hub) writePump(c *client) {
	defer func() { _ = c.conn.Close() }()

	for {
		select {
		case <-c.quit:
			return
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(h.writeWait)); err != nil {
				h.remove(c)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write failed", logger.NewField("error", err.Error()))
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) snapshot(ctx context.Context) *orderv1.Book {
	for _, source := range h.sources {
		book, err := source(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "snapshot source failed", logger.NewField("error", err.Error()))
			continue
		}
		if book != nil {
			return book
		}
	}
	return nil
}
