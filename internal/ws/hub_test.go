package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/internal/event"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

type fakeConn struct {
	mu        sync.Mutex
	written   [][]byte
	writeErr  error
	deadlines int
	closed    chan struct{}
	once      sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadlines++
	return nil
}

// ReadMessage blocks until the connection is closed, like an idle client.
func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, io.EOF
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.written)
}

func (c *fakeConn) messages(t *testing.T) []Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, 0, len(c.written))
	for _, data := range c.written {
		var m Message
		require.NoError(t, json.Unmarshal(data, &m))
		out = append(out, m)
	}
	return out
}

// stalledConn never drains its socket: a write only returns once the write
// deadline passes or the connection is closed.
type stalledConn struct {
	fakeConn
	deadline time.Time
}

func newStalledConn() *stalledConn {
	return &stalledConn{fakeConn: fakeConn{closed: make(chan struct{})}}
}

func (c *stalledConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	return nil
}

func (c *stalledConn) WriteMessage(int, []byte) error {
	c.mu.Lock()
	wait := time.Until(c.deadline)
	c.mu.Unlock()

	select {
	case <-c.closed:
		return io.ErrClosedPipe
	case <-time.After(wait):
		return os.ErrDeadlineExceeded
	}
}

var at = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func book() *orderv1.Book {
	bid := orderv1.NewOrder("b1", "alice", orderv1.SideBid, decimal.RequireFromString("10"), 1, at)
	return orderv1.NewBook([]*orderv1.Order{bid}, nil, at)
}

func trade(id string) *orderv1.Trade {
	bid := orderv1.NewOrder("b1", "alice", orderv1.SideBid, decimal.RequireFromString("10"), 1, at)
	ask := orderv1.NewOrder("a1", "bob", orderv1.SideAsk, decimal.RequireFromString("10"), 1, at)
	return orderv1.NewTrade(id, bid, ask, 1, at)
}

func connect(t *testing.T, h *Hub, c conn) chan struct{} {
	t.Helper()
	done := make(chan struct{})
	go func() {
		h.serve(context.Background(), c)
		close(done)
	}()
	return done
}

func TestHub_InitialSnapshotFallsBack(t *testing.T) {
	calls := 0
	failing := func(context.Context) (*orderv1.Book, error) { calls++; return nil, errors.New("redis down") }
	empty := func(context.Context) (*orderv1.Book, error) { calls++; return nil, nil }
	live := func(context.Context) (*orderv1.Book, error) { calls++; return book(), nil }

	h := NewHub(logger.NewNop(), failing, empty, live)
	c := newFakeConn()
	done := connect(t, h, c)

	require.Eventually(t, func() bool { return h.Clients() == 1 && c.count() == 1 }, time.Second, time.Millisecond)

	msgs := c.messages(t)
	assert.Equal(t, "book.updated", msgs[0].Type)
	assert.Equal(t, 3, calls)

	require.NoError(t, c.Close())
	<-done
	assert.Zero(t, h.Clients())
}

func TestHub_BroadcastsEvents(t *testing.T) {
	h := NewHub(logger.NewNop())
	a, b := newFakeConn(), newFakeConn()
	doneA, doneB := connect(t, h, a), connect(t, h, b)
	require.Eventually(t, func() bool { return h.Clients() == 2 }, time.Second, time.Millisecond)

	ctx := context.Background()
	h.HandleTradeExecuted(ctx, trade("t-1"))
	h.HandleBookUpdated(ctx, book())
	h.HandleBookUpdated(ctx, "ignored")

	for _, c := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool { return c.count() == 2 }, time.Second, time.Millisecond)
		msgs := c.messages(t)
		assert.Equal(t, "trade.executed", msgs[0].Type)
		assert.Equal(t, "book.updated", msgs[1].Type)
		assert.Equal(t, "t-1", msgs[0].Data.(map[string]any)["id"])

		c.mu.Lock()
		assert.Equal(t, 2, c.deadlines)
		c.mu.Unlock()
	}

	_ = a.Close()
	_ = b.Close()
	<-doneA
	<-doneB
}

func TestHub_DropsFailingClients(t *testing.T) {
	h := NewHub(logger.NewNop())
	c := newFakeConn()
	done := connect(t, h, c)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, time.Millisecond)

	c.mu.Lock()
	c.writeErr = errors.New("broken pipe")
	c.mu.Unlock()

	h.HandleBookUpdated(context.Background(), book())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("failing client was not disconnected")
	}
	assert.Zero(t, h.Clients())
}

func TestHub_SlowClientDoesNotBlockPublishers(t *testing.T) {
	h := NewHub(logger.NewNop())
	h.sendBuffer = 2
	h.writeWait = 50 * time.Millisecond

	bus := event.NewBus(logger.NewNop())
	bus.Subscribe(event.TopicTradeExecuted, h.HandleTradeExecuted)

	stalled := newStalledConn()
	done := connect(t, h, stalled)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, time.Millisecond)

	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 0; i < 20; i++ {
			bus.Publish(context.Background(), event.TopicTradeExecuted, trade("t"))
		}
	}()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publishing blocked on a stalled websocket client")
	}
	assert.Zero(t, h.Clients())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stalled client was not disconnected after the write deadline")
	}
}
