// Package event is an in-process publish/subscribe bus.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

// Handler receives one published payload.
type Handler func(ctx context.Context, payload any)

//go:generate mockgen -source=bus.go -destination=mock/bus_mock.go -package=mock

// Publisher is the side of the bus producers depend on.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any)
}

// Bus delivers payloads to every handler subscribed to a topic, in
// subscription order, on the publisher's goroutine. A panicking handler is
// logged and does not stop the others.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Interface
}

// NewBus creates an empty bus.
func NewBus(log logger.Interface) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   log,
	}
}

// Subscribe adds h to topic.
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[topic] = append(b.handlers[topic], h)
}

// Publish calls every handler of topic with payload. Handlers may publish.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) {
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[topic]...)
	b.mu.RUnlock()

	for _, h := range hs {
		b.dispatch(ctx, topic, h, payload)
	}
}

func (b *Bus) dispatch(ctx context.Context, topic string, h Handler, payload any) {
	defer func() {
		if p := recover(); p != nil {
			b.logger.ErrorContext(ctx, fmt.Errorf("event handler panicked: %v", p),
				logger.NewField("topic", topic),
			)
		}
	}()
	h(ctx, payload)
}
