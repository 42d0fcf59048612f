package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

func TestBus_PublishInSubscriptionOrder(t *testing.T) {
	bus := NewBus(logger.NewNop())
	ctx := context.Background()

	var got []string
	bus.Subscribe(TopicTradeExecuted, func(_ context.Context, p any) { got = append(got, "a:"+p.(string)) })
	bus.Subscribe(TopicTradeExecuted, func(_ context.Context, p any) { got = append(got, "b:"+p.(string)) })
	bus.Subscribe(TopicBookUpdated, func(_ context.Context, p any) { got = append(got, "book") })

	bus.Publish(ctx, TopicTradeExecuted, "t1")
	bus.Publish(ctx, TopicTradeExecuted, "t2")
	bus.Publish(ctx, "unknown", "ignored")

	assert.Equal(t, []string{"a:t1", "b:t1", "a:t2", "b:t2"}, got)
}

func TestBus_HandlerMayPublish(t *testing.T) {
	bus := NewBus(logger.NewNop())
	ctx := context.Background()

	var books int
	bus.Subscribe(TopicOrderMatched, func(ctx context.Context, _ any) {
		bus.Publish(ctx, TopicBookUpdated, nil)
	})
	bus.Subscribe(TopicBookUpdated, func(context.Context, any) { books++ })

	bus.Publish(ctx, TopicOrderMatched, OrderMatched{})
	assert.Equal(t, 1, books)
}

func TestBus_PanickingHandlerIsIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	l := logger.FromZap(zap.New(core))

	bus := NewBus(l)
	var called bool
	bus.Subscribe(TopicTradeExecuted, func(context.Context, any) { panic("boom") })
	bus.Subscribe(TopicTradeExecuted, func(context.Context, any) { called = true })

	bus.Publish(context.Background(), TopicTradeExecuted, nil)

	assert.True(t, called)
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, TopicTradeExecuted, logs.All()[0].ContextMap()["topic"])
}
