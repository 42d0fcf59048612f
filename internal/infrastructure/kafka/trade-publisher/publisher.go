// Package tradepublisher writes trade events to Kafka.
package tradepublisher

import (
	"context"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	tradeeventv1 "github.com/Satyam-Vyas/order-book/internal/domain/trade-event/v1"
	"github.com/Satyam-Vyas/order-book/pkg/config"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher represents a Kafka publisher for trade events.
type Publisher struct {
	writer messageWriter
	logger logger.Interface
}

var _ tradeeventv1.TradePublisher = (*Publisher)(nil)

// NewPublisher creates a publisher that waits for every in-sync replica.
// Messages are keyed by trade ID so replays land on the same partition.
func NewPublisher(cfg config.TradeKafkaConfig, log logger.Interface) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Publisher{
		writer: writer,
		logger: log,
	}
}

// PublishTrades publishes events in order.
func (p *Publisher) PublishTrades(ctx context.Context, events ...*tradeeventv1.TradeEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.TradeID),
			Value: tradeeventv1.ToBytes(event),
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.NewField("action", "publish_trades"),
			logger.NewField("count", len(events)),
		)
		return errors.NewTracer("failed to publish trade events").Wrap(err)
	}
	return nil
}

// Handle is subscribed to event.TopicTradeExecuted when no outbox sits in
// front of Kafka. Failures are logged only; the trade is already committed.
func (p *Publisher) Handle(ctx context.Context, payload any) {
	trade, ok := payload.(*orderv1.Trade)
	if !ok {
		return
	}
	_ = p.PublishTrades(ctx, tradeeventv1.FromTrade(trade))
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
