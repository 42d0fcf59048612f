// Package consumer feeds orders from Kafka into the matching engine.
package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Satyam-Vyas/order-book/internal/domain/order"
	v1 "github.com/Satyam-Vyas/order-book/internal/domain/order-consumer/v1"
	"github.com/Satyam-Vyas/order-book/pkg/config"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/util"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderConsumer is the consumer for the order topic. Offsets are committed
// only once a message is matched or known to be unprocessable.
type OrderConsumer struct {
	reader   messageReader
	matching order.MatchingUsecase
	logger   logger.Interface
	backoff  time.Duration
}

// NewOrderConsumer creates a new OrderConsumer.
func NewOrderConsumer(cfg config.OrderKafkaConfig, matching order.MatchingUsecase, log logger.Interface) *OrderConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
	})

	return &OrderConsumer{
		reader:   reader,
		matching: matching,
		logger:   log,
		backoff:  100 * time.Millisecond,
	}
}

// Start consumes until ctx is cancelled.
func (c *OrderConsumer) Start(ctx context.Context) error {
	c.logger.InfoContext(ctx, "starting order consumer", logger.NewField("action", "order_consumer_start"))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.ErrorContext(ctx, err, logger.NewField("action", "fetch_message"))
			if !c.sleep(ctx) {
				return nil
			}
			continue
		}

		for {
			err := c.Handle(ctx, msg)
			if err == nil {
				break
			}
			c.logger.ErrorContext(ctx, err,
				logger.NewField("action", "handle_order"),
				logger.NewField("offset", msg.Offset),
			)
			if !c.sleep(ctx) {
				return nil
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.ErrorContext(ctx, err, logger.NewField("action", "commit_message"))
		}
	}
}

// Handle submits one message. It returns an error only when the message
// should be retried; malformed, invalid and invariant-breaking orders are
// logged and skipped.
func (c *OrderConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var event v1.PlaceOrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.ErrorContext(ctx, err,
			logger.NewField("action", "unmarshal_order"),
			logger.NewField("offset", msg.Offset),
		)
		return nil
	}

	ctx = util.WithOwner(util.WithRequestID(ctx, event.EventID), event.UserID)

	result, err := c.matching.SubmitOrder(ctx, event.ToRequest())
	switch {
	case err == nil:
		c.logger.DebugContext(ctx, "order consumed",
			logger.NewField("order_id", result.Order.ID),
			logger.NewField("offset", msg.Offset),
		)
		return nil
	case errors.HasCode(err, errors.OrderValidationError):
		c.logger.WarnContext(ctx, "skipping invalid order",
			logger.NewField("offset", msg.Offset),
			logger.NewField("error", err.Error()),
		)
		return nil
	case errors.HasCode(err, errors.InvariantViolationError):
		c.logger.ErrorContext(ctx, err,
			logger.NewField("action", "skip_order"),
			logger.NewField("offset", msg.Offset),
		)
		return nil
	default:
		return err
	}
}

// Stop closes the reader.
func (c *OrderConsumer) Stop() error {
	c.logger.Info("stopping order consumer", logger.NewField("action", "order_consumer_stop"))
	return c.reader.Close()
}

func (c *OrderConsumer) sleep(ctx context.Context) bool {
	t := time.NewTimer(c.backoff)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
