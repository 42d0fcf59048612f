package bootstrap

import (
	"github.com/Satyam-Vyas/order-book/internal/app/broadcaster"
	consumer "github.com/Satyam-Vyas/order-book/internal/consumer/order-consumer"
)

// Worker holds the background loops. A nil field is disabled.
type Worker struct {
	OrderConsumer *consumer.OrderConsumer
	Broadcaster   *broadcaster.Broadcaster
}

func (b *Bootstrap) registerWorker() {
	cfg := b.Config

	if cfg.OrderKafka.Enabled {
		b.Worker.OrderConsumer = consumer.NewOrderConsumer(cfg.OrderKafka, b.Usecase.MatchingUsecase, b.Logger)
	}

	if b.Infrastructure.Outbox != nil && b.Infrastructure.TradePublisher != nil {
		b.Worker.Broadcaster = broadcaster.New(b.Infrastructure.Outbox, b.Infrastructure.TradePublisher, b.Logger, &broadcaster.Options{
			PollInterval: cfg.Outbox.PollInterval,
			BatchSize:    cfg.Outbox.BatchSize,
		})
	}
}
