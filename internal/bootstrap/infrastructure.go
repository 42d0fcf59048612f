package bootstrap

import (
	"context"

	tradepublisher "github.com/Satyam-Vyas/order-book/internal/infrastructure/kafka/trade-publisher"
	"github.com/Satyam-Vyas/order-book/internal/infrastructure/pebble/outbox"
	"github.com/Satyam-Vyas/order-book/internal/infrastructure/redis/snapshot"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/redis"
)

// Infrastructure holds the optional backends. A nil field is disabled.
type Infrastructure struct {
	Redis          redis.Client
	SnapshotStore  *snapshot.Store
	TradePublisher *tradepublisher.Publisher
	Outbox         *outbox.Outbox
}

func (b *Bootstrap) registerInfrastructure(ctx context.Context) error {
	cfg := b.Config

	if cfg.Redis.Enabled {
		client := redis.NewClient(b.Logger, &cfg.Redis.Config)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		b.Infrastructure.Redis = client
		b.Infrastructure.SnapshotStore = snapshot.NewStore(client, cfg.Redis.SnapshotTTL, b.Logger)
	}

	if cfg.TradeKafka.Enabled {
		b.Infrastructure.TradePublisher = tradepublisher.NewPublisher(cfg.TradeKafka, b.Logger)
	}

	if cfg.Outbox.Enabled {
		o, err := outbox.Open(cfg.Outbox.Path, b.Logger)
		if err != nil {
			return err
		}
		b.Infrastructure.Outbox = o

		recovered, err := o.Recover(ctx, b.Ledger.Trades(), cfg.Outbox.RecoveryWindow)
		if err != nil {
			return err
		}
		b.Logger.Info("trade outbox opened",
			logger.NewField("path", cfg.Outbox.Path),
			logger.NewField("recovered", recovered),
		)
	}

	return nil
}
