// Package bootstrap builds every component of the server from config.
package bootstrap

import (
	"context"
	stderrors "errors"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
	"github.com/Satyam-Vyas/order-book/internal/event"
	"github.com/Satyam-Vyas/order-book/internal/monitoring"
	"github.com/Satyam-Vyas/order-book/internal/ws"
	"github.com/Satyam-Vyas/order-book/pkg/config"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

// Bootstrap holds the wired server.
type Bootstrap struct {
	Config *config.Config
	Logger logger.Interface

	Ledger  ledgerv1.Ledger
	Bus     *event.Bus
	Metrics *monitoring.Metrics
	Hub     *ws.Hub

	Infrastructure Infrastructure
	Usecase        Usecase
	REST           REST
	Worker         Worker
}

// New wires the server. Close releases whatever New opened, even after a
// partial failure.
func New(ctx context.Context, cfg *config.Config, log logger.Interface) (*Bootstrap, error) {
	b := &Bootstrap{
		Config:  cfg,
		Logger:  log,
		Bus:     event.NewBus(log),
		Metrics: monitoring.New(),
	}

	ledger, err := newLedger(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	b.Ledger = ledger

	if err := b.registerInfrastructure(ctx); err != nil {
		_ = b.Close(ctx)
		return nil, err
	}
	b.registerUsecase()
	b.registerREST()
	b.registerWorker()
	b.subscribe()

	return b, nil
}

// Close releases the ledger and every optional backend.
func (b *Bootstrap) Close(ctx context.Context) error {
	var errs []error

	if b.Worker.OrderConsumer != nil {
		errs = append(errs, b.Worker.OrderConsumer.Stop())
	}
	if b.Infrastructure.TradePublisher != nil {
		errs = append(errs, b.Infrastructure.TradePublisher.Close())
	}
	if b.Infrastructure.Outbox != nil {
		errs = append(errs, b.Infrastructure.Outbox.Close())
	}
	if b.Infrastructure.Redis != nil {
		errs = append(errs, b.Infrastructure.Redis.Disconnect(ctx))
	}
	if b.Ledger != nil {
		errs = append(errs, b.Ledger.Close())
	}

	return stderrors.Join(errs...)
}
