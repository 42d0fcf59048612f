// Package broadcaster relays trade events from the outbox to the trade
// publisher until they are acknowledged.
package broadcaster

import (
	"context"
	"sync"
	"time"

	tradeeventv1 "github.com/Satyam-Vyas/order-book/internal/domain/trade-event/v1"
	"github.com/Satyam-Vyas/order-book/internal/infrastructure/pebble/outbox"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

// Source is the durable queue the broadcaster drains.
type Source interface {
	Pending(limit int) ([]outbox.Record, error)
	Ack(seqs ...uint64) error
}

// Broadcaster delivers outbox records at least once, in sequence order.
type Broadcaster struct {
	source    Source
	publisher tradeeventv1.TradePublisher
	logger    logger.Interface
	opts      *Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Broadcaster.
func New(source Source, publisher tradeeventv1.TradePublisher, log logger.Interface, opts *Options) *Broadcaster {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Broadcaster{
		source:    source,
		publisher: publisher,
		logger:    log,
		opts:      opts,
	}
}

// Start begins polling the outbox.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Add(1)
	go b.run()

	b.logger.Info("broadcaster started",
		logger.NewField("poll_interval", b.opts.PollInterval.String()),
		logger.NewField("batch_size", b.opts.BatchSize),
	)
	return nil
}

// Stop waits for the relay loop to exit or ctx to expire.
func (b *Broadcaster) Stop(ctx context.Context) error {
	if b.cancel != nil {
		b.cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("broadcaster stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("broadcaster stop timeout exceeded")
		return ctx.Err()
	}
}

// RelayOnce publishes one batch and acks it. Nothing is acked when the
// publish fails, so the batch is retried on the next call.
func (b *Broadcaster) RelayOnce(ctx context.Context) (int, error) {
	records, err := b.source.Pending(b.opts.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	events := make([]*tradeeventv1.TradeEvent, 0, len(records))
	seqs := make([]uint64, 0, len(records))
	for _, r := range records {
		events = append(events, r.Event)
		seqs = append(seqs, r.Seq)
	}

	if err := b.publisher.PublishTrades(ctx, events...); err != nil {
		return 0, err
	}
	if err := b.source.Ack(seqs...); err != nil {
		return 0, err
	}

	b.logger.DebugContext(ctx, "relayed trade events",
		logger.NewField("count", len(records)),
		logger.NewField("last_seq", seqs[len(seqs)-1]),
	)
	return len(records), nil
}

func (b *Broadcaster) run() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.drain()
		}
	}
}

// drain relays full batches back to back until the outbox runs dry.
func (b *Broadcaster) drain() {
	for b.ctx.Err() == nil {
		n, err := b.RelayOnce(b.ctx)
		if err != nil {
			b.logger.ErrorContext(b.ctx, err, logger.NewField("action", "relay_trade_events"))
			return
		}
		if n < b.opts.BatchSize {
			return
		}
	}
}
