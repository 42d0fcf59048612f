// Package outbox keeps committed trade events on disk until they are
// delivered downstream.
package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	tradeeventv1 "github.com/Satyam-Vyas/order-book/internal/domain/trade-event/v1"
	"github.com/Satyam-Vyas/order-book/internal/event"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

var (
	prefix     = []byte("trade/")
	upperBound = []byte("trade/~")

	seenPrefix     = []byte("seen/")
	seenUpperBound = []byte("seen/~")

	// openedKey holds when the outbox was first opened. Recovery never
	// reaches back past it.
	openedKey = []byte("meta/opened")
)

// TradeSource lists committed trades, newest first.
type TradeSource interface {
	Since(ctx context.Context, since time.Time) ([]*orderv1.Trade, error)
}

// Record is one pending event and its position in the outbox.
type Record struct {
	Seq   uint64
	Event *tradeeventv1.TradeEvent
}

// Outbox is an append-only queue of trade events.
type Outbox struct {
	db     *pebble.DB
	logger logger.Interface

	mu     sync.Mutex
	next   uint64
	opened time.Time
	now    func() time.Time
}

// Open opens or creates the outbox at dir and resumes its sequence.
func Open(dir string, log logger.Interface) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.NewTracer("failed to open outbox").Wrap(err)
	}

	o := &Outbox{db: db, logger: log, next: 1, now: time.Now}
	last, err := o.lastSeq()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	o.next = last + 1

	if o.opened, err = o.openedAt(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return o, nil
}

// Append stores events with one synced batch, in order. Every event with a
// trade ID is also marked as seen so Recover skips it.
func (o *Outbox) Append(events ...*tradeeventv1.TradeEvent) error {
	if len(events) == 0 {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	batch := o.db.NewBatch()
	defer batch.Close()

	seq := o.next
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return errors.NewTracer("failed to encode outbox record").Wrap(err)
		}
		if err := batch.Set(keyFor(seq), value, nil); err != nil {
			return errors.NewTracer("failed to stage outbox record").Wrap(err)
		}
		if e.TradeID != "" {
			stamp, _ := e.ExecutedAt.MarshalBinary()
			if err := batch.Set(seenKey(e.TradeID), stamp, nil); err != nil {
				return errors.NewTracer("failed to stage outbox record").Wrap(err)
			}
		}
		seq++
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.NewTracer("failed to append to outbox").Wrap(err)
	}
	o.next = seq
	return nil
}

// Pending returns up to limit records, oldest first. A limit of zero or
// less returns every record.
func (o *Outbox) Pending(limit int) ([]Record, error) {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound,
	})
	if err != nil {
		return nil, errors.NewTracer("failed to scan outbox").Wrap(err)
	}
	defer iter.Close()

	records := make([]Record, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		if limit > 0 && len(records) == limit {
			break
		}

		seq, err := parseKey(iter.Key())
		if err != nil {
			return nil, err
		}

		var e tradeeventv1.TradeEvent
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, errors.NewTracer(fmt.Sprintf("corrupt outbox record %d", seq)).Wrap(err)
		}
		records = append(records, Record{Seq: seq, Event: &e})
	}

	if err := iter.Error(); err != nil {
		return nil, errors.NewTracer("failed to scan outbox").Wrap(err)
	}
	return records, nil
}

// Ack removes delivered records.
func (o *Outbox) Ack(seqs ...uint64) error {
	if len(seqs) == 0 {
		return nil
	}

	batch := o.db.NewBatch()
	defer batch.Close()

	for _, seq := range seqs {
		if err := batch.Delete(keyFor(seq), nil); err != nil {
			return errors.NewTracer("failed to stage outbox ack").Wrap(err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.NewTracer("failed to ack outbox records").Wrap(err)
	}
	return nil
}

// Handle is subscribed to event.TopicOrderMatched so the trades of one
// submission land in a single batch.
func (o *Outbox) Handle(ctx context.Context, payload any) {
	matched, ok := payload.(event.OrderMatched)
	if !ok || len(matched.Trades) == 0 {
		return
	}

	events := make([]*tradeeventv1.TradeEvent, 0, len(matched.Trades))
	for _, trade := range matched.Trades {
		events = append(events, tradeeventv1.FromTrade(trade))
	}

	if err := o.Append(events...); err != nil {
		o.logger.ErrorContext(ctx, err,
			logger.NewField("action", "append_outbox"),
			logger.NewField("trades", len(events)),
		)
	}
}

// Recover appends the committed trades of the last window that never
// reached the outbox, such as those of a submission that crashed between
// its commit and Handle. It never reaches back before the outbox was first
// opened. Seen marks older than the window are dropped.
func (o *Outbox) Recover(ctx context.Context, trades TradeSource, window time.Duration) (int, error) {
	cutoff := o.now().Add(-window)
	if o.opened.After(cutoff) {
		cutoff = o.opened
	}

	committed, err := trades.Since(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	missing := make([]*tradeeventv1.TradeEvent, 0)
	for _, trade := range slices.Backward(committed) {
		seen, err := o.seen(trade.ID)
		if err != nil {
			return 0, err
		}
		if !seen {
			missing = append(missing, tradeeventv1.FromTrade(trade))
		}
	}

	if err := o.Append(missing...); err != nil {
		return 0, err
	}
	if err := o.forgetBefore(cutoff); err != nil {
		return len(missing), err
	}

	if len(missing) > 0 {
		o.logger.WarnContext(ctx, "recovered trade events missing from the outbox",
			logger.NewField("count", len(missing)),
			logger.NewField("since", cutoff.UTC().Format(time.RFC3339)),
		)
	}
	return len(missing), nil
}

func (o *Outbox) seen(tradeID string) (bool, error) {
	_, closer, err := o.db.Get(seenKey(tradeID))
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.NewTracer("failed to read outbox mark").Wrap(err)
	}
	_ = closer.Close()
	return true, nil
}

// forgetBefore drops seen marks of trades executed before cutoff.
func (o *Outbox) forgetBefore(cutoff time.Time) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: seenPrefix,
		UpperBound: seenUpperBound,
	})
	if err != nil {
		return errors.NewTracer("failed to scan outbox marks").Wrap(err)
	}
	defer iter.Close()

	batch := o.db.NewBatch()
	defer batch.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var at time.Time
		if err := at.UnmarshalBinary(iter.Value()); err == nil && !at.Before(cutoff) {
			continue
		}
		if err := batch.Delete(slices.Clone(iter.Key()), nil); err != nil {
			return errors.NewTracer("failed to stage outbox mark removal").Wrap(err)
		}
	}
	if err := iter.Error(); err != nil {
		return errors.NewTracer("failed to scan outbox marks").Wrap(err)
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.NewTracer("failed to drop outbox marks").Wrap(err)
	}
	return nil
}

// openedAt reads the first-open time, recording now on a fresh store.
func (o *Outbox) openedAt() (time.Time, error) {
	value, closer, err := o.db.Get(openedKey)
	if err == nil {
		defer closer.Close()
		var at time.Time
		if err := at.UnmarshalBinary(value); err != nil {
			return time.Time{}, errors.NewTracer("corrupt outbox open time").Wrap(err)
		}
		return at, nil
	}
	if err != pebble.ErrNotFound {
		return time.Time{}, errors.NewTracer("failed to read outbox open time").Wrap(err)
	}

	at := o.now().UTC()
	stamp, _ := at.MarshalBinary()
	if err := o.db.Set(openedKey, stamp, pebble.Sync); err != nil {
		return time.Time{}, errors.NewTracer("failed to record outbox open time").Wrap(err)
	}
	return at, nil
}

// Close closes the underlying store.
func (o *Outbox) Close() error {
	return o.db.Close()
}

func (o *Outbox) lastSeq() (uint64, error) {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound,
	})
	if err != nil {
		return 0, errors.NewTracer("failed to scan outbox").Wrap(err)
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return parseKey(iter.Key())
}

func seenKey(tradeID string) []byte {
	return append(slices.Clone(seenPrefix), tradeID...)
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("trade/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	if _, err := fmt.Sscanf(string(bytes.TrimPrefix(b, prefix)), "%d", &seq); err != nil {
		return 0, errors.NewTracer(fmt.Sprintf("bad outbox key %q", b)).Wrap(err)
	}
	return seq, nil
}
