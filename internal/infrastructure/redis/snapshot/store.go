// Package snapshot caches the latest book in Redis and announces every
// refresh on a pub/sub channel.
package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/redis"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
)

const (
	// Key holds the JSON encoded book.
	Key = "book:snapshot"
	// Channel receives the same payload on every refresh.
	Channel = "book.updated"
)

// Store represents the cached order book.
type Store struct {
	client redis.Client
	ttl    time.Duration
	logger logger.Interface
}

// NewStore creates a new Store. A zero ttl keeps the snapshot until the next one.
func NewStore(client redis.Client, ttl time.Duration, log logger.Interface) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Save stores book and publishes it.
func (s *Store) Save(ctx context.Context, book *orderv1.Book) error {
	buf, err := json.Marshal(book)
	if err != nil {
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.client.SetAndPublish(ctx, Key, Channel, buf, s.ttl); err != nil {
		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}
	return nil
}

// Load returns the cached book, or nil when none is stored.
func (s *Store) Load(ctx context.Context) (*orderv1.Book, error) {
	data, err := s.client.Get(ctx, Key)
	if err != nil {
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}
	if data == "" {
		return nil, nil
	}

	var book orderv1.Book
	if err := json.Unmarshal([]byte(data), &book); err != nil {
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}
	return &book, nil
}

// Handle is subscribed to event.TopicBookUpdated.
func (s *Store) Handle(ctx context.Context, payload any) {
	book, ok := payload.(*orderv1.Book)
	if !ok {
		return
	}
	if err := s.Save(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, err, logger.NewField("action", "save_book_snapshot"))
	}
}
