package redis

import (
	"context"
	"time"
)

// Client is the slice of Redis the order book relies on: a cached value
// read back on startup and an atomic write-and-announce for refreshes.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=redis_mock
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Get returns "" without error when key is missing.
	Get(ctx context.Context, key string) (string, error)
	// SetAndPublish stores value under key and publishes it on channel in
	// one MULTI/EXEC, so subscribers never see a value that was not stored.
	SetAndPublish(ctx context.Context, key, channel string, value any, expiration time.Duration) error
}
