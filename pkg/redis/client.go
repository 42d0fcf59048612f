package redis

import (
	"context"
	"time"

	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type client struct {
	logger logger.Interface
	config *Config
	rdb    redis.UniversalClient
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(log logger.Interface, config *Config) Client {
	return &client{
		logger: log,
		config: config,
	}
}

func (c *client) Connect(ctx context.Context) error {
	if c.config == nil {
		return errors.NewErrorDetails("Redis config is nil", string(errors.RedisConfigError), "connect")
	}
	if err := c.config.Validate(); err != nil {
		return err
	}

	opts := &redis.UniversalOptions{
		Addrs:           c.config.Addrs,
		Username:        c.config.Username,
		Password:        c.config.Password,
		MaxRetries:      c.config.MaxRetries,
		MinRetryBackoff: c.config.MinRetryBackoff,
		MaxRetryBackoff: c.config.MaxRetryBackoff,
		DialTimeout:     c.config.ConnectTimeout,
		ReadTimeout:     c.config.ConnectTimeout,
		WriteTimeout:    c.config.ConnectTimeout,
		PoolSize:        c.config.PoolSize,
		MinIdleConns:    c.config.MinIdleConns,
		ConnMaxIdleTime: c.config.ConnMaxIdleTime,
		PoolTimeout:     c.config.PoolTimeout,
	}

	var rdb redis.UniversalClient
	switch c.config.Mode {
	case Cluster:
		rdb = redis.NewClusterClient(opts.Cluster())
	default:
		opts.DB = c.config.DB
		rdb = redis.NewClient(opts.Simple())
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return errors.NewErrorDetails(err.Error(), string(errors.RedisConnectionError), "connect")
	}

	c.rdb = rdb
	return nil
}

func (c *client) Disconnect(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		return errors.NewErrorDetails(err.Error(), string(errors.RedisDisconnectionError), "disconnect")
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return errors.NewErrorDetails("Redis is not connected", string(errors.RedisPingError), "ping")
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.NewErrorDetails("Failed to ping Redis", string(errors.RedisPingError), "ping")
	}
	return nil
}

func (c *client) key(k string) string {
	return c.config.PrefixKey + k
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.NewErrorDetails("Failed to get value from Redis", string(errors.RedisGetError), "get")
	}
	return val, nil
}

// SetAndPublish queues both commands in one transaction; a failed EXEC
// applies neither.
func (c *client) SetAndPublish(ctx context.Context, key, channel string, value any, expiration time.Duration) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(key), value, expiration)
		pipe.Publish(ctx, c.key(channel), value)
		return nil
	})
	if err != nil {
		return errors.NewErrorDetails("Failed to store and publish value in Redis", string(errors.RedisSetError), "set_and_publish")
	}
	return nil
}
