package redis

import (
	"time"

	"github.com/Satyam-Vyas/order-book/pkg/errors"
)

// Mode represents the mode of the Redis client.
type Mode string

const (
	// Standalone Mode is for a single Redis instance.
	Standalone Mode = "standalone"
	// Cluster Mode is for a Redis cluster setup.
	Cluster Mode = "cluster"
)

// Config holds the configuration for the Redis client.
type Config struct {
	Mode     Mode   `env:"MODE" envDefault:"standalone"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`

	Addrs []string `env:"ADDRS" envDefault:"localhost:6379"`

	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
	MaxRetries      int           `env:"MAX_RETRIES" envDefault:"3"`
	MinRetryBackoff time.Duration `env:"MIN_RETRY_BACKOFF" envDefault:"100ms"`
	MaxRetryBackoff time.Duration `env:"MAX_RETRY_BACKOFF" envDefault:"2s"`
	PoolSize        int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"10m"`
	PoolTimeout     time.Duration `env:"POOL_TIMEOUT" envDefault:"4s"`

	// PrefixKey is prepended to every key and channel the service writes.
	PrefixKey string `env:"PREFIX_KEY" envDefault:"orderbook:"`
}

// DefaultConfig returns a default configuration for the Redis client.
func DefaultConfig() *Config {
	return &Config{
		Mode:            Standalone,
		Addrs:           []string{"localhost:6379"},
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 2 * time.Second,
		PoolSize:        10,
		MinIdleConns:    2,
		ConnMaxIdleTime: 10 * time.Minute,
		PoolTimeout:     4 * time.Second,
		PrefixKey:       "orderbook:",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(msg string) error {
		return errors.NewErrorDetails(msg, string(errors.RedisConfigError), "connect")
	}

	switch {
	case len(c.Addrs) == 0:
		return invalid("Redis addresses are empty")
	case c.Mode != Standalone && c.Mode != Cluster:
		return invalid("Invalid Redis mode")
	case c.ConnectTimeout <= 0:
		return invalid("Invalid Redis connect timeout")
	case c.PoolSize <= 0:
		return invalid("Invalid Redis pool size")
	case c.MaxRetries < 0:
		return invalid("Invalid Redis max retries")
	case c.MinRetryBackoff < 0 || c.MaxRetryBackoff < 0:
		return invalid("Invalid Redis retry backoff")
	}
	return nil
}
