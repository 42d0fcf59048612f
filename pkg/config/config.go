package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Satyam-Vyas/order-book/pkg/postgresql"
	"github.com/Satyam-Vyas/order-book/pkg/redis"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Ledger drivers accepted by STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the application configuration.
type Config struct {
	App          AppConfig          `envPrefix:"APP_"`
	Storage      StorageConfig      `envPrefix:"STORAGE_"`
	Postgres     postgresql.Config  `envPrefix:"POSTGRES_"`
	SQLite       SQLiteConfig       `envPrefix:"SQLITE_"`
	Redis        RedisConfig        `envPrefix:"REDIS_"`
	OrderKafka   OrderKafkaConfig   `envPrefix:"ORDER_KAFKA_"`
	TradeKafka   TradeKafkaConfig   `envPrefix:"TRADE_KAFKA_"`
	Outbox       OutboxConfig       `envPrefix:"OUTBOX_"`
	Matching     MatchingConfig     `envPrefix:"MATCHING_"`
	TradeHistory TradeHistoryConfig `envPrefix:"TRADE_HISTORY_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name            string        `env:"NAME" envDefault:"order-book"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8000"`
	GRPCPort        int           `env:"GRPC_PORT" envDefault:"7777"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogEncoding     string        `env:"LOG_ENCODING" envDefault:"json"`
	LogOutputPaths  []string      `env:"LOG_OUTPUT_PATHS" envDefault:"stdout"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	HealthInterval  time.Duration `env:"HEALTH_INTERVAL" envDefault:"5s"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
}

// StorageConfig selects the ledger implementation.
type StorageConfig struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
}

// SQLiteConfig configures the embedded ledger.
type SQLiteConfig struct {
	Path        string        `env:"PATH" envDefault:"orderbook.db"`
	BusyTimeout time.Duration `env:"BUSY_TIMEOUT" envDefault:"5s"`
}

// RedisConfig switches the book snapshot cache on and carries the client settings.
type RedisConfig struct {
	Enabled     bool          `env:"ENABLED" envDefault:"false"`
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" envDefault:"0s"`
	redis.Config
}

// OrderKafkaConfig configures the order intake consumer.
type OrderKafkaConfig struct {
	Enabled       bool          `env:"ENABLED" envDefault:"false"`
	Brokers       []string      `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic         string        `env:"TOPIC" envDefault:"orders"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"order-book"`
	MaxWait       time.Duration `env:"MAX_WAIT" envDefault:"1s"`
}

// TradeKafkaConfig configures the trade event publisher.
type TradeKafkaConfig struct {
	Enabled      bool          `env:"ENABLED" envDefault:"false"`
	Brokers      []string      `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic        string        `env:"TOPIC" envDefault:"trades"`
	BatchTimeout time.Duration `env:"BATCH_TIMEOUT" envDefault:"10ms"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
}

// OutboxConfig configures the pebble-backed trade outbox. When enabled,
// trades are appended to the outbox and relayed to Kafka by the broadcaster.
type OutboxConfig struct {
	Enabled      bool          `env:"ENABLED" envDefault:"false"`
	Path         string        `env:"PATH" envDefault:"data/outbox"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"500ms"`
	BatchSize    int           `env:"BATCH_SIZE" envDefault:"100"`

	// RecoveryWindow is how far back startup looks for committed trades
	// that never reached the outbox.
	RecoveryWindow time.Duration `env:"RECOVERY_WINDOW" envDefault:"24h"`
}

// MatchingConfig bounds submissions and conflict retries.
type MatchingConfig struct {
	MaxRetries     int             `env:"MAX_RETRIES" envDefault:"5"`
	RetryBaseDelay time.Duration   `env:"RETRY_BASE_DELAY" envDefault:"10ms"`
	RetryMaxDelay  time.Duration   `env:"RETRY_MAX_DELAY" envDefault:"500ms"`
	MaxNotional    decimal.Decimal `env:"MAX_NOTIONAL" envDefault:"1000000000"`
}

// TradeHistoryConfig bounds the recent trades window.
type TradeHistoryConfig struct {
	DefaultWindow time.Duration `env:"DEFAULT_WINDOW" envDefault:"24h"`
	MaxWindow     time.Duration `env:"MAX_WINDOW" envDefault:"720h"`
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Matching.MaxRetries < 0 {
		return fmt.Errorf("MATCHING_MAX_RETRIES must not be negative")
	}
	if !c.Matching.MaxNotional.IsPositive() {
		return fmt.Errorf("MATCHING_MAX_NOTIONAL must be positive")
	}
	if c.TradeHistory.DefaultWindow <= 0 || c.TradeHistory.DefaultWindow > c.TradeHistory.MaxWindow {
		return fmt.Errorf("TRADE_HISTORY_DEFAULT_WINDOW must be positive and within TRADE_HISTORY_MAX_WINDOW")
	}
	if c.Outbox.Enabled && !c.TradeKafka.Enabled {
		return fmt.Errorf("OUTBOX_ENABLED requires TRADE_KAFKA_ENABLED")
	}

	return nil
}

// New loads a .env file if present, parses the environment and validates the result.
func New() (*Config, error) {
	cfg := &Config{}
	if err := Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load()

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and an optional .env file.
func Load[T any](cfg T) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return env.Parse(cfg)
}
