package redis

import (
	"context"
	"testing"
	"time"

	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "default", mutate: func(c *Config) {}},
		{name: "no addrs", mutate: func(c *Config) { c.Addrs = nil }, wantErr: true},
		{name: "bad mode", mutate: func(c *Config) { c.Mode = "sentinel" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.ConnectTimeout = 0 }, wantErr: true},
		{name: "zero pool", mutate: func(c *Config) { c.PoolSize = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: true},
		{name: "negative backoff", mutate: func(c *Config) { c.MaxRetryBackoff = -time.Second }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.True(t, errors.HasCode(err, errors.RedisConfigError))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestClient_ConnectRejectsNilConfig(t *testing.T) {
	c := NewClient(logger.NewNop(), nil)
	err := c.Connect(context.Background())
	assert.True(t, errors.HasCode(err, errors.RedisConfigError))
}

func TestClient_PingBeforeConnect(t *testing.T) {
	c := NewClient(logger.NewNop(), DefaultConfig())
	err := c.Ping(context.Background())
	assert.True(t, errors.HasCode(err, errors.RedisPingError))
	assert.NoError(t, c.Disconnect(context.Background()))
}
