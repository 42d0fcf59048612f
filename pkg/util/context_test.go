package util

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))

	generated := GetRequestID(WithRequestID(context.Background(), ""))
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestFields(t *testing.T) {
	ctx := WithOwner(WithClientIP(WithRequestID(context.Background(), "req-2"), "10.0.0.1"), "alice")

	assert.Equal(t, map[string]string{
		"request_id": "req-2",
		"client_ip":  "10.0.0.1",
		"owner":      "alice",
	}, Fields(ctx))

	assert.Empty(t, Fields(context.Background()))
	assert.Equal(t, "", GetOwner(context.Background()))
}
