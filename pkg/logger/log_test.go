package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/Satyam-Vyas/order-book/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]Level{
		"debug":   DebugLevel,
		" WARN ":  WarnLevel,
		"error":   ErrorLevel,
		"info":    InfoLevel,
		"verbose": InfoLevel,
		"":        InfoLevel,
	}

	for in, expected := range testCases {
		assert.Equal(t, expected, ParseLevel(in), in)
	}
}

func TestLogger_InfoContextAppendsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{logger: zap.New(core)}

	ctx := util.WithOwner(util.WithRequestID(context.Background(), "req-9"), "bob")
	l.InfoContext(ctx, "order accepted", NewField("order_id", "01H"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "01H", fields["order_id"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "bob", fields["owner"])
}

func TestLogger_ErrorWritesMessage(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{logger: zap.New(core)}

	l.Error(errors.New("ledger down"), NewField("action", "submit_order"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ledger down", entry.Message)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "submit_order", entry.ContextMap()["action"])
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(WithLoggingLevel(DebugLevel), WithEncoding("console"), WithOutputPaths([]string{"stderr"}))
	require.NoError(t, err)
	assert.True(t, l.GetZap().Core().Enabled(zapcore.DebugLevel))
}
