package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "debug", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.NotNil(t, logger.With(String("module", "placas")))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(LogConfig{Level: "loudest"})
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	assert.NotPanics(t, func() {
		logger.Debug("ignored")
		logger.Info("ignored", Int("n", 1))
		logger.Warn("ignored")
		logger.Error("ignored", Error(nil))
		_ = logger.Sync()
	})
}

func TestRequestIDContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))

	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestWithContext(t *testing.T) {
	logger := NopLogger()

	ctx := ContextWithRequestID(context.Background(), "req-123")
	assert.NotNil(t, logger.WithContext(ctx))

	// No request ID means the same logger comes back.
	assert.Equal(t, logger, logger.WithContext(context.Background()))
}

func TestGlobalLogger(t *testing.T) {
	defer SetGlobalLogger(nil)

	assert.NotNil(t, GetGlobalLogger(), "default is a nop logger")

	logger := NopLogger()
	SetGlobalLogger(logger)
	assert.Equal(t, logger, GetGlobalLogger())
}
