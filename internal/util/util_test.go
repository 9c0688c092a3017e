package util

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleContext(t *testing.T) {
	ctx := ContextWithModule(context.Background(), "placas")
	assert.Equal(t, "placas", ModuleFromContext(ctx))

	assert.Empty(t, ModuleFromContext(context.Background()))
}

func TestStartTimeContext(t *testing.T) {
	start := time.Now()
	ctx := ContextWithStartTime(context.Background(), start)

	assert.Equal(t, start, StartTimeFromContext(ctx))
	assert.True(t, StartTimeFromContext(context.Background()).IsZero())
}

func TestElapsedTime(t *testing.T) {
	ctx := ContextWithStartTime(context.Background(), time.Now().Add(-time.Second))
	assert.GreaterOrEqual(t, ElapsedTime(ctx), time.Second)

	assert.Equal(t, time.Duration(0), ElapsedTime(context.Background()))
}

func TestServerError(t *testing.T) {
	err := NewServerError(502)
	assert.Equal(t, "server error: status 502", err.Error())
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("server.port", "must be between 1 and 65535")
	assert.Equal(t, "config error at server.port: must be between 1 and 65535", err.Error())

	// Every ConfigError matches the sentinel.
	assert.True(t, errors.Is(err, ErrConfigInvalid))
	require.ErrorAs(t, error(err), new(*ConfigError))
}

func TestStatusCapturingResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewStatusCapturingResponseWriter(rec)

	rw.WriteHeader(204)
	assert.Equal(t, 204, rw.StatusCode)
	assert.True(t, rw.HeaderWritten)

	n, err := rw.Write([]byte("body"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, rw.BytesWritten)
}

func TestStatusCapturingResponseWriter_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewStatusCapturingResponseWriter(rec)

	_, err := rw.Write([]byte("ok"))
	require.NoError(t, err)
	assert.Equal(t, 200, rw.StatusCode)
	assert.True(t, rw.HeaderWritten)
}
