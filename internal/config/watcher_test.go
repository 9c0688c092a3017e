package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_StartStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	w, err := NewWatcher(path, WithDebounceDelay(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))

	// A rewrite of the file must not disturb the watcher loop.
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_BadPath(t *testing.T) {
	w, err := NewWatcher("/nonexistent/dir/gateway.yaml")
	require.NoError(t, err)

	err = w.Start(context.Background())
	assert.Error(t, err)
}

func TestWatcher_ReportChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.watcher.Close()

	// Valid and invalid files both only log; neither panics or mutates state.
	assert.NotPanics(t, func() { w.reportChange() })

	require.NoError(t, os.WriteFile(path, []byte("routes: [}"), 0o600))
	assert.NotPanics(t, func() { w.reportChange() })
}
