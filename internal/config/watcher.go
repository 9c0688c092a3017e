package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/midiaexterior/gateway/internal/observability"
)

// Watcher watches the configuration file for on-disk changes. The gateway's
// configuration is immutable after startup, so the watcher does not reload:
// it validates the changed file and logs that a restart is required to apply
// it (or that the new file is invalid).
type Watcher struct {
	path          string
	watcher       *fsnotify.Watcher
	logger        observability.Logger
	debounceDelay time.Duration
	stopCh        chan struct{}
	stoppedCh     chan struct{}
}

// WatcherOption is a functional option for configuring the watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay sets the debounce delay for file change events.
func WithDebounceDelay(delay time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDelay = delay
	}
}

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger observability.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a new configuration file watcher.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:          absPath,
		watcher:       fsWatcher,
		logger:        observability.NopLogger(),
		debounceDelay: 100 * time.Millisecond,
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start begins watching the configuration file. It watches the parent
// directory because editors typically replace the file atomically
// (write to temp, rename over), which drops the watch on the file itself.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.loop(ctx)

	w.logger.Info("watching configuration file",
		observability.String("path", w.path),
	)

	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
	_ = w.watcher.Close()
}

// loop processes fsnotify events with debouncing.
func (w *Watcher) loop(ctx context.Context) {
	defer close(w.stoppedCh)

	var debounce *time.Timer
	debounceCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.debounceDelay, func() {
				select {
				case debounceCh <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", observability.Error(err))

		case <-debounceCh:
			w.reportChange()
		}
	}
}

// reportChange validates the changed file and logs the outcome.
func (w *Watcher) reportChange() {
	cfg, err := LoadConfig(w.path)
	if err == nil {
		err = ValidateConfig(cfg)
	}

	if err != nil {
		w.logger.Warn("configuration file changed but is invalid",
			observability.String("path", w.path),
			observability.Error(err),
		)
		return
	}

	w.logger.Info("configuration file changed on disk; restart required to apply",
		observability.String("path", w.path),
	)
}
