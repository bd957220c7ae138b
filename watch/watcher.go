// Package watch reports out-of-band changes to the schema directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Change describes one schema file change.
type Change struct {
	Path string
	Op   string
}

// Handler is called for every relevant change.
type Handler func(Change)

// EventRecorder observes watch events. metrics.Metrics implements it.
type EventRecorder interface {
	RecordWatchEvent(op string)
}

// Watcher watches a schema directory for *.json changes.
type Watcher struct {
	dir      string
	handler  Handler
	recorder EventRecorder
	logger   zerolog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithRecorder sets where events are counted.
func WithRecorder(r EventRecorder) Option {
	return func(w *Watcher) { w.recorder = r }
}

// New creates a watcher for dir that calls handler on each change.
func New(dir string, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     dir,
		handler: handler,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks, dispatching changes until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.dir, err)
	}
	w.logger.Info().Str("dir", w.dir).Msg("Watching schema directory")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if change, relevant := classify(event); relevant {
				w.dispatch(change)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			w.logger.Error().Err(err).Msg("Error watching schemas")
		}
	}
}

func (w *Watcher) dispatch(change Change) {
	w.logger.Info().Str("file", change.Path).Str("op", change.Op).Msg("Schema directory changed")
	if w.recorder != nil {
		w.recorder.RecordWatchEvent(change.Op)
	}
	if w.handler != nil {
		w.handler(change)
	}
}

// classify maps an fsnotify event to a Change. Only *.json files that were
// created, written, removed or renamed are relevant.
func classify(event fsnotify.Event) (Change, bool) {
	if filepath.Ext(event.Name) != ".json" {
		return Change{}, false
	}

	var op string
	switch {
	case event.Has(fsnotify.Create):
		op = "create"
	case event.Has(fsnotify.Write):
		op = "write"
	case event.Has(fsnotify.Remove):
		op = "remove"
	case event.Has(fsnotify.Rename):
		op = "rename"
	default:
		return Change{}, false
	}
	return Change{Path: event.Name, Op: op}, true
}
