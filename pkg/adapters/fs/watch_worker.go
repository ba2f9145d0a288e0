package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notesync/pkg/core"
)

// Watch reports slot changes made by other processes sharing the directory.
// pattern is a doublestar glob matched against slot keys ("*" for all).
// The channel is closed when ctx is cancelled.
func (s *Slots) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Dir, err)
	}

	events := make(chan core.Event)
	w := &watchWorker{slots: s, pattern: pattern, watcher: watcher, events: events}
	s.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		if s.config.ErrorHandler != nil {
			s.config.ErrorHandler(fmt.Errorf("watcher failed: %w", err))
		} else {
			s.config.Logger.Error("watcher failed", "error", err)
		}
	}))
	return events, nil
}

type watchWorker struct {
	slots   *Slots
	pattern string
	watcher *fsnotify.Watcher
	events  chan core.Event
}

// run is the main event loop of the watcher.
func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.slots.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			// Stack only at debug level.
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer close(w.events)
	defer w.slots.setWatcherActive(false)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.process(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("fsnotify error", "error", wErr)
			if w.slots.config.ErrorHandler != nil {
				w.slots.config.ErrorHandler(wErr)
			}
		}
	}
}

// process filters an fsnotify event and forwards foreign slot writes.
func (w *watchWorker) process(ctx context.Context, event fsnotify.Event) {
	logger := w.slots.config.Logger
	logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	key, ok := keyOf(event.Name)
	if !ok {
		return
	}
	if match, _ := doublestar.Match(w.pattern, key); !match {
		return
	}

	data, err := os.ReadFile(event.Name)
	if err != nil {
		// Renamed away or mid-replace; the final write arrives as its own event.
		return
	}
	if w.slots.ownWrite(key, data) {
		return
	}

	select {
	case w.events <- core.Event{Type: core.EventSlot, Key: key, Timestamp: time.Now().Unix()}:
	case <-ctx.Done():
	}
}
