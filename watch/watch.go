// Package watch re-runs a handler on build outputs as the compiler writes
// them.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kxue43/gjs-imports/selector"
)

type (
	Logger interface {
		Debug(msg any, keyvals ...any)
		Error(msg any, keyvals ...any)
	}

	Watcher struct {
		watcher  *fsnotify.Watcher
		logger   Logger
		handle   func(path string)
		pending  map[string]time.Time
		dir      string
		ext      string
		debounce time.Duration
	}
)

const DefaultDebounce = 200 * time.Millisecond

var ErrClosed = errors.New("file system watcher closed")

// New watches dir, non-recursively. handle is called with the path of each
// created or modified file matching ext once writes to it have settled for
// the debounce interval.
func New(dir, ext string, logger Logger, handle func(path string)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file system watcher: %w", err)
	}

	if err = watcher.Add(dir); err != nil {
		_ = watcher.Close()

		return nil, fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}

	return &Watcher{
		watcher:  watcher,
		logger:   logger,
		handle:   handle,
		pending:  make(map[string]time.Time),
		dir:      dir,
		ext:      ext,
		debounce: DefaultDebounce,
	}, nil
}

func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run blocks until ctx is done, returning nil, or the underlying watcher
// shuts down, returning [ErrClosed]. Handlers run on the calling goroutine,
// one at a time. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	ticker := time.NewTicker(max(w.debounce/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return ErrClosed
			}

			w.note(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return ErrClosed
			}

			w.logger.Error("watch error", "dir", w.dir, "err", err)
		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) note(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", event.Name)

	w.pending[event.Name] = time.Now()
}

func (w *Watcher) flush(ctx context.Context, now time.Time) {
	for path, last := range w.pending {
		if ctx.Err() != nil {
			return
		}

		if now.Sub(last) < w.debounce {
			continue
		}

		delete(w.pending, path)

		if selector.Matches(path, w.ext) {
			w.handle(path)
		}
	}
}
