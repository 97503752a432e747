// Package watch provides an inbox directory watcher. New or rewritten files
// in the directory are handed to a Handler once they stop changing.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lexis/internal/logger"
)

// DefaultSettle is how long a file must be quiet before it is handled.
const DefaultSettle = 500 * time.Millisecond

// ErrNotDirectory is returned when the watched path is not a directory.
var ErrNotDirectory = errors.New("watch: not a directory")

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Filter decides whether a file is of interest.
type Filter func(path string) bool

// Watcher watches a single directory, non-recursively.
type Watcher struct {
	dir     string
	handler Handler
	filter  Filter
	settle  time.Duration
	now     func() time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFilter restricts handled files. By default every regular file is handled.
func WithFilter(f Filter) Option {
	return func(w *Watcher) { w.filter = f }
}

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// New creates a watcher for dir.
func New(dir string, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     dir,
		handler: handler,
		settle:  DefaultSettle,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. Handler errors are logged and do not
// stop the watcher; files are handled one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s", w.dir)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path := w.handleFsEvent(event); path != "" {
				pending[path] = w.now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-ticker.C:
			for _, path := range w.settled(pending) {
				delete(pending, path)
				if err := w.handler(ctx, path); err != nil {
					logger.Warn("Failed to ingest %s: %v", filepath.Base(path), err)
				}
			}
		}
	}
}

// handleFsEvent returns the path to schedule for an event, or "" to ignore it.
func (w *Watcher) handleFsEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return ""
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}

	if w.filter != nil && !w.filter(event.Name) {
		return ""
	}
	return event.Name
}

// settled returns pending paths that have been quiet for the settle window,
// in a stable order.
func (w *Watcher) settled(pending map[string]time.Time) []string {
	now := w.now()
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}
