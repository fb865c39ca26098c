package watch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last write before a rerun.
const DefaultDebounce = 500 * time.Millisecond

// Watcher triggers a callback when matrix or config files change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	paths    []string
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher watches the given files and directories. Paths that do not exist
// are skipped.
func NewWatcher(paths []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	var watched []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := watcher.Add(p); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %q: %w", p, err)
		}
		watched = append(watched, p)
	}
	if len(watched) == 0 {
		watcher.Close()
		return nil, fmt.Errorf("nothing to watch in %v", paths)
	}

	return &Watcher{
		watcher:  watcher,
		paths:    watched,
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Paths returns the watched paths.
func (w *Watcher) Paths() []string {
	return w.paths
}

// Run calls onChange after each burst of writes settles. Calls never overlap.
// Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context)) error {
	defer w.watcher.Close()

	var (
		debounce *time.Timer
		running  sync.Mutex
		wg       sync.WaitGroup
	)
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			if debounce != nil && debounce.Stop() {
				wg.Done()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if debounce != nil && debounce.Stop() {
				wg.Done()
			}
			wg.Add(1)
			debounce = time.AfterFunc(w.debounce, func() {
				defer wg.Done()
				running.Lock()
				defer running.Unlock()
				if ctx.Err() != nil {
					return
				}
				onChange(ctx)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
