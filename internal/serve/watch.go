// Package serve backs the development server: it rebuilds the site when its
// inputs change and serves the output directory.
package serve

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls Rebuild after files under the watched paths change. Bursts of
// events within Debounce collapse into one rebuild.
type Watcher struct {
	Rebuild  func(ctx context.Context) error
	Debounce time.Duration
	Log      zerolog.Logger

	fsw *fsnotify.Watcher
	wg  sync.WaitGroup
}

// NewWatcher creates a watcher for rebuild. Call Add for each input, then Run.
func NewWatcher(rebuild func(ctx context.Context) error, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{Rebuild: rebuild, Debounce: DefaultDebounce, Log: log, fsw: fsw}, nil
}

// Add watches path. Directories are watched recursively; missing paths are
// logged and ignored.
func (w *Watcher) Add(path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.Log.Info().Str("path", path).Msg("path not found, not watching")
		return
	}
	if !info.IsDir() {
		if err := w.fsw.Add(path); err != nil {
			w.Log.Warn().Err(err).Str("path", path).Msg("failed to watch")
		}
		return
	}
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.Log.Warn().Err(err).Str("path", p).Msg("error walking")
			return nil
		}
		if d.IsDir() {
			if watchErr := w.fsw.Add(p); watchErr != nil {
				w.Log.Warn().Err(watchErr).Str("path", p).Msg("failed to watch")
			}
		}
		return nil
	})
	if err != nil {
		w.Log.Warn().Err(err).Str("path", path).Msg("error during initial directory walk")
	}
}

// Run processes events until ctx is done, then closes the underlying watcher
// and waits for any rebuild in flight.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	// A timer stopped before firing never runs its Done.
	stop := func() {
		if timer != nil && timer.Stop() {
			w.wg.Done()
		}
	}
	defer func() {
		stop()
		_ = w.fsw.Close()
		w.wg.Wait()
	}()

	// rebuilds run one at a time
	var mu sync.Mutex
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.Log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change detected")

			// New subdirectories are not picked up by fsnotify on their own.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.Add(event.Name)
				}
			}

			stop()
			w.wg.Add(1)
			timer = time.AfterFunc(w.Debounce, func() {
				defer w.wg.Done()
				if ctx.Err() != nil {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				w.Log.Info().Msg("rebuilding site due to changes")
				if err := w.Rebuild(ctx); err != nil {
					w.Log.Error().Err(err).Msg("rebuild failed")
					return
				}
				w.Log.Info().Msg("site rebuilt")
			})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.Log.Warn().Err(err).Msg("watcher error")
		}
	}
}
