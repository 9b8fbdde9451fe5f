package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"

	"github.com/starford/sngforge/internal/storage"
)

// DefaultQuiet is how long the songs directory must stay quiet before a
// burst of file events triggers a resync.
const DefaultQuiet = 250 * time.Millisecond

// ResyncFunc brings the catalogue in line with the songs directory.
type ResyncFunc func(ctx context.Context)

// Watch watches root recursively until ctx is cancelled. Bursts of events on
// notation documents are collapsed into one call of resync after quiet has
// elapsed without further events. Directories created at runtime are added
// to the watch list and also trigger a resync.
func Watch(ctx context.Context, root string, quiet time.Duration, logger *slog.Logger, resync ResyncFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}

	// resyncs never overlap, and none starts after Watch returns.
	var mu sync.Mutex
	debounced := debounce.New(quiet)
	trigger := func() {
		debounced(func() {
			mu.Lock()
			defer mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			resync(ctx)
		})
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			defer mu.Unlock()
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
					trigger()
					continue
				}
			}

			if !storage.IsDocument(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			trigger()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
