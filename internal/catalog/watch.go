package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the catalog whenever its file changes on disk, until ctx
// is cancelled. Events are debounced because editors and atomic renames
// emit bursts. A failed reload is logged and the old snapshot stays live.
func (c *Catalog) Watch(ctx context.Context, log *zap.SugaredLogger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: rename-based saves replace the
	// inode and would silently detach a file watch.
	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		target := filepath.Clean(c.path)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, func() {
					if err := c.Reload(); err != nil {
						log.Warnw("weapon catalog reload failed, keeping previous version", "error", err)
						return
					}
					log.Infow("weapon catalog reloaded", "path", c.path, "weapons", len(c.All()))
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnw("catalog watcher error", "error", err)
			}
		}
	}()

	return nil
}
