package filecoupling

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// awaitFile blocks until the file exists, the context is canceled, or the
// watcher fails. Atomic renames surface as create events; a polling ticker
// backs the watcher up against missed events.
func awaitFile(ctx context.Context, path string, poll time.Duration) error {
	if fileExists(path) {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// No watcher available; fall back to pure polling.
		return pollFile(ctx, path, poll)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return pollFile(ctx, path, poll)
	}

	// The file may have appeared between the first check and the watch.
	if fileExists(path) {
		return nil
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-watcher.Events:
			if ev.Name == path && ev.Op.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) && fileExists(path) {
				return nil
			}
		case <-watcher.Errors:
			if fileExists(path) {
				return nil
			}
		case <-ticker.C:
			if fileExists(path) {
				return nil
			}
		}
	}
}

func pollFile(ctx context.Context, path string, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if fileExists(path) {
				return nil
			}
		}
	}
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
