package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads r whenever the policy file at path is written or replaced,
// until ctx is done. A file that fails to parse is logged and ignored, so
// the last good policy stays in force.
func (r *Registry) Watch(ctx context.Context, path string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors and config-map mounts replace the file
	// rather than writing it in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					logger.Warn("policy reload failed", "path", path, "error", err)
					continue
				}
				if err := r.Reload(data); err != nil {
					logger.Warn("policy rejected, keeping previous", "path", path, "error", err)
					continue
				}
				logger.Info("policy reloaded", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("policy watcher error", "error", err)
			}
		}
	}()

	return nil
}

// Open returns the embedded policy when path is empty. Otherwise it loads
// the file at path and keeps it in sync until ctx is done.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Registry, error) {
	if path == "" {
		return NewRegistry()
	}

	r, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := r.Watch(ctx, path, logger); err != nil {
		return nil, err
	}
	logger.Info("policy loaded from file", "path", path)
	return r, nil
}
