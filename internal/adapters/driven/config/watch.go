package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/outlook-mcp/internal/logger"
)

// Watch reloads the configuration whenever the file changes and delivers
// each successful reload on the returned channel. The parent directory is
// watched rather than the file itself, because editors replace files by
// rename and that would silently drop a file-level watch. The channel
// closes when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) (<-chan *Config, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	updates := make(chan *Config)

	go func() {
		defer close(updates)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filepath.Base(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}

				cfg, err := s.Load()
				if err != nil {
					// A partially written file is expected mid-save; the
					// next event will carry the complete version.
					logger.Debug("config: reload skipped: %v", err)
					continue
				}

				select {
				case updates <- cfg:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debug("config: watch error: %v", err)
			}
		}
	}()

	return updates, nil
}
