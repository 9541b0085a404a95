package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"sales-dashboard/src/logger"

	"github.com/fsnotify/fsnotify"
)

// watchCSV reloads the store whenever the CSV is written. A slow poll covers
// filesystems where notifications are unreliable.
func watchCSV(ctx context.Context, store *SalesStore, pollInterval time.Duration, log *logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(store.path)
	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		log.Warning("Could not watch %s, polling only: %v", dir, err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only care about writes and creates of the CSV itself
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, err := store.Reload(true); err != nil {
				log.Warning("Reload after %s failed: %v", event.Op, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warning("Watcher error: %v", err)

		case <-ticker.C:
			if _, err := store.Reload(false); err != nil {
				log.Debug("Poll reload failed: %v", err)
			}
		}
	}
}
