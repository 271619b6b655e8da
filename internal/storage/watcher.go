package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"eyedoro/internal/core/model"
)

// Watch follows external edits of the settings file until ctx is done.
// onChange runs on the watcher goroutine for every edit that changes the
// current configuration; the store's own writes are filtered out because
// they leave the reloaded value equal to the current one.
func (store *Store) Watch(ctx context.Context, onChange func(model.SessionConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("create config directory: %w", err)
	}
	// The directory is watched so editors that replace the file keep being
	// followed.
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch settings dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(store.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				store.applyExternal(onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				store.log.Warn("settings watcher: %v", err)
			}
		}
	}()
	return nil
}

func (store *Store) applyExternal(onChange func(model.SessionConfig)) {
	store.fileMu.Lock()
	config, changed, err := store.reloadExternalLocked()
	store.fileMu.Unlock()
	if err != nil || !changed {
		return
	}
	store.log.Info("settings file edited externally")
	if onChange != nil {
		onChange(config)
	}
}

func (store *Store) reloadExternalLocked() (model.SessionConfig, bool, error) {
	config, err := store.read(false)
	if errors.Is(err, errPartialFile) {
		store.log.Debug("skipping settings edit: %v", err)
		return config, false, err
	}
	if err != nil {
		store.log.Warn("reload edited settings: %v", err)
		return config, false, err
	}
	return config, store.replace(config, OriginFile), nil
}
