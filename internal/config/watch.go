package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/yourusername/ranking-engine/internal/scoring"
)

// WatchTables reloads the scoring tables file whenever it is written and
// publishes the result to provider. A file that fails to parse or validate
// is reported through onError and the previous tables stay active.
// The parent directory is watched so saves that rename a temporary file over
// path are seen too. It runs until ctx is cancelled.
func WatchTables(ctx context.Context, path string, provider *TablesProvider, onReload func(*scoring.Tables), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// renamed away; the replacement arrives as Create
			if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
				continue
			}

			tables, err := LoadTables(target)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}

			provider.Store(tables)
			if onReload != nil {
				onReload(tables)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
