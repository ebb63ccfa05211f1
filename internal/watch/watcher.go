// Package watch reports changes to note files, including edits made outside
// the HTTP API, by watching the notes directory with fsnotify.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/notesd/internal/checksum"
	"github.com/starford/notesd/internal/storage"
)

// Callback is called for each observed note change.
// kind is one of "created", "updated", "deleted"; sum is empty on delete.
type Callback func(kind, name, sum string)

// Watch starts an fsnotify watcher on the store root and reports note changes
// until ctx is cancelled.
//
// Atomic writes land as a rename onto the note file, which fsnotify reports
// as Create. Whether a change is a creation or an update is decided from the
// set of names seen so far, seeded from the store at startup. Consecutive
// events that leave the content unchanged are coalesced.
func Watch(ctx context.Context, store *storage.FS, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := w.Add(root); err != nil {
		return err
	}

	seen := make(map[string]string)
	notes, err := store.List()
	if err != nil {
		return err
	}
	for _, n := range notes {
		seen[n.Name] = checksum.Sum(n.Text)
	}

	logger.Info("watcher: started", slog.String("root", root), slog.Int("notes", len(seen)))

	emit := func(kind, name, sum string) {
		logger.Debug("watcher: note changed", slog.String("name", name), slog.String("op", kind))
		if cb != nil {
			cb(kind, name, sum)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Dir(ev.Name) != root {
				continue
			}
			name, isNote := store.NameFromKey(filepath.Base(ev.Name))
			if !isNote {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				text, readErr := store.Read(name)
				if readErr != nil {
					// Gone again, or not a regular file.
					logger.Debug("watcher: read skipped", slog.String("name", name), slog.String("error", readErr.Error()))
					continue
				}
				sum := checksum.Sum(text)
				prev, known := seen[name]
				if known && prev == sum {
					continue
				}
				seen[name] = sum
				if known {
					emit("updated", name, sum)
				} else {
					emit("created", name, sum)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if _, known := seen[name]; !known {
					continue
				}
				if ok, _ := store.Exists(name); ok {
					continue
				}
				delete(seen, name)
				emit("deleted", name, "")
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
