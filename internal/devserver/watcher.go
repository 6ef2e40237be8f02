package devserver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Watcher forwards relevant filesystem changes under a set of directories.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger interfaces.Logger
}

// NewWatcher watches every directory under dirs. Missing roots are skipped
// with a warning.
func NewWatcher(dirs []string, logger interfaces.Logger) (*Watcher, error) {
	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fs: inner, logger: logging.Ensure(logger)}
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			inner.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		w.logger.Warn("watch dir missing", "path", root)
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return err
		}
		w.logger.Debug("watching", "path", path)
		return nil
	})
}

// Relevant reports whether ev should trigger a rebuild. Pure permission
// changes and Go sources are ignored.
func Relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return !strings.HasSuffix(ev.Name, ".go")
}

// Run calls changed for every relevant event until ctx is done or the
// watcher is closed. Directories created while running are watched too.
func (w *Watcher) Run(ctx context.Context, changed func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !Relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("watch new dir failed", "path", ev.Name, "error", err)
					}
				}
			}
			w.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			changed()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
