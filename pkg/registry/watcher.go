package registry

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Change is a filesystem event that may invalidate the current snapshot
type Change struct {
	Path string
	Op   fsnotify.Op
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Op, c.Path)
}

// Watcher reports changes to protocol files under a root
type Watcher struct {
	root       string
	extensions []string
	watcher    *fsnotify.Watcher
	log        *logrus.Logger
}

// NewWatcher watches root and every directory below it
func NewWatcher(root string, extensions []string, log *logrus.Logger) (*Watcher, error) {
	if log == nil {
		log = logrus.New()
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		root:       root,
		extensions: extensions,
		watcher:    fsw,
		log:        log,
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree recursively adds all directories to the watcher
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// Next blocks until a relevant change arrives, the context ends, or the
// watcher is closed.
func (w *Watcher) Next(ctx context.Context) (Change, error) {
	for {
		select {
		case <-ctx.Done():
			return Change{}, ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return Change{}, fmt.Errorf("watcher closed")
			}
			if change, relevant := w.handle(event); relevant {
				return change, nil
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return Change{}, fmt.Errorf("watcher closed")
			}
			w.log.WithError(err).Warn("watcher error")
		}
	}
}

// Drain returns every relevant change already queued without blocking
func (w *Watcher) Drain() []Change {
	var changes []Change
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return changes
			}
			if change, relevant := w.handle(event); relevant {
				changes = append(changes, change)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return changes
			}
			w.log.WithError(err).Warn("watcher error")
		default:
			return changes
		}
	}
}

// handle filters an event; new directories are watched and count as changes
func (w *Watcher) handle(event fsnotify.Event) (Change, bool) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.WithError(err).WithField("path", event.Name).Warn("failed to watch new directory")
			}
			return Change{Path: event.Name, Op: event.Op}, true
		}
	}

	if !matchesExtension(event.Name, w.extensions) {
		return Change{}, false
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return Change{}, false
	}
	w.log.WithField("path", event.Name).Debugf("protocol file changed: %s", event.Op)
	return Change{Path: event.Name, Op: event.Op}, true
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
