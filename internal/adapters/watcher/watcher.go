// Package watcher watches a directory tree for edge-list files that change.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

var skipDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	".planar":      true,
	"node_modules": true,
}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher with fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	events    chan ports.EdgeFileEvent
}

// NewWatcher creates a new file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	return &Watcher{
		fsWatcher: w,
		logger:    logger,
		events:    make(chan ports.EdgeFileEvent, eventChannelBuffer),
	}, nil
}

// Start begins watching root recursively. Events stop when ctx is done.
func (w *Watcher) Start(ctx context.Context, root string) error {
	for dir := range walkDirs(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events. It ends when the watcher
// stops.
func (w *Watcher) Events() iter.Seq[ports.EdgeFileEvent] {
	return func(yield func(ports.EdgeFileEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func walkDirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				w.watchNewDirectory(event.Name)
			}

			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err.Error())
		}
	}
}

func (w *Watcher) watchNewDirectory(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || skipDirectories[info.Name()] {
		return
	}
	for dir := range walkDirs(path) {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch new directory", "dir", dir, "error", err.Error())
		}
	}
}

// convertEvent maps an fsnotify event on an edge-list file to an
// EdgeFileEvent. Chmod-only events and other files are dropped.
func convertEvent(event fsnotify.Event) (ports.EdgeFileEvent, bool) {
	if !strings.EqualFold(filepath.Ext(event.Name), domain.EdgeFileExt) {
		return ports.EdgeFileEvent{}, false
	}

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		return ports.EdgeFileEvent{Path: event.Name, Op: ports.EdgeFileChanged}, true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return ports.EdgeFileEvent{Path: event.Name, Op: ports.EdgeFileGone}, true
	default:
		return ports.EdgeFileEvent{}, false
	}
}
