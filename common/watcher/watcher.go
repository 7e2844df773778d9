package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/platform-mesh/golang-commons/logger"
)

// FileEventHandler handles file system events
type FileEventHandler interface {
	OnFileChanged(filepath string)
	OnFileDeleted(filepath string)
}

// Filter reports whether events for path should reach the handler.
type Filter func(path string) bool

// ManifestFiles accepts YAML and JSON files.
func ManifestFiles(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// FileWatcher provides common file watching functionality
type FileWatcher struct {
	watcher *fsnotify.Watcher
	handler FileEventHandler
	filter  Filter
	log     *logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewFileWatcher creates a new file watcher. A nil filter accepts every file.
func NewFileWatcher(handler FileEventHandler, filter Filter, log *logger.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if filter == nil {
		filter = func(string) bool { return true }
	}

	return &FileWatcher{
		watcher: watcher,
		handler: handler,
		filter:  filter,
		log:     log,
		timers:  map[string]*time.Timer{},
	}, nil
}

// WatchSingleFile watches a single file with debouncing
func (w *FileWatcher) WatchSingleFile(ctx context.Context, filePath string, debounce time.Duration) error {
	if filePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	// fsnotify loses the watch on editors that replace the file, so watch its directory.
	fileDir := filepath.Dir(filePath)
	if err := w.watcher.Add(fileDir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", fileDir, err)
	}
	defer w.close()

	w.log.Info().Str("filePath", filePath).Msg("started watching file")

	target := filepath.Clean(filePath)
	return w.run(ctx, debounce, func(event fsnotify.Event) bool {
		return filepath.Clean(event.Name) == target
	})
}

// WatchDirectory watches a directory recursively. Events are debounced per file.
func (w *FileWatcher) WatchDirectory(ctx context.Context, dirPath string, debounce time.Duration) error {
	if err := w.addWatchRecursively(dirPath); err != nil {
		return fmt.Errorf("failed to add watch paths: %w", err)
	}
	defer w.close()

	w.log.Info().Str("dirPath", dirPath).Msg("started watching directory")

	return w.run(ctx, debounce, func(fsnotify.Event) bool { return true })
}

func (w *FileWatcher) run(ctx context.Context, debounce time.Duration, match func(fsnotify.Event) bool) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping file watcher")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("file watcher events channel closed")
			}
			if match(event) {
				w.handleEvent(event, debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("file watcher errors channel closed")
			}
			w.log.Error().Err(err).Msg("file watcher error")
		}
	}
}

func (w *FileWatcher) handleEvent(event fsnotify.Event, debounce time.Duration) {
	w.log.Debug().Str("event", event.String()).Msg("file event")

	path := event.Name
	switch {
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if err := w.addWatchRecursively(path); err != nil {
				w.log.Error().Err(err).Str("path", path).Msg("failed to add directory to watcher")
				return
			}
			w.walk(path, debounce)
			return
		}
		if w.filter(path) {
			w.debounce(path, debounce, func() { w.handler.OnFileChanged(path) })
		}

	case event.Op.Has(fsnotify.Rename) || event.Op.Has(fsnotify.Remove):
		if w.filter(path) {
			w.debounce(path, debounce, func() { w.handler.OnFileDeleted(path) })
		}
	default:
		w.log.Debug().Str("filepath", path).Str("op", event.Op.String()).Msg("unhandled file event")
	}
}

// walk reports every file below a directory that appeared after the watch started.
func (w *FileWatcher) walk(dir string, debounce time.Duration) {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && w.filter(path) {
			w.debounce(path, debounce, func() { w.handler.OnFileChanged(path) })
		}
		return nil
	})
	if err != nil {
		w.log.Error().Err(err).Str("path", dir).Msg("failed to walk directory")
	}
}

func (w *FileWatcher) debounce(path string, delay time.Duration, fn func()) {
	if delay <= 0 {
		fn()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(delay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		fn()
	})
}

func (w *FileWatcher) close() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	_ = w.watcher.Close()
}

func (w *FileWatcher) addWatchRecursively(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add watch path %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := w.addWatchRecursively(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
