package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/platform-mesh/golang-commons/logger/testlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu      sync.Mutex
	changed []string
	deleted []string
}

func (h *recordingHandler) OnFileChanged(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.changed = append(h.changed, path)
}

func (h *recordingHandler) OnFileDeleted(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, path)
}

func (h *recordingHandler) snapshot() ([]string, []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.changed...), append([]string(nil), h.deleted...)
}

func TestManifestFiles(t *testing.T) {
	tests := map[string]bool{
		"api.yaml":       true,
		"api.yml":        true,
		"api.json":       true,
		"api.yaml.swp":   false,
		"README.md":      false,
		"dir/nested.yml": true,
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, want, ManifestFiles(path))
		})
	}
}

func TestWatchDirectory(t *testing.T) {
	dir := t.TempDir()
	handler := &recordingHandler{}
	w, err := NewFileWatcher(handler, ManifestFiles, testlogger.New().HideLogOutput().Logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.WatchDirectory(ctx, dir, 20*time.Millisecond) }()

	// Give fsnotify time to register the watch.
	time.Sleep(50 * time.Millisecond)

	manifest := filepath.Join(dir, "api.yaml")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(manifest, []byte("kind: GraphQLApi\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	assert.Eventually(t, func() bool {
		changed, _ := handler.snapshot()
		return len(changed) == 1 && changed[0] == manifest
	}, 2*time.Second, 10*time.Millisecond, "writes should be debounced into one change")

	require.NoError(t, os.Remove(manifest))
	assert.Eventually(t, func() bool {
		_, deleted := handler.snapshot()
		return len(deleted) == 1 && deleted[0] == manifest
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchSingleFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "apis.yaml")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o644))

	handler := &recordingHandler{}
	w, err := NewFileWatcher(handler, nil, testlogger.New().HideLogOutput().Logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.WatchSingleFile(ctx, target, 0) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("kind: Upstream\n"), 0o644))

	assert.Eventually(t, func() bool {
		changed, _ := handler.snapshot()
		return len(changed) > 0
	}, 2*time.Second, 10*time.Millisecond)

	changed, _ := handler.snapshot()
	for _, path := range changed {
		assert.Equal(t, target, path)
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchSingleFileRequiresPath(t *testing.T) {
	w, err := NewFileWatcher(&recordingHandler{}, nil, testlogger.New().HideLogOutput().Logger)
	require.NoError(t, err)
	assert.Error(t, w.WatchSingleFile(context.Background(), "", time.Millisecond))
}
