package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Watcher:
// - New fails for a missing directory
// - Changes within the debounce window arrive as one sorted, deduplicated batch
// - Other extensions are ignored
// - Deleted files are reported
// - New directories are watched, skipped directories are not
// - Stop is idempotent and context cancellation ends the watch

const testDebounce = 100 * time.Millisecond

type batches struct {
	mu  sync.Mutex
	all [][]string
	ch  chan struct{}
}

func newBatches() *batches {
	return &batches{ch: make(chan struct{}, 10)}
}

func (b *batches) record(files []string) {
	b.mu.Lock()
	b.all = append(b.all, files)
	b.mu.Unlock()
	b.ch <- struct{}{}
}

func (b *batches) wait(t *testing.T) []string {
	t.Helper()

	select {
	case <-b.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not called after timeout")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.all[len(b.all)-1]
}

func (b *batches) expectNone(t *testing.T) {
	t.Helper()

	select {
	case <-b.ch:
		t.Fatal("unexpected callback")
	case <-time.After(4 * testDebounce):
	}
}

func startWatcher(t *testing.T, dir string, opts ...Option) *batches {
	t.Helper()

	opts = append([]Option{WithDebounce(testDebounce)}, opts...)
	w, err := New([]string{dir}, []string{".php"}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	b := newBatches()
	require.NoError(t, w.Start(context.Background(), b.record))

	// Wait for watcher to initialize
	time.Sleep(50 * time.Millisecond)
	return b
}

func TestNew_InvalidDirectory(t *testing.T) {
	t.Parallel()

	w, err := New([]string{filepath.Join(t.TempDir(), "missing")}, []string{".php"})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestWatcher_BatchesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := startWatcher(t, dir)

	second := filepath.Join(dir, "b.php")
	first := filepath.Join(dir, "a.php")

	require.NoError(t, os.WriteFile(second, []byte("<?php\n"), 0644))
	require.NoError(t, os.WriteFile(first, []byte("<?php\n"), 0644))
	require.NoError(t, os.WriteFile(first, []byte("<?php\nclass A {}\n"), 0644))

	assert.Equal(t, []string{first, second}, b.wait(t))
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	b.expectNone(t)
}

func TestWatcher_ReportsDeletes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "gone.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php\n"), 0644))

	b := startWatcher(t, dir)
	require.NoError(t, os.Remove(path))

	assert.Equal(t, []string{path}, b.wait(t))
}

func TestWatcher_NewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := startWatcher(t, dir, WithSkipDir(func(d string) bool {
		return filepath.Base(d) == "vendor"
	}))

	sub := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(sub, "User.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php\n"), 0644))

	assert.Contains(t, b.wait(t), path)
}

func TestWatcher_SkipsDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	vendor := filepath.Join(dir, "vendor")
	require.NoError(t, os.Mkdir(vendor, 0755))

	b := startWatcher(t, dir, WithSkipDir(func(d string) bool {
		return filepath.Base(d) == "vendor"
	}))

	require.NoError(t, os.WriteFile(filepath.Join(vendor, "Lib.php"), []byte("<?php\n"), 0644))
	b.expectNone(t)
}

func TestWatcher_Stop(t *testing.T) {
	t.Parallel()

	w, err := New([]string{t.TempDir()}, []string{".php"})
	require.NoError(t, err)

	// Never started
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	w, err := New([]string{t.TempDir()}, []string{".php"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, func([]string) {}))

	cancel()

	select {
	case <-w.doneCh:
	case <-time.After(time.Second):
		t.Fatal("watch goroutine did not exit")
	}

	require.NoError(t, w.Stop())
}
