package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]bool
	err   error
}

func (r *recorder) handle(_ context.Context, paths []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
	if r.err != nil {
		return nil, r.err
	}
	var failed []string
	for _, p := range paths {
		if r.fail[p] {
			failed = append(failed, p)
		}
	}
	return failed, nil
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func runWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
}

func TestWatcherPicksUpExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.FIT")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	rec := &recorder{}
	w := New(dir, rec.handle)
	w.Settle = 20 * time.Millisecond
	runWatcher(t, w)

	require.Eventually(t, func() bool { return len(rec.seen()) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{existing}, rec.seen())

	created := filepath.Join(dir, "new.fit")
	require.NoError(t, os.WriteFile(created, []byte("y"), 0o644))

	require.Eventually(t, func() bool { return len(rec.seen()) == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, created, rec.seen()[1])
}

func TestWatcherRejectsBadSchedule(t *testing.T) {
	w := New(t.TempDir(), (&recorder{}).handle)
	w.Rescan = "every now and then"
	assert.Error(t, w.Run(context.Background()))
}

func TestWatcherMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), (&recorder{}).handle)
	assert.Error(t, w.Run(context.Background()))
}

func TestDispatchSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.fit")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	rec := &recorder{}
	w := New(dir, rec.handle)
	w.dispatch(context.Background(), []string{path, filepath.Join(dir, "gone.fit")})
	w.dispatch(context.Background(), []string{path})
	assert.Equal(t, []string{path}, rec.seen())

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	w.dispatch(context.Background(), []string{path})
	assert.Equal(t, []string{path, path}, rec.seen())
}

func TestDispatchRetriesFailedFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.fit")
	bad := filepath.Join(dir, "b.fit")
	require.NoError(t, os.WriteFile(good, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))

	rec := &recorder{fail: map[string]bool{bad: true}}
	w := New(dir, rec.handle)
	w.scan(context.Background())
	w.scan(context.Background())
	assert.Equal(t, []string{good, bad, bad}, rec.seen())

	rec.fail = nil
	w.scan(context.Background())
	w.scan(context.Background())
	assert.Equal(t, []string{good, bad, bad, bad}, rec.seen())
}

func TestDispatchRetriesWholeBatchOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.fit")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	rec := &recorder{err: errors.New("store unavailable")}
	w := New(dir, rec.handle)
	w.dispatch(context.Background(), []string{path})
	w.dispatch(context.Background(), []string{path, path})
	assert.Equal(t, []string{path, path}, rec.seen())
}
