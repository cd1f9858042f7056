package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hivscreen/internal/testutil"
)

func TestFileWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.csv")
	require.NoError(t, os.WriteFile(path, []byte("Smiles,Label\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	fired := make(chan struct{}, 8)
	done := make(chan error, 1)
	w := NewFileWatcher(path, 100*time.Millisecond, nil)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			fired <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(200 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("Smiles,Label\nC,%d\n", i%2)), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o644))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not called")
	}
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFileWatcher_CallbackErrorKeepsWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 8)
	logger := testutil.NewMockLogger()
	w := NewFileWatcher(path, 20*time.Millisecond, logger)
	go func() {
		_ = w.Run(ctx, func(context.Context) error {
			fired <- struct{}{}
			return fmt.Errorf("parse failed")
		})
	}()
	time.Sleep(200 * time.Millisecond)

	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		select {
		case <-fired:
		case <-time.After(5 * time.Second):
			t.Fatalf("change %d not seen", i)
		}
	}
	assert.Eventually(t, func() bool {
		return logger.HasMessage("error", "re-run after change failed")
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, logger.HasMessage("info", "watching dataset for changes"))
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	w := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "train.csv"), 0, nil)
	err := w.Run(context.Background(), func(context.Context) error { return nil })
	assert.Error(t, err)
}
