package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// touchUntil rewrites path once a second until cond holds. The first writes
// may land before the watcher is registered.
func touchUntil(t *testing.T, path string, cond func() bool) {
	t.Helper()
	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte(time.Now().String()), 0644))
		for range 100 {
			if cond() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("no change detected for %s", path)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, path, Options{Debounce: 20 * time.Millisecond}, func(context.Context) error {
			calls.Add(1)
			return errors.New("keeps going")
		})
	}()

	touchUntil(t, path, func() bool { return calls.Load() > 0 })

	// Failing callbacks do not stop the loop
	calls.Store(0)
	touchUntil(t, path, func() bool { return calls.Load() > 0 })

	time.Sleep(100 * time.Millisecond)
	calls.Store(0)
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load(), "unrelated files are ignored")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunDebounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.toml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Run(ctx, path, Options{Debounce: 300 * time.Millisecond}, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	touchUntil(t, path, func() bool { return calls.Load() > 0 })
	time.Sleep(400 * time.Millisecond)
	calls.Store(0)

	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte("burst"), 0644))
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(600 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunMissingDirectory(t *testing.T) {
	err := Run(context.Background(), filepath.Join(t.TempDir(), "nope", "board.yaml"), Options{}, func(context.Context) error {
		return nil
	})
	assert.Error(t, err)
}
