package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// TestWatcher_DebouncesBurstIntoOneRebuild covers §8 scenario 13: two
// writes within the debounce window must collapse into exactly one
// rebuild call.
func TestWatcher_DebouncesBurstIntoOneRebuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.eel")
	if err := os.WriteFile(path, []byte("setup {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls int32
	done := make(chan struct{}, 4)
	rebuild := func(ctx context.Context, p string) error {
		atomic.AddInt32(&calls, 1)
		done <- struct{}{}
		return nil
	}

	w := New(path, 100*time.Millisecond, rebuild, func(err error) { t.Logf("watch error: %v", err) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	// two rapid writes inside the debounce window.
	if err := os.WriteFile(path, []byte("setup { x }"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(path, []byte("setup { x y }"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced rebuild")
	}

	// give a would-be second rebuild a chance to arrive, and assert it doesn't.
	select {
	case <-done:
		t.Fatal("expected exactly one rebuild for a debounced burst, got a second")
	case <-time.After(300 * time.Millisecond):
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 rebuild, got %d", got)
	}

	cancel()
	select {
	case <-runErr:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after ctx cancellation")
	}
}

// TestWatcher_SecondWriteAfterRebuildTriggersAgain covers the
// non-debounced case: a write arriving well after the previous rebuild
// finished must start a new one.
func TestWatcher_SecondWriteAfterRebuildTriggersAgain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.eel")
	if err := os.WriteFile(path, []byte("setup {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls int32
	done := make(chan struct{}, 4)
	rebuild := func(ctx context.Context, p string) error {
		atomic.AddInt32(&calls, 1)
		done <- struct{}{}
		return nil
	}

	w := New(path, 30*time.Millisecond, rebuild, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(ctx)

	if err := os.WriteFile(path, []byte("setup { a }"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first rebuild")
	}

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("setup { a b }"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for second rebuild")
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected exactly 2 rebuilds, got %d", got)
	}
}
