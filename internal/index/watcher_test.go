package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, dir string) *atomic.Int32 {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.Cleanup(func() {
		cancel()
		<-done
	})

	var calls atomic.Int32
	go func() {
		defer close(done)
		_ = Watch(ctx, dir, 50*time.Millisecond, discardLogger(), func(context.Context) {
			calls.Add(1)
		})
	}()
	time.Sleep(100 * time.Millisecond)
	return &calls
}

func TestWatcher_DocumentTriggersResync(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir)

	_ = os.WriteFile(filepath.Join(dir, "new.xml"), []byte("<song/>"), 0o644)

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "document change did not trigger a resync")
}

func TestWatcher_BurstCollapses(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir)

	for i := 0; i < 5; i++ {
		_ = os.WriteFile(filepath.Join(dir, "burst.xml"), []byte{byte('a' + i)}, 0o644)
	}

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "burst did not trigger a resync")
	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got > 2 {
		t.Errorf("resyncs = %d, want the burst collapsed", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir)

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("resyncs = %d, want 0", got)
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir)

	sub := filepath.Join(dir, "subdir")
	_ = os.MkdirAll(sub, 0o755)
	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return calls.Load() > 0
	}, "new directory did not trigger a resync")

	before := calls.Load()
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.xml"), []byte("<song/>"), 0o644)
	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return calls.Load() > before
	}, "document in new subdir did not trigger a resync")
}
