package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/organforge/pipework/watch"
)

func wait(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported after %v", what)
	}
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "trem", "rel", "deep"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	changes := make(chan struct{}, 16)
	w, err := watch.New(root, 20*time.Millisecond, func() { changes <- struct{}{} }, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()
	if got := len(w.Watched()); got != 3 {
		t.Fatalf("watched folders, got %v, expected 3: %v", got, w.Watched())
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	os.WriteFile(filepath.Join(root, "036.wav"), nil, 0o644)
	wait(t, changes, "writing a sample")

	if err := os.Mkdir(filepath.Join(root, "rel"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	wait(t, changes, "creating a folder")
	// let the new folder get added before writing into it
	time.Sleep(100 * time.Millisecond)
	for len(changes) > 0 {
		<-changes
	}
	os.WriteFile(filepath.Join(root, "rel", "036.wav"), nil, 0o644)
	wait(t, changes, "writing into the new folder")
}

func TestWatchMissingRoot(t *testing.T) {
	if _, err := watch.New(filepath.Join(t.TempDir(), "missing"), 0, func() {}, nil); err == nil {
		t.Fatalf("expected an error for a missing root")
	}
}

func TestNoChangeAfterRunReturns(t *testing.T) {
	root := t.TempDir()
	changes := make(chan struct{}, 16)
	w, err := watch.New(root, 20*time.Millisecond, func() { changes <- struct{}{} }, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	os.WriteFile(filepath.Join(root, "036.wav"), nil, 0o644)
	cancel()
	<-done
	for len(changes) > 0 {
		<-changes
	}
	os.WriteFile(filepath.Join(root, "037.wav"), nil, 0o644)
	time.Sleep(100 * time.Millisecond)
	if len(changes) != 0 {
		t.Fatalf("onChange ran %v times after Run returned", len(changes))
	}
}
