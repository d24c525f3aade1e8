// Package watch reports changes in a sample folder.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// maxDepth is how deep below the root folders are watched: release and
// tremulant folders, and release folders inside tremulant folders.
const maxDepth = 2

// DefaultDelay is the quiet time after the last change before the callback
// runs.
const DefaultDelay = 500 * time.Millisecond

type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	debounce func(func())
	fire     chan struct{}
	onChange func()
	log      *zap.Logger
}

// New watches root and its folders up to two levels down. onChange runs on
// the goroutine calling Run once changes stop for delay, and never after Run
// returns.
func New(root string, delay time.Duration, onChange func(), log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("could not watch %v: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("could not watch %v: not a directory", root)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create watcher: %w", err)
	}
	w := &Watcher{
		root:     filepath.Clean(root),
		fsw:      fsw,
		debounce: debounce.New(delay),
		fire:     make(chan struct{}, 1),
		onChange: onChange,
		log:      log,
	}
	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers changes until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		case <-w.fire:
			w.onChange()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Watched lists the folders being watched.
func (w *Watcher) Watched() []string {
	return w.fsw.WatchList()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warn("could not watch new folder", zap.String("dir", event.Name), zap.Error(err))
			}
		}
	}
	w.log.Debug("sample folder changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
	w.debounce(w.signal)
}

// signal runs on the debounce timer; a change already pending absorbs it.
func (w *Watcher) signal() {
	select {
	case w.fire <- struct{}{}:
	default:
	}
}

// addTree watches dir and the folders below it that are within maxDepth of
// the root.
func (w *Watcher) addTree(dir string) error {
	if w.depth(dir) > maxDepth {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("could not watch %v: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.log.Warn("could not read folder", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.addTree(filepath.Join(dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Watcher) depth(dir string) int {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
