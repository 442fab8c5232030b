// Package watch re-runs a search whenever its definition file changes.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/jsps/internal/debug"
)

// ChangeFunc is called with the new definition source. Calls never overlap.
type ChangeFunc func(ctx context.Context, source string)

// Watcher follows one definition file
type Watcher struct {
	path      string
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	onChange  ChangeFunc

	lastHash  uint64
	hasRun    bool
	runs      atomic.Int64
	unchanged atomic.Int64
}

// New watches the file at path. The parent directory is watched so that
// editors which save by renaming a temp file over the original are seen.
func New(path string, debounce time.Duration, onChange ChangeFunc) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("cannot watch definition: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to add watch for %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:      abs,
		fsw:       fsw,
		debouncer: NewDebouncer(debounce),
		onChange:  onChange,
	}, nil
}

// Run calls onChange once with the current content and again after every
// change that alters the content. It returns when ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer w.debouncer.Stop()

	debug.LogWatch("watching %s", w.path)
	w.check(ctx)

	for {
		select {
		case <-ctx.Done():
			debug.LogWatch("stopped watching %s", w.path)
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				debug.LogWatch("event %v for %s", event.Op, event.Name)
				w.debouncer.Schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Definition watcher error: %v", err)

		case <-w.debouncer.C():
			w.check(ctx)
		}
	}
}

// Stats returns how many runs were started and how many changes were
// skipped because the content hash did not change
func (w *Watcher) Stats() (runs, unchanged int) {
	return int(w.runs.Load()), int(w.unchanged.Load())
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) check(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		// mid-save; the next event triggers another check
		log.Printf("Warning: cannot read definition %s: %v", w.path, err)
		return
	}

	hash := xxhash.Sum64(data)
	if w.hasRun && hash == w.lastHash {
		w.unchanged.Add(1)
		debug.LogWatch("%s unchanged (hash %x), skipping run", w.path, hash)
		return
	}
	w.lastHash = hash
	w.hasRun = true
	w.runs.Add(1)

	w.onChange(ctx, string(data))
}
