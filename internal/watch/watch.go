// Package watch reports edits to patch files, batching the bursts of events
// editors produce on a single save.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/patchgrid/internal/ctxlog"
)

// DefaultDebounce is how long the watcher waits for more events before
// reporting a batch.
const DefaultDebounce = 100 * time.Millisecond

// Handler receives the distinct paths changed within one debounce window, in
// the order they first changed. It runs on the watcher's goroutine.
type Handler func(ctx context.Context, paths []string)

// Options configures a Watcher.
type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Extension limits directory watches to files with this suffix.
	Extension string
}

// Watcher follows a set of patch files and directories.
type Watcher struct {
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	ext      string

	files map[string]struct{}
	dirs  []string

	done     chan struct{}
	stopOnce sync.Once
}

// New watches each path. A file is followed through its parent directory so
// that editors replacing the file on save are still seen; a directory is
// watched recursively.
func New(paths []string, handler Handler, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		handler:  handler,
		debounce: opts.Debounce,
		ext:      opts.Extension,
		files:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("cannot watch %q: %w", path, err)
	}
	if !info.IsDir() {
		w.files[abs] = struct{}{}
		return w.fsw.Add(filepath.Dir(abs))
	}
	w.dirs = append(w.dirs, abs)
	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return w.fsw.Add(p)
	})
}

// relevant reports whether an event on name concerns a watched patch.
func (w *Watcher) relevant(name string) bool {
	if _, ok := w.files[name]; ok {
		return true
	}
	if w.ext == "" || !strings.HasSuffix(name, w.ext) {
		return false
	}
	for _, dir := range w.dirs {
		if strings.HasPrefix(name, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run delivers batches to the handler until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Watch: Started.", "files", len(w.files), "dirs", len(w.dirs))

	var (
		batch  []string
		seen   = make(map[string]struct{})
		timer  *time.Timer
		timerC <-chan time.Time
	)
	flush := func() {
		if len(batch) > 0 {
			logger.Debug("Watch: Changes settled.", "paths", batch)
			w.handler(ctx, batch)
		}
		batch = nil
		clear(seen)
		timerC = nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Create) && len(w.dirs) > 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(event.Name)
					continue
				}
			}
			name := filepath.Clean(event.Name)
			if !w.relevant(name) {
				continue
			}
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				batch = append(batch, name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			flush()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch: File watcher error.", "error", err)
		}
	}
}

// Close stops the watcher; Run returns shortly after.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}
