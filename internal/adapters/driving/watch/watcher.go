// Package watch drives cache invalidation from file system events.
// When a knowledge-base file (or a prompt file) changes, the handler runs
// once per burst of events so stale distilled answers are dropped.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"

	"github.com/custodia-labs/kbrag/internal/logger"
)

// DefaultDebounce coalesces the events of one save into one handler call.
const DefaultDebounce = 250 * time.Millisecond

// Handler is called with the changed paths, sorted, once per burst.
type Handler func(ctx context.Context, paths []string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last event before the handler runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher watches single files and directory trees.
type Watcher struct {
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration

	mu    sync.RWMutex
	files map[string]struct{}
	trees []string
}

// New creates a watcher. Nothing is watched until Add is called.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		handler:  handler,
		debounce: DefaultDebounce,
		files:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add watches path. A file is watched through its parent directory so
// that editors replacing the file by rename are noticed. A directory is
// watched with every non-hidden subdirectory. A missing path is skipped.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("Not watching missing path %s", abs)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", abs, err)
	}

	if !info.IsDir() {
		if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watching %s: %w", abs, err)
		}
		w.mu.Lock()
		w.files[abs] = struct{}{}
		w.mu.Unlock()
		return nil
	}

	w.mu.Lock()
	w.trees = append(w.trees, abs)
	w.mu.Unlock()
	return w.addTree(abs)
}

// addTree adds dir and its non-hidden subdirectories.
func (w *Watcher) addTree(dir string) error {
	return godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if path != dir && isHidden(de.Name()) {
				return godirwalk.SkipThis
			}
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			logger.Warn("Skipping %s while adding watches: %v", path, err)
			return godirwalk.SkipNode
		},
	})
}

// Run delivers debounced changes to the handler until ctx is done.
// The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := make(map[string]struct{})
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error: %v", err)

		case <-timerC:
			timerC = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			logger.Debug("Knowledge base changed: %s", strings.Join(paths, ", "))
			w.handler(ctx, paths)
		}
	}
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// handleEvent reports whether event concerns a watched file or tree.
// New directories inside a tree are watched as they appear.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	w.mu.RLock()
	_, isFile := w.files[event.Name]
	inTree := w.inTree(event.Name)
	w.mu.RUnlock()

	if isFile {
		return true
	}
	if !inTree || isHidden(filepath.Base(event.Name)) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("Cannot watch new directory %s: %v", event.Name, err)
			}
		}
	}
	return true
}

// inTree reports whether path lies below a watched tree. Caller holds mu.
func (w *Watcher) inTree(path string) bool {
	for _, root := range w.trees {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
