package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pasres/internal/project"
	"pasres/internal/trace"
)

// DefaultDebounce groups the writes of one front end run into a single batch.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changed bundles below a project root.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	matcher   *project.Matcher
	debounce  time.Duration
	onChange  func([]string)
	onError   func(error)

	callbackMu sync.Mutex
	pendingMu  sync.Mutex
	pending    map[string]struct{}
	timer      *time.Timer
}

// NewWatcher prepares a watcher; onChange receives sorted absolute paths of
// bundles selected by matcher. onError may be nil.
func NewWatcher(root string, matcher *project.Matcher, debounce time.Duration, onChange func([]string), onError func(error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fsWatcher: fsw,
		root:      root,
		matcher:   matcher,
		debounce:  debounce,
		onChange:  onChange,
		onError:   onError,
		pending:   make(map[string]struct{}),
	}, nil
}

// Run watches until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watchRecursive(w.root); err != nil {
		_ = w.Close()
		return err
	}
	tracer := trace.FromContext(ctx)
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handle(tracer, event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handle(tracer trace.Tracer, event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if isDir(event.Name) {
			if err := w.watchRecursive(event.Name); err != nil && w.onError != nil {
				w.onError(err)
			}
			return
		}
	}
	if !w.selected(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	span := trace.Begin(tracer, trace.ScopeDriver, "watch_event", 0)
	span.WithExtra("path", event.Name).WithExtra("op", event.Op.String())
	span.End("")
	w.schedule(event.Name)
}

func (w *Watcher) selected(path string) bool {
	if w.matcher == nil {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.matcher.Match(rel)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 || w.onChange == nil {
		return
	}
	sort.Strings(paths)
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

// Close stops the watcher. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
