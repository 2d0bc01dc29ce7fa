package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/atikulmunna/deskwatch/internal/parser"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultWindow is how long raw events are gathered into one notification.
const DefaultWindow = 200 * time.Millisecond

// Notification is a coalesced change: each path may have new content.
// It is not a precise diff.
type Notification struct {
	Paths []string
}

// Watcher subscribes to OS notifications for a root directory and a set of
// named subdirectories below it, and coalesces bursts of events.
//
// The root is watched non-recursively so subdirectories created later are
// noticed. Subdirectory trees are watched at every level, since fsnotify
// itself does not recurse.
type Watcher struct {
	fsw     *fsnotify.Watcher
	root    string
	subdirs map[string]bool // absolute subdirectory roots
	window  time.Duration
	out     chan Notification
	logger  *slog.Logger

	mu      sync.Mutex
	watched map[string]bool
}

// New creates a Watcher. Missing directories are logged and skipped; they
// are picked up if they appear later. A window <= 0 uses DefaultWindow.
func New(root string, subdirs []string, window time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if window <= 0 {
		window = DefaultWindow
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	root = filepath.Clean(root)
	w := &Watcher{
		fsw:     fsw,
		root:    root,
		subdirs: make(map[string]bool),
		window:  window,
		out:     make(chan Notification, 16),
		logger:  logger,
		watched: make(map[string]bool),
	}

	if err := w.add(root); err != nil {
		// Watch the parent instead so the root is noticed when created.
		logger.Warn("watch root unavailable, waiting for it to appear", "path", root, "error", err)
		if err := w.add(filepath.Dir(root)); err != nil {
			logger.Warn("cannot watch parent of root", "path", filepath.Dir(root), "error", err)
		}
	}

	for _, sub := range subdirs {
		dir := filepath.Join(root, sub)
		w.subdirs[dir] = true
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("log directory missing, will watch once created", "path", dir)
			continue
		}
		// Files already present are read on their first change, not now.
		w.addTree(dir)
		logger.Info("watching log directory", "path", dir)
	}

	return w, nil
}

// Notifications delivers coalesced change sets. It is closed when Start
// returns.
func (w *Watcher) Notifications() <-chan Notification {
	return w.out
}

// Root returns the watched root directory.
func (w *Watcher) Root() string {
	return w.root
}

// Dirs returns the directories currently under watch, sorted.
func (w *Watcher) Dirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs := make([]string, 0, len(w.watched))
	for d := range w.watched {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)
	return dirs
}

// Start forwards coalesced notifications until ctx is cancelled or the
// underlying event stream closes. Either way the subscription is released
// and Notifications is closed; it is not re-established.
func (w *Watcher) Start(ctx context.Context) {
	defer close(w.out)
	defer w.fsw.Close()

	var (
		pending []string
		seen    = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)

	collect := func(paths ...string) {
		for _, p := range paths {
			if seen[p] {
				continue
			}
			seen[p] = true
			pending = append(pending, p)
		}
		if timer == nil && len(pending) > 0 {
			timer = time.NewTimer(w.window)
			fire = timer.C
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				w.logger.Error("event stream closed, watcher stopped", "root", w.root)
				return
			}
			collect(w.handle(ev)...)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.logger.Error("error stream closed, watcher stopped", "root", w.root)
				return
			}
			w.logger.Warn("watch error", "error", err)

		case <-fire:
			n := Notification{Paths: pending}
			pending = nil
			seen = make(map[string]bool)
			timer, fire = nil, nil

			select {
			case w.out <- n:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handle reacts to one raw event and returns the paths it touched.
func (w *Watcher) handle(ev fsnotify.Event) []string {
	if ev.Op == fsnotify.Chmod {
		return nil
	}

	name := filepath.Clean(ev.Name)
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.forget(name)
	}
	if ev.Op&fsnotify.Create != 0 && name == w.root {
		return w.rootCreated()
	}
	if !w.underRoot(name) {
		return nil
	}

	paths := []string{name}
	if ev.Op&fsnotify.Create == 0 {
		return paths
	}

	info, err := os.Stat(name)
	if err != nil || !info.IsDir() || !w.inScope(name) {
		return paths
	}

	w.logger.Info("new log directory", "path", name)
	// Files written before the watch was in place would otherwise be missed.
	return append(paths, w.addTree(name)...)
}

// rootCreated starts watching a root that was missing at startup, along
// with any configured subdirectories that came with it.
func (w *Watcher) rootCreated() []string {
	if err := w.add(w.root); err != nil {
		w.logger.Warn("cannot watch root", "path", w.root, "error", err)
		return nil
	}
	w.logger.Info("watch root appeared", "path", w.root)

	var paths []string
	for sub := range w.subdirs {
		if info, err := os.Stat(sub); err == nil && info.IsDir() {
			paths = append(paths, w.addTree(sub)...)
		}
	}
	return paths
}

func (w *Watcher) underRoot(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	return err == nil && rel != "." && filepath.IsLocal(rel)
}

// inScope reports whether a newly created directory belongs to a watched
// tree: either a configured subdirectory under the root, or anything below one.
func (w *Watcher) inScope(dir string) bool {
	dir = filepath.Clean(dir)
	if w.subdirs[dir] {
		return true
	}
	for sub := range w.subdirs {
		if rel, err := filepath.Rel(sub, dir); err == nil && rel != "." && filepath.IsLocal(rel) {
			return true
		}
	}
	return false
}

// addTree watches dir and every directory beneath it, and returns the log
// files already present.
func (w *Watcher) addTree(dir string) []string {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			w.logger.Warn("cannot scan directory", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.add(path); err != nil {
			w.logger.Warn("cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		w.logger.Warn("directory walk failed", "path", dir, "error", err)
	}

	files, err := doublestar.Glob(os.DirFS(dir), parser.TreePattern, doublestar.WithFilesOnly())
	if err != nil {
		w.logger.Warn("cannot list log files", "path", dir, "error", err)
		return nil
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(f)))
	}
	return paths
}

// forget drops path and every watched directory below it. The kernel has
// already released those watches, so a recreated directory must be added
// again. Losing the root falls back to watching its parent.
func (w *Watcher) forget(path string) {
	w.mu.Lock()
	var dropped bool
	for dir := range w.watched {
		rel, err := filepath.Rel(path, dir)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		_ = w.fsw.Remove(dir)
		delete(w.watched, dir)
		dropped = true
	}
	w.mu.Unlock()

	if !dropped {
		return
	}
	w.logger.Info("log directory removed", "path", path)
	if path == w.root {
		if err := w.add(filepath.Dir(w.root)); err != nil {
			w.logger.Warn("cannot watch parent of root", "path", filepath.Dir(w.root), "error", err)
		}
	}
}

func (w *Watcher) add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	return nil
}
