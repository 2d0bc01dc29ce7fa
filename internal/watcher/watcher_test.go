package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// waitFor drains notifications until every wanted path has been seen.
func waitFor(t *testing.T, w *Watcher, want ...string) []Notification {
	t.Helper()
	var got []Notification
	remaining := make(map[string]bool)
	for _, p := range want {
		remaining[p] = true
	}

	deadline := time.After(3 * time.Second)
	for len(remaining) > 0 {
		select {
		case n, ok := <-w.Notifications():
			if !ok {
				t.Fatal("notifications closed early")
			}
			got = append(got, n)
			for _, p := range n.Paths {
				delete(remaining, p)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v (got %v)", remaining, got)
		}
	}
	return got
}

func TestCoalescesBurst(t *testing.T) {
	root := t.TempDir()
	debug := filepath.Join(root, "debug")
	if err := os.Mkdir(debug, 0755); err != nil {
		t.Fatal(err)
	}

	w, err := New(root, []string{"debug", "projects"}, 300*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	var paths []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		p := filepath.Join(debug, name)
		paths = append(paths, p)
		for i := 0; i < 5; i++ {
			f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				t.Fatal(err)
			}
			f.WriteString("line\n")
			f.Close()
		}
	}

	got := waitFor(t, w, paths...)
	if len(got) != 1 {
		t.Errorf("expected a single coalesced notification, got %d: %v", len(got), got)
	}
	for _, n := range got {
		seen := make(map[string]bool)
		for _, p := range n.Paths {
			if seen[p] {
				t.Errorf("path %s repeated within one notification", p)
			}
			seen[p] = true
		}
	}
}

func TestPicksUpSubdirectoryCreatedLater(t *testing.T) {
	root := t.TempDir()

	w, err := New(root, []string{"debug", "projects"}, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	proj := filepath.Join(root, "projects", "my-app")
	if err := os.MkdirAll(proj, 0755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the new directories.
	time.Sleep(200 * time.Millisecond)

	session := filepath.Join(proj, "session.jsonl")
	if err := os.WriteFile(session, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, w, session)

	if !slices.Contains(w.Dirs(), proj) {
		t.Errorf("expected %s to be watched, got %v", proj, w.Dirs())
	}
}

func TestIgnoresUnrelatedDirectories(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, []string{"debug"}, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()

	if w.inScope(filepath.Join(root, "cache")) {
		t.Error("unconfigured directory under root must not be in scope")
	}
	if !w.inScope(filepath.Join(root, "debug")) {
		t.Error("configured subdirectory must be in scope")
	}
	if !w.inScope(filepath.Join(root, "debug", "nested", "deeper")) {
		t.Error("directories below a subdirectory must be in scope")
	}
	if w.underRoot(filepath.Dir(root)) || w.underRoot(root) {
		t.Error("root and its parent are not under root")
	}
}

func TestMissingRootIsTolerated(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, ".claude")

	w, err := New(root, []string{"debug"}, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("missing root must not fail startup: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	debug := filepath.Join(root, "debug")
	if err := os.MkdirAll(debug, 0755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	logPath := filepath.Join(debug, "latest.txt")
	if err := os.WriteFile(logPath, []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, w, logPath)
}

func TestStopClosesNotifications(t *testing.T) {
	w, err := New(t.TempDir(), nil, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.window != DefaultWindow {
		t.Errorf("expected default window, got %v", w.window)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}

	if _, ok := <-w.Notifications(); ok {
		t.Error("expected closed notifications channel")
	}
}

func TestRecreatedDirectoryIsWatchedAgain(t *testing.T) {
	root := t.TempDir()
	proj := filepath.Join(root, "projects", "p1")
	if err := os.MkdirAll(proj, 0755); err != nil {
		t.Fatal(err)
	}

	w, err := New(root, []string{"projects"}, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	if err := os.RemoveAll(proj); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if slices.Contains(w.Dirs(), proj) {
		t.Errorf("removed directory %s still tracked: %v", proj, w.Dirs())
	}

	if err := os.Mkdir(proj, 0755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	session := filepath.Join(proj, "s.jsonl")
	if err := os.WriteFile(session, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, w, session)
}

func TestClosedEventStreamStopsWatcher(t *testing.T) {
	w, err := New(t.TempDir(), nil, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	if err := w.fsw.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after the event stream closed")
	}
	if _, ok := <-w.Notifications(); ok {
		t.Error("expected closed notifications channel")
	}
}
