package tailer

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// State is the read position for one file.
type State struct {
	Offset  int64  // bytes consumed so far
	Partial string // trailing fragment not yet terminated by a newline
}

type trackedFile struct {
	State
	info os.FileInfo // identity at the last read, for rotation detection
}

// Tailer returns only newly appended, complete lines from files it is asked
// to read. It owns the per-file offsets; all access goes through mu.
type Tailer struct {
	mu     sync.Mutex
	files  map[string]*trackedFile
	logger *slog.Logger
}

// New creates an empty Tailer. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Tailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tailer{
		files:  make(map[string]*trackedFile),
		logger: logger,
	}
}

// ReadNewLines returns the complete lines appended to path since the last
// call. A file seen for the first time is read from the start.
//
// An unterminated tail is held back and prefixed onto the next completed
// line. If the file shrank or was replaced, reading restarts at offset 0 and
// any held fragment is dropped. Open and read failures return nil and leave
// the recorded state untouched.
func (t *Tailer) ReadNewLines(path string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cur State
	prev, tracked := t.files[path]
	if tracked {
		cur = prev.State
	}

	info, err := os.Stat(path)
	if err != nil {
		t.logDebugMissing(path, err)
		return nil
	}

	if tracked && (info.Size() < cur.Offset || !os.SameFile(prev.info, info)) {
		t.logger.Warn("file truncated or rotated",
			"path", path, "offset", cur.Offset, "size", info.Size())
		cur = State{}
	}

	f, err := os.Open(path)
	if err != nil {
		t.logDebugMissing(path, err)
		return nil
	}
	defer f.Close()

	if _, err := f.Seek(cur.Offset, io.SeekStart); err != nil {
		t.logger.Warn("seek failed", "path", path, "offset", cur.Offset, "error", err)
		return nil
	}

	lines, next, err := readLines(f, cur)
	if err != nil {
		t.logger.Warn("read failed", "path", path, "error", err)
		return nil
	}

	if next.Offset < cur.Offset {
		t.logger.Warn("offset moved backwards",
			"path", path, "before", cur.Offset, "after", next.Offset)
	}

	t.files[path] = &trackedFile{State: next, info: info}
	return lines
}

// readLines consumes r from st.Offset to EOF. The returned offset counts the
// bytes actually read, which may run past the size seen by Stat when a
// writer appends concurrently.
func readLines(r io.Reader, st State) ([]string, State, error) {
	br := bufio.NewReader(r)
	var lines []string

	for {
		chunk, err := br.ReadString('\n')
		st.Offset += int64(len(chunk))

		if err == nil {
			lines = append(lines, st.Partial+trimEOL(chunk))
			st.Partial = ""
			continue
		}
		if errors.Is(err, io.EOF) {
			st.Partial += chunk
			return lines, st, nil
		}
		return nil, State{}, err
	}
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

func (t *Tailer) logDebugMissing(path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		t.logger.Debug("file vanished before read", "path", path)
		return
	}
	t.logger.Warn("cannot open file", "path", path, "error", err)
}

// State returns a copy of the recorded state for path.
func (t *Tailer) State(path string) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tf, ok := t.files[path]
	if !ok {
		return State{}, false
	}
	return tf.State, true
}

// Len returns the number of files read at least once.
func (t *Tailer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.files)
}
