package aggregator

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/atikulmunna/deskwatch/internal/classify"
	"github.com/atikulmunna/deskwatch/internal/hub"
	"github.com/atikulmunna/deskwatch/internal/model"
	"github.com/atikulmunna/deskwatch/internal/parser"
	"github.com/atikulmunna/deskwatch/internal/tailer"
	"github.com/atikulmunna/deskwatch/internal/watcher"
)

// epsWindow is the sliding window used for the entries-per-second figure.
const epsWindow = 5 * time.Second

// Batch is the result of one coalesced notification.
type Batch struct {
	Logs  []model.LogEntry
	roles map[model.Category]model.RoleState
}

// Agents returns one role state per category touched by the batch, in desk order.
func (b Batch) Agents() []model.RoleState {
	out := make([]model.RoleState, 0, len(b.roles))
	for _, c := range model.AllCategories() {
		if s, ok := b.roles[c]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Stats holds a point-in-time snapshot of pipeline metrics.
type Stats struct {
	Uptime        string           `json:"uptime"`
	TotalEntries  int64            `json:"total_entries"`
	Batches       int64            `json:"batches"`
	EPS           float64          `json:"eps"`
	KindCounts    map[string]int64 `json:"kind_counts"`
	RoleCounts    map[string]int64 `json:"role_counts"`
	FilesTracked  int              `json:"files_tracked"`
	DroppedEvents int64            `json:"dropped_events"`
}

// Aggregator turns change notifications into batches and hands them to a sink.
type Aggregator struct {
	tail    *tailer.Tailer
	sink    hub.Sink
	dropped func() int64
	logger  *slog.Logger

	mu         sync.RWMutex
	startTime  time.Time
	total      int64
	batches    int64
	kindCounts map[model.EntryKind]int64
	roleCounts map[model.Category]int64
	window     []time.Time
}

// New creates an Aggregator reading through t and emitting to sink.
// droppedFn reports events lost downstream; it may be nil.
func New(t *tailer.Tailer, sink hub.Sink, droppedFn func() int64, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if droppedFn == nil {
		droppedFn = func() int64 { return 0 }
	}
	return &Aggregator{
		tail:       t,
		sink:       sink,
		dropped:    droppedFn,
		logger:     logger,
		startTime:  time.Now(),
		kindCounts: make(map[model.EntryKind]int64),
		roleCounts: make(map[model.Category]int64),
	}
}

// Announce tells the presentation layer that watching has begun on root.
func (a *Aggregator) Announce(root string) {
	a.sink.Emit(model.Topic, model.WatcherStatusEvent(true, root))
}

// Start consumes notifications one at a time until ctx is cancelled or the
// channel closes. Each notification yields at most one emitted batch.
func (a *Aggregator) Start(ctx context.Context, notifications <-chan watcher.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				a.logger.Info("notifications closed, aggregator stopped")
				return
			}
			if ctx.Err() != nil {
				return
			}
			a.Handle(n.Paths)
		}
	}
}

// Handle processes one set of changed paths and emits the batch, if any.
func (a *Aggregator) Handle(paths []string) {
	b, ok := a.Process(paths)
	if !ok {
		return
	}
	a.record(b)
	a.sink.Emit(model.Topic, model.BatchUpdateEvent(b.Logs, b.Agents()))
}

// Process reads new lines from every recognised log file in paths and builds
// a batch. It reports false when nothing new could be parsed.
func (a *Aggregator) Process(paths []string) (Batch, bool) {
	b := Batch{roles: make(map[model.Category]model.RoleState)}

	for _, path := range paths {
		if !parser.IsLogFile(path) || !isRegular(path) {
			continue
		}

		p := parser.ForPath(path)
		for _, line := range a.tail.ReadNewLines(path) {
			entry, ok := p.Parse(line)
			if !ok {
				continue
			}
			b.Logs = append(b.Logs, entry)

			state := classify.RoleStateFor(entry)
			b.roles[state.Category] = state
		}
	}

	return b, len(b.Logs) > 0
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Snapshot returns the current metrics.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	kinds := make(map[string]int64, len(a.kindCounts))
	for k, v := range a.kindCounts {
		kinds[k.String()] = v
	}
	roles := make(map[string]int64, len(a.roleCounts))
	for c, v := range a.roleCounts {
		roles[c.ID()] = v
	}

	cutoff := time.Now().Add(-epsWindow)
	var recent int
	for _, t := range a.window {
		if t.After(cutoff) {
			recent++
		}
	}

	return Stats{
		Uptime:        time.Since(a.startTime).Truncate(time.Second).String(),
		TotalEntries:  a.total,
		Batches:       a.batches,
		EPS:           float64(recent) / epsWindow.Seconds(),
		KindCounts:    kinds,
		RoleCounts:    roles,
		FilesTracked:  a.tail.Len(),
		DroppedEvents: a.dropped(),
	}
}

// record adds a batch to the metrics and prunes the sliding window.
func (a *Aggregator) record(b Batch) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	a.batches++
	for _, e := range b.Logs {
		a.total++
		a.kindCounts[e.Kind]++
		a.roleCounts[classify.CategoryFor(e)]++
		a.window = append(a.window, now)
	}

	cutoff := now.Add(-epsWindow)
	i := 0
	for _, t := range a.window {
		if t.After(cutoff) {
			a.window[i] = t
			i++
		}
	}
	a.window = a.window[:i]
}
