package task

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mara-voss/dualpane/internal/logbuf"
	"github.com/mara-voss/dualpane/internal/pathfs"
)

// SearchResultSink is the thread-safe append target the worker produces
// into; the search dialog owns the concrete implementation and re-renders
// on each batch (spec.md §4.4 "Search task -- a producer/consumer").
type SearchResultSink interface {
	Append(match pathfs.Entry)
}

// SearchTask walks root recursively, appending name matches to sink.
// Unlike CopyMoveDeleteTask it has no CONFIRMING/conflict phases: it goes
// straight from IDLE to a single EXECUTING-equivalent walking state.
type SearchTask struct {
	mgr  *Manager
	log  *logbuf.Buffer
	root pathfs.Path
	sink SearchResultSink

	namePattern string
	maxResults  int

	mu        sync.Mutex
	state     State
	cancelled atomic.Bool

	onStateChange func(State)
	onCompleted   func(matchCount int)
}

// NewSearchTask builds a recursive name-substring search rooted at root.
func NewSearchTask(mgr *Manager, log *logbuf.Buffer, root pathfs.Path, namePattern string, maxResults int, sink SearchResultSink, onStateChange func(State), onCompleted func(int)) *SearchTask {
	return &SearchTask{
		mgr: mgr, log: log, root: root, sink: sink,
		namePattern: strings.ToLower(namePattern), maxResults: maxResults,
		onStateChange: onStateChange, onCompleted: onCompleted,
	}
}

func (t *SearchTask) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != StateIdle
}

func (t *SearchTask) GetState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *SearchTask) Cancel() { t.cancelled.Store(true) }

func (t *SearchTask) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	if t.onStateChange != nil {
		t.onStateChange(s)
	}
}

func (t *SearchTask) Start() {
	t.setState(StateExecuting)
	go t.walk()
}

func (t *SearchTask) walk() {
	ctx := context.Background()
	count := t.walkDir(ctx, t.root, 0)
	t.setState(StateCompleted)
	if t.log != nil {
		t.log.Infof(logbuf.SourceSearch, "search complete: %d matches", count)
	}
	if t.onCompleted != nil {
		t.onCompleted(count)
	}
	t.setState(StateIdle)
	if t.mgr != nil {
		t.mgr.clearTask(t)
	}
}

// walkDir recurses depth-first, stopping early once cancelled or
// maxResults is reached (0 means unbounded).
func (t *SearchTask) walkDir(ctx context.Context, dir pathfs.Path, count int) int {
	if t.cancelled.Load() {
		return count
	}
	entries, err := dir.IterChildren(ctx)
	if err != nil {
		return count
	}
	for _, e := range entries {
		if t.cancelled.Load() {
			return count
		}
		if t.maxResults > 0 && count >= t.maxResults {
			return count
		}
		if strings.Contains(strings.ToLower(e.DisplayName), t.namePattern) {
			t.sink.Append(e)
			count++
		}
		if e.Info.Kind == pathfs.KindDir {
			count = t.walkDir(ctx, e.Path, count)
		}
	}
	return count
}
