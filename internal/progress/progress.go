// Package progress is the process-wide, single-writer/multi-reader
// progress record a running task publishes through (spec.md §3 "Progress
// record", §4.9, §5). It is grounded in rclone's accounting.go: a small
// mutex-guarded struct, periodically snapshotted for display rather than
// updated on every byte.
package progress

import (
	"sync"
	"time"
)

// Kind identifies which task family owns the current progress record.
type Kind int

const (
	KindNone Kind = iota
	KindCopy
	KindMove
	KindDelete
	KindArchiveCreate
	KindArchiveExtract
	KindSearch
	KindDiff
)

// updateInterval throttles visible updates to at most once per this
// duration (spec.md §8 property 7); spinnerInterval ticks independently
// so the animation looks smooth during long per-item work (spec.md §4.9).
const (
	updateInterval  = 50 * time.Millisecond
	spinnerInterval = 100 * time.Millisecond
)

// Snapshot is a read-only copy of the progress record for rendering.
type Snapshot struct {
	Kind             Kind
	TotalItems       int
	ProcessedItems   int
	CurrentItemLabel string
	ItemBytesDone    int64
	ItemBytesTotal   int64
	ErrorCount       int
	SpinnerFrame     int
	StartTime        time.Time
	LastUpdate       time.Time
}

// Manager is the shared progress record: one worker writes, the main
// thread (and any dialog asking for a snapshot) reads (spec.md §5).
type Manager struct {
	mu    sync.Mutex
	snap  Snapshot
	last  time.Time
	spinLast time.Time
}

// NewManager returns an idle manager.
func NewManager() *Manager { return &Manager{} }

// Begin resets the record for a new task run.
func (m *Manager) Begin(kind Kind, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{Kind: kind, TotalItems: total, StartTime: time.Now()}
	m.last = time.Time{}
}

// Update is called by the worker every item or every chunk; it is
// collapsed internally to at most one visible change per updateInterval:
// a call arriving within updateInterval of the last applied one is
// dropped. Flush at COMPLETED sets the final counts directly, so the
// final tally is exact (spec.md §8 property 7 "except for terminal flush
// at COMPLETED").
func (m *Manager) Update(processed int, label string, bytesDone, bytesTotal int64, errCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if !m.last.IsZero() && now.Sub(m.last) < updateInterval {
		return
	}
	m.last = now
	m.snap.ProcessedItems = processed
	m.snap.CurrentItemLabel = label
	m.snap.ItemBytesDone = bytesDone
	m.snap.ItemBytesTotal = bytesTotal
	m.snap.ErrorCount = errCount
	m.snap.LastUpdate = now
}

// Flush force-applies the current values immediately, bypassing the
// throttle — used once at COMPLETED so the final tally is always exact
// (spec.md §8 property 7).
func (m *Manager) Flush(processed int, errCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.ProcessedItems = processed
	m.snap.ErrorCount = errCount
	m.snap.LastUpdate = time.Now()
}

// TickSpinner advances the spinner frame if spinnerInterval has elapsed;
// safe to call frequently from a dedicated ticking goroutine.
func (m *Manager) TickSpinner() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if m.spinLast.IsZero() || now.Sub(m.spinLast) >= spinnerInterval {
		m.snap.SpinnerFrame++
		m.spinLast = now
	}
}

// Snapshot returns a copy of the current record for rendering.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// End marks the task kind back to idle.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{}
}
