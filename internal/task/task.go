// Package task is the long-running-operation framework (spec.md §4.4): a
// base task contract, a single-slot manager, and the concrete copy/move/
// delete, archive, and search state machines. Architecturally this plays
// the role the teacher's async.go played for its own Bubble Tea command
// pipeline, generalized into plain worker goroutines since the core event
// loop here is callback-driven rather than Elm-style (see SPEC_FULL.md's
// ambient-stack rationale).
package task

import (
	"errors"
	"sync"
)

// State is a task's position in its state machine (spec.md §4.4, §3
// "Task state machine").
type State int

const (
	StateIdle State = iota
	StateConfirming
	StateCheckingConflicts
	StateResolvingConflict
	StateExecuting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConfirming:
		return "CONFIRMING"
	case StateCheckingConflicts:
		return "CHECKING_CONFLICTS"
	case StateResolvingConflict:
		return "RESOLVING_CONFLICT"
	case StateExecuting:
		return "EXECUTING"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "?"
	}
}

// ErrAlreadyActive is returned by Manager.Start when a task is already
// running (spec.md §4.4 "start_task fails with AlreadyActive").
var ErrAlreadyActive = errors.New("task: a task is already active")

// Task is the base contract every long-running operation implements
// (spec.md §4.4 "base task").
type Task interface {
	Start()
	Cancel()
	IsActive() bool
	GetState() State
}

// StateObserver is the optional on_state_enter/exit hook.
type StateObserver interface {
	OnStateEnter(s State)
	OnStateExit(s State)
}

// Manager holds at most one active task at a time (spec.md §4.4 "task
// manager"), exactly the role the main screen's single task-manager field
// plays. Safe for concurrent use: Start/IsActive are called from the main
// thread; clearTask is the worker's completion callback, drained on the
// main thread's next event-loop iteration per spec.md §5's ordering
// guarantee.
type Manager struct {
	mu     sync.Mutex
	active Task
}

// NewManager returns an idle manager.
func NewManager() *Manager { return &Manager{} }

// Start begins t, failing with ErrAlreadyActive if a task is already
// running (spec.md §3 property "at most one task is active at any
// instant").
func (m *Manager) Start(t Task) error {
	m.mu.Lock()
	if m.active != nil && m.active.IsActive() {
		m.mu.Unlock()
		return ErrAlreadyActive
	}
	m.active = t
	m.mu.Unlock()
	t.Start()
	return nil
}

// IsActive reports whether a task is currently running.
func (m *Manager) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil && m.active.IsActive()
}

// Active returns the current task, or nil.
func (m *Manager) Active() Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Cancel requests cancellation of the active task, if any.
func (m *Manager) Cancel() {
	m.mu.Lock()
	t := m.active
	m.mu.Unlock()
	if t != nil {
		t.Cancel()
	}
}

// clearTask is called by a task when it reaches IDLE (spec.md §4.4
// "_clear_task()").
func (m *Manager) clearTask(t Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == t {
		m.active = nil
	}
}
