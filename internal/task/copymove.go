package task

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mara-voss/dualpane/internal/logbuf"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/progress"
)

// Verb distinguishes copy, move, and delete; they share one state machine
// (spec.md §4.4 "Copy/move/delete task").
type Verb int

const (
	VerbCopy Verb = iota
	VerbMove
	VerbDelete
)

// ConflictDecision is the resolution chosen for one colliding destination.
type ConflictDecision int

const (
	DecisionOverwrite ConflictDecision = iota
	DecisionSkip
	DecisionRename
	DecisionCancel
)

// item is one planned source/destination pair.
type item struct {
	src  pathfs.Path
	dest pathfs.Path
}

// Conflict describes one destination that already exists, surfaced to
// the RESOLVING_CONFLICT dialog callback.
type Conflict struct {
	Item item
}

// Source and Dest expose the colliding paths to the confirmation UI.
func (c Conflict) Source() pathfs.Path { return c.Item.src }
func (c Conflict) Dest() pathfs.Path   { return c.Item.dest }

// Result is the COMPLETED summary (spec.md §8 property 5: success + skip
// + error == total planned).
type Result struct {
	SuccessCount int
	SkipCount    int
	ErrorCount   int
	TotalPlanned int
	Errors       []ItemError
}

// ItemError pairs a failed item with its cause.
type ItemError struct {
	Path pathfs.Path
	Err  error
}

// Hooks are the UI-layer callbacks the CopyMoveDelete task drives through
// its state machine. Every hook is invoked on the main thread; the task
// itself never touches the UI directly (spec.md §5 "all UI state mutation
// happens on the main thread").
type Hooks struct {
	// Confirm shows the initial OK/Cancel dialog (CONFIRMING). Exactly one
	// of proceed/cancel must eventually be called.
	Confirm func(proceed func(), cancel func())

	// ResolveConflict shows the {Overwrite, Skip, Rename, Cancel} dialog
	// for one conflict. decide must eventually be called exactly once;
	// applyToAll, when true, makes this decision bind every remaining
	// conflict without reshowing the dialog (spec.md §4.4
	// "RESOLVING_CONFLICT").
	ResolveConflict func(c Conflict, decide func(d ConflictDecision, applyToAll bool))

	// PromptRename opens the rename input dialog; accept delivers the new
	// name, cancelReturn aborts back to IDLE. If the chosen name also
	// collides the task calls PromptRename again (spec.md "bounded
	// recursion via callback chain; no stack growth" -- each call returns
	// before the next fires, so no frame is retained).
	PromptRename func(c Conflict, accept func(newName string), cancelReturn func())

	// OnStateChange is called on every transition, letting the main
	// screen redraw the status row.
	OnStateChange func(s State)

	// OnCompleted is called once at COMPLETED with the final tally.
	OnCompleted func(r Result)

	// InvalidateCache tells the main thread which directories' listing
	// caches must be dropped (spec.md §4.4 COMPLETED "invalidate
	// directory caches touched").
	InvalidateCache func(dirs []pathfs.Path)
}

// CopyMoveDeleteTask is the canonical state machine (spec.md §4.4):
//
//	IDLE -> CONFIRMING -> CHECKING_CONFLICTS -> RESOLVING_CONFLICT* -> EXECUTING -> COMPLETED -> IDLE
type CopyMoveDeleteTask struct {
	mgr   *Manager
	log   *logbuf.Buffer
	prog  *progress.Manager
	hooks Hooks

	verb    Verb
	sources []pathfs.Path
	destDir pathfs.Path // nil for delete

	mu        sync.Mutex
	state     State
	cancelled atomic.Bool

	plan         []item
	overwrite    map[string]bool
	skip         map[string]bool
	rename       map[string]string // src.Address() -> new name
	applyAllMode *ConflictDecision

	result Result
}

// NewCopyMoveDeleteTask builds a task moving/copying sources into destDir
// (ignored for VerbDelete).
func NewCopyMoveDeleteTask(mgr *Manager, log *logbuf.Buffer, prog *progress.Manager, verb Verb, sources []pathfs.Path, destDir pathfs.Path, hooks Hooks) *CopyMoveDeleteTask {
	return &CopyMoveDeleteTask{
		mgr: mgr, log: log, prog: prog, hooks: hooks,
		verb: verb, sources: sources, destDir: destDir,
		overwrite: map[string]bool{}, skip: map[string]bool{}, rename: map[string]string{},
	}
}

func (t *CopyMoveDeleteTask) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != StateIdle
}

func (t *CopyMoveDeleteTask) GetState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *CopyMoveDeleteTask) Cancel() { t.cancelled.Store(true) }

func (t *CopyMoveDeleteTask) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	if t.hooks.OnStateChange != nil {
		t.hooks.OnStateChange(s)
	}
}

// Start enters CONFIRMING (spec.md §4.4 "start() -- begin the workflow;
// transitions out of IDLE").
func (t *CopyMoveDeleteTask) Start() {
	t.setState(StateConfirming)
	if t.verb == VerbDelete || t.hooks.Confirm == nil {
		t.onConfirmed()
		return
	}
	t.hooks.Confirm(t.onConfirmed, t.toIdle)
}

func (t *CopyMoveDeleteTask) onConfirmed() {
	t.setState(StateCheckingConflicts)
	t.buildPlan()
	t.checkConflicts()
}

// buildPlan computes the flat src/dest pairing. For delete there is no
// destination; for copy/move every source maps to destDir joined with
// its own name.
func (t *CopyMoveDeleteTask) buildPlan() {
	if t.verb == VerbDelete {
		for _, s := range t.sources {
			t.plan = append(t.plan, item{src: s})
		}
		return
	}
	for _, s := range t.sources {
		t.plan = append(t.plan, item{src: s, dest: t.destDir.Join(s.Name())})
	}
}

// checkConflicts tests every destination for existence (spec.md §4.4
// "CHECKING_CONFLICTS: ... If none conflict, skip to EXECUTING").
func (t *CopyMoveDeleteTask) checkConflicts() {
	if t.verb == VerbDelete {
		t.execute()
		return
	}
	ctx := context.Background()
	var conflicts []Conflict
	for _, it := range t.plan {
		exists, err := it.dest.Exists(ctx)
		if err == nil && exists {
			conflicts = append(conflicts, Conflict{Item: it})
		}
	}
	if len(conflicts) == 0 {
		t.execute()
		return
	}
	t.resolveNext(conflicts, 0)
}

// resolveNext drives RESOLVING_CONFLICT one conflict at a time via
// callback, implementing "applied to all remaining" and the bounded
// rename-recursion (spec.md §4.4).
func (t *CopyMoveDeleteTask) resolveNext(conflicts []Conflict, i int) {
	if i >= len(conflicts) {
		t.execute()
		return
	}
	t.setState(StateResolvingConflict)

	if t.applyAllMode != nil {
		t.applyDecision(*t.applyAllMode, conflicts[i])
		t.resolveNext(conflicts, i+1)
		return
	}

	c := conflicts[i]
	decide := func(d ConflictDecision, applyToAll bool) {
		if applyToAll {
			dCopy := d
			t.applyAllMode = &dCopy
		}
		if d == DecisionCancel {
			t.toIdle()
			return
		}
		if d == DecisionRename {
			t.promptRenameFor(c, conflicts, i)
			return
		}
		t.applyDecision(d, c)
		t.resolveNext(conflicts, i+1)
	}
	if t.hooks.ResolveConflict != nil {
		t.hooks.ResolveConflict(c, decide)
	} else {
		decide(DecisionSkip, false)
	}
}

func (t *CopyMoveDeleteTask) promptRenameFor(c Conflict, conflicts []Conflict, i int) {
	if t.hooks.PromptRename == nil {
		t.applyDecision(DecisionSkip, c)
		t.resolveNext(conflicts, i+1)
		return
	}
	t.hooks.PromptRename(c, func(newName string) {
		newDest := mustParent(c.Item.dest).Join(newName)
		ctx := context.Background()
		if exists, err := newDest.Exists(ctx); err == nil && exists {
			// Collides again: reshow, same callback chain depth (no
			// recursion growth since each invocation returns before the
			// next fires).
			t.promptRenameFor(c, conflicts, i)
			return
		}
		t.rename[c.Item.src.Address()] = newName
		t.resolveNext(conflicts, i+1)
	}, t.toIdle)
}

func mustParent(p pathfs.Path) pathfs.Path {
	parent, err := p.Parent()
	if err != nil {
		return p
	}
	return parent
}

func (t *CopyMoveDeleteTask) applyDecision(d ConflictDecision, c Conflict) {
	switch d {
	case DecisionOverwrite:
		t.overwrite[c.Item.src.Address()] = true
	case DecisionSkip:
		t.skip[c.Item.src.Address()] = true
	}
}

// execute spawns the single worker goroutine (spec.md §5 "at most one
// worker thread exists at any time system-wide").
func (t *CopyMoveDeleteTask) execute() {
	t.setState(StateExecuting)
	go t.runWorker()
}

func (t *CopyMoveDeleteTask) runWorker() {
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()
	go t.watchCancel(ctx, cancelCtx)

	total := len(t.plan)
	if t.prog != nil {
		k := progress.KindCopy
		if t.verb == VerbMove {
			k = progress.KindMove
		} else if t.verb == VerbDelete {
			k = progress.KindDelete
		}
		t.prog.Begin(k, total)
	}

	var touched []pathfs.Path
	processed := 0

	for i, it := range t.plan {
		if t.cancelled.Load() {
			t.result.SkipCount += total - i
			break
		}
		if t.skip[it.src.Address()] {
			t.result.SkipCount++
			processed++
			t.progressUpdate(processed, it.src.Name())
			continue
		}

		var err error
		switch t.verb {
		case VerbDelete:
			err = it.src.Remove(ctx)
		case VerbCopy, VerbMove:
			dest := it.dest
			if name, ok := t.rename[it.src.Address()]; ok {
				dest = mustParent(it.dest).Join(name)
			}
			overwrite := t.overwrite[it.src.Address()]
			err = t.copyOne(ctx, it.src, dest, overwrite)
			if err == nil && t.verb == VerbMove {
				err = it.src.Remove(ctx)
			}
			if err == nil {
				if parent, perr := dest.Parent(); perr == nil {
					touched = append(touched, parent)
				}
			}
		}

		if err != nil {
			t.result.ErrorCount++
			t.result.Errors = append(t.result.Errors, ItemError{Path: it.src, Err: err})
			if t.log != nil {
				t.log.Errorf(logbuf.SourceFileOp, "%s failed for %s: %v", verbLabel(t.verb), it.src.Address(), err)
			}
		} else {
			t.result.SuccessCount++
		}
		if parent, perr := it.src.Parent(); perr == nil {
			touched = append(touched, parent)
		}
		processed++
		t.progressUpdate(processed, it.src.Name())
	}

	t.result.TotalPlanned = total
	if t.prog != nil {
		t.prog.Flush(processed, t.result.ErrorCount)
	}
	t.complete(touched)
}

// watchCancel bridges the cooperative cancel flag into ctx.Done() so
// cross-storage chunked copies (pathfs.StreamCopy) observe cancellation
// between chunks, not just between plan items (spec.md §4.4 "checks the
// cancel flag between files and between 1 MiB chunks").
func (t *CopyMoveDeleteTask) watchCancel(ctx context.Context, cancelCtx context.CancelFunc) {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.cancelled.Load() {
				cancelCtx()
				return
			}
		}
	}
}

func (t *CopyMoveDeleteTask) progressUpdate(processed int, label string) {
	if t.prog != nil {
		t.prog.Update(processed, label, 0, 0, t.result.ErrorCount)
	}
}

// copyOne streams src into dest, fast-pathing when both share a scheme
// (delegated to the Path implementation) and always streaming otherwise
// (spec.md §4.4 "for local->local it may fast-path ... cross-storage
// always streams"). Either path bottoms out in pathfs.StreamCopy
// (local->local via local.Path.copyFile, cross-storage via
// pathfs.CrossStorageCopy), so cancellation is observed between 1 MiB
// chunks inside a single large file, not just between plan items
// (spec.md §5 "suspend in blocking I/O"); the task worker loop itself
// only needs to check between files, which runWorker already does via
// t.cancelled before each plan item.
func (t *CopyMoveDeleteTask) copyOne(ctx context.Context, src, dest pathfs.Path, overwrite bool) error {
	return src.CopyTo(ctx, dest, overwrite)
}

func verbLabel(v Verb) string {
	switch v {
	case VerbMove:
		return "move"
	case VerbDelete:
		return "delete"
	default:
		return "copy"
	}
}

func (t *CopyMoveDeleteTask) complete(touched []pathfs.Path) {
	t.setState(StateCompleted)
	if t.hooks.InvalidateCache != nil {
		t.hooks.InvalidateCache(dedupePaths(touched))
	}
	if t.hooks.OnCompleted != nil {
		t.hooks.OnCompleted(t.result)
	}
	if t.log != nil {
		t.log.Infof(logbuf.SourceFileOp, "%s complete: %d ok, %d skipped, %d errors",
			verbLabel(t.verb), t.result.SuccessCount, t.result.SkipCount, t.result.ErrorCount)
	}
	if t.prog != nil {
		t.prog.End()
	}
	t.toIdle()
}

func (t *CopyMoveDeleteTask) toIdle() {
	t.setState(StateIdle)
	if t.mgr != nil {
		t.mgr.clearTask(t)
	}
}

func dedupePaths(paths []pathfs.Path) []pathfs.Path {
	seen := map[string]bool{}
	var out []pathfs.Path
	for _, p := range paths {
		if p == nil {
			continue
		}
		key := p.Address()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
