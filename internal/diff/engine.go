package diff

import (
	"sync"

	"github.com/mara-voss/dualpane/internal/pathfs"
)

// Engine owns the root comparison and the two worker goroutines, the
// unit the directory diff viewer embeds (spec.md §4.7, §5 "The directory
// diff viewer uses two dedicated workers ... in addition to the main
// screen's task slot").
type Engine struct {
	Root *Node

	scanner *Scanner
	comp    *Comparator

	mu         sync.Mutex
	parentOf   map[*Node]*Node
	filterDiff bool // true: show only differing nodes
}

// New starts an engine comparing left against right, immediately
// enqueuing the root at HIGH priority (it is always visible).
func New(left, right pathfs.Path) *Engine {
	e := &Engine{
		Root:     &Node{Name: "/", Left: left, Right: right, IsDir: true, Status: StatusPending, Expanded: true},
		parentOf: map[*Node]*Node{},
	}
	e.comp = NewComparator(e.onFileDone)
	e.scanner = NewScanner(e.comp, e.onDirDone)
	go e.scanner.Run()
	go e.comp.Run()
	e.scanner.Enqueue(e.Root, left, right, PriorityHigh)
	return e
}

// Stop signals both workers to exit at their next yield (spec.md §4.7
// "Cancellation: closing the viewer signals both workers").
func (e *Engine) Stop() {
	e.scanner.Stop()
	e.comp.Stop()
}

// onFileDone re-rolls up every ancestor of a just-classified file node.
func (e *Engine) onFileDone(n *Node) {
	e.mu.Lock()
	parent := e.parentOf[n]
	e.mu.Unlock()
	for parent != nil {
		parent.RollupAndSet()
		e.mu.Lock()
		parent = e.parentOf[parent]
		e.mu.Unlock()
	}
}

// registerChildren records parent pointers so onFileDone/onDirDone can
// walk back up the tree to re-roll-up ancestors.
func (e *Engine) registerChildren(parent *Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range parent.Children {
		e.parentOf[c] = parent
	}
}

// onDirDone registers the just-enumerated children's parent pointers and
// propagates the roll-up upward, mirroring onFileDone for the directory
// side of the scanner/comparator split.
func (e *Engine) onDirDone(n *Node) {
	e.registerChildren(n)
	e.mu.Lock()
	parent := e.parentOf[n]
	e.mu.Unlock()
	for parent != nil {
		parent.RollupAndSet()
		e.mu.Lock()
		parent = e.parentOf[parent]
		e.mu.Unlock()
	}
}

// Expand toggles a directory node open and reprioritizes its subtree
// (spec.md §4.7 "Expanding a node reprioritizes its subtree"): a node
// with no children yet is re-queued for scanning at HIGH; otherwise its
// still-PENDING children are re-queued at MEDIUM.
func (e *Engine) Expand(n *Node) {
	n.mu.Lock()
	n.Expanded = true
	children := append([]*Node(nil), n.Children...)
	n.mu.Unlock()
	e.registerChildren(n)
	if len(children) == 0 && n.IsDir {
		e.scanner.Reprioritize(n, n.Left, n.Right, PriorityHigh)
		return
	}
	for _, c := range children {
		if c.IsDir && c.GetStatus() == StatusPending {
			e.scanner.Reprioritize(c, c.Left, c.Right, PriorityMedium)
		} else if !c.IsDir && c.GetStatus() == StatusPending {
			e.comp.Reprioritize(c, PriorityMedium)
		}
	}
}

// Collapse toggles a directory node closed.
func (e *Engine) Collapse(n *Node) {
	n.mu.Lock()
	n.Expanded = false
	n.mu.Unlock()
}

// SetFilter toggles "visible nodes only = differing nodes, or all"
// (spec.md §4.7 "filter").
func (e *Engine) SetFilter(diffOnly bool) {
	e.mu.Lock()
	e.filterDiff = diffOnly
	e.mu.Unlock()
}

func (e *Engine) visible(n *Node) bool {
	e.mu.Lock()
	diffOnly := e.filterDiff
	e.mu.Unlock()
	if !diffOnly {
		return true
	}
	return n.Rollup() != StatusIdentical
}

// flatten walks the currently expanded, filter-matching nodes in DFS
// order, the traversal both rendering and NextDiff/PrevDiff rely on.
func (e *Engine) flatten() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !e.visible(n) {
			return
		}
		out = append(out, n)
		if n.IsDir && n.Expanded {
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(e.Root)
	return out
}

// NextDiff finds the next differing node after current in DFS order,
// wrapping to the start (spec.md §4.7 "next/prev difference (DFS search
// over the tree)").
func (e *Engine) NextDiff(current *Node) *Node {
	flat := e.flatten()
	return stepToDiff(flat, current, 1)
}

// PrevDiff finds the previous differing node before current in DFS order.
func (e *Engine) PrevDiff(current *Node) *Node {
	flat := e.flatten()
	return stepToDiff(flat, current, -1)
}

func stepToDiff(flat []*Node, current *Node, step int) *Node {
	if len(flat) == 0 {
		return nil
	}
	start := 0
	for i, n := range flat {
		if n == current {
			start = i
			break
		}
	}
	n := len(flat)
	for i := 1; i <= n; i++ {
		idx := ((start+step*i)%n + n) % n
		s := flat[idx].GetStatus()
		if s == StatusDifferent || s == StatusLeftOnly || s == StatusRightOnly || s == StatusError {
			return flat[idx]
		}
	}
	return nil
}

// Flatten exposes the current DFS-ordered visible node list for the
// viewer's rendering pass.
func (e *Engine) Flatten() []*Node { return e.flatten() }
