package diff

import (
	"context"
	"sort"

	"github.com/mara-voss/dualpane/internal/pathfs"
)

// Scanner enumerates directory pairs, producing LEFT_ONLY / RIGHT_ONLY /
// PENDING-paired children (spec.md §4.7 "Scanner worker"). It yields
// periodically (checking the stop signal between directories) so it
// never starves the UI thread.
type Scanner struct {
	queue  *PriorityQueue[dirPair]
	comp   *Comparator
	stop   chan struct{}
	onDone func(*Node)
}

// NewScanner builds a scanner that feeds finished file pairs to comp and
// calls onDone after each directory pair is enumerated.
func NewScanner(comp *Comparator, onDone func(*Node)) *Scanner {
	return &Scanner{queue: NewPriorityQueue[dirPair](), comp: comp, stop: make(chan struct{}), onDone: onDone}
}

// Enqueue schedules a directory pair (either side may be nil for a
// one-sided subtree) at the given priority.
func (s *Scanner) Enqueue(node *Node, left, right pathfs.Path, p Priority) {
	s.queue.Push(dirPair{node: node, left: left, right: right}, p)
}

// Reprioritize is called when a node is expanded; spec.md §4.7 "Expanding
// a node reprioritizes its subtree" -- since the queue only holds
// not-yet-processed pairs, reprioritizing means re-pushing at the new
// (higher) priority; already-dequeued work is unaffected, which is
// acceptable because it is already in flight.
func (s *Scanner) Reprioritize(node *Node, left, right pathfs.Path, p Priority) {
	s.Enqueue(node, left, right, p)
}

// Run drains the queue until Stop is called. One goroutine per Scanner,
// matching spec.md §5 "two dedicated workers (scanner, comparator)".
func (s *Scanner) Run() {
	for {
		pair, ok := s.queue.Pop()
		if !ok {
			return
		}
		select {
		case <-s.stop:
			return
		default:
		}
		s.process(pair)
	}
}

func (s *Scanner) Stop() {
	close(s.stop)
	s.queue.Close()
}

func (s *Scanner) process(pair dirPair) {
	ctx := context.Background()
	leftChildren := listChildren(ctx, pair.left)
	rightChildren := listChildren(ctx, pair.right)

	names := map[string]struct{}{}
	for name := range leftChildren {
		names[name] = struct{}{}
	}
	for name := range rightChildren {
		names[name] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	var children []*Node
	for _, name := range sorted {
		l, hasLeft := leftChildren[name]
		r, hasRight := rightChildren[name]

		child := &Node{Name: name}
		switch {
		case hasLeft && hasRight:
			child.Left, child.Right = l.Path, r.Path
			child.IsDir = l.Info.Kind == pathfs.KindDir
			child.Status = StatusPending
		case hasLeft:
			child.Left = l.Path
			child.IsDir = l.Info.Kind == pathfs.KindDir
			child.Status = StatusLeftOnly
		default:
			child.Right = r.Path
			child.IsDir = r.Info.Kind == pathfs.KindDir
			child.Status = StatusRightOnly
		}
		children = append(children, child)

		if child.Status == StatusPending {
			if child.IsDir {
				s.Enqueue(child, child.Left, child.Right, PriorityMedium)
			} else {
				s.comp.Enqueue(child, PriorityMedium)
			}
		} else if child.IsDir {
			// One-sided subtree: still recurse so every descendant gets a
			// definite LEFT_ONLY/RIGHT_ONLY status.
			s.Enqueue(child, child.Left, child.Right, PriorityLow)
		}
	}

	pair.node.mu.Lock()
	pair.node.Children = children
	pair.node.mu.Unlock()
	pair.node.RollupAndSet()
	if s.onDone != nil {
		s.onDone(pair.node)
	}
}

func listChildren(ctx context.Context, p pathfs.Path) map[string]pathfs.Entry {
	out := map[string]pathfs.Entry{}
	if p == nil {
		return out
	}
	entries, err := p.IterChildren(ctx)
	if err != nil {
		return out
	}
	for _, e := range entries {
		out[e.DisplayName] = e
	}
	return out
}
