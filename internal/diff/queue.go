package diff

import (
	"container/heap"
	"sync"
)

// workItem is one queued unit tagged with a priority; seq breaks ties in
// FIFO order within the same priority.
type workItem[T any] struct {
	priority Priority
	seq      int
	value    T
}

type priorityHeap[T any] []*workItem[T]

func (h priorityHeap[T]) Len() int { return len(h) }
func (h priorityHeap[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority // higher priority first
	}
	return h[i].seq < h[j].seq
}
func (h priorityHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap[T]) Push(x any)   { *h = append(*h, x.(*workItem[T])) }
func (h *priorityHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// PriorityQueue is a thread-safe, closeable priority queue used by both
// the scanner (directory pairs) and the comparator (file pairs). Close
// unblocks every pending Pop with ok=false, the way cancelling the diff
// viewer signals both workers to exit at their next yield (spec.md §4.7
// "Cancellation").
type PriorityQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	heap   priorityHeap[T]
	seq    int
	closed bool
}

// NewPriorityQueue returns an empty, open queue.
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	q := &PriorityQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues value at the given priority.
func (q *PriorityQueue[T]) Push(value T, p Priority) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.seq++
	heap.Push(&q.heap, &workItem[T]{priority: p, seq: q.seq, value: value})
	q.cond.Signal()
}

// Pop blocks until an item is available or the queue is closed.
func (q *PriorityQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.heap) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.heap) == 0 {
		var zero T
		return zero, false
	}
	item := heap.Pop(&q.heap).(*workItem[T])
	return item.value, true
}

// Close marks the queue closed and wakes every blocked Pop.
func (q *PriorityQueue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Len reports the number of queued (not yet popped) items.
func (q *PriorityQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}
