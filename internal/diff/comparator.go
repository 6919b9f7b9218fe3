package diff

import (
	"context"
	"io"
)

// compareChunkSize bounds memory while byte-comparing two files. It is
// smaller than the 1 MiB pathfs.ChunkSize used for streamed transfers.
const compareChunkSize = 64 * 1024

// Comparator classifies file pairs: size mismatch is an immediate
// DIFFERENT; otherwise a buffered byte-by-byte comparison decides
// IDENTICAL or DIFFERENT; a read error yields ERROR (spec.md §4.7
// "Comparator worker"). After each file it rolls up every ancestor whose
// last pending child just finished (handled by the caller via onDone).
type Comparator struct {
	queue  *PriorityQueue[filePair]
	stop   chan struct{}
	onDone func(*Node)
}

// NewComparator builds a comparator that calls onDone after classifying
// each node, so the engine can roll up ancestors.
func NewComparator(onDone func(*Node)) *Comparator {
	return &Comparator{queue: NewPriorityQueue[filePair](), stop: make(chan struct{}), onDone: onDone}
}

func (c *Comparator) Enqueue(node *Node, p Priority) {
	c.queue.Push(filePair{node: node}, p)
}

func (c *Comparator) Reprioritize(node *Node, p Priority) { c.Enqueue(node, p) }

// Run drains the queue until Stop is called.
func (c *Comparator) Run() {
	for {
		pair, ok := c.queue.Pop()
		if !ok {
			return
		}
		select {
		case <-c.stop:
			return
		default:
		}
		c.compare(pair.node)
		if c.onDone != nil {
			c.onDone(pair.node)
		}
	}
}

func (c *Comparator) Stop() {
	close(c.stop)
	c.queue.Close()
}

func (c *Comparator) compare(n *Node) {
	ctx := context.Background()
	leftInfo, err := n.Left.Stat(ctx)
	if err != nil {
		n.SetStatus(StatusError)
		return
	}
	rightInfo, err := n.Right.Stat(ctx)
	if err != nil {
		n.SetStatus(StatusError)
		return
	}
	if leftInfo.Size != rightInfo.Size {
		n.SetStatus(StatusDifferent)
		return
	}

	lr, err := n.Left.OpenRead(ctx)
	if err != nil {
		n.SetStatus(StatusError)
		return
	}
	defer lr.Close()
	rr, err := n.Right.OpenRead(ctx)
	if err != nil {
		n.SetStatus(StatusError)
		return
	}
	defer rr.Close()

	identical, err := byteEqual(lr, rr)
	if err != nil {
		n.SetStatus(StatusError)
		return
	}
	if identical {
		n.SetStatus(StatusIdentical)
	} else {
		n.SetStatus(StatusDifferent)
	}
}

func byteEqual(a, b io.Reader) (bool, error) {
	bufA := make([]byte, compareChunkSize)
	bufB := make([]byte, compareChunkSize)
	for {
		na, errA := io.ReadFull(a, bufA)
		nb, errB := io.ReadFull(b, bufB)
		if na != nb {
			return false, nil
		}
		if na > 0 && string(bufA[:na]) != string(bufB[:nb]) {
			return false, nil
		}
		aDone := errA == io.EOF || errA == io.ErrUnexpectedEOF
		bDone := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if aDone != bDone {
			return false, nil
		}
		if aDone {
			return true, nil
		}
		if errA != nil {
			return false, errA
		}
		if errB != nil {
			return false, errB
		}
	}
}
