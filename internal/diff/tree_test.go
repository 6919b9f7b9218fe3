package diff

import "testing"

func TestRollupPendingWhileAnyChildUnresolved(t *testing.T) {
	n := &Node{IsDir: true, Children: []*Node{
		{Status: StatusIdentical},
		{Status: StatusPending},
		{Status: StatusDifferent},
	}}
	if got := n.Rollup(); got != StatusPending {
		t.Fatalf("Rollup() = %v, want StatusPending (a pending child must block resolution, not be treated as a difference)", got)
	}
}

func TestRollupDifferentOnceAllResolvedAndAnyDiffers(t *testing.T) {
	n := &Node{IsDir: true, Children: []*Node{
		{Status: StatusIdentical},
		{Status: StatusDifferent},
	}}
	if got := n.Rollup(); got != StatusDifferent {
		t.Fatalf("Rollup() = %v, want StatusDifferent", got)
	}
}

func TestRollupErrorTakesPrecedenceOverDifferent(t *testing.T) {
	n := &Node{IsDir: true, Children: []*Node{
		{Status: StatusError},
		{Status: StatusDifferent},
	}}
	if got := n.Rollup(); got != StatusError {
		t.Fatalf("Rollup() = %v, want StatusError", got)
	}
}

func TestRollupIdenticalWhenAllChildrenIdentical(t *testing.T) {
	n := &Node{IsDir: true, Children: []*Node{
		{Status: StatusIdentical},
		{Status: StatusIdentical},
	}}
	if got := n.Rollup(); got != StatusIdentical {
		t.Fatalf("Rollup() = %v, want StatusIdentical", got)
	}
}
