package diff_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mara-voss/dualpane/internal/diff"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/stretchr/testify/require"
)

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestEngineClassifiesIdenticalDifferentAndOneSided(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(left, "same.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "same.txt"), []byte("hello"), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(left, "changed.txt"), []byte("left"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "changed.txt"), []byte("right-longer"), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(left, "only-left.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "only-right.txt"), []byte("y"), 0o644))

	e := diff.New(local.New(left), local.New(right))
	defer e.Stop()

	waitUntil(t, func() bool { return len(e.Root.Children) == 4 })

	byName := map[string]*diff.Node{}
	for _, c := range e.Root.Children {
		byName[c.Name] = c
	}

	waitUntil(t, func() bool { return byName["same.txt"].GetStatus() != diff.StatusPending })
	require.Equal(t, diff.StatusIdentical, byName["same.txt"].GetStatus())

	waitUntil(t, func() bool { return byName["changed.txt"].GetStatus() != diff.StatusPending })
	require.Equal(t, diff.StatusDifferent, byName["changed.txt"].GetStatus())

	require.Equal(t, diff.StatusLeftOnly, byName["only-left.txt"].GetStatus())
	require.Equal(t, diff.StatusRightOnly, byName["only-right.txt"].GetStatus())
}

func TestRootRollsUpToDifferentWhenAnyChildDiffers(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(left, "a.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "a.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(left, "b.txt"), []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "b.txt"), []byte("two"), 0o644))

	e := diff.New(local.New(left), local.New(right))
	defer e.Stop()

	waitUntil(t, func() bool { return e.Root.Rollup() == diff.StatusDifferent })
}

func TestRootIdenticalWhenAllChildrenIdentical(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(left, "a.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "a.txt"), []byte("same"), 0o644))

	e := diff.New(local.New(left), local.New(right))
	defer e.Stop()

	waitUntil(t, func() bool { return e.Root.Rollup() == diff.StatusIdentical })
}

func TestFilterHidesIdenticalNodes(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(left, "same.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "same.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(left, "diff.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "diff.txt"), []byte("b"), 0o644))

	e := diff.New(local.New(left), local.New(right))
	defer e.Stop()
	e.Root.Expanded = true

	waitUntil(t, func() bool { return len(e.Flatten()) >= 3 })

	e.SetFilter(true)
	waitUntil(t, func() bool {
		for _, n := range e.Flatten() {
			if n.Name == "same.txt" {
				return false
			}
		}
		return true
	})
}
