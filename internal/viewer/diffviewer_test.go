package viewer_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/mara-voss/dualpane/internal/viewer"
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

func setupTrees(t *testing.T) (string, string) {
	t.Helper()
	left := t.TempDir()
	right := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(left, "same.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "same.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(left, "diff.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "diff.txt"), []byte("b"), 0o644))
	return left, right
}

// waitClassified blocks until both children have left PENDING, so
// filter/selection assertions never race the comparator worker.
func waitClassified(t *testing.T, v *viewer.DirectoryDiffViewer) {
	t.Helper()
	waitUntil(t, func() bool {
		flat := v.Engine().Flatten()
		if len(flat) != 3 {
			return false
		}
		for _, n := range flat {
			if n.GetStatus().String() == "PENDING" {
				return false
			}
		}
		return true
	})
}

func TestDirectoryDiffViewerFilterTogglesToDiffsOnly(t *testing.T) {
	left, right := setupTrees(t)
	v := viewer.NewDirectoryDiffViewer(local.New(left), local.New(right), nil)
	defer v.Close()
	waitClassified(t, v)

	v.HandleKeyEvent(event.KeyEvent{Char: 'f'})
	// root (DIFFERENT, rolled up) + the one differing child.
	flat := v.Engine().Flatten()
	require.Len(t, flat, 2)
	require.Equal(t, "diff.txt", flat[1].Name)
}

func TestDirectoryDiffViewerOpenFileInvokesHandler(t *testing.T) {
	left, right := setupTrees(t)
	var gotLeft, gotRight pathfs.Path
	v := viewer.NewDirectoryDiffViewer(local.New(left), local.New(right), func(l, r pathfs.Path) {
		gotLeft, gotRight = l, r
	})
	defer v.Close()
	waitClassified(t, v)

	// cursor starts on the root; move down to the first child.
	v.HandleKeyEvent(event.KeyEvent{Code: event.KeyDown})
	v.HandleKeyEvent(event.KeyEvent{Code: event.KeyEnter})

	require.NotNil(t, gotLeft)
	require.NotNil(t, gotRight)
}

func TestDirectoryDiffViewerEscapeCloses(t *testing.T) {
	left, right := setupTrees(t)
	v := viewer.NewDirectoryDiffViewer(local.New(left), local.New(right), nil)
	v.HandleKeyEvent(event.KeyEvent{Code: event.KeyEscape})
	require.True(t, v.ShouldClose())
}
