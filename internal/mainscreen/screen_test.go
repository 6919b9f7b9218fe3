package mainscreen_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mara-voss/dualpane/internal/config"
	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/logbuf"
	"github.com/mara-voss/dualpane/internal/mainscreen"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

func newScreen(t *testing.T) (*mainscreen.Screen, string, string) {
	t.Helper()
	left := t.TempDir()
	right := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(left, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(left, "b.txt"), []byte("y"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(left, "sub"), 0o755))

	cfg := config.Template()
	s := mainscreen.NewScreen(context.Background(), local.New(left), local.New(right), cfg, logbuf.New(100), nil)
	return s, left, right
}

func TestCursorStaysInBoundsAfterMovement(t *testing.T) {
	s, _, _ := newScreen(t)
	for i := 0; i < 10; i++ {
		s.HandleKeyEvent(event.KeyEvent{Code: event.KeyUp})
	}
	require.GreaterOrEqual(t, s.Left.CursorIndex, 0)
	require.Less(t, s.Left.CursorIndex, len(s.Left.Entries))
}

func TestTabSwitchesActivePane(t *testing.T) {
	s, _, _ := newScreen(t)
	require.Equal(t, mainscreen.SideLeft, s.Active)
	s.HandleKeyEvent(event.KeyEvent{Code: event.KeyTab})
	require.Equal(t, mainscreen.SideRight, s.Active)
}

func TestEnterDescendsIntoDirectory(t *testing.T) {
	s, left, _ := newScreen(t)
	idx := -1
	for i, e := range s.Left.Entries {
		if e.DisplayName == "sub" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	s.Left.CursorIndex = idx
	s.HandleKeyEvent(event.KeyEvent{Code: event.KeyEnter})
	require.Equal(t, filepath.Join(left, "sub"), s.Left.CurrentPath.Address())
}

func TestEnterOnFileInvokesOnOpenFile(t *testing.T) {
	s, _, _ := newScreen(t)
	var got pathfs.Path
	s.OnOpenFile = func(p pathfs.Path, side mainscreen.Side) { got = p }

	idx := -1
	for i, e := range s.Left.Entries {
		if e.DisplayName == "a.txt" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	s.Left.CursorIndex = idx
	s.HandleKeyEvent(event.KeyEvent{Code: event.KeyEnter})
	require.NotNil(t, got)
	require.Equal(t, "a.txt", got.Name())
}

func TestBackspaceNavigatesToParent(t *testing.T) {
	s, left, _ := newScreen(t)
	s.Left.NavigateToChild(context.Background(), indexOf(t, s.Left.Entries, "sub"))
	require.Equal(t, filepath.Join(left, "sub"), s.Left.CurrentPath.Address())

	s.HandleKeyEvent(event.KeyEvent{Code: event.KeyBackspace})
	require.Equal(t, left, s.Left.CurrentPath.Address())
}

func TestDateColumnHiddenBelowThresholdShownAtThreshold(t *testing.T) {
	// date_column_width for the short format is 14, threshold is 34+14=48;
	// with the default 0.5 split ratio the left pane's own width is
	// int(totalCols*0.5), so pick total widths landing the left pane just
	// below (95 -> 47) and exactly at (96 -> 48) the threshold.
	s, _, _ := newScreen(t)
	g := render.NewGrid(20, 95)
	s.Draw(g, boxRegion(20, 95))
	below := rowText(g, 1, 0, 47)

	s2, _, _ := newScreen(t)
	g2 := render.NewGrid(20, 96)
	s2.Draw(g2, boxRegion(20, 96))
	at := rowText(g2, 1, 0, 48)

	require.NotContains(t, below, ":")
	require.Contains(t, at, ":")
}

func TestHeaderDoubleClickNavigatesToParentAndSwitchesPane(t *testing.T) {
	s, left, _ := newScreen(t)
	s.Left.NavigateToChild(context.Background(), indexOf(t, s.Left.Entries, "sub"))

	g := render.NewGrid(20, 80)
	s.Draw(g, boxRegion(20, 80))

	s.Active = mainscreen.SideRight
	s.HandleMouseEvent(event.MouseEvent{Row: 0, Col: 1, Kind: event.MouseDoubleClick})

	require.Equal(t, mainscreen.SideLeft, s.Active)
	require.Equal(t, left, s.Left.CurrentPath.Address())
}

func indexOf(t *testing.T, entries []pathfs.Entry, name string) int {
	t.Helper()
	for i, e := range entries {
		if e.DisplayName == name {
			return i
		}
	}
	t.Fatalf("entry %q not found", name)
	return -1
}

func boxRegion(rows, cols int) uilayer.Region {
	return uilayer.Region{Row: 0, Col: 0, Rows: rows, Cols: cols}
}

// rowText reconstructs a row's text content from the grid for assertions
// that need to inspect rendered output directly.
func rowText(g *render.Grid, row, col, cols int) string {
	var b []rune
	for c := col; c < col+cols; c++ {
		cell, ok := g.At(row, c)
		if !ok {
			break
		}
		if cell.Ch == render.WideSentinel {
			continue
		}
		b = append(b, cell.Ch)
	}
	return string(b)
}
