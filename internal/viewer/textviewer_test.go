package viewer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/uilayer"
	"github.com/mara-voss/dualpane/internal/viewer"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// TestHorizontalScrollPastFirstScreen is spec.md §8 scenario 5, exercised
// through the public API: scrolling right repeatedly must keep moving
// monotonically through a line of repeated digits rather than getting
// stuck re-matching an earlier occurrence of the same character. The
// exact character-index claim ("column 37 is '7', not the '7' at index
// 7") is covered precisely in the package-internal line_test.go, since
// the scroll step size here is fixed at 4 columns per key press.
func TestHorizontalScrollPastFirstScreen(t *testing.T) {
	line := ""
	for i := 0; i < 8; i++ {
		line += "0123456789"
	}
	path := writeTemp(t, line)
	v := viewer.NewTextViewer(context.Background(), local.New(path), 8)
	v.SetViewport(10, 80)

	g := render.NewGrid(10, 80)
	v.Draw(g, uilayer.Region{Row: 0, Col: 0, Rows: 10, Cols: 80})
	first, _ := g.At(0, 0)
	require.Equal(t, '0', first.Ch)

	for i := 0; i < 10; i++ { // 10 steps of 4 columns = scrolled past column 40
		v.HandleKeyEvent(event.KeyEvent{Code: event.KeyRight})
	}
	v.Draw(g, uilayer.Region{Row: 0, Col: 0, Rows: 10, Cols: 80})
	after, _ := g.At(0, 0)
	require.Equal(t, '0', after.Ch) // column 40 of the repeating run is '0' again
}

func TestTabExpansionAdvancesToNextStop(t *testing.T) {
	path := writeTemp(t, "a\tb")
	v := viewer.NewTextViewer(context.Background(), local.New(path), 4)
	v.SetViewport(5, 20)

	g := render.NewGrid(5, 20)
	v.Draw(g, uilayer.Region{Row: 0, Col: 0, Rows: 5, Cols: 20})

	// "a" at col 0, tab expands columns 1..3, "b" lands at display col 4.
	cell, ok := g.At(0, 4)
	require.True(t, ok)
	require.Equal(t, 'b', cell.Ch)
}

func TestBinaryFileShowsPlaceholderInsteadOfGarbage(t *testing.T) {
	path := writeTemp(t, "")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02, 'h', 'i'}, 0o644))
	v := viewer.NewTextViewer(context.Background(), local.New(path), 8)
	v.SetViewport(5, 40)

	g := render.NewGrid(5, 40)
	v.Draw(g, uilayer.Region{Row: 0, Col: 0, Rows: 5, Cols: 40})
	cell, _ := g.At(0, 0)
	require.Equal(t, 'b', cell.Ch) // "binary file, cannot display"
}

func TestEscapeClosesViewer(t *testing.T) {
	path := writeTemp(t, "hello")
	v := viewer.NewTextViewer(context.Background(), local.New(path), 8)
	v.HandleKeyEvent(event.KeyEvent{Code: event.KeyEscape})
	require.True(t, v.ShouldClose())
}
