package viewer

import (
	"strings"

	"github.com/mara-voss/dualpane/internal/diff"
	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/ui/styles"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

// DirectoryDiffViewer is the full-screen layer wrapping a diff.Engine
// (spec.md §4.7): expand/collapse, next/prev-difference navigation,
// a differences-only filter, and opening a file-level diff through an
// external handler the caller supplies (invokeOpenFile).
type DirectoryDiffViewer struct {
	uilayer.Base

	engine *diff.Engine

	cursor       int
	scrollOffset int
	rows         int
	lastRow      int // region.Row from the most recent Draw, for mouse-row translation

	filterDiffOnly bool

	openFile func(left, right pathfs.Path)
}

// NewDirectoryDiffViewer starts comparing left against right. openFile,
// if non-nil, is invoked when the user presses Enter on a file node
// (spec.md §4.7 "open file diff (invokes an external handler)").
func NewDirectoryDiffViewer(left, right pathfs.Path, openFile func(left, right pathfs.Path)) *DirectoryDiffViewer {
	v := &DirectoryDiffViewer{
		engine:   diff.New(left, right),
		openFile: openFile,
	}
	v.MarkDirty()
	return v
}

// Close stops both of the engine's background workers before closing
// the layer (spec.md §4.7 "Cancellation: closing the viewer signals
// both workers; they exit at the next yield").
func (v *DirectoryDiffViewer) Close() {
	v.engine.Stop()
	v.Base.Close()
}

// Engine exposes the underlying diff engine, e.g. so a caller can show
// a differences-remaining count alongside the viewer.
func (v *DirectoryDiffViewer) Engine() *diff.Engine { return v.engine }

func (v *DirectoryDiffViewer) current() *diff.Node {
	flat := v.engine.Flatten()
	if v.cursor < 0 || v.cursor >= len(flat) {
		return nil
	}
	return flat[v.cursor]
}

func (v *DirectoryDiffViewer) clampCursor() {
	n := len(v.engine.Flatten())
	if n == 0 {
		v.cursor = 0
		return
	}
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *DirectoryDiffViewer) ensureVisible() {
	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.rows > 0 && v.cursor >= v.scrollOffset+v.rows {
		v.scrollOffset = v.cursor - v.rows + 1
	}
}

func (v *DirectoryDiffViewer) HandleKeyEvent(ev event.KeyEvent) bool {
	switch ev.Code {
	case event.KeyEscape:
		v.Close()
		return true
	case event.KeyUp:
		if v.cursor > 0 {
			v.cursor--
		}
	case event.KeyDown:
		v.clampCursor()
		if v.cursor < len(v.engine.Flatten())-1 {
			v.cursor++
		}
	case event.KeyLeft:
		if n := v.current(); n != nil && n.IsDir {
			v.engine.Collapse(n)
		}
	case event.KeyRight:
		if n := v.current(); n != nil && n.IsDir {
			v.engine.Expand(n)
		}
	case event.KeyEnter:
		if n := v.current(); n != nil && !n.IsDir && v.openFile != nil {
			v.openFile(n.Left, n.Right)
		}
	case event.KeyTab:
		if n := v.current(); n != nil {
			next := v.engine.NextDiff(n)
			v.selectNode(next)
		}
	case event.KeyBacktab:
		if n := v.current(); n != nil {
			prev := v.engine.PrevDiff(n)
			v.selectNode(prev)
		}
	default:
		if ev.Char == 'f' || ev.Char == 'F' {
			v.filterDiffOnly = !v.filterDiffOnly
			v.engine.SetFilter(v.filterDiffOnly)
			v.cursor = 0
			v.scrollOffset = 0
		} else {
			return false
		}
	}
	v.clampCursor()
	v.ensureVisible()
	v.MarkDirty()
	return true
}

// selectNode repositions the cursor onto n within the current flattened
// order, the way NextDiff/PrevDiff results get applied to the viewer's
// own index-based selection.
func (v *DirectoryDiffViewer) selectNode(n *diff.Node) {
	if n == nil {
		return
	}
	for i, cand := range v.engine.Flatten() {
		if cand == n {
			v.cursor = i
			return
		}
	}
}

func (v *DirectoryDiffViewer) HandleCharEvent(ev event.CharEvent) bool { return false }
func (v *DirectoryDiffViewer) HandleMouseEvent(ev event.MouseEvent) bool {
	if ev.Kind == event.MouseDoubleClick {
		row := ev.Row - v.lastRow
		idx := v.scrollOffset + row
		flat := v.engine.Flatten()
		if idx >= 0 && idx < len(flat) {
			v.cursor = idx
			n := flat[idx]
			if n.IsDir {
				if n.Expanded {
					v.engine.Collapse(n)
				} else {
					v.engine.Expand(n)
				}
			} else if v.openFile != nil {
				v.openFile(n.Left, n.Right)
			}
			v.MarkDirty()
			return true
		}
	}
	return false
}
func (v *DirectoryDiffViewer) HandleSystemEvent(ev event.SystemEvent) bool {
	v.MarkDirty()
	return false
}

func (v *DirectoryDiffViewer) IsFullScreen() bool { return true }

func (v *DirectoryDiffViewer) Draw(g *render.Grid, region uilayer.Region) {
	v.rows = region.Rows - 1
	v.lastRow = region.Row
	v.ensureVisible()

	flat := v.engine.Flatten()
	for row := 0; row < v.rows; row++ {
		i := v.scrollOffset + row
		if i >= len(flat) {
			break
		}
		n := flat[i]
		pair := styles.DiffPairFor(n.GetStatus().String())
		if i == v.cursor {
			pair = styles.PairSelected
		}
		g.DrawText(region.Row+row, region.Col, v.renderRow(n), pair, render.AttrNone)
	}

	mode := "all"
	if v.filterDiffOnly {
		mode = "diffs only"
	}
	status := "f: toggle filter (" + mode + ")  tab/shift-tab: next/prev diff  enter: open  esc: close"
	g.DrawText(region.Row+region.Rows-1, region.Col, status, styles.PairMuted, render.AttrNone)
	v.ClearDirty()
}

func (v *DirectoryDiffViewer) renderRow(n *diff.Node) string {
	marker := "  "
	if n.IsDir {
		if n.Expanded {
			marker = "v "
		} else {
			marker = "> "
		}
	}
	return strings.Repeat("  ", v.depth(n)) + marker + n.Name + "  [" + n.GetStatus().String() + "]"
}

// depth computes target's nesting level. Engine.Flatten's order carries
// no parent pointers, so depth is found by re-walking the tree from the
// root once per row drawn — cheap relative to a single screen refresh.
func (v *DirectoryDiffViewer) depth(target *diff.Node) int {
	var d int
	var walk func(n *diff.Node, level int) bool
	walk = func(n *diff.Node, level int) bool {
		if n == target {
			d = level
			return true
		}
		for _, c := range n.Children {
			if walk(c, level+1) {
				return true
			}
		}
		return false
	}
	walk(v.engine.Root, 0)
	return d
}
