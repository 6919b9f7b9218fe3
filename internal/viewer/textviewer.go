// Package viewer implements the read-only full-screen viewers pushed
// onto the UI layer stack (spec.md §4.6 "Text viewer", §4.7 "Directory
// diff viewer"): a plain-text viewer with tab expansion and wide-aware
// horizontal scrolling, and a directory diff tree viewer built on
// internal/diff.
package viewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/filetype"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/ui/styles"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

const defaultTabWidth = 8

// TextViewer displays a file's contents as tab-expanded, wide-rune-aware
// lines with independent vertical and horizontal scroll (spec.md §4.6,
// §8 property 9, §8 scenario 5).
type TextViewer struct {
	uilayer.Base

	path     pathfs.Path
	tabWidth int

	lines []line // expanded, pre-split once at load time

	topLine int
	leftCol int // display columns scrolled past, not a rune index
	rows    int
	cols    int

	status string // set on load error; displayed in place of content
}

// line is one expanded display line: runes plus each rune's running
// display-column start, so horizontal scroll can find the first visible
// character by its column position without ever matching on rune *value* (the bug spec.md §4.6 calls out:
// "track the character index ... to avoid positional errors when the
// scroll offset lands in runs of repeated characters").
type line struct {
	runes    []rune
	colAt    []int // colAt[i] = display column where runes[i] starts
	widths   int    // total display width of the line
	tabWidth int
}

func newLine(s string, tabWidth int) line {
	l := line{tabWidth: tabWidth}
	col := 0
	for _, r := range s {
		l.colAt = append(l.colAt, col)
		l.runes = append(l.runes, r)
		if r == '\t' {
			step := tabWidth - (col % tabWidth)
			col += step
		} else {
			w := runewidth.RuneWidth(r)
			if w < 1 {
				w = 1
			}
			col += w
		}
	}
	l.widths = col
	return l
}

// visiblePrefix returns the runes of l starting at display column
// offset, expanding tabs to spaces so the caller never has to reason
// about tab stops downstream, plus the display width actually
// consumed (spec.md §8 property 9).
func (l line) visiblePrefix(offset int) ([]rune, int) {
	if offset <= 0 {
		return l.expandTabs(0, len(l.runes)), l.widths
	}
	// Find the first character index whose column is >= offset. This
	// scans by position, never by rune value, so repeated characters
	// never cause a false-early match (spec.md §8 scenario 5).
	idx := len(l.runes)
	for i, c := range l.colAt {
		if c >= offset {
			idx = i
			break
		}
	}
	if idx >= len(l.runes) {
		return nil, 0
	}
	skippedWidth := l.colAt[idx]
	return l.expandTabs(idx, len(l.runes)), l.widths - skippedWidth
}

func (l line) expandTabs(from, to int) []rune {
	var out []rune
	col := l.colAt[from]
	for i := from; i < to; i++ {
		r := l.runes[i]
		if r == '\t' {
			step := l.tabWidth - (col % l.tabWidth)
			for j := 0; j < step; j++ {
				out = append(out, ' ')
			}
			col += step
		} else {
			out = append(out, r)
			w := runewidth.RuneWidth(r)
			if w < 1 {
				w = 1
			}
			col += w
		}
	}
	return out
}

// NewTextViewer loads path through the storage abstraction and builds
// the tab-expanded line table.
func NewTextViewer(ctx context.Context, p pathfs.Path, tabWidth int) *TextViewer {
	if tabWidth <= 0 {
		tabWidth = defaultTabWidth
	}
	v := &TextViewer{path: p, tabWidth: tabWidth}
	v.MarkDirty()

	rc, err := p.OpenRead(ctx)
	if err != nil {
		v.status = "error: " + err.Error()
		return v
	}
	defer rc.Close()

	var sb strings.Builder
	buf := make([]byte, 64*1024)
	first := true
	for {
		n, rerr := rc.Read(buf)
		if n > 0 {
			if first {
				if filetype.DetectKind(buf[:n]) == filetype.KindBinary {
					v.status = "binary file, cannot display"
					return v
				}
				first = false
			}
			sb.Write(buf[:n])
		}
		if rerr != nil {
			break
		}
	}
	text := decodeText([]byte(sb.String()))
	for _, s := range strings.Split(text, "\n") {
		v.lines = append(v.lines, newLine(strings.TrimSuffix(s, "\r"), tabWidth))
	}
	return v
}

func (v *TextViewer) SetViewport(rows, cols int) { v.rows, v.cols = rows, cols }

func (v *TextViewer) HandleKeyEvent(ev event.KeyEvent) bool {
	switch ev.Code {
	case event.KeyEscape:
		v.Close()
		return true
	case event.KeyUp:
		v.scrollVertical(-1)
	case event.KeyDown:
		v.scrollVertical(1)
	case event.KeyPageUp:
		v.scrollVertical(-v.rows)
	case event.KeyPageDown:
		v.scrollVertical(v.rows)
	case event.KeyHome:
		v.topLine, v.leftCol = 0, 0
	case event.KeyEnd:
		v.topLine = v.maxTop()
	case event.KeyLeft:
		v.scrollHorizontal(-4)
	case event.KeyRight:
		v.scrollHorizontal(4)
	default:
		return false
	}
	v.MarkDirty()
	return true
}

func (v *TextViewer) scrollVertical(delta int) {
	v.topLine += delta
	if v.topLine < 0 {
		v.topLine = 0
	}
	if max := v.maxTop(); v.topLine > max {
		v.topLine = max
	}
}

func (v *TextViewer) maxTop() int {
	max := len(v.lines) - v.rows
	if max < 0 {
		max = 0
	}
	return max
}

func (v *TextViewer) scrollHorizontal(delta int) {
	v.leftCol += delta
	if v.leftCol < 0 {
		v.leftCol = 0
	}
}

func (v *TextViewer) HandleCharEvent(ev event.CharEvent) bool { return false }

func (v *TextViewer) HandleMouseEvent(ev event.MouseEvent) bool {
	if ev.Kind == event.MouseWheel {
		if ev.Button == event.ButtonWheelDown {
			v.scrollVertical(3)
		} else if ev.Button == event.ButtonWheelUp {
			v.scrollVertical(-3)
		}
		v.MarkDirty()
		return true
	}
	return false
}

func (v *TextViewer) HandleSystemEvent(ev event.SystemEvent) bool {
	v.MarkDirty()
	return false
}

func (v *TextViewer) IsFullScreen() bool { return true }

func (v *TextViewer) Draw(g *render.Grid, region uilayer.Region) {
	v.SetViewport(region.Rows-1, region.Cols)
	if v.status != "" {
		g.DrawText(region.Row, region.Col, v.status, styles.PairError, render.AttrNone)
		v.ClearDirty()
		return
	}
	for row := 0; row < v.rows; row++ {
		i := v.topLine + row
		if i >= len(v.lines) {
			break
		}
		runes, _ := v.lines[i].visiblePrefix(v.leftCol)
		g.DrawText(region.Row+row, region.Col, string(runes), styles.PairNormal, render.AttrNone)
	}
	status := fmt.Sprintf("line %d/%d  col %d  %s", v.topLine+1, len(v.lines), v.leftCol+1, v.path.Name())
	g.DrawText(region.Row+region.Rows-1, region.Col, status, styles.PairMuted, render.AttrNone)
	v.ClearDirty()
}
