package dialog

import (
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/ui/styles"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

// InfoDialog is scrollable read-only text (spec.md §4.6 "Info dialog"),
// backed by bubbles/viewport the way SPEC_FULL.md's ambient stack
// commits the scrolling primitive to (standalone, outside the Bubble
// Tea runtime, same as TextField).
type InfoDialog struct {
	Base

	vp viewport.Model
}

// NewInfoDialog builds a read-only scrollable panel over content.
func NewInfoDialog(title, content string) *InfoDialog {
	vp := viewport.New(60, 20)
	vp.SetContent(content)
	d := &InfoDialog{
		Base: NewBase(title, styles.PairNormal, styles.PairBorderActive),
		vp:   vp,
	}
	d.MarkDirty()
	return d
}

func (d *InfoDialog) HandleKeyEvent(ev event.KeyEvent) bool {
	if ev.Code == event.KeyEscape || ev.Code == event.KeyEnter {
		d.Close()
		return true
	}
	switch ev.Code {
	case event.KeyUp:
		d.vp.LineUp(1)
	case event.KeyDown:
		d.vp.LineDown(1)
	case event.KeyPageUp:
		d.vp.ViewUp()
	case event.KeyPageDown:
		d.vp.ViewDown()
	case event.KeyHome:
		d.vp.GotoTop()
	case event.KeyEnd:
		d.vp.GotoBottom()
	}
	d.MarkDirty()
	return true
}

func (d *InfoDialog) HandleCharEvent(ev event.CharEvent) bool   { return true }
func (d *InfoDialog) HandleMouseEvent(ev event.MouseEvent) bool { return false }
func (d *InfoDialog) HandleSystemEvent(ev event.SystemEvent) bool {
	d.MarkDirty()
	return false
}

func (d *InfoDialog) Draw(g *render.Grid, region uilayer.Region) {
	box := d.box(region)
	drawBox(g, box, d.Title, styles.PairBorderActive)
	in := inner(box)

	d.vp.Width = in.Cols
	d.vp.Height = in.Rows
	lines := splitLines(d.vp.View())
	for i, line := range lines {
		if i >= in.Rows {
			break
		}
		g.DrawText(in.Row+i, in.Col, line, styles.PairNormal, render.AttrNone)
	}
	d.ClearDirty()
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
