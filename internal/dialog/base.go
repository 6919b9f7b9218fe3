package dialog

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

// Base is embedded by every concrete dialog: it supplies the dirty/close
// bookkeeping (uilayer.Base) plus centered-box sizing shared by all
// dialogs (spec.md §4.6 "Common base behaviors ... Centered rendering
// with configurable maximum width/height ratios").
type Base struct {
	uilayer.Base

	Title       string
	MaxWidth    float64 // fraction of the available region, e.g. 0.6
	MaxHeight   float64
	MinWidth    int
	MinHeight   int
	Pair        render.ColorPairID
	BorderPair  render.ColorPairID
}

// NewBase returns a Base with the spec's conventional defaults.
func NewBase(title string, pair, borderPair render.ColorPairID) Base {
	return Base{Title: title, MaxWidth: 0.7, MaxHeight: 0.7, MinWidth: 20, MinHeight: 5, Pair: pair, BorderPair: borderPair}
}

// box computes the centered sub-region within outer this dialog draws
// into, honoring MaxWidth/MaxHeight ratios and the minimum size.
func (b *Base) box(outer uilayer.Region) uilayer.Region {
	w := int(float64(outer.Cols) * b.MaxWidth)
	h := int(float64(outer.Rows) * b.MaxHeight)
	if w < b.MinWidth {
		w = b.MinWidth
	}
	if h < b.MinHeight {
		h = b.MinHeight
	}
	if w > outer.Cols {
		w = outer.Cols
	}
	if h > outer.Rows {
		h = outer.Rows
	}
	row := outer.Row + (outer.Rows-h)/2
	col := outer.Col + (outer.Cols-w)/2
	return uilayer.Region{Row: row, Col: col, Rows: h, Cols: w}
}

// drawBox draws a rounded border with an optional centered title, the
// box-drawing rune set lipgloss.RoundedBorder() already carries (spec.md
// SPEC_FULL.md ambient stack, "lipgloss remains ... border-drawing
// helper") — drawn cell by cell onto the grid rather than rendered as an
// ANSI string, since the renderer contract is cell-based, not
// string-based.
func drawBox(g *render.Grid, r uilayer.Region, title string, pair render.ColorPairID) {
	b := lipgloss.RoundedBorder()
	tl, tr := []rune(b.TopLeft)[0], []rune(b.TopRight)[0]
	bl, br := []rune(b.BottomLeft)[0], []rune(b.BottomRight)[0]
	horiz, vert := []rune(b.Top)[0], []rune(b.Left)[0]

	g.SetCell(r.Row, r.Col, tl, pair, render.AttrNone)
	g.SetCell(r.Row, r.Col+r.Cols-1, tr, pair, render.AttrNone)
	g.SetCell(r.Row+r.Rows-1, r.Col, bl, pair, render.AttrNone)
	g.SetCell(r.Row+r.Rows-1, r.Col+r.Cols-1, br, pair, render.AttrNone)
	g.DrawHLine(r.Row, r.Col+1, horiz, r.Cols-2, pair, render.AttrNone)
	g.DrawHLine(r.Row+r.Rows-1, r.Col+1, horiz, r.Cols-2, pair, render.AttrNone)
	g.DrawVLine(r.Row+1, r.Col, vert, r.Rows-2, pair, render.AttrNone)
	g.DrawVLine(r.Row+1, r.Col+r.Cols-1, vert, r.Rows-2, pair, render.AttrNone)

	for row := r.Row + 1; row < r.Row+r.Rows-1; row++ {
		for col := r.Col + 1; col < r.Col+r.Cols-1; col++ {
			g.SetCell(row, col, ' ', pair, render.AttrNone)
		}
	}

	if title != "" {
		label := " " + title + " "
		maxLen := r.Cols - 4
		if maxLen > 0 && len(label) > maxLen {
			label = label[:maxLen]
		}
		g.DrawText(r.Row, r.Col+2, label, pair, render.AttrBold)
	}
}

// inner returns the writable area inside a box's border.
func inner(r uilayer.Region) uilayer.Region {
	return uilayer.Region{Row: r.Row + 1, Col: r.Col + 1, Rows: r.Rows - 2, Cols: r.Cols - 2}
}
