// Package render defines the cell-grid renderer contract the core UI runs
// against, and the concrete terminal backend that implements it.
package render

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// Attr is a bitmask of cell attributes.
type Attr uint8

const (
	AttrNone Attr = 0
	AttrBold Attr = 1 << iota
	AttrUnderline
	AttrReverse
)

// ColorPairID indexes into the session-scoped palette.
type ColorPairID int

// DefaultPair is installed at startup and never needs registration.
const DefaultPair ColorPairID = 0

// WideSentinel is written to the trailing column of a wide cell.
const WideSentinel rune = 0

// Cell is a single grid position.
type Cell struct {
	Ch    rune
	Pair  ColorPairID
	Attrs Attr
	Dirty bool
}

// Grid is a row-major cell buffer. Width is fixed per session but can be
// resized on a terminal RESIZE event.
type Grid struct {
	Rows, Cols int
	cells      []Cell
}

// NewGrid allocates a blank grid of the given dimensions.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{Rows: rows, Cols: cols}
	g.cells = make([]Cell, rows*cols)
	g.Clear()
	return g
}

// Resize reallocates the grid, discarding prior contents (the caller forces
// a full redraw after a RESIZE event, per spec.md §4.2).
func (g *Grid) Resize(rows, cols int) {
	g.Rows, g.Cols = rows, cols
	g.cells = make([]Cell, rows*cols)
	g.Clear()
}

// Clear fills every cell with (space, default pair, no attributes).
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{Ch: ' ', Pair: DefaultPair, Dirty: true}
	}
}

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

func (g *Grid) index(row, col int) int { return row*g.Cols + col }

// At returns the cell at (row, col); ok is false out of bounds.
func (g *Grid) At(row, col int) (Cell, bool) {
	if !g.inBounds(row, col) {
		return Cell{}, false
	}
	return g.cells[g.index(row, col)], true
}

// SetCell writes a single cell. Wide runes occupy the next column too,
// which is overwritten with WideSentinel; writing at the last column with
// a wide rune is truncated to avoid overrun.
func (g *Grid) SetCell(row, col int, ch rune, pair ColorPairID, attrs Attr) {
	if !g.inBounds(row, col) {
		return
	}
	w := runewidth.RuneWidth(ch)
	if w < 1 {
		w = 1
	}
	idx := g.index(row, col)
	g.cells[idx] = Cell{Ch: ch, Pair: pair, Attrs: attrs, Dirty: true}
	if w == 2 && g.inBounds(row, col+1) {
		g.cells[g.index(row, col+1)] = Cell{Ch: WideSentinel, Pair: pair, Attrs: attrs, Dirty: true}
	}
}

// DrawText normalizes s to precomposed (NFC) form, then writes it starting
// at (row, col), advancing by each grapheme's display width. It stops at
// the grid's right edge.
func (g *Grid) DrawText(row, col int, s string, pair ColorPairID, attrs Attr) int {
	composed := norm.NFC.String(s)
	c := col
	for _, r := range composed {
		if c >= g.Cols {
			break
		}
		g.SetCell(row, c, r, pair, attrs)
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		c += w
	}
	return c - col
}

// DrawHLine requires ch be exactly one grapheme; the caller is responsible
// for that per the renderer contract (spec.md §4.1).
func (g *Grid) DrawHLine(row, col int, ch rune, length int, pair ColorPairID, attrs Attr) {
	for i := 0; i < length; i++ {
		g.SetCell(row, col+i, ch, pair, attrs)
	}
}

// DrawVLine requires ch be exactly one grapheme.
func (g *Grid) DrawVLine(row, col int, ch rune, length int, pair ColorPairID, attrs Attr) {
	for i := 0; i < length; i++ {
		g.SetCell(row+i, col, ch, pair, attrs)
	}
}

// DisplayWidth returns the column width the string occupies once composed
// and measured wide-cell aware (spec.md §8 property 10).
func DisplayWidth(s string) int {
	return runewidth.StringWidth(norm.NFC.String(s))
}

// ClearDirty resets every cell's dirty bit after a render pass.
func (g *Grid) ClearDirty() {
	for i := range g.cells {
		g.cells[i].Dirty = false
	}
}
