package dialog

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/render"
)

// TextField wraps bubbles/textinput.Model, driven directly rather than
// through the Bubble Tea runtime: every dialog with a single-line
// editable field (spec.md §4.6 "A single-line editable text field with
// cursor motion ... insert at cursor, Backspace, Delete") embeds one of
// these instead of reimplementing cursor/insert bookkeeping.
type TextField struct {
	model textinput.Model
}

// NewTextField builds a field with the given placeholder and width.
func NewTextField(placeholder string, width int) *TextField {
	m := textinput.New()
	m.Placeholder = placeholder
	m.Width = width
	m.Focus()
	return &TextField{model: m}
}

// HandleKey feeds a key event through to the underlying textinput.Model.
// The caller intercepts Enter/Escape itself before reaching here.
func (f *TextField) HandleKey(ev event.KeyEvent) {
	f.model, _ = f.model.Update(toTeaKey(ev))
}

// HandleChar inserts a committed IME character at the cursor.
func (f *TextField) HandleChar(ev event.CharEvent) {
	f.model, _ = f.model.Update(toCharKey(ev))
}

func (f *TextField) Value() string     { return f.model.Value() }
func (f *TextField) SetValue(s string) { f.model.SetValue(s) }
func (f *TextField) Focus()            { f.model.Focus() }
func (f *TextField) Blur()             { f.model.Blur() }

// Draw renders the field's visible window (textinput manages its own
// internal scroll/cursor position) into one grid row.
func (f *TextField) Draw(g *render.Grid, row, col, width int, pair render.ColorPairID) {
	f.model.Width = width
	g.DrawText(row, col, f.model.View(), pair, render.AttrNone)
}
