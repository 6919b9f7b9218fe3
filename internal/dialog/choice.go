package dialog

import (
	"unicode"

	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/ui/styles"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

// Choice is one selectable option in a ChoiceDialog (spec.md §4.6
// "message + ordered list of {label, hotkey, value}").
type Choice struct {
	Label  string
	Hotkey rune
	Value  interface{}
}

// ChoiceDialog presents a message and a small ordered set of choices,
// selectable by arrow keys or their hotkey (spec.md §4.6 "Choice
// dialog"). The task framework's CONFIRMING and RESOLVING_CONFLICT
// states both push one of these (spec.md §4.4).
type ChoiceDialog struct {
	Base

	message  string
	choices  []Choice
	cursor   int
	onChosen func(Choice)
}

// NewChoiceDialog builds a dialog over choices, delivering the selected
// Choice to onChosen when the user confirms.
func NewChoiceDialog(title, message string, choices []Choice, onChosen func(Choice)) *ChoiceDialog {
	d := &ChoiceDialog{
		Base:     NewBase(title, styles.PairNormal, styles.PairBorderActive),
		message:  message,
		choices:  choices,
		onChosen: onChosen,
	}
	d.MarkDirty()
	return d
}

func (d *ChoiceDialog) HandleKeyEvent(ev event.KeyEvent) bool {
	switch ev.Code {
	case event.KeyEscape:
		d.Close()
		return true
	case event.KeyUp:
		if d.cursor > 0 {
			d.cursor--
		}
		d.MarkDirty()
		return true
	case event.KeyDown:
		if d.cursor < len(d.choices)-1 {
			d.cursor++
		}
		d.MarkDirty()
		return true
	case event.KeyEnter:
		d.confirm(d.cursor)
		return true
	}
	if ev.Char != 0 {
		for i, c := range d.choices {
			if c.Hotkey != 0 && unicode.ToLower(c.Hotkey) == unicode.ToLower(ev.Char) {
				d.confirm(i)
				return true
			}
		}
	}
	return true
}

func (d *ChoiceDialog) confirm(i int) {
	if i < 0 || i >= len(d.choices) {
		return
	}
	d.Close()
	if d.onChosen != nil {
		d.onChosen(d.choices[i])
	}
}

func (d *ChoiceDialog) HandleCharEvent(ev event.CharEvent) bool   { return true }
func (d *ChoiceDialog) HandleMouseEvent(ev event.MouseEvent) bool { return false }
func (d *ChoiceDialog) HandleSystemEvent(ev event.SystemEvent) bool {
	d.MarkDirty()
	return false
}

func (d *ChoiceDialog) Draw(g *render.Grid, region uilayer.Region) {
	box := d.box(region)
	drawBox(g, box, d.Title, styles.PairBorderActive)
	in := inner(box)
	g.DrawText(in.Row, in.Col, d.message, styles.PairNormal, render.AttrNone)
	for i, c := range d.choices {
		pair := styles.PairNormal
		attrs := render.AttrNone
		if i == d.cursor {
			pair = styles.PairSelected
			attrs = render.AttrBold
		}
		g.DrawText(in.Row+2+i, in.Col, "  "+c.Label, pair, attrs)
	}
	d.ClearDirty()
}
