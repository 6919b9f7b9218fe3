package dialog

import (
	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/ui/styles"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

// InputDialog is a prompt plus single-line field with confirm/cancel
// delivered via callback (spec.md §4.6 "Input dialog").
type InputDialog struct {
	Base

	prompt   string
	field    *TextField
	validate func(string) string
	err      string
	onOK     func(value string)
	onCancel func()
}

// NewInputDialog builds a prompt dialog seeded with initial text.
func NewInputDialog(title, prompt, initial string, onOK func(string), onCancel func()) *InputDialog {
	d := &InputDialog{
		Base:     NewBase(title, styles.PairNormal, styles.PairBorderActive),
		prompt:   prompt,
		field:    NewTextField("", 40),
		onOK:     onOK,
		onCancel: onCancel,
	}
	d.field.SetValue(initial)
	d.MarkDirty()
	return d
}

// SetValidator installs a function checked on Enter; a non-empty return
// value is shown as an inline error and the dialog stays open (used by
// the rename-into-conflict flow in spec.md §4.4 to reject a name that
// collides again).
func (d *InputDialog) SetValidator(validate func(string) string) {
	d.validate = validate
}

func (d *InputDialog) HandleKeyEvent(ev event.KeyEvent) bool {
	switch ev.Code {
	case event.KeyEscape:
		d.Close()
		if d.onCancel != nil {
			d.onCancel()
		}
		return true
	case event.KeyEnter:
		value := d.field.Value()
		if d.validate != nil {
			if msg := d.validate(value); msg != "" {
				d.err = msg
				d.MarkDirty()
				return true
			}
		}
		d.Close()
		if d.onOK != nil {
			d.onOK(value)
		}
		return true
	}
	d.field.HandleKey(ev)
	d.err = ""
	d.MarkDirty()
	return true
}

func (d *InputDialog) HandleCharEvent(ev event.CharEvent) bool {
	d.field.HandleChar(ev)
	d.err = ""
	d.MarkDirty()
	return true
}

func (d *InputDialog) HandleMouseEvent(ev event.MouseEvent) bool  { return false }
func (d *InputDialog) HandleSystemEvent(ev event.SystemEvent) bool { d.MarkDirty(); return false }

func (d *InputDialog) Draw(g *render.Grid, region uilayer.Region) {
	box := d.box(region)
	drawBox(g, box, d.Title, styles.PairBorderActive)
	in := inner(box)
	g.DrawText(in.Row, in.Col, d.prompt, styles.PairNormal, render.AttrNone)
	d.field.Draw(g, in.Row+2, in.Col, in.Cols, styles.PairAccent)
	if d.err != "" {
		g.DrawText(in.Row+4, in.Col, d.err, styles.PairError, render.AttrNone)
	}
	d.ClearDirty()
}
