package dialog

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/ui/styles"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

// BatchRenameDialog shows the current names alongside a pattern editor
// and a live preview of the result (spec.md §4.6 "Batch rename dialog:
// list of current names + pattern editor + live preview"). The pattern
// supports {name} (original name without extension), {ext} (extension,
// without the dot), and {n} (1-based sequence number, zero-padded to
// the count's digit width).
type BatchRenameDialog struct {
	Base

	names   []string
	pattern *TextField
	cursor  int

	onApply  func(renames map[string]string)
	onCancel func()
}

// NewBatchRenameDialog builds a dialog over the given current names.
func NewBatchRenameDialog(names []string, onApply func(map[string]string), onCancel func()) *BatchRenameDialog {
	d := &BatchRenameDialog{
		Base:     NewBase("Batch rename", styles.PairNormal, styles.PairBorderActive),
		names:    append([]string(nil), names...),
		pattern:  NewTextField("{name}", 40),
		onApply:  onApply,
		onCancel: onCancel,
	}
	d.MarkDirty()
	return d
}

// preview computes the renamed name for each original name under the
// current pattern.
func (d *BatchRenameDialog) preview() []string {
	pattern := d.pattern.Value()
	if pattern == "" {
		pattern = "{name}"
	}
	width := len(strconv.Itoa(len(d.names)))
	out := make([]string, len(d.names))
	for i, name := range d.names {
		ext := strings.TrimPrefix(filepath.Ext(name), ".")
		base := strings.TrimSuffix(name, filepath.Ext(name))
		seq := fmt.Sprintf("%0*d", width, i+1)
		r := strings.NewReplacer("{name}", base, "{ext}", ext, "{n}", seq)
		out[i] = r.Replace(pattern)
	}
	return out
}

func (d *BatchRenameDialog) HandleKeyEvent(ev event.KeyEvent) bool {
	switch ev.Code {
	case event.KeyEscape:
		d.Close()
		if d.onCancel != nil {
			d.onCancel()
		}
		return true
	case event.KeyEnter:
		preview := d.preview()
		renames := make(map[string]string, len(d.names))
		for i, name := range d.names {
			renames[name] = preview[i]
		}
		d.Close()
		if d.onApply != nil {
			d.onApply(renames)
		}
		return true
	case event.KeyUp:
		if d.cursor > 0 {
			d.cursor--
		}
		d.MarkDirty()
		return true
	case event.KeyDown:
		if d.cursor < len(d.names)-1 {
			d.cursor++
		}
		d.MarkDirty()
		return true
	}
	d.pattern.HandleKey(ev)
	d.MarkDirty()
	return true
}

func (d *BatchRenameDialog) HandleCharEvent(ev event.CharEvent) bool {
	d.pattern.HandleChar(ev)
	d.MarkDirty()
	return true
}

func (d *BatchRenameDialog) HandleMouseEvent(ev event.MouseEvent) bool { return false }
func (d *BatchRenameDialog) HandleSystemEvent(ev event.SystemEvent) bool {
	d.MarkDirty()
	return false
}

func (d *BatchRenameDialog) Draw(g *render.Grid, region uilayer.Region) {
	box := d.box(region)
	drawBox(g, box, d.Title, styles.PairBorderActive)
	in := inner(box)

	g.DrawText(in.Row, in.Col, "Pattern ({name} {ext} {n}):", styles.PairNormal, render.AttrNone)
	d.pattern.Draw(g, in.Row+1, in.Col, in.Cols, styles.PairAccent)

	preview := d.preview()
	listTop := in.Row + 3
	maxRows := in.Rows - 3
	for i := 0; i < len(d.names) && i < maxRows; i++ {
		pair := styles.PairNormal
		if i == d.cursor {
			pair = styles.PairSelected
		}
		line := d.names[i] + "  ->  " + preview[i]
		g.DrawText(listTop+i, in.Col, line, pair, render.AttrNone)
	}
	d.ClearDirty()
}
