package dialog

import (
	"strings"
	"sync"

	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/ui/styles"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

// Entry is one row of a ListDialog: a name, an optional path, and an
// optional description, the three fields the live filter matches
// against (spec.md §4.6 "a live case-insensitive substring filter over
// name+path+description").
type Entry struct {
	Label       string
	Path        string
	Description string
	Value       interface{}
}

func (e Entry) key() string { return e.Label + "\x00" + e.Path }

func (e Entry) corpus() string {
	return e.Label + " " + e.Path + " " + e.Description
}

// ListDialog is an ordered, live-filterable list fed by a background
// producer (spec.md §4.6 "List dialog"). Jump/Drives/Search dialogs are
// thin producers wrapped around this type.
type ListDialog struct {
	Base

	field *TextField

	mu       sync.Mutex
	all      []Entry
	filtered []Entry

	cursor       int
	scrollOffset int
	viewRows     int
	status       string // e.g. "scanning..." shown below the list

	onSelect func(Entry)
	onCancel func()
}

// NewListDialog builds an initially empty list dialog; entries arrive
// via Append from a producer goroutine.
func NewListDialog(title, placeholder string, onSelect func(Entry), onCancel func()) *ListDialog {
	d := &ListDialog{
		Base:     NewBase(title, styles.PairNormal, styles.PairBorderActive),
		field:    NewTextField(placeholder, 40),
		onSelect: onSelect,
		onCancel: onCancel,
	}
	d.MarkDirty()
	return d
}

// Append adds an entry, thread-safe against a producer goroutine
// (spec.md §4.6 "Entries may be populated progressively by a background
// producer; new entries become immediately visible").
func (d *ListDialog) Append(e Entry) {
	d.mu.Lock()
	d.all = append(d.all, e)
	d.mu.Unlock()
	d.recompute()
	d.MarkDirty()
}

// SetStatus updates the status line shown under the list (e.g. a
// spinner label or scan-count), also thread-safe.
func (d *ListDialog) SetStatus(s string) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
	d.MarkDirty()
}

// recompute reapplies the filter, preserving the previously selected
// entry if it still matches, else clamping (spec.md §4.6 "Maintains
// selection across filter updates").
func (d *ListDialog) recompute() {
	d.mu.Lock()
	defer d.mu.Unlock()

	var prevKey string
	if d.cursor >= 0 && d.cursor < len(d.filtered) {
		prevKey = d.filtered[d.cursor].key()
	}

	query := d.field.Value()
	if query == "" {
		d.filtered = append([]Entry(nil), d.all...)
	} else {
		q := strings.ToLower(query)
		out := make([]Entry, 0, len(d.all))
		for _, e := range d.all {
			if strings.Contains(strings.ToLower(e.corpus()), q) {
				out = append(out, e)
			}
		}
		d.filtered = out
	}

	idx := -1
	for i, e := range d.filtered {
		if e.key() == prevKey {
			idx = i
			break
		}
	}
	switch {
	case idx >= 0:
		d.cursor = idx
	case d.cursor >= len(d.filtered):
		d.cursor = len(d.filtered) - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
	d.ensureVisible()
}

func (d *ListDialog) ensureVisible() {
	if d.viewRows <= 0 {
		return
	}
	if d.cursor < d.scrollOffset {
		d.scrollOffset = d.cursor
	}
	if d.cursor >= d.scrollOffset+d.viewRows {
		d.scrollOffset = d.cursor - d.viewRows + 1
	}
}

func (d *ListDialog) HandleKeyEvent(ev event.KeyEvent) bool {
	switch ev.Code {
	case event.KeyEscape:
		d.Close()
		if d.onCancel != nil {
			d.onCancel()
		}
		return true
	case event.KeyUp:
		d.mu.Lock()
		if d.cursor > 0 {
			d.cursor--
		}
		d.ensureVisible()
		d.mu.Unlock()
		d.MarkDirty()
		return true
	case event.KeyDown:
		d.mu.Lock()
		if d.cursor < len(d.filtered)-1 {
			d.cursor++
		}
		d.ensureVisible()
		d.mu.Unlock()
		d.MarkDirty()
		return true
	case event.KeyEnter:
		d.mu.Lock()
		var chosen Entry
		ok := d.cursor >= 0 && d.cursor < len(d.filtered)
		if ok {
			chosen = d.filtered[d.cursor]
		}
		d.mu.Unlock()
		if ok {
			d.Close()
			if d.onSelect != nil {
				d.onSelect(chosen)
			}
		}
		return true
	}
	d.field.HandleKey(ev)
	d.recompute()
	d.MarkDirty()
	return true
}

func (d *ListDialog) HandleCharEvent(ev event.CharEvent) bool {
	d.field.HandleChar(ev)
	d.recompute()
	d.MarkDirty()
	return true
}

func (d *ListDialog) HandleMouseEvent(ev event.MouseEvent) bool { return false }
func (d *ListDialog) HandleSystemEvent(ev event.SystemEvent) bool {
	d.MarkDirty()
	return false
}

func (d *ListDialog) Draw(g *render.Grid, region uilayer.Region) {
	box := d.box(region)
	drawBox(g, box, d.Title, styles.PairBorderActive)
	in := inner(box)

	d.field.Draw(g, in.Row, in.Col, in.Cols, styles.PairAccent)

	d.mu.Lock()
	d.viewRows = in.Rows - 3
	d.ensureVisible()
	filtered := d.filtered
	cursor := d.cursor
	scroll := d.scrollOffset
	status := d.status
	d.mu.Unlock()

	listTop := in.Row + 2
	for i := 0; i < d.viewRows && scroll+i < len(filtered); i++ {
		e := filtered[scroll+i]
		pair := styles.PairNormal
		attrs := render.AttrNone
		if scroll+i == cursor {
			pair = styles.PairSelected
			attrs = render.AttrBold
		}
		line := e.Label
		if e.Description != "" {
			line += "  " + e.Description
		}
		g.DrawText(listTop+i, in.Col, line, pair, attrs)
	}

	if status != "" {
		g.DrawText(in.Row+in.Rows-1, in.Col, status, styles.PairMuted, render.AttrNone)
	}

	d.ClearDirty()
}
