// Package filelist is the file-list engine shared by both panes (spec.md
// §4.5, §3 "Pane state"): listing, sort, filter, selection, cursor
// history, and scroll bookkeeping.
package filelist

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mara-voss/dualpane/internal/pathfs"
)

// SortMode selects the comparison key.
type SortMode int

const (
	SortName SortMode = iota
	SortSize
	SortMTime
	SortExtension
)

// cursorMemo is what NavigateToParent/Child restore (spec.md §3).
type cursorMemo struct {
	cursorIndex    int
	scrollOffset   int
	selectedEntry  string
}

// Pane holds everything exclusively owned by one pane (spec.md §3 "Pane
// state"). It has no knowledge of which side of the screen it renders on.
type Pane struct {
	CurrentPath pathfs.Path
	Entries     []pathfs.Entry

	CursorIndex  int
	ScrollOffset int
	ViewRows     int // visible row count, set by the layout each redraw

	Selection map[string]bool // path.Address() -> selected

	SortMode       SortMode
	SortDescending bool
	DirsFirst      bool
	FilterPattern  string
	ShowHidden     bool

	history map[string]cursorMemo
}

// NewPane creates an empty pane rooted at root; call Refresh to populate it.
func NewPane(root pathfs.Path) *Pane {
	return &Pane{
		CurrentPath: root,
		Selection:   map[string]bool{},
		DirsFirst:   true,
		history:     map[string]cursorMemo{},
	}
}

// Refresh re-lists CurrentPath, applies filter/sort, and restores the
// cursor: exact history match first, else by matching entry name, else
// clamped to 0 (spec.md §4.5 "Refresh").
func (p *Pane) Refresh(ctx context.Context) error {
	previousName := p.currentEntryName()

	raw, err := p.CurrentPath.IterChildren(ctx)
	if err != nil {
		return err
	}
	p.Entries = applyFilterAndSort(raw, p.FilterPattern, p.ShowHidden, p.SortMode, p.SortDescending, p.DirsFirst)

	key := p.CurrentPath.Address()
	if memo, ok := p.history[key]; ok && memo.cursorIndex < len(p.Entries) {
		p.CursorIndex = memo.cursorIndex
		p.ScrollOffset = memo.scrollOffset
	} else if idx := p.indexOfName(previousName); idx >= 0 {
		p.CursorIndex = idx
	} else {
		p.CursorIndex = 0
		p.ScrollOffset = 0
	}
	p.clampCursor()
	return nil
}

func (p *Pane) currentEntryName() string {
	if p.CursorIndex >= 0 && p.CursorIndex < len(p.Entries) {
		return p.Entries[p.CursorIndex].DisplayName
	}
	return ""
}

func (p *Pane) indexOfName(name string) int {
	if name == "" {
		return -1
	}
	for i, e := range p.Entries {
		if e.DisplayName == name {
			return i
		}
	}
	return -1
}

// clampCursor enforces spec.md §3's invariant and §8 property 6.
func (p *Pane) clampCursor() {
	if len(p.Entries) == 0 {
		p.CursorIndex = 0
		p.ScrollOffset = 0
		return
	}
	if p.CursorIndex < 0 {
		p.CursorIndex = 0
	}
	if p.CursorIndex >= len(p.Entries) {
		p.CursorIndex = len(p.Entries) - 1
	}
	p.ensureCursorVisible()
}

func (p *Pane) ensureCursorVisible() {
	if p.ViewRows <= 0 {
		return
	}
	if p.CursorIndex < p.ScrollOffset {
		p.ScrollOffset = p.CursorIndex
	}
	if p.CursorIndex >= p.ScrollOffset+p.ViewRows {
		p.ScrollOffset = p.CursorIndex - p.ViewRows + 1
	}
}

// ClampForViewRows re-applies the cursor/scroll invariant (spec.md §8
// property 6) after a caller mutates CursorIndex or ViewRows directly,
// e.g. the main screen's key handler moving the cursor without a full
// Refresh.
func (p *Pane) ClampForViewRows() {
	p.clampCursor()
}

func (p *Pane) saveHistory() {
	p.history[p.CurrentPath.Address()] = cursorMemo{
		cursorIndex:   p.CursorIndex,
		scrollOffset:  p.ScrollOffset,
		selectedEntry: p.currentEntryName(),
	}
}

// NavigateToChild descends into the entry at index i (spec.md §4.5
// "Navigate to child").
func (p *Pane) NavigateToChild(ctx context.Context, i int) error {
	if i < 0 || i >= len(p.Entries) {
		return nil
	}
	target := p.Entries[i].Path
	p.saveHistory()
	p.CurrentPath = target
	p.Selection = map[string]bool{}
	return p.Refresh(ctx)
}

// NavigateToParent ascends one level, positioning the cursor on the child
// directory just left, or falling back to history, or index 0 (spec.md
// §4.5 "Navigate to parent", §8 scenario 4).
func (p *Pane) NavigateToParent(ctx context.Context) error {
	childName := p.CurrentPath.Name()
	parent, err := p.CurrentPath.Parent()
	if err != nil {
		return err
	}
	p.saveHistory()
	p.CurrentPath = parent
	p.Selection = map[string]bool{}

	raw, err := p.CurrentPath.IterChildren(ctx)
	if err != nil {
		return err
	}
	p.Entries = applyFilterAndSort(raw, p.FilterPattern, p.ShowHidden, p.SortMode, p.SortDescending, p.DirsFirst)

	if idx := p.indexOfName(childName); idx >= 0 {
		p.CursorIndex = idx
	} else if memo, ok := p.history[p.CurrentPath.Address()]; ok && memo.cursorIndex < len(p.Entries) {
		p.CursorIndex = memo.cursorIndex
		p.ScrollOffset = memo.scrollOffset
	} else {
		p.CursorIndex = 0
	}
	p.clampCursor()
	return nil
}

// SetSort changes the sort key/direction and re-sorts in place without
// re-listing (spec.md §4.5 "Sort/filter/show-hidden toggles").
func (p *Pane) SetSort(mode SortMode, descending bool) {
	p.SortMode = mode
	p.SortDescending = descending
	p.resort()
}

// SetFilter changes the glob filter pattern and recomputes entries.
func (p *Pane) SetFilter(ctx context.Context, pattern string) error {
	p.FilterPattern = pattern
	return p.Refresh(ctx)
}

// ToggleShowHidden flips hidden-file visibility and recomputes entries.
func (p *Pane) ToggleShowHidden(ctx context.Context) error {
	p.ShowHidden = !p.ShowHidden
	return p.Refresh(ctx)
}

func (p *Pane) resort() {
	sortEntries(p.Entries, p.SortMode, p.SortDescending, p.DirsFirst)
	p.clampCursor()
}

// ToggleSelection toggles the entry at index i in the selection set
// (spec.md §4.5 "Selection").
func (p *Pane) ToggleSelection(i int) {
	if i < 0 || i >= len(p.Entries) {
		return
	}
	key := p.Entries[i].Path.Address()
	if p.Selection[key] {
		delete(p.Selection, key)
	} else {
		p.Selection[key] = true
	}
}

// SelectAll marks every entry selected.
func (p *Pane) SelectAll() {
	for _, e := range p.Entries {
		p.Selection[e.Path.Address()] = true
	}
}

// DeselectAll clears the selection.
func (p *Pane) DeselectAll() { p.Selection = map[string]bool{} }

// InvertSelection flips every entry's selected state.
func (p *Pane) InvertSelection() {
	next := map[string]bool{}
	for _, e := range p.Entries {
		key := e.Path.Address()
		if !p.Selection[key] {
			next[key] = true
		}
	}
	p.Selection = next
}

// SelectedPaths returns the selected entries, or the entry under the
// cursor if the selection is empty — the conventional "act on cursor when
// nothing is marked" fallback used by the copy/move/delete tasks.
func (p *Pane) SelectedPaths() []pathfs.Path {
	if len(p.Selection) == 0 {
		if p.CursorIndex >= 0 && p.CursorIndex < len(p.Entries) {
			return []pathfs.Path{p.Entries[p.CursorIndex].Path}
		}
		return nil
	}
	var out []pathfs.Path
	for _, e := range p.Entries {
		if p.Selection[e.Path.Address()] {
			out = append(out, e.Path)
		}
	}
	return out
}

func matchesGlob(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(name))
	return err == nil && ok
}
