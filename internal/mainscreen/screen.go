// Package mainscreen is the permanent bottom layer of the UI stack
// (spec.md §4.3, §4.5): the dual-pane file browser, its log pane, and its
// status row. Unlike the teacher's single-pane Model (internal/app.Model,
// a tea.Model driving one file tree plus a preview pane), this layer owns
// two independent filelist.Pane values side by side, the way spec.md
// §4.5 describes "per pane it owns a pane state".
package mainscreen

import (
	"context"
	"fmt"
	"strings"

	"github.com/mara-voss/dualpane/internal/config"
	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/filelist"
	"github.com/mara-voss/dualpane/internal/logbuf"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/progress"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/ui/styles"
	"github.com/mara-voss/dualpane/internal/uilayer"
)

// Side identifies which of the two panes is meant.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) other() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// dateColumnWidth returns the datetime column's width for fmt, matching
// the fixed widths spec.md §4.5 names: "YY-MM-DD HH:MM" (14) or
// "YYYY-MM-DD HH:MM:SS" (19).
func dateColumnWidth(fmtMode config.DateFormat) int {
	if fmtMode == config.DateFormatFull {
		return 19
	}
	return 14
}

// Screen is the main screen layer (spec.md §4.5): header row, two pane
// bodies, a log pane, a status row.
type Screen struct {
	uilayer.Base

	Left, Right *filelist.Pane
	Active      Side

	Log  *logbuf.Buffer
	Prog *progress.Manager

	SplitRatio      float64
	LogPaneFraction float64
	DateFormat      config.DateFormat

	status string

	// OnOpenFile is invoked when the enter action lands on a regular
	// file (not a directory) -- wired by internal/app to the file-type
	// handler dispatch / text viewer push (spec.md §4.6, §6 "file-type
	// handlers").
	OnOpenFile func(p pathfs.Path, side Side)

	// header/body/log row bookkeeping from the most recent Draw, needed
	// to translate mouse coordinates back into pane-relative rows
	// (spec.md §4.5 "Header double-click ... Row double-click").
	headerRow             int
	bodyRow, bodyRows     int
	leftCol, leftCols     int
	rightCol, rightCols   int
}

// NewScreen builds a screen over the two roots, applying cfg's layout and
// listing defaults.
func NewScreen(ctx context.Context, leftRoot, rightRoot pathfs.Path, cfg config.Config, log *logbuf.Buffer, prog *progress.Manager) *Screen {
	left := filelist.NewPane(leftRoot)
	right := filelist.NewPane(rightRoot)
	applyDefaults(left, cfg)
	applyDefaults(right, cfg)
	_ = left.Refresh(ctx)
	_ = right.Refresh(ctx)

	s := &Screen{
		Left: left, Right: right,
		Log: log, Prog: prog,
		SplitRatio:      cfg.SplitRatio,
		LogPaneFraction: cfg.LogPaneFraction,
		DateFormat:      cfg.DateFormat,
	}
	if log != nil {
		log.AddHandler(logbuf.NewPaneHandler(func(logbuf.Record) { s.MarkDirty() }))
	}
	s.MarkDirty()
	return s
}

func applyDefaults(p *filelist.Pane, cfg config.Config) {
	switch cfg.DefaultSortField {
	case config.SortBySize:
		p.SortMode = filelist.SortSize
	case config.SortByMTime:
		p.SortMode = filelist.SortMTime
	case config.SortByExtension:
		p.SortMode = filelist.SortExtension
	default:
		p.SortMode = filelist.SortName
	}
	p.SortDescending = cfg.DefaultSortDesc
	p.FilterPattern = cfg.DefaultFilter
	p.ShowHidden = cfg.ShowHiddenFiles
}

func (s *Screen) IsFullScreen() bool { return true }

// pane returns the Pane for side.
func (s *Screen) pane(side Side) *filelist.Pane {
	if side == SideLeft {
		return s.Left
	}
	return s.Right
}

// active returns the currently-focused pane.
func (s *Screen) active() *filelist.Pane { return s.pane(s.Active) }

func (s *Screen) setStatus(msg string) {
	s.status = msg
	s.MarkDirty()
}

// enterCurrent implements the shared "enter action" for both Enter/l and
// a double-clicked row: descend into a directory, or hand a file off to
// OnOpenFile (spec.md §4.6 "open file diff (invokes an external
// handler)" generalized to any file-type handler dispatch, §4.5 "invoke
// enter action").
func (s *Screen) enterCurrent(ctx context.Context) {
	p := s.active()
	if p.CursorIndex < 0 || p.CursorIndex >= len(p.Entries) {
		return
	}
	entry := p.Entries[p.CursorIndex]
	if entry.Path.IsDir(ctx) {
		if err := p.NavigateToChild(ctx, p.CursorIndex); err != nil {
			s.setStatus(fmt.Sprintf("cannot open %s: %v", entry.DisplayName, err))
			return
		}
		s.MarkDirty()
		return
	}
	if s.OnOpenFile != nil {
		s.OnOpenFile(entry.Path, s.Active)
	}
}

func (s *Screen) navigateParent(ctx context.Context, side Side) {
	p := s.pane(side)
	if err := p.NavigateToParent(ctx); err != nil {
		s.setStatus(fmt.Sprintf("cannot go up: %v", err))
		return
	}
	s.MarkDirty()
}

// HandleKeyEvent implements navigation, sort/filter toggles, and
// selection over the active pane. Keys mirror the teacher's tree
// bindings (j/k or arrows to move, l/enter to descend, h to ascend, tab
// to switch panes) generalized to two independently-navigable panes.
func (s *Screen) HandleKeyEvent(ev event.KeyEvent) bool {
	ctx := context.Background()
	p := s.active()

	switch ev.Code {
	case event.KeyTab:
		s.Active = s.Active.other()
	case event.KeyUp:
		p.CursorIndex--
	case event.KeyDown:
		p.CursorIndex++
	case event.KeyPageUp:
		p.CursorIndex -= p.ViewRows
	case event.KeyPageDown:
		p.CursorIndex += p.ViewRows
	case event.KeyHome:
		p.CursorIndex = 0
	case event.KeyEnd:
		p.CursorIndex = len(p.Entries) - 1
	case event.KeyEnter:
		s.enterCurrent(ctx)
	case event.KeyBackspace:
		s.navigateParent(ctx, s.Active)
	default:
		switch ev.Char {
		case 'j':
			p.CursorIndex++
		case 'k':
			p.CursorIndex--
		case 'l':
			s.enterCurrent(ctx)
		case 'h':
			s.navigateParent(ctx, s.Active)
		case ' ':
			p.ToggleSelection(p.CursorIndex)
		case 'a':
			p.SelectAll()
		case 'A':
			p.DeselectAll()
		case 'i':
			p.InvertSelection()
		case 'n':
			p.SetSort(filelist.SortName, p.SortMode == filelist.SortName && !p.SortDescending)
		case 's':
			p.SetSort(filelist.SortSize, p.SortMode == filelist.SortSize && !p.SortDescending)
		case 'm':
			p.SetSort(filelist.SortMTime, p.SortMode == filelist.SortMTime && !p.SortDescending)
		case 'x':
			p.SetSort(filelist.SortExtension, p.SortMode == filelist.SortExtension && !p.SortDescending)
		case '.':
			p.ToggleShowHidden(ctx)
		default:
			return false
		}
	}
	p.CursorIndex = clampIndex(p.CursorIndex, len(p.Entries))
	p.ClampForViewRows()
	s.MarkDirty()
	return true
}

func clampIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (s *Screen) HandleCharEvent(ev event.CharEvent) bool { return false }

// HandleMouseEvent implements header/row double-click (spec.md §4.5
// "Header double-click: navigate to parent of the clicked pane,
// switching active pane if needed. Row double-click: switch active pane
// if needed, position cursor on clicked row, invoke enter action.").
func (s *Screen) HandleMouseEvent(ev event.MouseEvent) bool {
	if ev.Kind != event.MouseDoubleClick {
		return false
	}
	side, ok := s.sideAt(ev.Col)
	if !ok {
		return false
	}
	ctx := context.Background()

	if ev.Row == s.headerRow {
		s.Active = side
		s.navigateParent(ctx, side)
		return true
	}

	if ev.Row >= s.bodyRow && ev.Row < s.bodyRow+s.bodyRows {
		s.Active = side
		p := s.pane(side)
		idx := p.ScrollOffset + (ev.Row - s.bodyRow)
		if idx < 0 || idx >= len(p.Entries) {
			return true
		}
		p.CursorIndex = idx
		s.enterCurrent(ctx)
		s.MarkDirty()
		return true
	}
	return false
}

// sideAt maps a grid column from the most recent Draw back to which pane
// it falls within.
func (s *Screen) sideAt(col int) (Side, bool) {
	if col >= s.leftCol && col < s.leftCol+s.leftCols {
		return SideLeft, true
	}
	if col >= s.rightCol && col < s.rightCol+s.rightCols {
		return SideRight, true
	}
	return SideLeft, false
}

func (s *Screen) HandleSystemEvent(ev event.SystemEvent) bool {
	s.MarkDirty()
	return false
}

// Draw lays out header / two pane bodies / log pane / status row
// top-to-bottom (spec.md §4.5) and renders each.
func (s *Screen) Draw(g *render.Grid, region uilayer.Region) {
	logRows := int(float64(region.Rows-2) * s.LogPaneFraction)
	if logRows < 0 {
		logRows = 0
	}
	bodyRows := region.Rows - 2 - logRows
	if bodyRows < 0 {
		bodyRows = 0
	}

	s.headerRow = region.Row
	s.bodyRow = region.Row + 1
	s.bodyRows = bodyRows

	leftCols := int(float64(region.Cols) * s.SplitRatio)
	if leftCols < 1 {
		leftCols = region.Cols / 2
	}
	rightCols := region.Cols - leftCols

	s.leftCol, s.leftCols = region.Col, leftCols
	s.rightCol, s.rightCols = region.Col+leftCols, rightCols

	s.Left.ViewRows = bodyRows
	s.Right.ViewRows = bodyRows
	s.Left.ClampForViewRows()
	s.Right.ClampForViewRows()

	s.drawHeader(g, region.Row, region.Col, leftCols, SideLeft)
	s.drawHeader(g, region.Row, region.Col+leftCols, rightCols, SideRight)

	s.drawPaneBody(g, s.bodyRow, region.Col, leftCols, bodyRows, s.Left)
	s.drawPaneBody(g, s.bodyRow, region.Col+leftCols, rightCols, bodyRows, s.Right)

	logRow := s.bodyRow + bodyRows
	s.drawLog(g, logRow, region.Col, region.Cols, logRows)

	s.drawStatus(g, region.Row+region.Rows-1, region.Col, region.Cols)

	s.ClearDirty()
}

func (s *Screen) drawHeader(g *render.Grid, row, col, cols int, side Side) {
	p := s.pane(side)
	pair := styles.PairBorderInactive
	if side == s.Active {
		pair = styles.PairBorderActive
	}
	label := p.CurrentPath.Address()
	if render.DisplayWidth(label) > cols {
		label = truncateDisplay(label, cols)
	}
	g.DrawText(row, col, label, pair, render.AttrBold)
	for c := render.DisplayWidth(label); c < cols; c++ {
		g.SetCell(row, col+c, ' ', pair, render.AttrNone)
	}
}

// drawPaneBody renders the visible entry rows, including the datetime
// column only when cols >= 34 + date_column_width (spec.md §4.5, §8
// boundary behavior); recomputed on every call since it depends on the
// current pane width.
func (s *Screen) drawPaneBody(g *render.Grid, row, col, cols, rows int, p *filelist.Pane) {
	dateWidth := dateColumnWidth(s.DateFormat)
	showDate := cols >= 34+dateWidth

	for r := 0; r < rows; r++ {
		i := p.ScrollOffset + r
		if i >= len(p.Entries) {
			break
		}
		entry := p.Entries[i]
		selected := p.Selection[entry.Path.Address()]
		pair := styles.PairNormal
		if selected {
			pair = styles.PairAccent
		}
		if i == p.CursorIndex {
			pair = styles.PairSelected
		}

		line := formatRow(entry, cols, dateWidth, showDate, s.DateFormat, selected)
		g.DrawText(row+r, col, line, pair, render.AttrNone)
	}
	for r := len(p.Entries) - p.ScrollOffset; r < rows; r++ {
		if r < 0 {
			continue
		}
		g.DrawHLine(row+r, col, ' ', cols, styles.PairNormal, render.AttrNone)
	}
}

// formatRow lays out marker + name + size/<DIR> + optional date, padded
// to cols so a selection highlight paints the full row width.
func formatRow(e pathfs.Entry, cols, dateWidth int, showDate bool, fmtMode config.DateFormat, selected bool) string {
	marker := ' '
	if selected {
		marker = '*'
	}
	trailing := 1 + 10 // space + size column
	if showDate {
		trailing += 1 + dateWidth
	}
	nameWidth := cols - 1 - trailing
	if nameWidth < 1 {
		nameWidth = cols - 2
		trailing = 0
		showDate = false
	}

	name := e.DisplayName
	if render.DisplayWidth(name) > nameWidth {
		name = truncateDisplay(name, nameWidth)
	}
	pad := nameWidth - render.DisplayWidth(name)
	if pad < 0 {
		pad = 0
	}

	var b strings.Builder
	b.WriteRune(marker)
	b.WriteString(name)
	b.WriteString(strings.Repeat(" ", pad))

	if trailing > 0 {
		b.WriteRune(' ')
		b.WriteString(formatSize(e))
		if showDate {
			b.WriteRune(' ')
			b.WriteString(formatDate(e.Info, fmtMode))
		}
	}
	return b.String()
}

func formatSize(e pathfs.Entry) string {
	if e.Info.Kind == pathfs.KindDir {
		return fmt.Sprintf("%10s", "<DIR>")
	}
	return fmt.Sprintf("%10d", e.Info.Size)
}

func formatDate(info pathfs.Info, fmtMode config.DateFormat) string {
	if fmtMode == config.DateFormatFull {
		return info.MTime.Format("2006-01-02 15:04:05")
	}
	return info.MTime.Format("06-01-02 15:04")
}

// truncateDisplay trims s to at most w display columns, wide-rune aware.
func truncateDisplay(s string, w int) string {
	var b strings.Builder
	width := 0
	for _, r := range s {
		rw := render.DisplayWidth(string(r))
		if width+rw > w {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String()
}

func (s *Screen) drawLog(g *render.Grid, row, col, cols, rows int) {
	if rows <= 0 || s.Log == nil {
		return
	}
	records := s.Log.Records()
	start := len(records) - rows
	if start < 0 {
		start = 0
	}
	visible := records[start:]
	for r := 0; r < rows; r++ {
		if r >= len(visible) {
			g.DrawHLine(row+r, col, ' ', cols, styles.PairMuted, render.AttrNone)
			continue
		}
		rec := visible[r]
		pair := logLevelPair(rec.Level)
		line := fmt.Sprintf("%s [%s] %s: %s", rec.Timestamp.Format("15:04:05"), rec.Source, rec.Level, rec.Message)
		if render.DisplayWidth(line) > cols {
			line = truncateDisplay(line, cols)
		}
		g.DrawText(row+r, col, line, pair, render.AttrNone)
		for c := render.DisplayWidth(line); c < cols; c++ {
			g.SetCell(row+r, col+c, ' ', pair, render.AttrNone)
		}
	}
}

func logLevelPair(l logbuf.Level) render.ColorPairID {
	switch l {
	case logbuf.LevelWarning:
		return styles.PairWarning
	case logbuf.LevelError, logbuf.LevelCritical:
		return styles.PairError
	default:
		return styles.PairMuted
	}
}

func (s *Screen) drawStatus(g *render.Grid, row, col, cols int) {
	msg := s.status
	if s.Prog != nil {
		if snap := s.Prog.Snapshot(); snap.Kind != progress.KindNone {
			msg = fmt.Sprintf("%s %d/%d  %s", spinnerFrame(snap.SpinnerFrame), snap.ProcessedItems, snap.TotalItems, snap.CurrentItemLabel)
		}
	}
	if render.DisplayWidth(msg) > cols {
		msg = truncateDisplay(msg, cols)
	}
	g.DrawText(row, col, msg, styles.PairMuted, render.AttrNone)
	for c := render.DisplayWidth(msg); c < cols; c++ {
		g.SetCell(row, col+c, ' ', styles.PairMuted, render.AttrNone)
	}
}

var spinnerFrames = []rune("|/-\\")

func spinnerFrame(n int) string {
	if len(spinnerFrames) == 0 {
		return ""
	}
	return string(spinnerFrames[n%len(spinnerFrames)])
}
