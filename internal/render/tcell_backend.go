package render

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/mara-voss/dualpane/internal/event"
)

// doubleClickWindow is the max gap between two same-button, same-cell
// clicks that tcell itself does not distinguish from two separate clicks
// (spec.md §4.5 double-click semantics rely on the backend synthesizing
// MouseDoubleClick; tcell only delivers raw down/up/drag).
const doubleClickWindow = 400 * time.Millisecond

// TcellBackend implements render.Renderer over gdamore/tcell/v2, the
// terminal backend named by SPEC_FULL.md's ambient stack (grounded in
// rclone's own go.mod requiring tcell/v2 for its interactive disk-usage
// browser -- the same "cell grid, colors, mouse, keys" shape this
// renderer contract needs, generalized here to the dual-pane core's own
// Renderer interface rather than a one-off tool).
type TcellBackend struct {
	screen tcell.Screen
	pairs  map[ColorPairID]tcell.Style
	cb     Callback

	lastClick struct {
		when   time.Time
		row    int
		col    int
		button event.MouseButton
	}
}

// NewTcellBackend returns an uninitialized backend; call Initialize
// before use.
func NewTcellBackend() *TcellBackend {
	return &TcellBackend{pairs: map[ColorPairID]tcell.Style{DefaultPair: tcell.StyleDefault}}
}

func (b *TcellBackend) Initialize(rows, cols int, title string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
	}
	screen.EnableMouse()
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	b.screen = screen
	return nil
}

func (b *TcellBackend) Shutdown() {
	if b.screen != nil {
		b.screen.Fini()
	}
}

func (b *TcellBackend) Dimensions() Dimensions {
	cols, rows := b.screen.Size()
	return Dimensions{Rows: rows, Cols: cols}
}

func (b *TcellBackend) Clear() { b.screen.Clear() }

func (b *TcellBackend) SetCell(row, col int, ch rune, pair ColorPairID, attrs Attr) {
	b.screen.SetContent(col, row, ch, nil, b.styleFor(pair, attrs))
}

func (b *TcellBackend) DrawText(row, col int, text string, pair ColorPairID, attrs Attr) int {
	style := b.styleFor(pair, attrs)
	c := col
	for _, r := range text {
		w := runeWidth(r)
		b.screen.SetContent(c, row, r, nil, style)
		if w < 1 {
			w = 1
		}
		c += w
	}
	return c - col
}

func (b *TcellBackend) DrawHLine(row, col int, ch rune, length int, pair ColorPairID, attrs Attr) {
	style := b.styleFor(pair, attrs)
	for i := 0; i < length; i++ {
		b.screen.SetContent(col+i, row, ch, nil, style)
	}
}

func (b *TcellBackend) DrawVLine(row, col int, ch rune, length int, pair ColorPairID, attrs Attr) {
	style := b.styleFor(pair, attrs)
	for i := 0; i < length; i++ {
		b.screen.SetContent(col, row+i, ch, nil, style)
	}
}

func (b *TcellBackend) Refresh() { b.screen.Show() }

func (b *TcellBackend) RegisterColorPair(id ColorPairID, fgRGB, bgRGB uint32) {
	fg := tcell.NewRGBColor(int32(fgRGB>>16&0xFF), int32(fgRGB>>8&0xFF), int32(fgRGB&0xFF))
	bg := tcell.NewRGBColor(int32(bgRGB>>16&0xFF), int32(bgRGB>>8&0xFF), int32(bgRGB&0xFF))
	b.pairs[id] = tcell.StyleDefault.Foreground(fg).Background(bg)
}

func (b *TcellBackend) styleFor(pair ColorPairID, attrs Attr) tcell.Style {
	style, ok := b.pairs[pair]
	if !ok {
		style = tcell.StyleDefault
	}
	if attrs&AttrBold != 0 {
		style = style.Bold(true)
	}
	if attrs&AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if attrs&AttrReverse != 0 {
		style = style.Reverse(true)
	}
	return style
}

func (b *TcellBackend) SetCursorPosition(row, col int) { b.screen.ShowCursor(col, row) }
func (b *TcellBackend) SetCursorVisible(visible bool) {
	if visible {
		return
	}
	b.screen.HideCursor()
}
func (b *TcellBackend) SetCaretPosition(col, row int) { b.screen.ShowCursor(col, row) }

func (b *TcellBackend) SetEventCallback(cb Callback) error {
	if cb == nil {
		return ErrInvalidArgument
	}
	b.cb = cb
	return nil
}

// RunEventLoopIteration blocks up to timeoutMs for the next tcell event
// and translates it into exactly one Callback invocation (spec.md §4.2,
// §5 "the main thread suspends only inside
// run_event_loop_iteration(timeout_ms)").
func (b *TcellBackend) RunEventLoopIteration(timeoutMs int) error {
	if b.cb == nil {
		return ErrPreconditionFailed
	}
	ev := b.pollWithTimeout(timeoutMs)
	if ev == nil {
		return nil
	}
	b.dispatch(ev)
	return nil
}

// pollWithTimeout is grounded in tcell's own recommended pattern (a
// goroutine feeding PollEvent into a channel, selected against a timer)
// since tcell.Screen has no native polling deadline.
func (b *TcellBackend) pollWithTimeout(timeoutMs int) tcell.Event {
	type result struct{ ev tcell.Event }
	ch := make(chan result, 1)
	go func() { ch <- result{b.screen.PollEvent()} }()

	if timeoutMs <= 0 {
		r := <-ch
		return r.ev
	}
	select {
	case r := <-ch:
		return r.ev
	case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
		return nil
	}
}

func (b *TcellBackend) dispatch(raw tcell.Event) {
	switch ev := raw.(type) {
	case *tcell.EventKey:
		b.cb(event.Event{Kind: event.KindKey, Key: translateKey(ev)})
	case *tcell.EventMouse:
		b.cb(event.Event{Kind: event.KindMouse, Mouse: b.translateMouse(ev)})
	case *tcell.EventResize:
		cols, rows := ev.Size()
		b.cb(event.Event{Kind: event.KindSystem, System: event.SystemEvent{Kind: event.SystemResize, Rows: rows, Cols: cols}})
	}
}

func translateKey(ev *tcell.EventKey) event.KeyEvent {
	mods := translateMods(ev.Modifiers())
	if ev.Key() == tcell.KeyRune {
		return event.KeyEvent{Char: ev.Rune(), Mods: mods}
	}
	code, ok := keyTable[ev.Key()]
	if !ok {
		return event.KeyEvent{Mods: mods}
	}
	return event.KeyEvent{Code: code, Mods: mods}
}

var keyTable = map[tcell.Key]event.Key{
	tcell.KeyUp:        event.KeyUp,
	tcell.KeyDown:       event.KeyDown,
	tcell.KeyLeft:       event.KeyLeft,
	tcell.KeyRight:      event.KeyRight,
	tcell.KeyHome:       event.KeyHome,
	tcell.KeyEnd:        event.KeyEnd,
	tcell.KeyPgUp:       event.KeyPageUp,
	tcell.KeyPgDn:       event.KeyPageDown,
	tcell.KeyEnter:      event.KeyEnter,
	tcell.KeyEscape:     event.KeyEscape,
	tcell.KeyTab:        event.KeyTab,
	tcell.KeyBacktab:    event.KeyBacktab,
	tcell.KeyBackspace:  event.KeyBackspace,
	tcell.KeyBackspace2: event.KeyBackspace,
	tcell.KeyDelete:     event.KeyDelete,
	tcell.KeyF1:         event.KeyF1,
	tcell.KeyF2:         event.KeyF2,
	tcell.KeyF3:         event.KeyF3,
	tcell.KeyF4:         event.KeyF4,
	tcell.KeyF5:         event.KeyF5,
	tcell.KeyF6:         event.KeyF6,
	tcell.KeyF7:         event.KeyF7,
	tcell.KeyF8:         event.KeyF8,
	tcell.KeyF9:         event.KeyF9,
	tcell.KeyF10:        event.KeyF10,
	tcell.KeyF11:        event.KeyF11,
	tcell.KeyF12:        event.KeyF12,
}

func translateMods(m tcell.ModMask) event.Modifiers {
	var out event.Modifiers
	if m&tcell.ModShift != 0 {
		out |= event.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= event.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= event.ModAlt
	}
	return out
}

// translateMouse converts a raw tcell mouse event, synthesizing
// MouseDoubleClick by tracking the previous down-click's position, button
// and timestamp (spec.md §4.5 relies on this synthesized kind; tcell's
// own event stream only carries press/release/drag/wheel).
func (b *TcellBackend) translateMouse(ev *tcell.EventMouse) event.MouseEvent {
	col, row := ev.Position()
	mods := translateMods(ev.Modifiers())
	btn := ev.Buttons()

	switch {
	case btn&tcell.WheelUp != 0:
		return event.MouseEvent{Row: row, Col: col, Kind: event.MouseWheel, Button: event.ButtonWheelUp, Mods: mods}
	case btn&tcell.WheelDown != 0:
		return event.MouseEvent{Row: row, Col: col, Kind: event.MouseWheel, Button: event.ButtonWheelDown, Mods: mods}
	case btn&tcell.Button1 != 0, btn&tcell.Button2 != 0, btn&tcell.Button3 != 0:
		button := buttonFor(btn)
		kind := event.MouseDown
		if b.isDoubleClick(row, col, button) {
			kind = event.MouseDoubleClick
		}
		return event.MouseEvent{Row: row, Col: col, Kind: kind, Button: button, Mods: mods}
	default:
		return event.MouseEvent{Row: row, Col: col, Kind: event.MouseUp, Mods: mods}
	}
}

func buttonFor(btn tcell.ButtonMask) event.MouseButton {
	switch {
	case btn&tcell.Button1 != 0:
		return event.ButtonLeft
	case btn&tcell.Button2 != 0:
		return event.ButtonMiddle
	case btn&tcell.Button3 != 0:
		return event.ButtonRight
	default:
		return event.ButtonNone
	}
}

func (b *TcellBackend) isDoubleClick(row, col int, button event.MouseButton) bool {
	now := time.Now()
	prev := b.lastClick
	b.lastClick.when, b.lastClick.row, b.lastClick.col, b.lastClick.button = now, row, col, button

	return prev.button == button && prev.row == row && prev.col == col && now.Sub(prev.when) <= doubleClickWindow
}

func (b *TcellBackend) SetClipboardText(text string) bool {
	if clipboard.Unsupported {
		return false
	}
	return clipboard.WriteAll(text) == nil
}

func (b *TcellBackend) GetClipboardText() (string, bool) {
	if clipboard.Unsupported {
		return "", false
	}
	text, err := clipboard.ReadAll()
	return text, err == nil
}

// SetMenuBar, SetMenuValidationCallback, ChangeFontSize are desktop-only
// capabilities (spec.md §4.1 "optional capabilities"); the terminal
// backend has no menu bar or font scaling, so these are always
// BackendUnavailable no-ops.
func (b *TcellBackend) SetMenuBar(items []MenuItem) bool                        { return false }
func (b *TcellBackend) SetMenuValidationCallback(fn func(itemID string) bool) bool { return false }
func (b *TcellBackend) ChangeFontSize(delta int) bool                           { return false }

func runeWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w < 1 {
		return 1
	}
	return w
}
