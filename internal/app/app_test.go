package app_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mara-voss/dualpane/internal/app"
	"github.com/mara-voss/dualpane/internal/config"
	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/mara-voss/dualpane/internal/render"
)

// fakeRenderer implements render.Renderer by replaying a scripted event
// queue into the registered callback, one event per
// RunEventLoopIteration call, so the app's event routing can be tested
// without a real terminal.
type fakeRenderer struct {
	queue []event.Event
	cb    render.Callback
	dims  render.Dimensions
}

var errQueueExhausted = errors.New("fakeRenderer: event queue exhausted")

func (f *fakeRenderer) Initialize(rows, cols int, title string) error {
	f.dims = render.Dimensions{Rows: 24, Cols: 80}
	return nil
}
func (f *fakeRenderer) Shutdown()                  {}
func (f *fakeRenderer) Dimensions() render.Dimensions { return f.dims }
func (f *fakeRenderer) Clear()                     {}
func (f *fakeRenderer) SetCell(row, col int, ch rune, pair render.ColorPairID, attrs render.Attr) {
}
func (f *fakeRenderer) DrawText(row, col int, text string, pair render.ColorPairID, attrs render.Attr) int {
	return len(text)
}
func (f *fakeRenderer) DrawHLine(row, col int, ch rune, length int, pair render.ColorPairID, attrs render.Attr) {
}
func (f *fakeRenderer) DrawVLine(row, col int, ch rune, length int, pair render.ColorPairID, attrs render.Attr) {
}
func (f *fakeRenderer) Refresh()                                       {}
func (f *fakeRenderer) RegisterColorPair(id render.ColorPairID, fg, bg uint32) {}
func (f *fakeRenderer) SetCursorPosition(row, col int)                 {}
func (f *fakeRenderer) SetCursorVisible(visible bool)                  {}
func (f *fakeRenderer) SetCaretPosition(col, row int)                  {}
func (f *fakeRenderer) SetEventCallback(cb render.Callback) error {
	f.cb = cb
	return nil
}
func (f *fakeRenderer) RunEventLoopIteration(timeoutMs int) error {
	if len(f.queue) == 0 {
		return errQueueExhausted
	}
	ev := f.queue[0]
	f.queue = f.queue[1:]
	f.cb(ev)
	return nil
}
func (f *fakeRenderer) SetClipboardText(text string) bool           { return false }
func (f *fakeRenderer) GetClipboardText() (string, bool)            { return "", false }
func (f *fakeRenderer) SetMenuBar(items []render.MenuItem) bool     { return false }
func (f *fakeRenderer) SetMenuValidationCallback(fn func(string) bool) bool { return false }
func (f *fakeRenderer) ChangeFontSize(delta int) bool               { return false }

func newTestApp(t *testing.T, r *fakeRenderer) *app.App {
	t.Helper()
	left := t.TempDir()
	right := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(left, "a.txt"), []byte("x"), 0o644))
	return app.New(config.Template(), r, local.New(left), local.New(right), false)
}

func ctrl(ch rune) event.Event {
	return event.Event{Kind: event.KindKey, Key: event.KeyEvent{Char: ch, Mods: event.ModCtrl}}
}

func char(ch rune) event.Event {
	return event.Event{Kind: event.KindKey, Key: event.KeyEvent{Char: ch}}
}

func code(c event.Key) event.Event {
	return event.Event{Kind: event.KindKey, Key: event.KeyEvent{Code: c}}
}

// TestQuitConfirmationEndsRun exercises spec.md §4.2's global quit
// shortcut: Ctrl+Q pushes a confirmation dialog, and choosing "Yes" ends
// the run loop cleanly.
func TestQuitConfirmationEndsRun(t *testing.T) {
	r := &fakeRenderer{queue: []event.Event{ctrl('q'), char('y')}}
	a := newTestApp(t, r)
	require.NoError(t, a.Run())
}

// TestQuitConfirmationDeclinedKeepsRunning confirms that answering "No"
// does not quit -- the loop then runs out of scripted events and
// surfaces the fake's sentinel error, proving the app did NOT set quit.
func TestQuitConfirmationDeclinedKeepsRunning(t *testing.T) {
	r := &fakeRenderer{queue: []event.Event{ctrl('q'), char('n')}}
	a := newTestApp(t, r)
	err := a.Run()
	require.ErrorIs(t, err, errQueueExhausted)
}

// TestResizeIsForwardedWithoutCrashing exercises the RESIZE handling
// path (spec.md §4.2 "the backend recomputes grid dimensions ... the
// main loop forces a full redraw").
func TestResizeIsForwardedWithoutCrashing(t *testing.T) {
	r := &fakeRenderer{queue: []event.Event{
		{Kind: event.KindSystem, System: event.SystemEvent{Kind: event.SystemResize, Rows: 30, Cols: 100}},
	}}
	a := newTestApp(t, r)
	err := a.Run()
	require.ErrorIs(t, err, errQueueExhausted)
}

// TestCloseWithoutDialogTriggersQuitConfirmation exercises spec.md
// §4.2 "CLOSE ... if not consumed and the top is the main screen, it
// triggers the quit-confirmation path", then confirms quitting.
func TestCloseWithoutDialogTriggersQuitConfirmation(t *testing.T) {
	r := &fakeRenderer{queue: []event.Event{
		{Kind: event.KindSystem, System: event.SystemEvent{Kind: event.SystemClose}},
		char('y'),
	}}
	a := newTestApp(t, r)
	require.NoError(t, a.Run())
}

// TestNavigationKeyReachesMainScreen proves ordinary keys fall through
// global shortcuts and operation shortcuts down to the layer stack.
func TestNavigationKeyReachesMainScreen(t *testing.T) {
	r := &fakeRenderer{queue: []event.Event{code(event.KeyDown)}}
	a := newTestApp(t, r)
	err := a.Run()
	require.ErrorIs(t, err, errQueueExhausted)
}

// TestHelpShortcutPushesDialogThenEscCloses exercises F1 help plus Esc
// dismissing the resulting info dialog.
func TestHelpShortcutPushesDialogThenEscCloses(t *testing.T) {
	r := &fakeRenderer{queue: []event.Event{code(event.KeyF1), code(event.KeyEscape)}}
	a := newTestApp(t, r)
	err := a.Run()
	require.ErrorIs(t, err, errQueueExhausted)
}

// TestDrivesShortcutPushesDialogThenEscCloses exercises Ctrl+G pushing
// the go-to/drives dialog and Esc dismissing it.
func TestDrivesShortcutPushesDialogThenEscCloses(t *testing.T) {
	r := &fakeRenderer{queue: []event.Event{ctrl('g'), code(event.KeyEscape)}}
	a := newTestApp(t, r)
	err := a.Run()
	require.ErrorIs(t, err, errQueueExhausted)
}

// TestExtractShortcutOnNonArchiveShowsInfoDialog exercises Ctrl+E over a
// plain text file: it should surface an info dialog instead of starting
// a task, and Esc should dismiss that dialog cleanly.
func TestExtractShortcutOnNonArchiveShowsInfoDialog(t *testing.T) {
	r := &fakeRenderer{queue: []event.Event{ctrl('e'), code(event.KeyEscape)}}
	a := newTestApp(t, r)
	err := a.Run()
	require.ErrorIs(t, err, errQueueExhausted)
}

// TestCreateArchiveShortcutPromptsForNameThenCancel exercises Ctrl+K
// pushing the archive-name prompt, then cancels it with Esc.
func TestCreateArchiveShortcutPromptsForNameThenCancel(t *testing.T) {
	r := &fakeRenderer{queue: []event.Event{ctrl('k'), code(event.KeyEscape)}}
	a := newTestApp(t, r)
	err := a.Run()
	require.ErrorIs(t, err, errQueueExhausted)
}
