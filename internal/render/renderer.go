package render

import (
	"errors"

	"github.com/mara-voss/dualpane/internal/event"
)

// Sentinel errors matching the design-level taxonomy in spec.md §7. These
// are design-level categories, not a type per error — callers use errors.Is.
var (
	ErrInvalidArgument     = errors.New("render: invalid argument")
	ErrPreconditionFailed  = errors.New("render: precondition failed")
	ErrBackendUnavailable  = errors.New("render: backend capability unavailable")
)

// Dimensions is the current grid size.
type Dimensions struct {
	Rows, Cols int
}

// Callback receives backend-originated events. It is the sole entry point
// into core logic (spec.md §4.2).
type Callback func(event.Event)

// Renderer is the minimum surface a rendering backend must provide
// (spec.md §4.1). A desktop backend (out of scope) can satisfy the same
// interface without the core knowing the difference.
type Renderer interface {
	Initialize(rows, cols int, title string) error
	Shutdown()
	Dimensions() Dimensions

	Clear()
	SetCell(row, col int, ch rune, pair ColorPairID, attrs Attr)
	DrawText(row, col int, text string, pair ColorPairID, attrs Attr) int
	DrawHLine(row, col int, ch rune, length int, pair ColorPairID, attrs Attr)
	DrawVLine(row, col int, ch rune, length int, pair ColorPairID, attrs Attr)
	Refresh()

	RegisterColorPair(id ColorPairID, fgRGB, bgRGB uint32)

	SetCursorPosition(row, col int)
	SetCursorVisible(visible bool)
	SetCaretPosition(col, row int)

	SetEventCallback(cb Callback) error
	RunEventLoopIteration(timeoutMs int) error

	// Optional capabilities. ok is false when the backend does not support
	// the capability; this is BackendUnavailable treated as a non-fatal
	// no-op (spec.md §7), never a hard error.
	SetClipboardText(text string) (ok bool)
	GetClipboardText() (text string, ok bool)
	SetMenuBar(items []MenuItem) (ok bool)
	SetMenuValidationCallback(fn func(itemID string) bool) (ok bool)
	ChangeFontSize(delta int) (ok bool)
}

// MenuItem is a single entry in an optional menu-bar capability.
type MenuItem struct {
	ID       string
	Label    string
	Children []MenuItem
}
