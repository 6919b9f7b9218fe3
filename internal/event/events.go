// Package event defines the event variants delivered from a renderer
// backend to the core (spec.md §4.2). Dispatch to the top UI layer is
// done by uilayer.Stack.HandleEvent, not by this package.
package event

// Key is a backend-independent key code. Printable ASCII keys use their
// own rune value; named keys use the constants below.
type Key rune

const (
	KeyNone Key = 0
	KeyUp   Key = iota + 0xE000
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyEnter
	KeyEscape
	KeyTab
	KeyBacktab
	KeyBackspace
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifiers is a bitmask of modifier keys held during the event.
type Modifiers uint8

const (
	ModNone  Modifiers = 0
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// MouseKind distinguishes the mouse action that occurred.
type MouseKind int

const (
	MouseDown MouseKind = iota
	MouseUp
	MouseMove
	MouseWheel
	MouseDrag
	MouseDoubleClick
)

// MouseButton identifies which button, for DOWN/UP/DRAG/DOUBLE_CLICK.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	ButtonWheelUp
	ButtonWheelDown
)

// SystemKind distinguishes RESIZE from CLOSE.
type SystemKind int

const (
	SystemResize SystemKind = iota
	SystemClose
)

// KeyEvent is a raw keystroke, possibly with a literal character attached
// when the key also produces printable text.
type KeyEvent struct {
	Code Key
	Mods Modifiers
	Char rune // 0 if the key has no associated character
}

// CharEvent carries IME-composed text, delivered only once composition is
// committed (spec.md §4.2, §8 scenario 6).
type CharEvent struct {
	Char rune
}

// MouseEvent carries grid coordinates.
type MouseEvent struct {
	Row, Col int
	Kind     MouseKind
	Button   MouseButton
	Mods     Modifiers
}

// MenuEvent fires when a menu-bar item (optional renderer capability) is
// activated.
type MenuEvent struct {
	ItemID string
}

// SystemEvent carries backend lifecycle notifications.
type SystemEvent struct {
	Kind SystemKind
	Rows int // valid for RESIZE
	Cols int // valid for RESIZE
}

// Event is the sum type of all deliverable events. Exactly one of the
// pointer-ish fields is meaningful; Kind selects which.
type Event struct {
	Kind EventKind
	Key  KeyEvent
	Char CharEvent
	Mouse  MouseEvent
	Menu   MenuEvent
	System SystemEvent
}

// EventKind tags which variant an Event carries.
type EventKind int

const (
	KindKey EventKind = iota
	KindChar
	KindMouse
	KindMenu
	KindSystem
)
