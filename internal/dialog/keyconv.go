// Package dialog implements the modal UI layers pushed above the main
// screen (spec.md §4.6): list/jump/drives/search dialogs, input, choice,
// info, and batch rename. Every dialog satisfies uilayer.Layer and
// shares the centered-box rendering and text-field editing primitive
// defined in this package's base.go/textfield.go.
package dialog

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mara-voss/dualpane/internal/event"
)

// toTeaKey converts a renderer-delivered key event into the tea.KeyMsg
// shape bubbles/textinput expects, letting its Model be driven directly
// outside the Bubble Tea runtime (SPEC_FULL.md ambient stack, "Model is
// driven directly ... the cursor/insert/backspace/delete contract the
// spec asks for").
func toTeaKey(ev event.KeyEvent) tea.KeyMsg {
	if t, ok := namedKeyType(ev.Code); ok {
		return tea.KeyMsg{Type: t, Alt: ev.Mods&event.ModAlt != 0}
	}
	if ev.Char != 0 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{ev.Char}, Alt: ev.Mods&event.ModAlt != 0}
	}
	return tea.KeyMsg{Type: tea.KeyRunes}
}

func namedKeyType(code event.Key) (tea.KeyType, bool) {
	switch code {
	case event.KeyUp:
		return tea.KeyUp, true
	case event.KeyDown:
		return tea.KeyDown, true
	case event.KeyLeft:
		return tea.KeyLeft, true
	case event.KeyRight:
		return tea.KeyRight, true
	case event.KeyHome:
		return tea.KeyHome, true
	case event.KeyEnd:
		return tea.KeyEnd, true
	case event.KeyBackspace:
		return tea.KeyBackspace, true
	case event.KeyDelete:
		return tea.KeyDelete, true
	case event.KeyTab:
		return tea.KeyTab, true
	case event.KeyBacktab:
		return tea.KeyShiftTab, true
	case event.KeyEnter:
		return tea.KeyEnter, true
	case event.KeyEscape:
		return tea.KeyEsc, true
	default:
		return 0, false
	}
}

// toCharKey converts a committed IME character into a tea.KeyMsg insert.
func toCharKey(ev event.CharEvent) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{ev.Char}}
}
