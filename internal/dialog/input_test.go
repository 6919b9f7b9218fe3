package dialog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mara-voss/dualpane/internal/dialog"
	"github.com/mara-voss/dualpane/internal/event"
)

func TestInputDialogConfirmDeliversValue(t *testing.T) {
	var got string
	d := dialog.NewInputDialog("Rename", "New name:", "old.txt", func(v string) { got = v }, nil)

	for _, r := range "new.txt" {
		d.HandleCharEvent(event.CharEvent{Char: r})
	}
	// initial value was "old.txt"; typed chars append after it since
	// textinput starts with cursor at end of the seeded value.
	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEnter})

	require.Contains(t, got, "new.txt")
	require.True(t, d.ShouldClose())
}

func TestInputDialogValidatorBlocksConfirm(t *testing.T) {
	confirmed := false
	d := dialog.NewInputDialog("Rename", "New name:", "", func(v string) { confirmed = true }, nil)
	d.SetValidator(func(v string) string {
		if v == "" {
			return "name cannot be empty"
		}
		return ""
	})

	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEnter})
	require.False(t, confirmed)
	require.False(t, d.ShouldClose())
}

func TestInputDialogEscapeCancels(t *testing.T) {
	cancelled := false
	d := dialog.NewInputDialog("Rename", "New name:", "x", nil, func() { cancelled = true })
	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEscape})
	require.True(t, cancelled)
	require.True(t, d.ShouldClose())
}
