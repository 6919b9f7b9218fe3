package dialog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mara-voss/dualpane/internal/dialog"
	"github.com/mara-voss/dualpane/internal/event"
)

func TestChoiceDialogHotkeySelects(t *testing.T) {
	var got dialog.Choice
	d := dialog.NewChoiceDialog("Conflict", "b.txt already exists", []dialog.Choice{
		{Label: "Overwrite", Hotkey: 'o'},
		{Label: "Skip", Hotkey: 's'},
		{Label: "Rename", Hotkey: 'r'},
		{Label: "Cancel", Hotkey: 'c'},
	}, func(c dialog.Choice) { got = c })

	d.HandleKeyEvent(event.KeyEvent{Char: 'S'})
	require.Equal(t, "Skip", got.Label)
	require.True(t, d.ShouldClose())
}

func TestChoiceDialogArrowAndEnter(t *testing.T) {
	var got dialog.Choice
	d := dialog.NewChoiceDialog("Proceed?", "continue?", []dialog.Choice{
		{Label: "OK"}, {Label: "Cancel"},
	}, func(c dialog.Choice) { got = c })

	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyDown})
	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEnter})
	require.Equal(t, "Cancel", got.Label)
}

func TestChoiceDialogEscapeClosesWithoutChoosing(t *testing.T) {
	called := false
	d := dialog.NewChoiceDialog("Proceed?", "continue?", []dialog.Choice{{Label: "OK"}}, func(c dialog.Choice) { called = true })
	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEscape})
	require.False(t, called)
	require.True(t, d.ShouldClose())
}
