package dialog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mara-voss/dualpane/internal/dialog"
	"github.com/mara-voss/dualpane/internal/event"
)

func typeChars(d *dialog.ListDialog, s string) {
	for _, r := range s {
		d.HandleCharEvent(event.CharEvent{Char: r})
	}
}

func TestListDialogFilterMaintainsSelection(t *testing.T) {
	var selected dialog.Entry
	d := dialog.NewListDialog("Pick", "filter", func(e dialog.Entry) { selected = e }, nil)
	d.Append(dialog.Entry{Label: "apple"})
	d.Append(dialog.Entry{Label: "banana"})
	d.Append(dialog.Entry{Label: "apricot"})

	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyDown}) // cursor -> banana
	typeChars(d, "ap")                                    // filters to apple/apricot; banana gone

	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEnter})
	require.NotEqual(t, "banana", selected.Label)
}

func TestListDialogEnterSelectsEntry(t *testing.T) {
	var selected dialog.Entry
	closed := false
	d := dialog.NewListDialog("Pick", "filter", func(e dialog.Entry) { selected = e }, func() { closed = true })
	d.Append(dialog.Entry{Label: "one"})
	d.Append(dialog.Entry{Label: "two"})

	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyDown})
	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEnter})

	require.Equal(t, "two", selected.Label)
	require.False(t, closed)
	require.True(t, d.ShouldClose())
}

func TestListDialogEscapeCancels(t *testing.T) {
	cancelled := false
	d := dialog.NewListDialog("Pick", "filter", nil, func() { cancelled = true })
	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEscape})
	require.True(t, cancelled)
	require.True(t, d.ShouldClose())
}
