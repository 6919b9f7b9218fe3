package dialog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mara-voss/dualpane/internal/dialog"
	"github.com/mara-voss/dualpane/internal/event"
)

func TestBatchRenamePreviewAppliesPattern(t *testing.T) {
	var applied map[string]string
	d := dialog.NewBatchRenameDialog([]string{"photo.jpg", "image.jpg"}, func(r map[string]string) { applied = r }, nil)

	// Replace the default "{name}" pattern with "vacation_{n}.{ext}"
	for range "{name}" {
		d.HandleKeyEvent(event.KeyEvent{Code: event.KeyBackspace})
	}
	for _, r := range "vacation_{n}.{ext}" {
		d.HandleCharEvent(event.CharEvent{Char: r})
	}
	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEnter})

	require.Equal(t, "vacation_1.jpg", applied["photo.jpg"])
	require.Equal(t, "vacation_2.jpg", applied["image.jpg"])
}

func TestBatchRenameEscapeCancelsWithoutApplying(t *testing.T) {
	applied := false
	cancelled := false
	d := dialog.NewBatchRenameDialog([]string{"a.txt"}, func(r map[string]string) { applied = true }, func() { cancelled = true })
	d.HandleKeyEvent(event.KeyEvent{Code: event.KeyEscape})
	require.False(t, applied)
	require.True(t, cancelled)
}
