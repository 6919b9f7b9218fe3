package viewer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVisiblePrefixTracksCharacterIndexNotOccurrence is spec.md §8
// scenario 5 verbatim: a line of "0123456789" repeated 8 times (80
// chars), scrolled right 37 columns. The first visible character must
// be the character at index 37 ('7'), not the first occurrence of '7'
// at index 7.
func TestVisiblePrefixTracksCharacterIndexNotOccurrence(t *testing.T) {
	text := strings.Repeat("0123456789", 8)
	l := newLine(text, 8)

	runes, width := l.visiblePrefix(37)
	require.NotEmpty(t, runes)
	require.Equal(t, '7', runes[0])
	require.Equal(t, l.widths-37, width)
}

func TestVisiblePrefixZeroOffsetReturnsWholeLine(t *testing.T) {
	l := newLine("hello", 8)
	runes, width := l.visiblePrefix(0)
	require.Equal(t, "hello", string(runes))
	require.Equal(t, l.widths, width)
}

func TestVisiblePrefixPastEndIsEmpty(t *testing.T) {
	l := newLine("hi", 8)
	runes, width := l.visiblePrefix(100)
	require.Empty(t, runes)
	require.Equal(t, 0, width)
}

func TestTabExpansionRoundsToNextStop(t *testing.T) {
	l := newLine("a\tbc", 4)
	require.Equal(t, 6, l.widths) // 'a' (1) + tab to col 4 (3) + "bc" (2)

	runes, _ := l.visiblePrefix(0)
	require.Equal(t, "a   bc", string(runes))
}
