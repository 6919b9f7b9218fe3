// Package clipboard backs the renderer's optional set_clipboard_text /
// get_clipboard_text capability (spec.md §4.1): copying a selected
// path or a text-viewer selection to the system clipboard, with a
// non-fatal ErrUnavailable when no clipboard utility is present
// (spec.md §9 "BackendUnavailable ... treated as non-fatal").
package clipboard

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"
)

// ErrUnavailable indicates no clipboard utility was found.
var ErrUnavailable = errors.New("clipboard unavailable - install xclip, xsel, or wl-clipboard")

// IsAvailable returns true if clipboard operations are supported.
func IsAvailable() bool {
	return !clipboard.Unsupported
}

// CopyPath copies a path's string form to the clipboard, the action
// behind the file list's "copy path" key binding.
func CopyPath(path string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(path)
}

// CopyRaw copies raw text to clipboard without any formatting.
func CopyRaw(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

// CopyLines copies a text-viewer selection, stripping ANSI codes and
// any line-number gutter the viewer prepended. start and end are
// inclusive line indices into lines.
func CopyLines(lines []string, start, end int, stripLineNumbers func(string) string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}

	if len(lines) == 0 || start < 0 || end < 0 {
		return nil // Nothing to copy, not an error
	}

	if start > end {
		start, end = end, start
	}

	// Clamp to valid range
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}

	// Extract selected lines, stripping ANSI codes and line numbers
	var cleanLines []string
	for i := start; i <= end; i++ {
		line := lines[i]
		// Strip ANSI codes first
		clean := ansi.Strip(line)
		// Strip line number prefix if function provided
		if stripLineNumbers != nil {
			clean = stripLineNumbers(clean)
		}
		cleanLines = append(cleanLines, clean)
	}

	return clipboard.WriteAll(strings.Join(cleanLines, "\n"))
}
