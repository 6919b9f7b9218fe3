package sftp

import "strings"

// quoteArg single-quotes s for safe inclusion in a remote shell command
// line, escaping any embedded single quotes. Every remote command this
// backend builds with a filename runs its arguments through this, per
// spec.md §4.8 "All commands passing filenames must quote paths so that
// filenames containing spaces or special characters are handled
// unambiguously."
func quoteArg(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
