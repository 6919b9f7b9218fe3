// Package terminal probes the host terminal for rendering capabilities
// (spec.md §4.1 "renderer ... negotiates capabilities once at startup").
// Nothing in the application calls Detect; styles.Register installs its
// RGB color pairs without consulting it. The
// Kitty-graphics branch present in the teacher (image preview) is
// dropped: this tool never displays images (SPEC_FULL.md ambient
// stack, "terminal capability probing").
package terminal

import (
	"os"
	"strings"
)

// Capabilities holds detected terminal capabilities.
type Capabilities struct {
	TrueColor bool
}

// Detect probes the terminal environment to determine capabilities.
func Detect() Capabilities {
	return Capabilities{TrueColor: detectTrueColor()}
}

// detectTrueColor checks if terminal supports 24-bit color.
func detectTrueColor() bool {
	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		return true
	}

	term := os.Getenv("TERM")
	if strings.Contains(term, "256color") || strings.Contains(term, "truecolor") {
		return true
	}

	return false
}
