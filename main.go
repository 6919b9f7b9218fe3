package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mara-voss/dualpane/internal/app"
	"github.com/mara-voss/dualpane/internal/config"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/mara-voss/dualpane/internal/render"
)

func main() {
	// Respect NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	desktop := flag.Bool("desktop", false, "request the windowed backend (absence selects the terminal backend)")
	flag.Bool("debug", false, "accepted but ignored: logging is the same with or without it")
	flag.Parse()

	leftRoot, rightRoot := ".", "."
	switch flag.NArg() {
	case 1:
		leftRoot = flag.Arg(0)
	case 2:
		leftRoot = flag.Arg(0)
		rightRoot = flag.Arg(1)
	}

	cfg := config.Load()

	// The desktop backend is out of this build's scope (SPEC_FULL.md
	// Non-goals); --desktop's only effect here is that there is no
	// windowed backend to hand off to.
	if *desktop {
		fmt.Fprintln(os.Stderr, "desktop backend not available in this build; falling back to terminal")
	}
	renderer := render.NewTcellBackend()

	a := app.New(cfg, renderer, local.New(leftRoot), local.New(rightRoot), *desktop)
	if err := a.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
