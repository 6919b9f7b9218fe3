package styles

import "github.com/mara-voss/dualpane/internal/render"

// Pair IDs registered once at startup (spec.md §4.1 "colors resolve to
// (fg_rgb, bg_rgb) pairs registered with the renderer"). Dialogs and the
// main screen reference these constants rather than raw RGB, the way
// the teacher's components reference lipgloss style variables instead
// of literal color codes.
const (
	PairDefault render.ColorPairID = iota
	PairNormal
	PairMuted
	PairAccent
	PairSelected
	PairBorderActive
	PairBorderInactive
	PairSuccess
	PairWarning
	PairError
	PairDiffIdentical
	PairDiffDifferent
	PairDiffLeftOnly
	PairDiffRightOnly
	PairDiffError
	PairDiffPending
)

type pairSpec struct {
	id     render.ColorPairID
	fg, bg uint32
}

// Register installs every named pair against r, called once during
// startup (internal/app) before any layer draws.
func Register(r render.Renderer) {
	const bg uint32 = 0x1c1c1c
	specs := []pairSpec{
		{PairNormal, 0xd0d0d0, bg},
		{PairMuted, 0xa8a8a8, bg},
		{PairAccent, 0xff5fd7, bg},
		{PairSelected, 0x000000, 0xff5fd7},
		{PairBorderActive, 0xff5fd7, bg},
		{PairBorderInactive, 0x585858, bg},
		{PairSuccess, 0x5fff87, bg},
		{PairWarning, 0xffaf00, bg},
		{PairError, 0xff0000, bg},
		{PairDiffIdentical, 0x808080, bg},
		{PairDiffDifferent, 0xffff00, bg},
		{PairDiffLeftOnly, 0x5fff87, bg},
		{PairDiffRightOnly, 0x5fafff, bg},
		{PairDiffError, 0xff0000, bg},
		{PairDiffPending, 0x585858, bg},
	}
	for _, s := range specs {
		r.RegisterColorPair(s.id, s.fg, s.bg)
	}
}

// DiffPairFor maps a diff.Status.String() label to its registered pair,
// for code paths that draw diff status through the render.Grid.
func DiffPairFor(statusLabel string) render.ColorPairID {
	switch statusLabel {
	case "IDENTICAL":
		return PairDiffIdentical
	case "DIFFERENT":
		return PairDiffDifferent
	case "LEFT_ONLY":
		return PairDiffLeftOnly
	case "RIGHT_ONLY":
		return PairDiffRightOnly
	case "ERROR":
		return PairDiffError
	default:
		return PairDiffPending
	}
}
