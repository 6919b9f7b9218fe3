// Package uilayer implements the z-ordered UI layer stack (spec.md §4.3):
// a permanent bottom layer (the main screen) with modal dialogs/viewers
// pushed on top, plus the event router that forwards input to the top
// layer only.
package uilayer

import (
	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/render"
)

// Layer is the capability set every pushable UI component implements
// (spec.md §3 "UI layer"). Implementations choose dynamic dispatch (this
// interface) over a tagged enum, per the option spec.md §9 leaves open.
type Layer interface {
	HandleKeyEvent(ev event.KeyEvent) bool
	HandleCharEvent(ev event.CharEvent) bool
	HandleMouseEvent(ev event.MouseEvent) bool
	HandleSystemEvent(ev event.SystemEvent) bool

	Draw(g *render.Grid, region Region)

	IsFullScreen() bool
	NeedsRedraw() bool
	MarkDirty()
	ClearDirty()

	ShouldClose() bool

	OnActivate()
	OnDeactivate()
}

// Region is the screen area a layer is asked to draw into.
type Region struct {
	Row, Col, Rows, Cols int
}

// Base is an embeddable helper that implements the dirty-flag and
// should-close bookkeeping shared by nearly every concrete layer, the way
// the teacher's dialogs all shared common field bookkeeping in one Model.
type Base struct {
	dirty  bool
	closed bool
}

func (b *Base) MarkDirty()        { b.dirty = true }
func (b *Base) ClearDirty()       { b.dirty = false }
func (b *Base) NeedsRedraw() bool { return b.dirty }
func (b *Base) ShouldClose() bool { return b.closed }
func (b *Base) Close()            { b.closed = true }
func (b *Base) IsFullScreen() bool { return false }
func (b *Base) OnActivate()        { b.dirty = true }
func (b *Base) OnDeactivate()      {}
