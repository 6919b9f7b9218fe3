package uilayer

import (
	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/render"
)

// Stack is the z-ordered layer collection with exactly one permanent
// bottom layer (spec.md §4.3, testable property 1).
type Stack struct {
	layers []Layer
}

// NewStack creates a stack whose sole, non-poppable bottom is bottom.
func NewStack(bottom Layer) *Stack {
	s := &Stack{layers: []Layer{bottom}}
	bottom.OnActivate()
	return s
}

// Push installs layer as the new top, deactivating the previous top.
func (s *Stack) Push(layer Layer) {
	if len(s.layers) > 0 {
		s.layers[len(s.layers)-1].OnDeactivate()
	}
	s.layers = append(s.layers, layer)
	layer.OnActivate()
}

// Pop removes the current top, unless it is the permanent bottom.
func (s *Stack) Pop() {
	if len(s.layers) <= 1 {
		return
	}
	top := s.layers[len(s.layers)-1]
	s.layers = s.layers[:len(s.layers)-1]
	top.OnDeactivate()
	s.layers[len(s.layers)-1].OnActivate()
}

// Top returns the topmost layer; the stack is never empty.
func (s *Stack) Top() Layer { return s.layers[len(s.layers)-1] }

// Depth returns the number of layers, including the permanent bottom.
func (s *Stack) Depth() int { return len(s.layers) }

// settle pops any layer (from the top down) whose ShouldClose() is true,
// repeating until stable (spec.md §4.3 "repeat until stable").
func (s *Stack) settle() {
	for len(s.layers) > 1 && s.Top().ShouldClose() {
		s.Pop()
	}
}

// HandleEvent forwards ev to exactly the top layer's matching handler
// (testable property 2), then settles should-close layers. It returns
// whether the event was consumed.
func (s *Stack) HandleEvent(ev event.Event) bool {
	top := s.Top()
	var consumed bool
	switch ev.Kind {
	case event.KindKey:
		consumed = top.HandleKeyEvent(ev.Key)
	case event.KindChar:
		consumed = top.HandleCharEvent(ev.Char)
	case event.KindMouse:
		consumed = top.HandleMouseEvent(ev.Mouse)
	case event.KindSystem:
		consumed = top.HandleSystemEvent(ev.System)
	}
	s.settle()
	return consumed
}

// Render finds the deepest full-screen layer at-or-below the top and
// redraws from there upward, but only if something in that span is dirty
// (spec.md §4.3 redraw gating).
func (s *Stack) Render(g *render.Grid, full Region) {
	start := 0
	for i := len(s.layers) - 1; i >= 0; i-- {
		if s.layers[i].IsFullScreen() {
			start = i
			break
		}
	}
	anyDirty := false
	for i := start; i < len(s.layers); i++ {
		if s.layers[i].NeedsRedraw() {
			anyDirty = true
			break
		}
	}
	if !anyDirty {
		return
	}
	for i := start; i < len(s.layers); i++ {
		s.layers[i].Draw(g, full)
		s.layers[i].ClearDirty()
	}
}
