package uilayer_test

import (
	"testing"

	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/uilayer"
	"github.com/stretchr/testify/require"
)

type fakeLayer struct {
	uilayer.Base
	name       string
	keyHandled bool
	drawCount  int
	fullScreen bool
}

func (f *fakeLayer) HandleKeyEvent(ev event.KeyEvent) bool {
	f.keyHandled = true
	return true
}
func (f *fakeLayer) HandleCharEvent(ev event.CharEvent) bool     { return false }
func (f *fakeLayer) HandleMouseEvent(ev event.MouseEvent) bool   { return false }
func (f *fakeLayer) HandleSystemEvent(ev event.SystemEvent) bool { return false }
func (f *fakeLayer) Draw(g *render.Grid, r uilayer.Region)       { f.drawCount++ }
func (f *fakeLayer) IsFullScreen() bool                          { return f.fullScreen }

func TestEventGoesOnlyToTopLayer(t *testing.T) {
	bottom := &fakeLayer{name: "bottom", fullScreen: true}
	top := &fakeLayer{name: "top"}

	s := uilayer.NewStack(bottom)
	s.Push(top)

	s.HandleEvent(event.Event{Kind: event.KindKey, Key: event.KeyEvent{Code: event.KeyEnter}})

	require.True(t, top.keyHandled)
	require.False(t, bottom.keyHandled)
}

func TestPopOnShouldClose(t *testing.T) {
	bottom := &fakeLayer{name: "bottom", fullScreen: true}
	dialog := &fakeLayer{name: "dialog"}

	s := uilayer.NewStack(bottom)
	s.Push(dialog)
	require.Equal(t, 2, s.Depth())

	dialog.Close()
	s.HandleEvent(event.Event{Kind: event.KindKey})

	require.Equal(t, 1, s.Depth())
	require.Same(t, uilayer.Layer(bottom), s.Top())
}

func TestRenderSkipsLayersBelowDeepestFullScreen(t *testing.T) {
	bottom := &fakeLayer{name: "bottom", fullScreen: true}
	viewer := &fakeLayer{name: "viewer", fullScreen: true}
	dialog := &fakeLayer{name: "dialog"}

	s := uilayer.NewStack(bottom)
	s.Push(viewer)
	s.Push(dialog)

	grid := render.NewGrid(24, 80)
	s.Render(grid, uilayer.Region{Rows: 24, Cols: 80})

	require.Equal(t, 0, bottom.drawCount, "bottom is below the deepest full-screen layer")
	require.Equal(t, 1, viewer.drawCount)
	require.Equal(t, 1, dialog.drawCount)
}

func TestRenderSkipsWhenNothingDirty(t *testing.T) {
	bottom := &fakeLayer{name: "bottom", fullScreen: true}
	s := uilayer.NewStack(bottom)
	bottom.ClearDirty()

	grid := render.NewGrid(24, 80)
	s.Render(grid, uilayer.Region{Rows: 24, Cols: 80})

	require.Equal(t, 0, bottom.drawCount)
}

func TestBottomLayerNeverPopped(t *testing.T) {
	bottom := &fakeLayer{name: "bottom", fullScreen: true}
	s := uilayer.NewStack(bottom)
	bottom.Close()
	s.HandleEvent(event.Event{Kind: event.KindKey})
	require.Equal(t, 1, s.Depth())
}
