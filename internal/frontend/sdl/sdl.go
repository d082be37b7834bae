//go:build sdl

// Package sdl implements a windowed gpu.Renderer backend using SDL2,
// gated behind the sdl build tag so default builds need no cgo/SDL
// headers.
package sdl

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/nullterm/psxgo/internal/core/gpu"
)

const (
	screenWidth  = 320
	screenHeight = 240
)

// Frontend is a real SDL2 window implementing gpu.Renderer.
type Frontend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	offX     int16
	offY     int16
}

// New opens an SDL2 window scaled by factor.
func New(factor int) (*Frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl: init: %w", err)
	}
	w, r, err := sdl.CreateWindowAndRenderer(
		int32(screenWidth*factor), int32(screenHeight*factor), sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("sdl: create window: %w", err)
	}
	r.SetLogicalSize(screenWidth, screenHeight)
	return &Frontend{window: w, renderer: r}, nil
}

// Close tears down the window and SDL subsystem.
func (f *Frontend) Close() {
	f.renderer.Destroy()
	f.window.Destroy()
	sdl.Quit()
}

// SetDrawOffset implements gpu.Renderer.
func (f *Frontend) SetDrawOffset(x, y int16) { f.offX, f.offY = x, y }

// PushTriangle implements gpu.Renderer by filling the triangle's
// bounding box with one SDL fill-rect in the averaged vertex color;
// exact edge rasterization is out of scope.
func (f *Frontend) PushTriangle(v [3]gpu.Vertex) { f.fillBounds(v[:]) }

// PushQuad implements gpu.Renderer as two triangles.
func (f *Frontend) PushQuad(v [4]gpu.Vertex) {
	f.fillBounds([]gpu.Vertex{v[0], v[1], v[2]})
	f.fillBounds([]gpu.Vertex{v[0], v[2], v[3]})
}

func (f *Frontend) fillBounds(v []gpu.Vertex) {
	minX, minY := v[0].X+f.offX, v[0].Y+f.offY
	maxX, maxY := minX, minY
	var r, g, b int
	for _, p := range v {
		x, y := p.X+f.offX, p.Y+f.offY
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
		r += int(p.R)
		g += int(p.G)
		b += int(p.B)
	}
	f.renderer.SetDrawColor(uint8(r/len(v)), uint8(g/len(v)), uint8(b/len(v)), 255)
	f.renderer.FillRect(&sdl.Rect{
		X: int32(minX), Y: int32(minY),
		W: int32(maxX - minX + 1), H: int32(maxY - minY + 1),
	})
}

// Present flips the window's back buffer.
func (f *Frontend) Present() { f.renderer.Present() }

// PollQuit reports whether the window was asked to close.
func (f *Frontend) PollQuit() bool {
	for {
		ev := sdl.PollEvent()
		if ev == nil {
			return false
		}
		if _, ok := ev.(*sdl.QuitEvent); ok {
			return true
		}
	}
}
