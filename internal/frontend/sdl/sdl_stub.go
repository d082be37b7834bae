//go:build !sdl

package sdl

import (
	"fmt"

	"github.com/nullterm/psxgo/internal/core/gpu"
)

// Frontend stub for builds without the sdl tag: SDL2 headers/cgo are
// not required to build psxgo by default.
type Frontend struct{}

// New always fails; build with -tags sdl and SDL2 development
// libraries installed to get a real window.
func New(factor int) (*Frontend, error) {
	return nil, fmt.Errorf("sdl frontend not available - build with -tags sdl")
}

func (f *Frontend) Close()                          {}
func (f *Frontend) SetDrawOffset(x, y int16)         {}
func (f *Frontend) PushTriangle(v [3]gpu.Vertex)     {}
func (f *Frontend) PushQuad(v [4]gpu.Vertex)         {}
func (f *Frontend) Present()                         {}
func (f *Frontend) PollQuit() bool                   { return true }
