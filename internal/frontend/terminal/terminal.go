// Package terminal draws the GPU's pushed primitives into a character
// terminal using tcell's half-block technique, and polls keyboard
// events for the host event loop.
package terminal

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/nullterm/psxgo/internal/core/gpu"
)

const (
	screenWidth  = 320
	screenHeight = 240
)

// Frontend implements gpu.Renderer by flat-rasterizing pushed
// triangles/quads into an RGB framebuffer, then blitting that
// framebuffer to a terminal using the upper-half-block character
// trick (two vertical pixels per character cell).
type Frontend struct {
	screen tcell.Screen
	fb     [screenHeight][screenWidth][3]uint8
	offX   int16
	offY   int16
}

// New opens and initializes the terminal screen.
func New() (*Frontend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: init: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal: init: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	screen.Clear()
	return &Frontend{screen: screen}, nil
}

// Close restores the terminal.
func (f *Frontend) Close() { f.screen.Fini() }

// SetDrawOffset implements gpu.Renderer.
func (f *Frontend) SetDrawOffset(x, y int16) { f.offX, f.offY = x, y }

// PushTriangle implements gpu.Renderer: flat-fills the triangle's
// bounding box clipped to the screen, with the averaged vertex color.
// Pixel-exact rasterization is out of scope; this exists to make the
// display visibly track what the guest draws.
func (f *Frontend) PushTriangle(v [3]gpu.Vertex) {
	f.rasterize(v[:])
}

// PushQuad implements gpu.Renderer as two triangles sharing a
// diagonal, matching how real hardware issues them as two primitives.
func (f *Frontend) PushQuad(v [4]gpu.Vertex) {
	f.rasterize([]gpu.Vertex{v[0], v[1], v[2]})
	f.rasterize([]gpu.Vertex{v[0], v[2], v[3]})
}

func (f *Frontend) rasterize(v []gpu.Vertex) {
	minX, minY := int(v[0].X)+int(f.offX), int(v[0].Y)+int(f.offY)
	maxX, maxY := minX, minY
	var r, g, b int
	for _, p := range v {
		x, y := int(p.X)+int(f.offX), int(p.Y)+int(f.offY)
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
	r, g, b = r/len(v), g/len(v), b/len(v)

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= screenWidth {
		maxX = screenWidth - 1
	}
	if maxY >= screenHeight {
		maxY = screenHeight - 1
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			f.fb[y][x] = [3]uint8{uint8(r), uint8(g), uint8(b)}
		}
	}
}

// Present blits the framebuffer to the terminal: each character cell
// covers two vertical pixels via the upper-half-block glyph, its
// foreground the top pixel and background the bottom pixel.
func (f *Frontend) Present() {
	for cellY := 0; cellY*2 < screenHeight; cellY++ {
		for x := 0; x < screenWidth; x++ {
			top := f.fb[cellY*2][x]
			var bottom [3]uint8
			if cellY*2+1 < screenHeight {
				bottom = f.fb[cellY*2+1][x]
			}
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top[0]), int32(top[1]), int32(top[2]))).
				Background(tcell.NewRGBColor(int32(bottom[0]), int32(bottom[1]), int32(bottom[2])))
			f.screen.SetContent(x, cellY, '▀', nil, style)
		}
	}
	f.screen.Show()
}

// KeyEvent is a single terminal key event, named by the tcell key it
// came from so a caller can map it to whatever control scheme it
// wants; translating this into the serial controller's wire protocol
// is outside this package (the joypad models only the unconnected-
// controller probe response, not a full button-state transfer).
type KeyEvent struct {
	Key  tcell.Key
	Rune rune
	Quit bool
}

// PollEvent returns the next terminal event, or ok=false if the
// screen has no pending input.
func (f *Frontend) PollEvent() (KeyEvent, bool) {
	if !f.screen.HasPendingEvent() {
		return KeyEvent{}, false
	}
	ev := f.screen.PollEvent()
	switch e := ev.(type) {
	case *tcell.EventKey:
		if e.Key() == tcell.KeyCtrlC || e.Key() == tcell.KeyEscape {
			return KeyEvent{Quit: true}, true
		}
		return KeyEvent{Key: e.Key(), Rune: e.Rune()}, true
	case *tcell.EventResize:
		f.screen.Sync()
		slog.Debug("terminal: resized")
	}
	return KeyEvent{}, false
}
