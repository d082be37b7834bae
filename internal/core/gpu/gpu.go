// Package gpu implements the GPU command port: the GP0 queued command
// FIFO and the GP1 immediate control port. Rasterization itself is
// delegated to an externally-owned Renderer sink; this package only
// decodes primitives and assembles the status word.
package gpu

import (
	"fmt"
	"log/slog"
)

// Vertex is a 2D screen position with a packed RGB color, the shape
// the Renderer interface trades in.
type Vertex struct {
	X, Y    int16
	R, G, B uint8
}

// Renderer is the external vertex/quad sink the core pushes completed
// primitives to.
type Renderer interface {
	PushTriangle(v [3]Vertex)
	PushQuad(v [4]Vertex)
	SetDrawOffset(x, y int16)
}

type nullRenderer struct{}

func (nullRenderer) PushTriangle([3]Vertex)   {}
func (nullRenderer) PushQuad([4]Vertex)       {}
func (nullRenderer) SetDrawOffset(int16, int16) {}

// DMADirection mirrors GP1(04)'s two-bit field.
type DMADirection uint8

const (
	DMAOff DMADirection = iota
	DMAFifo
	DMACPUToGP0
	DMAVRAMToCPU
)

// drawState holds every render-state field the GPU tracks: page base,
// semi-transparency, texture depth, dithering, display mode, drawing
// area, drawing offset, mask-bit policy, display VRAM start, h/v
// display ranges, and the interlace flag.
type drawState struct {
	pageBaseX, pageBaseY uint8
	semiTransparency     uint8
	textureDepth         uint8
	dithering            bool
	drawToDisplay         bool

	texWindow uint32

	areaTLx, areaTLy int16
	areaBRx, areaBRy int16

	offsetX, offsetY int16

	forceMaskBit bool
	checkMaskBit bool

	displayDisabled bool
	dmaDirection    DMADirection

	vramStartX, vramStartY uint16
	hRangeX1, hRangeX2     uint16
	vRangeY1, vRangeY2     uint16

	horRes1, horRes2 uint8
	verRes           uint8
	videoModePAL     bool
	colorDepth24     bool
	interlaced       bool
	reverseFlag      bool
}

func defaultDrawState() drawState {
	return drawState{
		displayDisabled: true,
		hRangeX1:        0x200,
		hRangeX2:        0xC00,
		vRangeY1:        0x10,
		vRangeY2:        0x100,
		interlaced:      true,
	}
}

// GPU is the command-port state machine.
type GPU struct {
	state    drawState
	renderer Renderer

	buf            []uint32
	pendingOp      uint8
	pendingLen     int
	imageRemaining int // words still to drain for an in-flight image-load (GP0 0xA0)
}

// New returns a GPU with default draw state and a no-op renderer; call
// SetRenderer to attach a real sink.
func New() *GPU {
	return &GPU{state: defaultDrawState(), renderer: nullRenderer{}}
}

// SetRenderer attaches the external vertex/quad sink.
func (g *GPU) SetRenderer(r Renderer) {
	if r == nil {
		r = nullRenderer{}
	}
	g.renderer = r
}

func hostFatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	slog.Error("host-fatal fault", "component", "gpu", "error", msg)
	panic("host-fatal fault: " + msg)
}

// gp0Lengths maps a GP0 opcode (the top byte of the first word) to the
// total word count of the command.
var gp0Lengths = map[uint8]int{
	0x00: 1, // nop
	0x01: 1, // clear cache
	0x28: 5, // monochrome opaque quad
	0x2C: 9, // textured-blend opaque quad
	0x30: 6, // shaded opaque triangle
	0x38: 8, // shaded opaque quad
	0xA0: 3, // image load (header only; payload drains separately)
	0xC0: 3, // image store
	0xE1: 1, // draw mode
	0xE2: 1, // texture window
	0xE3: 1, // drawing area TL
	0xE4: 1, // drawing area BR
	0xE5: 1, // drawing offset
	0xE6: 1, // mask bit setting
}

// WriteGP0 feeds one word into the command FIFO, dispatching once the
// accumulated buffer reaches the decoded command's length.
func (g *GPU) WriteGP0(word uint32) {
	if g.imageRemaining > 0 {
		g.imageRemaining--
		return
	}

	if len(g.buf) == 0 {
		op := uint8(word >> 24)
		length, ok := gp0Lengths[op]
		if !ok {
			hostFatal("unknown GP0 primitive opcode 0x%02X", op)
		}
		g.pendingOp = op
		g.pendingLen = length
	}

	g.buf = append(g.buf, word)
	if len(g.buf) >= g.pendingLen {
		g.dispatch()
		g.buf = g.buf[:0]
	}
}

func decodePos(word uint32) (x, y int16) {
	return int16(uint16(word)), int16(uint16(word >> 16))
}

func decodeColor(word uint32) (r, g, b uint8) {
	return uint8(word), uint8(word >> 8), uint8(word >> 16)
}

func (g *GPU) dispatch() {
	switch g.pendingOp {
	case 0x00, 0x01:
		// nop / clear cache: nothing to model.

	case 0x28:
		r, gc, b := decodeColor(g.buf[0])
		var verts [4]Vertex
		for i := 0; i < 4; i++ {
			x, y := decodePos(g.buf[1+i])
			verts[i] = Vertex{X: x, Y: y, R: r, G: gc, B: b}
		}
		g.renderer.PushQuad(verts)

	case 0x2C:
		r, gc, b := decodeColor(g.buf[0])
		var verts [4]Vertex
		for i, wordIdx := range [4]int{1, 3, 5, 7} {
			x, y := decodePos(g.buf[wordIdx])
			verts[i] = Vertex{X: x, Y: y, R: r, G: gc, B: b}
		}
		g.renderer.PushQuad(verts)

	case 0x30:
		var verts [3]Vertex
		for i := 0; i < 3; i++ {
			r, gc, b := decodeColor(g.buf[2*i])
			x, y := decodePos(g.buf[2*i+1])
			verts[i] = Vertex{X: x, Y: y, R: r, G: gc, B: b}
		}
		g.renderer.PushTriangle(verts)

	case 0x38:
		var verts [4]Vertex
		for i := 0; i < 4; i++ {
			r, gc, b := decodeColor(g.buf[2*i])
			x, y := decodePos(g.buf[2*i+1])
			verts[i] = Vertex{X: x, Y: y, R: r, G: gc, B: b}
		}
		g.renderer.PushQuad(verts)

	case 0xA0:
		size := g.buf[2]
		w, h := size&0xFFFF, size>>16
		g.imageRemaining = int((w*h + 1) / 2)

	case 0xC0:
		// Image store (VRAM -> CPU): pixel contents are out of scope;
		// GPUREAD stays at its last value.

	case 0xE1:
		w := g.buf[0]
		g.state.pageBaseX = uint8(w & 0xF)
		g.state.pageBaseY = uint8((w >> 4) & 0x1)
		g.state.semiTransparency = uint8((w >> 5) & 0x3)
		g.state.textureDepth = uint8((w >> 7) & 0x3)
		g.state.dithering = w&(1<<9) != 0
		g.state.drawToDisplay = w&(1<<10) != 0

	case 0xE2:
		g.state.texWindow = g.buf[0] & 0x000F_FFFF

	case 0xE3:
		g.state.areaTLx, g.state.areaTLy = decodeAreaCoords(g.buf[0])

	case 0xE4:
		g.state.areaBRx, g.state.areaBRy = decodeAreaCoords(g.buf[0])

	case 0xE5:
		w := g.buf[0]
		g.state.offsetX = signExtend11(w)
		g.state.offsetY = signExtend11(w >> 11)
		g.renderer.SetDrawOffset(g.state.offsetX, g.state.offsetY)

	case 0xE6:
		w := g.buf[0]
		g.state.forceMaskBit = w&1 != 0
		g.state.checkMaskBit = w&2 != 0
	}
}

func decodeAreaCoords(w uint32) (x, y int16) {
	return int16(w & 0x3FF), int16((w >> 10) & 0x3FF)
}

func signExtend11(w uint32) int16 {
	shifted := uint16((w & 0x7FF) << 5)
	return int16(shifted) >> 5
}

// WriteGP1 handles the immediate control port.
func (g *GPU) WriteGP1(word uint32) {
	op := uint8(word >> 24)
	switch op {
	case 0x00:
		g.state = defaultDrawState()
		g.buf = g.buf[:0]
		g.imageRemaining = 0

	case 0x01:
		g.buf = g.buf[:0]
		g.imageRemaining = 0

	case 0x02:
		// Acknowledge GPU IRQ: no GPU-sourced IRQ line is modeled here
		// (GP0(1F) request IRQ is not in the supported command set).

	case 0x03:
		g.state.displayDisabled = word&1 != 0

	case 0x04:
		g.state.dmaDirection = DMADirection(word & 0x3)

	case 0x05:
		g.state.vramStartX = uint16(word & 0x3FF)
		g.state.vramStartY = uint16((word >> 10) & 0x1FF)

	case 0x06:
		g.state.hRangeX1 = uint16(word & 0xFFF)
		g.state.hRangeX2 = uint16((word >> 12) & 0xFFF)

	case 0x07:
		g.state.vRangeY1 = uint16(word & 0x3FF)
		g.state.vRangeY2 = uint16((word >> 10) & 0x3FF)

	case 0x08:
		g.state.horRes1 = uint8(word & 0x3)
		g.state.verRes = uint8((word >> 2) & 0x1)
		g.state.videoModePAL = word&(1<<3) != 0
		g.state.colorDepth24 = word&(1<<4) != 0
		g.state.interlaced = word&(1<<5) != 0
		g.state.horRes2 = uint8((word >> 6) & 0x1)
		g.state.reverseFlag = word&(1<<7) != 0
	}
}

// Status assembles GPUSTAT. The ready bits (26-28) are always set
// since no draw/transfer timing is modeled, and the DMA-request bit
// (25) is derived from the configured direction.
func (g *GPU) Status() uint32 {
	s := &g.state
	var v uint32

	v |= uint32(s.pageBaseX)
	v |= uint32(s.pageBaseY) << 4
	v |= uint32(s.semiTransparency) << 5
	v |= uint32(s.textureDepth) << 7
	if s.dithering {
		v |= 1 << 9
	}
	if s.drawToDisplay {
		v |= 1 << 10
	}
	if s.forceMaskBit {
		v |= 1 << 11
	}
	if s.checkMaskBit {
		v |= 1 << 12
	}
	if s.interlaced {
		v |= 1 << 13
	}
	if s.reverseFlag {
		v |= 1 << 14
	}
	v |= uint32(s.horRes2) << 16
	v |= uint32(s.horRes1) << 17
	v |= uint32(s.verRes) << 19
	if s.videoModePAL {
		v |= 1 << 20
	}
	if s.colorDepth24 {
		v |= 1 << 21
	}
	if s.displayDisabled {
		v |= 1 << 23
	}

	v |= 1 << 26 // ready to receive command
	v |= 1 << 27 // ready to send VRAM to CPU
	v |= 1 << 28 // ready to receive DMA block

	v |= uint32(s.dmaDirection) << 29

	var dmaRequest bool
	switch s.dmaDirection {
	case DMAOff:
		dmaRequest = false
	case DMAFifo:
		dmaRequest = true
	case DMACPUToGP0:
		dmaRequest = v&(1<<28) != 0
	case DMAVRAMToCPU:
		dmaRequest = v&(1<<27) != 0
	}
	if dmaRequest {
		v |= 1 << 25
	}

	return v
}

// Read implements dma.Port for the ToRam direction: returns the
// GPUREAD latch (always zero; VRAM contents are out of scope).
func (g *GPU) Read() uint32 { return 0 }

// Write implements dma.Port for the FromRam direction: DMA-sourced
// words go through the same command FIFO as CPU stores to GP0.
func (g *GPU) Write(val uint32) { g.WriteGP0(val) }
