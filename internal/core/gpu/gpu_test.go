package gpu

import "testing"

type recordingRenderer struct {
	triangles [][3]Vertex
	quads     [][4]Vertex
	offX, offY int16
}

func (r *recordingRenderer) PushTriangle(v [3]Vertex) { r.triangles = append(r.triangles, v) }
func (r *recordingRenderer) PushQuad(v [4]Vertex)     { r.quads = append(r.quads, v) }
func (r *recordingRenderer) SetDrawOffset(x, y int16) { r.offX, r.offY = x, y }

func TestMonochromeQuadDispatchesOnLastWord(t *testing.T) {
	g := New()
	rr := &recordingRenderer{}
	g.SetRenderer(rr)

	words := []uint32{
		0x28<<24 | 0x00_FF_00, // opcode 0x28, green
		packPos(10, 20),
		packPos(30, 20),
		packPos(30, 40),
		packPos(10, 40),
	}
	for i, w := range words[:len(words)-1] {
		g.WriteGP0(w)
		if len(rr.quads) != 0 {
			t.Fatalf("quad dispatched after word %d; command isn't complete yet", i)
		}
	}
	g.WriteGP0(words[len(words)-1])

	if len(rr.quads) != 1 {
		t.Fatalf("quads pushed = %d; want 1", len(rr.quads))
	}
	if rr.quads[0][0].X != 10 || rr.quads[0][0].Y != 20 {
		t.Errorf("quad[0] = (%d, %d); want (10, 20)", rr.quads[0][0].X, rr.quads[0][0].Y)
	}
	if rr.quads[0][0].G != 0xFF {
		t.Errorf("quad[0].G = %#x; want 0xFF", rr.quads[0][0].G)
	}
}

func TestImageLoadSwallowsPayloadWords(t *testing.T) {
	g := New()
	g.SetRenderer(&recordingRenderer{})

	g.WriteGP0(0xA0 << 24)
	g.WriteGP0(0) // dest xy
	g.WriteGP0(2<<16 | 2) // 2x2 image: (2*2+1)/2 = 2 payload words

	if g.imageRemaining != 2 {
		t.Fatalf("imageRemaining = %d after header; want 2", g.imageRemaining)
	}
	g.WriteGP0(0xDEAD_BEEF)
	if g.imageRemaining != 1 {
		t.Fatalf("imageRemaining = %d after one payload word; want 1", g.imageRemaining)
	}
	g.WriteGP0(0xDEAD_BEEF)
	if g.imageRemaining != 0 {
		t.Fatalf("imageRemaining = %d after all payload words; want 0", g.imageRemaining)
	}

	// A fresh command right after should decode normally, not be
	// swallowed as leftover image payload.
	g.WriteGP0(0x00 << 24) // nop, length 1, dispatches immediately
	if len(g.buf) != 0 {
		t.Errorf("buf = %v after a one-word nop; want drained", g.buf)
	}
}

func TestDrawOffsetSignExtension(t *testing.T) {
	g := New()
	rr := &recordingRenderer{}
	g.SetRenderer(rr)

	// GP0(E5): x = -5 (11-bit two's complement), y = 3
	x11 := uint32(0x7FB) // -5 in 11 bits
	g.WriteGP0(0xE5<<24 | (3 << 11) | x11)

	if rr.offX != -5 || rr.offY != 3 {
		t.Fatalf("offset = (%d, %d); want (-5, 3)", rr.offX, rr.offY)
	}
}

func TestStatusReflectsDisplayDisabledByDefault(t *testing.T) {
	g := New()
	if g.Status()&(1<<23) == 0 {
		t.Fatalf("Status() bit 23 clear; display should start disabled")
	}

	g.WriteGP1(0x03 << 24) // enable display (bit 0 = 0)
	if g.Status()&(1<<23) != 0 {
		t.Errorf("Status() bit 23 set after enabling display")
	}
}

func TestGP1Reset(t *testing.T) {
	g := New()
	g.WriteGP0(0xE6<<24 | 1) // set forceMaskBit
	if g.Status()&(1<<11) == 0 {
		t.Fatalf("mask bit not reflected in status before reset")
	}

	g.WriteGP1(0x00 << 24) // full reset
	if g.Status()&(1<<11) != 0 {
		t.Errorf("mask bit survived a GP1(00) reset")
	}
}

func TestWriteImplementsDMAPortIntoGP0(t *testing.T) {
	g := New()
	rr := &recordingRenderer{}
	g.SetRenderer(rr)

	g.Write(0x00 << 24) // nop via the DMA port, should behave like WriteGP0
	if len(g.buf) != 0 {
		t.Errorf("buf non-empty after a DMA-sourced nop")
	}
}

func packPos(x, y int16) uint32 {
	return uint32(uint16(x)) | uint32(uint16(y))<<16
}
