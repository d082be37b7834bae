// Package bus implements the interconnect: segment-mask-then-scan
// address decode across the ~20 physical regions, ownership of every
// memory primitive and device, and the synchronous DMA trigger on a
// channel-control store.
package bus

import (
	"fmt"
	"log/slog"

	"github.com/nullterm/psxgo/internal/core/addr"
	"github.com/nullterm/psxgo/internal/core/bios"
	"github.com/nullterm/psxgo/internal/core/cdrom"
	"github.com/nullterm/psxgo/internal/core/dma"
	"github.com/nullterm/psxgo/internal/core/gpu"
	"github.com/nullterm/psxgo/internal/core/irq"
	"github.com/nullterm/psxgo/internal/core/joypad"
	"github.com/nullterm/psxgo/internal/core/ram"
	"github.com/nullterm/psxgo/internal/core/scratchpad"
	"github.com/nullterm/psxgo/internal/core/timer"
)

// Timing constants approximating NTSC scanline/frame shape, used only
// to derive hblank/vblank/dotclock pulses for the timers and VBlank
// IRQ line. Cycle-accurate video timing is explicitly out of scope.
const (
	cyclesPerScanline = 3413
	scanlinesPerFrame = 263
	visibleScanlines  = 240
	hblankWidth       = 200
	dotclockDivider   = 8
)

// stubPort is a dma.Port for channels with no wired device (MDEC,
// SPU, PIO): reads return zero, writes are dropped with a debug log,
// the warn-and-continue policy for unimplemented device registers.
type stubPort struct{ name string }

func (p stubPort) Read() uint32 {
	slog.Debug("dma: read from unwired port", "port", p.name)
	return 0
}

func (p stubPort) Write(uint32) {
	slog.Debug("dma: write to unwired port", "port", p.name)
}

// Bus owns every memory primitive and device; the CPU holds the only
// reference to it.
type Bus struct {
	RAM        *ram.RAM
	Scratchpad *scratchpad.Scratchpad
	BIOS       *bios.BIOS

	IRQ   *irq.Aggregator
	DMA   *dma.Engine
	GPU   *gpu.GPU
	CDROM *cdrom.CDROM
	Joypad *joypad.Joypad
	timers [3]*timer.Timer

	memControl   [9]uint32
	ramSizeReg   uint32
	cacheControl uint32

	cycle    uint32
	scanline uint32

	currentPC uint32
}

// NotePC implements cpu.Bus: it records the instruction address the
// CPU is currently executing, for host-fatal diagnostics raised from
// deep inside a register write.
func (b *Bus) NotePC(pc uint32) { b.currentPC = pc }

// New wires a bus around the given firmware image.
func New(b *bios.BIOS) *Bus {
	return &Bus{
		RAM:        ram.New(),
		Scratchpad: scratchpad.New(),
		BIOS:       b,
		IRQ:        irq.New(),
		DMA:        dma.NewEngine(),
		GPU:        gpu.New(),
		CDROM:      cdrom.New(),
		Joypad:     joypad.New(),
		timers:     [3]*timer.Timer{timer.New(timer.Timer0), timer.New(timer.Timer1), timer.New(timer.Timer2)},
	}
}

// SetDisc attaches an optional disc image to the CD-ROM front-end.
func (b *Bus) SetDisc(data []byte) { b.CDROM.SetDisc(data) }

// SetRenderer attaches the external vertex/quad sink to the GPU.
func (b *Bus) SetRenderer(r gpu.Renderer) { b.GPU.SetRenderer(r) }

// Tick advances every device by one quantum and refreshes the
// interrupt aggregator from their pulses.
func (b *Bus) Tick() {
	b.cycle++
	if b.cycle >= cyclesPerScanline {
		b.cycle = 0
		b.scanline++
		if b.scanline >= scanlinesPerFrame {
			b.scanline = 0
		}
	}
	hblank := b.cycle >= cyclesPerScanline-hblankWidth
	vblank := b.scanline >= visibleScanlines
	dotclock := b.cycle%dotclockDivider == 0

	var pulses [11]bool
	pulses[irq.VBlank] = vblank
	pulses[irq.CDROM] = b.CDROM.Tick()
	pulses[irq.DMA] = b.DMA.MasterLine()
	pulses[irq.Timer0] = b.timers[0].Tick(hblank, vblank, dotclock)
	pulses[irq.Timer1] = b.timers[1].Tick(hblank, vblank, dotclock)
	pulses[irq.Timer2] = b.timers[2].Tick(hblank, vblank, dotclock)
	b.Joypad.Tick()
	pulses[irq.Controller] = b.Joypad.IRQLine()

	b.IRQ.Tick(pulses)
}

// IRQPending implements cpu.Bus.
func (b *Bus) IRQPending() bool { return b.IRQ.Pending() }

func (b *Bus) translate(vaddr uint32) (addr.Region, uint32, bool) {
	return addr.Find(addr.Mask(vaddr))
}

// memDevice is the shape RAM/Scratchpad/BIOS all share.
type memDevice interface {
	Load8(uint32) uint32
	Load16(uint32) uint32
	Load32(uint32) uint32
}

func loadMem(d memDevice, off uint32, width int) uint32 {
	switch width {
	case 1:
		return d.Load8(off)
	case 2:
		return d.Load16(off)
	default:
		return d.Load32(off)
	}
}

type memWriter interface {
	Store8(uint32, uint32)
	Store16(uint32, uint32)
	Store32(uint32, uint32)
}

func storeMem(d memWriter, off uint32, val uint32, width int) {
	switch width {
	case 1:
		d.Store8(off, val)
	case 2:
		d.Store16(off, val)
	default:
		d.Store32(off, val)
	}
}

func (b *Bus) Load8(vaddr uint32) uint32  { return b.load(vaddr, 1) }
func (b *Bus) Load16(vaddr uint32) uint32 { return b.load(vaddr, 2) }
func (b *Bus) Load32(vaddr uint32) uint32 { return b.load(vaddr, 4) }

func (b *Bus) load(vaddr uint32, width int) uint32 {
	region, off, ok := b.translate(vaddr)
	if !ok {
		slog.Warn("bus: load from unmapped address", "vaddr", fmt.Sprintf("0x%08X", vaddr))
		return 0
	}

	switch region {
	case addr.RegionRAM:
		return loadMem(b.RAM, off, width)
	case addr.RegionScratchpad:
		return loadMem(b.Scratchpad, off, width)
	case addr.RegionBIOS:
		return loadMem(b.BIOS, off, width)
	case addr.RegionMemControl:
		return b.memControl[off/4]
	case addr.RegionRAMSize:
		return b.ramSizeReg
	case addr.RegionCacheControl:
		return b.cacheControl
	case addr.RegionIRQControl:
		return b.loadIRQ(off)
	case addr.RegionDMA:
		return b.loadDMA(off, width)
	case addr.RegionTimer0:
		return b.loadTimer(0, off)
	case addr.RegionTimer1:
		return b.loadTimer(1, off)
	case addr.RegionTimer2:
		return b.loadTimer(2, off)
	case addr.RegionGPU:
		return b.loadGPU(off)
	case addr.RegionCDROM:
		return b.loadCDROM(off, width)
	case addr.RegionJoypad:
		return b.loadJoypad(off)
	default: // SIO, SPU, expansions: unimplemented, warn-and-zero
		return 0
	}
}

func (b *Bus) Store8(vaddr uint32, val uint32)  { b.store(vaddr, val, 1) }
func (b *Bus) Store16(vaddr uint32, val uint32) { b.store(vaddr, val, 2) }
func (b *Bus) Store32(vaddr uint32, val uint32) { b.store(vaddr, val, 4) }

func (b *Bus) store(vaddr uint32, val uint32, width int) {
	region, off, ok := b.translate(vaddr)
	if !ok {
		slog.Warn("bus: store to unmapped address", "vaddr", fmt.Sprintf("0x%08X", vaddr))
		return
	}

	switch region {
	case addr.RegionRAM:
		storeMem(b.RAM, off, val, width)
	case addr.RegionScratchpad:
		storeMem(b.Scratchpad, off, val, width)
	case addr.RegionBIOS:
		b.hostFatal(vaddr, "store to BIOS region (offset 0x%X)", off)
	case addr.RegionMemControl:
		b.storeMemControl(vaddr, off, val)
	case addr.RegionRAMSize:
		b.ramSizeReg = val
	case addr.RegionCacheControl:
		b.cacheControl = val
	case addr.RegionIRQControl:
		b.storeIRQ(off, val)
	case addr.RegionDMA:
		b.storeDMA(off, val, width)
	case addr.RegionTimer0:
		b.storeTimer(0, off, val)
	case addr.RegionTimer1:
		b.storeTimer(1, off, val)
	case addr.RegionTimer2:
		b.storeTimer(2, off, val)
	case addr.RegionGPU:
		b.storeGPU(off, val)
	case addr.RegionCDROM:
		b.storeCDROM(off, val, width)
	case addr.RegionJoypad:
		b.storeJoypad(off, val)
	default: // SIO, SPU, expansions: unimplemented, dropped
	}
}

func (b *Bus) hostFatal(vaddr uint32, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	slog.Error("host-fatal fault", "pc", fmt.Sprintf("0x%08X", b.currentPC), "vaddr", fmt.Sprintf("0x%08X", vaddr), "error", msg)
	panic(fmt.Sprintf("host-fatal fault at pc=0x%08X (vaddr=0x%08X): %s", b.currentPC, vaddr, msg))
}

// storeMemControl validates the fixed magic bases the BIOS writes at
// startup; any other value at offsets 0/4 is a configuration bug on
// the host's part.
func (b *Bus) storeMemControl(vaddr uint32, off uint32, val uint32) {
	switch off {
	case 0:
		if val != 0x1F00_0000 {
			b.hostFatal(vaddr, "MemControl offset 0 written with 0x%08X, want 0x1F000000", val)
		}
	case 4:
		if val != 0x1F80_2000 {
			b.hostFatal(vaddr, "MemControl offset 4 written with 0x%08X, want 0x1F802000", val)
		}
	}
	if off/4 < uint32(len(b.memControl)) {
		b.memControl[off/4] = val
	}
}

func (b *Bus) loadIRQ(off uint32) uint32 {
	switch off {
	case 0:
		return b.IRQ.Stat()
	case 4:
		return b.IRQ.Mask()
	default:
		return 0
	}
}

func (b *Bus) storeIRQ(off uint32, val uint32) {
	switch off {
	case 0:
		b.IRQ.Acknowledge(val)
	case 4:
		b.IRQ.SetMask(val)
	}
}

// DMA register window decode: bits 6:4 select a channel (0-6) or the
// controller (7); bits 3:0 select base/block-control/channel-control,
// or the controller's priority/interrupt registers.
func (b *Bus) loadDMA(off uint32, width int) uint32 {
	if width != 4 {
		slog.Warn("dma: non-word register access", "off", off, "width", width)
		return 0
	}
	major := (off >> 4) & 0x7
	minor := off & 0xF

	if major == 7 {
		switch minor {
		case 0:
			return b.DMA.DPCR()
		case 4:
			return b.DMA.DICR()
		default:
			return 0
		}
	}

	ch := &b.DMA.Channels[major]
	switch minor {
	case 0:
		return ch.Base()
	case 4:
		return ch.BCR()
	case 8:
		return ch.Control()
	default:
		return 0
	}
}

func (b *Bus) storeDMA(off uint32, val uint32, width int) {
	if width != 4 {
		slog.Warn("dma: non-word register access", "off", off, "width", width)
		return
	}
	major := (off >> 4) & 0x7
	minor := off & 0xF

	if major == 7 {
		switch minor {
		case 0:
			b.DMA.SetDPCR(val)
		case 4:
			b.DMA.SetDICR(val)
		}
		return
	}

	ch := &b.DMA.Channels[major]
	switch minor {
	case 0:
		ch.SetBase(val)
	case 4:
		ch.SetBCR(val)
	case 8:
		ch.SetControl(val)
		b.runDMA(int(major))
	}
}

func (b *Bus) runDMA(i int) {
	var port dma.Port
	switch i {
	case dma.GPU:
		port = b.GPU
	case dma.CDROM:
		port = b.CDROM
	case dma.OTC:
		port = nil // runOTC never touches a device port
	default:
		port = stubPort{name: []string{"mdec-in", "mdec-out", "", "", "spu", "pio"}[i]}
	}
	b.DMA.Run(i, b.RAM, port)
}

func (b *Bus) loadTimer(i int, off uint32) uint32 {
	t := b.timers[i]
	switch off {
	case 0:
		return t.Counter()
	case 4:
		return t.Mode()
	case 8:
		return t.Target()
	default:
		return 0
	}
}

func (b *Bus) storeTimer(i int, off uint32, val uint32) {
	t := b.timers[i]
	switch off {
	case 0:
		t.SetCounter(val)
	case 4:
		t.SetMode(val)
	case 8:
		t.SetTarget(val)
	}
}

func (b *Bus) loadGPU(off uint32) uint32 {
	switch off {
	case 0:
		return b.GPU.Read()
	case 4:
		return b.GPU.Status()
	default:
		return 0
	}
}

func (b *Bus) storeGPU(off uint32, val uint32) {
	switch off {
	case 0:
		b.GPU.WriteGP0(val)
	case 4:
		b.GPU.WriteGP1(val)
	}
}

func (b *Bus) loadCDROM(off uint32, width int) uint32 {
	if off == 2 && width > 1 {
		if width == 2 {
			return b.CDROM.ReadData16()
		}
		return b.CDROM.ReadData32()
	}
	return b.CDROM.Load8(off)
}

func (b *Bus) storeCDROM(off uint32, val uint32, width int) {
	if width != 1 {
		slog.Warn("cdrom: non-byte register access", "off", off, "width", width)
		return
	}
	b.CDROM.Store8(off, val)
}

func (b *Bus) loadJoypad(off uint32) uint32 {
	switch off {
	case 0x0:
		return b.Joypad.ReadRX()
	case 0x4:
		return b.Joypad.Status()
	case 0x8:
		return b.Joypad.Mode()
	case 0xA:
		return b.Joypad.Control()
	case 0xE:
		return b.Joypad.Baud()
	default:
		return 0
	}
}

func (b *Bus) storeJoypad(off uint32, val uint32) {
	switch off {
	case 0x0:
		b.Joypad.WriteTX(uint8(val))
	case 0x8:
		b.Joypad.SetMode(val)
	case 0xA:
		b.Joypad.SetControl(val)
	case 0xE:
		b.Joypad.SetBaud(val)
	}
}
