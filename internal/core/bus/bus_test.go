package bus

import (
	"testing"

	"github.com/nullterm/psxgo/internal/core/bios"
	"github.com/nullterm/psxgo/internal/core/dma"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	raw := make([]byte, bios.Size)
	image, err := bios.Load(raw)
	if err != nil {
		t.Fatalf("bios.Load: %v", err)
	}
	return New(image)
}

func TestRAMRoundTripThroughKSEG0AndKSEG1(t *testing.T) {
	b := newTestBus(t)

	b.Store32(0x8000_1000, 0xCAFEBABE) // KSEG0
	if got := b.Load32(0xA000_1000); got != 0xCAFEBABE { // same physical cell via KSEG1
		t.Errorf("Load32(KSEG1) = %#x; want 0xCAFEBABE written through KSEG0", got)
	}
}

func TestStoreToBIOSIsHostFatal(t *testing.T) {
	b := newTestBus(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("Store32 to the BIOS region did not panic")
		}
	}()
	b.Store32(0xBFC0_0000, 0)
}

func TestUnmappedAddressReadsZero(t *testing.T) {
	b := newTestBus(t)
	if got := b.Load32(0x1F80_2100); got != 0 {
		t.Errorf("Load32(unmapped) = %#x; want 0", got)
	}
}

func TestDMAChannelTriggersOnControlWrite(t *testing.T) {
	b := newTestBus(t)
	b.Store32(0x0000_0000, 0x0000_0000) // GP0 nop
	b.Store32(0x0000_0004, 0x0000_0000) // GP0 nop

	base := addr_DMABase(dma.GPU)
	b.Store32(base+0x0, 0) // channel base = RAM offset 0
	b.Store32(base+0x4, 2) // block size 2
	b.Store32(base+0x8, (1<<0)|(1<<24)|(1<<28)) // FromRam, enable, trigger, manual sync

	dicr := b.Load32(0x1F80_1080 + 0x74) // major=7 (controller), minor=4 (DICR)
	if dicr&(1<<26) == 0 {
		t.Fatalf("DICR = %#x; want channel-2 (GPU) flag bit 26 set after the transfer ran", dicr)
	}
}

func TestDPCRResetValueAndRoundTrip(t *testing.T) {
	b := newTestBus(t)
	dpcrAddr := uint32(0x1F80_1080 + 0x70) // major=7 (controller), minor=0 (DPCR)

	if got := b.Load32(dpcrAddr); got != 0x0765_4321 {
		t.Fatalf("DPCR = %#x on a fresh bus; want 0x07654321", got)
	}
	b.Store32(dpcrAddr, 0x1111_1111)
	if got := b.Load32(dpcrAddr); got != 0x1111_1111 {
		t.Errorf("DPCR = %#x after a store; want 0x11111111", got)
	}
}

func TestIRQRegistersRouteThroughAggregator(t *testing.T) {
	b := newTestBus(t)
	b.IRQ.Raise(0) // VBlank line, exercised directly since nothing else pulses it synchronously here

	if b.Load32(0x1F80_1070) == 0 {
		t.Fatalf("IRQ STAT register reads 0 after Raise")
	}
	b.Store32(0x1F80_1074, 0xFFFF_FFFF) // unmask everything
	if !b.IRQPending() {
		t.Fatalf("IRQPending() false after unmasking a raised line")
	}
	b.Store32(0x1F80_1070, 0xFFFF_FFFF) // acknowledge
	if b.IRQPending() {
		t.Fatalf("IRQPending() true after acknowledging every line")
	}
}

// addr_DMABase returns the register-window base address for DMA
// channel i (0-6), matching the bus's major/minor decode.
func addr_DMABase(i int) uint32 {
	return 0x1F80_1080 + uint32(i)*0x10
}
