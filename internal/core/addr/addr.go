// Package addr holds the physical address map and segment-masking
// rules used to translate a CPU virtual address into a bus region.
package addr

// Region identifies one of the physical memory regions or device
// register windows the bus dispatches to.
type Region uint8

const (
	RegionRAM Region = iota
	RegionExpansion1
	RegionScratchpad
	RegionMemControl
	RegionJoypad
	RegionSIO
	RegionRAMSize
	RegionIRQControl
	RegionDMA
	RegionTimer0
	RegionTimer1
	RegionTimer2
	RegionCDROM
	RegionGPU
	RegionSPU
	RegionExpansion2
	RegionExpansion3
	RegionBIOS
	RegionCacheControl
)

// Map describes one (start, length) physical window and the region it
// belongs to. Entries are scanned in declared order on every bus
// access, so earlier, narrower entries win over later overlaps.
type Map struct {
	Region Region
	Start  uint32
	Length uint32
}

// Table is the physical address map, in declared scan order.
var Table = []Map{
	{RegionRAM, 0x0000_0000, 2 * 1024 * 1024},
	{RegionExpansion1, 0x1F00_0000, 256},
	{RegionScratchpad, 0x1F80_0000, 1024},
	{RegionMemControl, 0x1F80_1000, 36},
	{RegionJoypad, 0x1F80_1040, 16},
	{RegionSIO, 0x1F80_1050, 16},
	{RegionRAMSize, 0x1F80_1060, 4},
	{RegionIRQControl, 0x1F80_1070, 8},
	{RegionDMA, 0x1F80_1080, 128},
	{RegionTimer0, 0x1F80_1100, 12},
	{RegionTimer1, 0x1F80_1110, 12},
	{RegionTimer2, 0x1F80_1120, 12},
	{RegionCDROM, 0x1F80_1800, 4},
	{RegionGPU, 0x1F80_1810, 16},
	{RegionSPU, 0x1F80_1C00, 640},
	{RegionExpansion2, 0x1F80_2000, 66},
	{RegionExpansion3, 0x1FA0_0000, 2 * 1024 * 1024},
	{RegionBIOS, 0x1FC0_0000, 512 * 1024},
	{RegionCacheControl, 0xFFFE_0130, 4},
}

// Mask translates a virtual address to a physical address by masking
// against the per-segment rule keyed on bits 31:29:
// KUSEG and KSEG2 are identity, KSEG0 masks to 0x7FFFFFFF, KSEG1 masks
// to 0x1FFFFFFF.
func Mask(vaddr uint32) uint32 {
	switch vaddr >> 29 {
	case 4: // KSEG0: 0x8000_0000 - 0x9FFF_FFFF
		return vaddr & 0x7FFF_FFFF
	case 5: // KSEG1: 0xA000_0000 - 0xBFFF_FFFF
		return vaddr & 0x1FFF_FFFF
	default: // KUSEG (0-3) and KSEG2 (6-7) are identity
		return vaddr
	}
}

// Find scans Table in declared order and returns the matching region
// plus the offset within it. ok is false when no region matches.
func Find(paddr uint32) (region Region, offset uint32, ok bool) {
	for _, m := range Table {
		if paddr >= m.Start && paddr < m.Start+m.Length {
			return m.Region, paddr - m.Start, true
		}
	}
	return 0, 0, false
}
