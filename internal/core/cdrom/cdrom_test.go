package cdrom

import "testing"

func tick(c *CDROM, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

func TestGetStatSchedulesAckResponse(t *testing.T) {
	c := New()
	c.Store8(0, 0) // select index 0
	c.Store8(1, 0x01) // GetStat command

	if !c.response.Empty() {
		t.Fatalf("response FIFO non-empty before the scheduled delay elapses")
	}
	tick(c, 2)
	if c.response.Empty() {
		t.Fatalf("response FIFO empty after the ack task should have fired")
	}
}

func TestGetIdWithoutDiscReportsError(t *testing.T) {
	c := New() // no disc attached
	c.Store8(0, 0)
	c.Store8(1, 0x1A) // GetId

	tick(c, 2)  // ack
	tick(c, 20) // GetId result

	if c.response.Empty() {
		t.Fatalf("response FIFO empty after GetId's scheduled tasks fired")
	}
	stat := c.response.Pop()
	if stat&0x10 == 0 {
		t.Errorf("driveStat = %#x; want the no-disc bit (0x10) set", stat)
	}
}

func TestReadSectorAdvancesLocationAndStagesData(t *testing.T) {
	disc := make([]byte, 800*2)
	for i := range disc[800:] {
		disc[800+i] = 0xAB
	}
	c := New()
	c.SetDisc(disc)

	// SetLoc to sector 1 (min=0, sec=0, sector=1)
	c.Store8(0, 0)
	c.Store8(2, 0)
	c.Store8(2, 0)
	c.Store8(2, 1)
	c.Store8(1, 0x02) // SetLoc
	tick(c, 2)
	c.response.Pop()

	c.Store8(1, 0x06) // ReadN
	tick(c, 2)        // ack
	c.response.Pop()
	tick(c, 200) // sector ready

	if c.locSector != 2 {
		t.Errorf("locSector = %d after one sector read; want 2 (auto-advance)", c.locSector)
	}
	if len(c.stagedSector) != 800 {
		t.Fatalf("stagedSector length = %d; want 800 for non-raw mode", len(c.stagedSector))
	}
	if c.stagedSector[0] != 0xAB {
		t.Errorf("stagedSector[0] = %#x; want 0xAB from the disc image at sector 1", c.stagedSector[0])
	}
}

func TestDataPortDrainsStagedSectorAfterRequest(t *testing.T) {
	c := New()
	c.stagedSector = []byte{1, 2, 3, 4}

	c.Store8(0, 0)
	c.Store8(3, 0x80) // request: stage the sector for reading

	if got := c.Load8(2); got != 1 {
		t.Errorf("first data byte = %d; want 1", got)
	}
	if got := c.Load8(2); got != 2 {
		t.Errorf("second data byte = %d; want 2", got)
	}
}

func TestStatusByteReflectsFIFOAndTaskState(t *testing.T) {
	c := New()
	// Fresh state: params empty, not full, response empty, no pending task.
	stat := c.statusByte()
	if stat&(1<<3) == 0 {
		t.Errorf("param-empty bit clear on a fresh drive")
	}
	if stat&(1<<7) != 0 {
		t.Errorf("busy bit set with no pending task")
	}

	c.Store8(0, 0)
	c.Store8(1, 0x01) // GetStat, schedules a task
	stat = c.statusByte()
	if stat&(1<<7) == 0 {
		t.Errorf("busy bit clear with a pending task scheduled")
	}
}

func TestIRQAcknowledgeClearsOnlyWrittenBits(t *testing.T) {
	c := New()
	c.setIRQ(intFirstOk)
	if c.iflag&0x07 != intFirstOk {
		t.Fatalf("iflag = %#x after setIRQ; want %#x", c.iflag, intFirstOk)
	}
	c.Store8(0, 1)    // select index 1 (IE/IFLAG bank)
	c.Store8(3, 0x07) // ack the low three bits
	if c.iflag&0x07 != 0 {
		t.Errorf("iflag low bits = %#x after acknowledge; want 0", c.iflag&0x07)
	}
}
