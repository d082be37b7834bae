// Package joypad implements the serial controller port: TX/RX byte
// FIFOs and the status/mode/control/baud registers.
// Pad protocol decoding beyond the unconnected-controller probe
// response is out of scope; this models just enough of the wire
// protocol for a BIOS to boot past its controller probe.
package joypad

// Joypad is the serial controller interface state.
type Joypad struct {
	txQueue []uint8
	rxQueue []uint8

	mode    uint16
	control uint16
	baud    uint16

	ack bool
	irq bool
}

// New returns a joypad port with no pending traffic.
func New() *Joypad {
	return &Joypad{}
}

// WriteTX enqueues one byte for transmission; Tick drains it.
func (j *Joypad) WriteTX(v uint8) {
	j.txQueue = append(j.txQueue, v)
}

// ReadRX dequeues one received byte, or 0xFF (idle line) if empty.
func (j *Joypad) ReadRX() uint32 {
	if len(j.rxQueue) == 0 {
		return 0xFF
	}
	b := j.rxQueue[0]
	j.rxQueue = j.rxQueue[1:]
	return uint32(b)
}

// Tick drains one TX byte per step. Command byte 0x01 (select
// controller port 1) gets the unconnected-controller response: a
// single zero byte into RX.
func (j *Joypad) Tick() {
	if len(j.txQueue) == 0 {
		return
	}
	b := j.txQueue[0]
	j.txQueue = j.txQueue[1:]
	if b == 0x01 {
		j.rxQueue = append(j.rxQueue, 0x00)
		j.irq = true
	}
}

// Status assembles the 32-bit status register: TX-empty, RX-not-
// empty, ack level, IRQ flag, and the baud-rate reload value at bit 11
// and up.
func (j *Joypad) Status() uint32 {
	var v uint32
	if len(j.txQueue) == 0 {
		v |= 1<<0 | 1<<2 // TX FIFO empty / ready to send another byte
	}
	if len(j.rxQueue) > 0 {
		v |= 1 << 1
	}
	if j.ack {
		v |= 1 << 7
	}
	if j.irq {
		v |= 1 << 9
	}
	v |= uint32(j.baud) << 11
	return v
}

// Mode/SetMode expose the mode register (baud-rate-factor, character
// length, parity, clock polarity).
func (j *Joypad) Mode() uint32     { return uint32(j.mode) }
func (j *Joypad) SetMode(v uint32) { j.mode = uint16(v) }

// Control/SetControl expose tx-enable, select, rx-enable, ack, reset,
// and target-select. Bit 4 (ack) clears the latched ack/IRQ; bit 6
// (reset) clears both FIFOs and the register itself.
func (j *Joypad) Control() uint32 { return uint32(j.control) }
func (j *Joypad) SetControl(v uint32) {
	j.control = uint16(v)
	if j.control&(1<<4) != 0 {
		j.ack = false
		j.irq = false
	}
	if j.control&(1<<6) != 0 {
		j.txQueue = nil
		j.rxQueue = nil
		j.control = 0
		j.mode = 0
	}
}

// Baud/SetBaud expose the baud-rate reload register.
func (j *Joypad) Baud() uint32     { return uint32(j.baud) }
func (j *Joypad) SetBaud(v uint32) { j.baud = uint16(v) }

// IRQLine reports the joypad's level for the interrupt aggregator.
func (j *Joypad) IRQLine() bool { return j.irq }
