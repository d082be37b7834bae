// Package machine wires the CPU and bus together into the top-level
// fetch/execute/tick loop, with cooperative cancellation polled every
// ~1024 instructions.
package machine

import (
	"log/slog"

	"github.com/nullterm/psxgo/internal/core/bios"
	"github.com/nullterm/psxgo/internal/core/bus"
	"github.com/nullterm/psxgo/internal/core/cpu"
	"github.com/nullterm/psxgo/internal/core/gpu"
)

// CancelFunc is polled periodically; returning true requests the run
// loop stop without abandoning any in-progress work.
type CancelFunc func() bool

// StopReason explains why Run returned.
type StopReason uint8

const (
	StopNotRunning StopReason = iota
	StopCancelled
	StopHalted
)

const cancelPollInterval = 1024
const progressLogInterval = 1_000_000

// Machine owns the CPU and the bus it drives.
type Machine struct {
	CPU *cpu.CPU
	Bus *bus.Bus

	running          bool
	instructionCount uint64
}

// New builds a machine around the given firmware image.
func New(image *bios.BIOS) *Machine {
	b := bus.New(image)
	c := cpu.New(b)
	return &Machine{CPU: c, Bus: b}
}

// LoadDisc attaches an optional disc image.
func (m *Machine) LoadDisc(data []byte) { m.Bus.SetDisc(data) }

// SetRenderer attaches the external vertex/quad sink the GPU pushes
// completed primitives to.
func (m *Machine) SetRenderer(r gpu.Renderer) { m.Bus.SetRenderer(r) }

// InstructionCount reports how many steps Run has executed so far.
func (m *Machine) InstructionCount() uint64 { return m.instructionCount }

// Run steps the CPU until it halts (breakpoint, watchpoint, or a
// BREAK instruction) or cancel reports true, polled every 1024
// instructions so an in-flight DMA is never abandoned mid-transfer.
// cancel may be nil.
func (m *Machine) Run(cancel CancelFunc) StopReason {
	m.running = true
	for m.running {
		if m.CPU.Halted() {
			return StopHalted
		}

		m.CPU.Step()
		m.instructionCount++

		if cancel != nil && m.instructionCount%cancelPollInterval == 0 && cancel() {
			return StopCancelled
		}
		if m.instructionCount%progressLogInterval == 0 {
			slog.Debug("machine: progress", "instructions", m.instructionCount, "pc", m.CPU.PC())
		}
	}
	return StopNotRunning
}

// Stop requests the run loop exit at the next opportunity.
func (m *Machine) Stop() { m.running = false }
