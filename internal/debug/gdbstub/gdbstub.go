// Package gdbstub implements a minimal GDB remote serial protocol
// server over TCP: register/memory read-write, software breakpoints,
// and hardware watchpoints against a cpu.CPU, hand-rolled since there
// is no widely used Go GDB-stub library to depend on instead.
package gdbstub

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/nullterm/psxgo/internal/core/cpu"
)

// Bus is the memory surface the stub reads/writes through.
type Bus interface {
	Load8(addr uint32) uint32
	Store8(addr uint32, val uint32)
}

// Server answers one GDB remote connection at a time.
type Server struct {
	CPU *cpu.CPU
	Bus Bus

	listener net.Listener
}

// Listen opens addr (e.g. "127.0.0.1:1234") for a GDB client debugging
// the given CPU through bus.
func Listen(addr string, c *cpu.CPU, bus Bus) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("gdbstub: listen %s: %w", addr, err)
	}
	return &Server{CPU: c, Bus: bus, listener: l}, nil
}

// Addr returns the address the stub is listening on.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Close stops accepting connections.
func (s *Server) Close() error { return s.listener.Close() }

// Serve blocks accepting and handling one client at a time; after a
// client disconnects it waits for the next one, and it returns only
// when Accept fails (for example after Close).
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		s.CPU.TrapBreak = true
		s.handle(conn)
	}
}

type session struct {
	*Server
	r *bufio.Reader
	c net.Conn
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	sess := &session{Server: s, r: bufio.NewReader(conn), c: conn}
	for {
		pkt, ok := sess.readPacket()
		if !ok {
			return
		}
		sess.dispatch(pkt)
	}
}

// readPacket strips GDB's '$...#cc' framing and acks with '+'.
func (s *session) readPacket() (string, bool) {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return "", false
		}
		switch b {
		case '$':
			var sb strings.Builder
			for {
				c, err := s.r.ReadByte()
				if err != nil {
					return "", false
				}
				if c == '#' {
					// consume the two-byte checksum, unchecked
					s.r.ReadByte()
					s.r.ReadByte()
					s.c.Write([]byte{'+'})
					return sb.String(), true
				}
				sb.WriteByte(c)
			}
		case 0x03: // Ctrl-C
			s.CPU.Resume()
			return "", true
		default:
			// ignore stray bytes between packets (acks, noise)
		}
	}
}

func checksum(data string) uint8 {
	var sum uint8
	for i := 0; i < len(data); i++ {
		sum += data[i]
	}
	return sum
}

func (s *session) reply(body string) {
	fmt.Fprintf(s.c, "$%s#%02x", body, checksum(body))
}

func (s *session) dispatch(pkt string) {
	if pkt == "" {
		return
	}
	switch {
	case pkt == "?":
		s.reply(s.stopReply())
	case pkt == "g":
		s.reply(s.readRegs())
	case strings.HasPrefix(pkt, "G"):
		s.writeRegs(pkt[1:])
		s.reply("OK")
	case strings.HasPrefix(pkt, "m"):
		s.reply(s.readMem(pkt[1:]))
	case strings.HasPrefix(pkt, "M"):
		s.reply(s.writeMem(pkt[1:]))
	case strings.HasPrefix(pkt, "c"):
		s.CPU.Resume()
		s.reply(s.runUntilStop())
	case strings.HasPrefix(pkt, "s"):
		s.CPU.Resume()
		s.CPU.Step()
		s.reply(s.stopReply())
	case strings.HasPrefix(pkt, "Z0,"), strings.HasPrefix(pkt, "z0,"):
		s.breakpoint(pkt)
	case strings.HasPrefix(pkt, "Z"), strings.HasPrefix(pkt, "z"):
		s.watchpoint(pkt)
	case strings.HasPrefix(pkt, "qSupported"):
		s.reply("PacketSize=4000")
	case pkt == "qC":
		s.reply("QC1")
	case pkt == "qfThreadInfo":
		s.reply("m1")
	case pkt == "qsThreadInfo":
		s.reply("l")
	case pkt == "qAttached":
		s.reply("1")
	case pkt == "D":
		s.reply("OK")
	case pkt == "vCont?":
		s.reply("vCont;c;s")
	default:
		s.reply("")
	}
}

// stopReply reports why the target last stopped, per GDB's T05 /
// SIGTRAP convention for breakpoints, watchpoints, and BREAK.
func (s *session) stopReply() string {
	const sigTrap = 5
	switch s.CPU.LastStopReason() {
	case cpu.StopBreakpoint, cpu.StopWatchpoint, cpu.StopBreakInstruction:
		return fmt.Sprintf("T%02x", sigTrap)
	default:
		return fmt.Sprintf("S%02x", sigTrap)
	}
}

// runUntilStop steps until a breakpoint/watchpoint/BREAK halts the
// CPU; this blocks the connection goroutine for the duration, which is
// acceptable for a single-client debug stub.
func (s *session) runUntilStop() string {
	for !s.CPU.Halted() {
		s.CPU.Step()
	}
	return s.stopReply()
}

// readRegs matches gdbstub_arch::mips's register layout: 32 GPRs, then
// sr, lo, hi, bad, cause, pc (each little-endian 32-bit hex).
func (s *session) readRegs() string {
	var sb strings.Builder
	regs := s.CPU.Regs()
	for _, v := range regs {
		writeLE32(&sb, v)
	}
	writeLE32(&sb, s.CPU.COP0.SR) // status
	writeLE32(&sb, s.CPU.LO())
	writeLE32(&sb, s.CPU.HI())
	writeLE32(&sb, 0) // badvaddr
	writeLE32(&sb, s.CPU.COP0.CAUSE)
	writeLE32(&sb, s.CPU.PC())
	return sb.String()
}

func (s *session) writeRegs(hex string) {
	for i := 0; i < 32 && len(hex) >= (i+1)*8; i++ {
		v := parseLE32(hex[i*8 : i*8+8])
		s.CPU.SetReg(uint32(i), v)
	}
}

func writeLE32(sb *strings.Builder, v uint32) {
	fmt.Fprintf(sb, "%02x%02x%02x%02x", v&0xFF, (v>>8)&0xFF, (v>>16)&0xFF, (v>>24)&0xFF)
}

func parseLE32(hex string) uint32 {
	var b [4]uint64
	for i := 0; i < 4; i++ {
		b[i], _ = strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// readMem handles "addr,length".
func (s *session) readMem(args string) string {
	parts := strings.SplitN(args, ",", 2)
	if len(parts) != 2 {
		return "E01"
	}
	addr, err1 := strconv.ParseUint(parts[0], 16, 32)
	length, err2 := strconv.ParseUint(parts[1], 16, 32)
	if err1 != nil || err2 != nil {
		return "E01"
	}
	var sb strings.Builder
	for i := uint64(0); i < length; i++ {
		b := s.Bus.Load8(uint32(addr + i))
		fmt.Fprintf(&sb, "%02x", b&0xFF)
	}
	return sb.String()
}

// writeMem handles "addr,length:data".
func (s *session) writeMem(args string) string {
	head, data, ok := strings.Cut(args, ":")
	if !ok {
		return "E01"
	}
	parts := strings.SplitN(head, ",", 2)
	if len(parts) != 2 {
		return "E01"
	}
	addr, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return "E01"
	}
	for i := 0; i*2+2 <= len(data); i++ {
		v, err := strconv.ParseUint(data[i*2:i*2+2], 16, 8)
		if err != nil {
			return "E01"
		}
		s.Bus.Store8(uint32(addr)+uint32(i), uint32(v))
	}
	return "OK"
}

// breakpoint handles Z0/z0 (software breakpoint) packets: "Z0,addr,kind".
func (s *session) breakpoint(pkt string) {
	addr, _, ok := parseBreakArgs(pkt)
	if !ok {
		s.reply("E01")
		return
	}
	if pkt[0] == 'Z' {
		s.CPU.AddBreakpoint(addr)
	} else {
		s.CPU.RemoveBreakpoint(addr)
	}
	s.reply("OK")
}

// watchpoint handles Z2/z2 (write), Z3/z3 (read), Z4/z4 (access):
// "Zn,addr,length".
func (s *session) watchpoint(pkt string) {
	addr, length, ok := parseBreakArgs(pkt)
	if !ok {
		s.reply("E01")
		return
	}
	var kind cpu.WatchKind
	switch pkt[1] {
	case '2':
		kind = cpu.WatchWrite
	case '3':
		kind = cpu.WatchRead
	case '4':
		kind = cpu.WatchRead | cpu.WatchWrite
	default:
		s.reply("")
		return
	}
	if pkt[0] == 'Z' {
		s.CPU.AddWatchpoint(addr, length, kind)
	} else {
		s.CPU.RemoveWatchpoint(addr, length, kind)
	}
	s.reply("OK")
}

func parseBreakArgs(pkt string) (addr, length uint32, ok bool) {
	rest := pkt[3:] // skip "Zn,"
	parts := strings.Split(rest, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	a, err1 := strconv.ParseUint(parts[0], 16, 32)
	l, err2 := strconv.ParseUint(parts[1], 16, 32)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if l == 0 {
		l = 1
	}
	return uint32(a), uint32(l), true
}
