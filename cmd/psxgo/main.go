// Command psxgo runs the emulator core against a BIOS image, with an
// optional disc and an optional GDB remote debug stub. It picks
// between a terminal frontend, a headless instruction-budgeted run,
// and a GDB-driven debug session based on flags and TTY detection.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/nullterm/psxgo/internal/core/bios"
	"github.com/nullterm/psxgo/internal/core/machine"
	"github.com/nullterm/psxgo/internal/debug/gdbstub"
	"github.com/nullterm/psxgo/internal/frontend/terminal"
)

func main() {
	app := cli.NewApp()
	app.Name = "psxgo"
	app.Usage = "psxgo --bios <firmware> [--disc <image>]"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "bios",
			Usage: "Path to a 512 KiB BIOS firmware image",
		},
		cli.StringFlag{
			Name:  "disc",
			Usage: "Path to a disc image (optional)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a terminal display",
		},
		cli.IntFlag{
			Name:  "instructions",
			Usage: "Instruction budget in headless mode (0 = unbounded)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "Listen for a GDB remote connection instead of running freely",
		},
		cli.StringFlag{
			Name:  "debug-addr",
			Usage: "Address the GDB stub listens on",
			Value: "127.0.0.1:1234",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "Enable debug-level logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("psxgo exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	biosPath := c.String("bios")
	if biosPath == "" {
		cli.ShowAppHelp(c)
		return errors.New("no BIOS path provided")
	}

	raw, err := os.ReadFile(biosPath)
	if err != nil {
		return fmt.Errorf("reading BIOS image: %w", err)
	}
	image, err := bios.Load(raw)
	if err != nil {
		return err
	}

	m := machine.New(image)

	if discPath := c.String("disc"); discPath != "" {
		disc, err := os.ReadFile(discPath)
		if err != nil {
			return fmt.Errorf("reading disc image: %w", err)
		}
		m.LoadDisc(disc)
	}

	if c.Bool("debug") {
		return runDebug(m, c.String("debug-addr"))
	}

	if c.Bool("headless") || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runHeadless(m, c.Int("instructions"))
	}
	return runTerminal(m)
}

// runDebug blocks serving a single GDB client at a time until the
// process is killed; the client drives stepping/continuing, so there
// is no local instruction budget here.
func runDebug(m *machine.Machine, addr string) error {
	stub, err := gdbstub.Listen(addr, m.CPU, m.Bus)
	if err != nil {
		return err
	}
	defer stub.Close()
	slog.Info("gdbstub: listening", "addr", stub.Addr())
	return stub.Serve()
}

// runHeadless steps the machine with no display attached, stopping at
// the first cancellation poll (every 1024 instructions) that finds at
// least budget instructions executed (0 means run until the CPU halts).
func runHeadless(m *machine.Machine, budget int) error {
	slog.Info("running headless", "instructions", budget)
	var cancel machine.CancelFunc
	if budget > 0 {
		cancel = func() bool { return m.InstructionCount() >= uint64(budget) }
	}
	reason := m.Run(cancel)
	slog.Info("headless run stopped", "reason", reason, "instructions", m.InstructionCount())
	return nil
}

// runTerminal drives the machine with a terminal display attached,
// polling window/quit events between instruction bursts.
func runTerminal(m *machine.Machine) error {
	front, err := terminal.New()
	if err != nil {
		return fmt.Errorf("opening terminal frontend: %w", err)
	}
	defer front.Close()
	m.SetRenderer(front)

	const burst = 4096
	quit := false
	for {
		for i := 0; i < burst; i++ {
			if m.CPU.Halted() {
				quit = true
				break
			}
			m.CPU.Step()
		}
		front.Present()
		for {
			ev, ok := front.PollEvent()
			if !ok {
				break
			}
			if ev.Quit {
				quit = true
			}
		}
		if quit {
			return nil
		}
	}
}
