// Command p5sim assembles and runs a program against the five-stage
// pipeline core, printing per-cycle trace lines and a final register
// dump.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v2"

	"github.com/sarchlab/p5core/insts"
	"github.com/sarchlab/p5core/memsys"
	"github.com/sarchlab/p5core/timing/core"
	"github.com/sarchlab/p5core/timing/memconfig"
)

func main() {
	app := &cli.App{
		Name:    "p5sim",
		Usage:   "simulate a five-stage in-order pipeline",
		Version: "v0.1.0",
		Commands: []*cli.Command{
			runCommand(),
			dumpConfigCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "assemble a program and run it to a fixed cycle count",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "program",
				Aliases:  []string{"p"},
				Usage:    "assembly source file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "memory config JSON file (defaults to built-in defaults)",
			},
			&cli.IntFlag{
				Name:  "cycles",
				Usage: "number of cycles to run",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print per-cycle stage contents",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}

	source, err := os.ReadFile(c.String("program"))
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	program, err := insts.Assemble(string(source))
	if err != nil {
		return fmt.Errorf("assembling program: %w", err)
	}

	words := make([]uint32, len(program))
	for i, in := range program {
		words[i] = insts.Encode(in)
	}

	instMem := memsys.NewInstMemory()
	instMem.LoadProgram(0, words)
	dataMem := memsys.NewDataMemory(cfg.CacheConfig())

	cpu := core.NewCore(core.Config{RegCount: cfg.RegCount}, instMem, dataMem)
	cpu.Reset()

	trace := c.Bool("trace")
	cycles := c.Int("cycles")

	for i := 0; i < cycles; i++ {
		if err := cpu.Tick(); err != nil {
			return fmt.Errorf("cycle %d: %w", i, err)
		}
		dataMem.Tick()

		if trace {
			printTrace(i, cpu.State())
		}
	}

	printFinalState(cpu.State())
	return nil
}

func printTrace(cycle int, s core.State) {
	p := s.Pipe
	fmt.Printf("cycle %4d | pc=%-4d IF=%-6s ID=%-6s EX=%-6s MEM=%-6s WB=%-6s stall=%v branch=%v wait=%v\n",
		cycle, s.PC, p.IF.Cmd.Op, p.ID.Cmd.Op, p.EX.Cmd.Op, p.MEM.Cmd.Op, p.WB.Cmd.Op,
		p.Stall, p.BranchTaken, p.MemWait)
}

func printFinalState(s core.State) {
	fmt.Printf("final state after %d cycles, pc=%d\n", s.Cycle, s.PC)
	for i, v := range s.Regs {
		if v != 0 {
			fmt.Printf("  R%d = %d\n", i, v)
		}
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump-config",
		Usage: "print the default memory configuration as JSON",
		Action: func(c *cli.Context) error {
			data, err := json.MarshalIndent(memconfig.Default(), "", "  ")
			if err != nil {
				return fmt.Errorf("serializing default config: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func loadConfig(path string) (*memconfig.Config, error) {
	if path == "" {
		return memconfig.Default(), nil
	}
	return memconfig.Load(path)
}
