// Package core is a thin façade over package pipeline, giving the driver
// a small, stable surface (spec §6) independent of the pipeline package's
// internal stage-by-stage machinery.
package core

import (
	"github.com/sarchlab/p5core/memsys"
	"github.com/sarchlab/p5core/timing/pipeline"
)

// Config is the core's construction-time configuration.
type Config struct {
	RegCount int
}

// State is the externally observable snapshot returned by State
// (core_get_state): PC, registers, and per-stage latch contents.
type State struct {
	PC     uint64
	Regs   []int32
	Pipe   pipeline.State
	Cycle  uint64
}

// Core wraps a pipeline.Pipeline, exposing core_reset/core_clock_tick/
// core_get_state (spec §6).
type Core struct {
	p *pipeline.Pipeline
}

// NewCore builds a Core around the given instruction and data memories.
// Call Reset before the first Tick.
func NewCore(cfg Config, instMem *memsys.InstMemory, dataMem *memsys.DataMemory) *Core {
	pcfg := pipeline.Config{RegCount: cfg.RegCount}
	return &Core{p: pipeline.NewPipeline(pcfg, instMem, dataMem)}
}

// Reset implements core_reset.
func (c *Core) Reset() {
	c.p.Reset()
}

// Tick implements core_clock_tick. The host drives this alongside
// mem_clock_tick (DataMemory.Tick) once per cycle (spec §6).
func (c *Core) Tick() error {
	return c.p.Tick()
}

// State implements core_get_state.
func (c *Core) State() State {
	return State{
		PC:    c.p.PC(),
		Regs:  c.p.Regs().Snapshot(),
		Pipe:  c.p.State(),
		Cycle: c.p.Cycle(),
	}
}
