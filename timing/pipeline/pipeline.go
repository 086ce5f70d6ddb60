package pipeline

import (
	"github.com/sarchlab/p5core/memsys"
)

// Config configures a Pipeline's register file size. Memory timing is
// configured separately on the DataMemory the Pipeline is given (package
// memconfig builds both from one JSON document).
type Config struct {
	RegCount int
}

// DefaultConfig returns the pipeline's default register-file size.
func DefaultConfig() Config {
	return Config{RegCount: memsys.DefaultRegCount}
}

// Pipeline is the five-stage pipeline's complete state: the five stage
// latches, the control flags that govern how Tick advances them, the
// register file, and the two memory collaborators. There is no
// superscalar width and no branch predictor (explicit non-goals); every
// Tick advances at most one instruction past each stage boundary.
type Pipeline struct {
	cfg Config

	regs     *memsys.RegFile
	instMem  *memsys.InstMemory
	dataMem  *memsys.DataMemory

	ifL, idL, exL, memL, wbL StageLatch

	// prevIF/prevID/prevEX/prevMEM are the stage latches as they stood at
	// the start of the most recent normal (non-frozen) Tick: the snapshot
	// that Decode/Execute/Memory/Writeback read from instead of the live
	// latches a sibling stage may already have overwritten this same
	// Tick. Unlike a tick-local variable, these persist across a mem_wait
	// freeze, so the freeze's retry of Memory/Writeback targets the exact
	// EX/MEM content the waiting load left behind, not whatever the live
	// latches have since become.
	prevIF, prevID, prevEX, prevMEM StageLatch

	pc uint64

	stall        bool
	branchTaken  bool
	branchTarget uint64
	memWait      bool
	afterReset   bool

	cycle uint64
}

// NewPipeline builds a Pipeline around the given instruction and data
// memories. Call Reset before the first Tick.
func NewPipeline(cfg Config, instMem *memsys.InstMemory, dataMem *memsys.DataMemory) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		regs:    memsys.NewRegFile(cfg.RegCount),
		instMem: instMem,
		dataMem: dataMem,
	}
}

// Reset implements core_reset (spec §6): clears every latch and flag,
// zeroes the register file, sets PC to 0, and performs the initial fetch
// at PC 0 into IF. after_reset is set so the first Tick leaves that
// fetched instruction visible in IF for one extra cycle rather than
// immediately advancing it into ID.
func (p *Pipeline) Reset() {
	p.regs.Reset()

	p.ifL = NOPLatch()
	p.idL = NOPLatch()
	p.exL = NOPLatch()
	p.memL = NOPLatch()
	p.wbL = NOPLatch()

	p.prevIF = NOPLatch()
	p.prevID = NOPLatch()
	p.prevEX = NOPLatch()
	p.prevMEM = NOPLatch()

	p.stall = false
	p.branchTaken = false
	p.branchTarget = 0
	p.memWait = false
	p.cycle = 0

	p.pc = 0
	p.ifL = p.fetch(p.pc)
	p.afterReset = true
}

// Cycle returns the number of completed Ticks since the last Reset.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// PC returns the PC of the instruction currently in IF.
func (p *Pipeline) PC() uint64 {
	return p.pc
}

// Regs exposes the register file for state inspection (spec
// core_get_state).
func (p *Pipeline) Regs() *memsys.RegFile {
	return p.regs
}

// State is the externally observable snapshot returned by core_get_state
// (spec §6): the five stage latches, PC, and the control flags.
type State struct {
	IF, ID, EX, MEM, WB StageLatch
	PC                  uint64
	Stall               bool
	BranchTaken         bool
	MemWait             bool
	Cycle               uint64
}

// State returns the current externally observable pipeline state.
func (p *Pipeline) State() State {
	return State{
		IF:          p.ifL,
		ID:          p.idL,
		EX:          p.exL,
		MEM:         p.memL,
		WB:          p.wbL,
		PC:          p.pc,
		Stall:       p.stall,
		BranchTaken: p.branchTaken,
		MemWait:     p.memWait,
		Cycle:       p.cycle,
	}
}

// Tick implements core_clock_tick (spec §4.8): the single cycle-advance
// entry point. Its precedence, in order, is:
//
//  1. mem_wait freeze: if set, clear it, retry Memory against prevEX and
//     re-run Writeback against prevMEM — the snapshot preserved from the
//     cycle the wait was first discovered, not the live latches, which
//     the front half below would otherwise have moved on past the
//     waiting load — then flush WB and return; nothing else advances.
//  2. Snapshot all four front-relevant latches (prevIF/prevID/prevEX/
//     prevMEM) as they stand at the start of the cycle; every stage below
//     reads from this snapshot, not from live state that later steps in
//     this same Tick may overwrite. Unlike a tick-local variable, the
//     snapshot survives into the next Tick, so a mem_wait discovered
//     later in *this* Tick's Memory call still has the right EX content
//     to retry against once step 1 fires on the following Tick.
//  3. stall and branch_taken interact: a lone stall flushes EX and holds
//     IF/ID; stall together with branch_taken lets the flush dominate;
//     after_reset holds IF/ID for one cycle with EX flushed; otherwise
//     Fetch, Decode, and Execute run normally (Fetch applies the branch
//     flush/redirect here when branch_taken is set, flushing prevIF/
//     prevID/prevEX in place so Decode/Execute/Memory below all see
//     bubbles this cycle).
//  4. Memory runs on prevEX into MEM.
//  5. Writeback runs on prevMEM into WB, then ID's display slots are
//     refreshed against the now-possibly-updated register file.
func (p *Pipeline) Tick() error {
	p.cycle++

	if p.memWait {
		p.memWait = false

		p.writeback(p.prevMEM)

		nextMEM, err := p.memory(p.prevEX)
		p.memL = nextMEM
		p.wbL = NOPLatch()

		return err
	}

	p.prevIF = p.ifL
	p.prevID = p.idL
	p.prevEX = p.exL
	p.prevMEM = p.memL

	var nextIF, nextID, nextEX StageLatch
	var execErr error

	switch {
	case p.stall && !p.branchTaken:
		nextIF = p.prevIF
		nextID = p.prevID
		nextEX = NOPLatch()
		p.stall = false

	default:
		if p.stall && p.branchTaken {
			p.stall = false
		}

		if p.afterReset {
			p.afterReset = false
			nextIF = p.prevIF
			nextID = p.prevID
			nextEX = NOPLatch()
		} else {
			if p.branchTaken {
				p.prevIF = NOPLatch()
				p.prevID = NOPLatch()
				p.prevEX = NOPLatch()
				p.pc = p.branchTarget
			} else {
				p.pc += 4
			}
			p.branchTaken = false

			nextIF = p.fetch(p.pc)
			nextID = p.decode(p.prevIF)

			if detectLoadUseHazard(p.prevID, nextID) {
				p.stall = true
			}

			nextEX, execErr = p.execute(p.prevID, p.prevMEM, p.prevEX)
		}
	}

	nextMEM, memErr := p.memory(p.prevEX)
	p.writeback(p.prevMEM)

	nextID = p.refreshDisplaySlots(nextID)

	p.ifL, p.idL, p.exL = nextIF, nextID, nextEX
	p.memL = nextMEM
	p.wbL = p.prevMEM

	if execErr != nil {
		return execErr
	}
	return memErr
}
