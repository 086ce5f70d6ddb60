package pipeline

import (
	"fmt"

	"github.com/sarchlab/p5core/insts"
)

// memory builds the MEM latch from the EX-stage latch exLatch (spec
// §4.6). Branch opcodes resolve branch_taken/branch_target here, one
// cycle ahead of the front half that consumes them. LOAD consults the
// data memory; a not-ready reply sets mem_wait and the MEM latch still
// becomes exLatch with d left holding the address, not a bubble — the
// load must survive in MEM so the mem_wait freeze in Tick can retry it
// from the preserved pre-cycle EX snapshot and eventually write it back.
func (p *Pipeline) memory(exLatch StageLatch) (StageLatch, error) {
	switch exLatch.Cmd.Op {
	case insts.NOP, insts.ADD, insts.SUB:
		return exLatch, nil

	case insts.BR:
		p.resolveBranch(exLatch, true)
		return exLatch, nil

	case insts.BREQ:
		p.resolveBranch(exLatch, exLatch.S1 == exLatch.S2)
		return exLatch, nil

	case insts.BRNEQ:
		p.resolveBranch(exLatch, exLatch.S1 != exLatch.S2)
		return exLatch, nil

	case insts.LOAD:
		addr := uint64(uint32(exLatch.D))
		word, ok, wait := p.dataMem.ReadWord(addr)
		if wait {
			p.memWait = true
			return exLatch, nil
		}
		if ok {
			exLatch.D = int32(word)
		}
		return exLatch, nil

	case insts.STORE:
		addr := uint64(uint32(exLatch.D)) + uint64(uint32(exLatch.S2))
		p.dataMem.WriteWord(addr, uint32(exLatch.S1))
		return exLatch, nil

	default:
		return exLatch, fmt.Errorf("memory: %w: %d", ErrUnknownOpcode, exLatch.Cmd.Op)
	}
}

// resolveBranch sets branch_taken/branch_target for the next front-half
// advance to consume (spec §4.6, §4.8): branch_target = d + pc_of_cmd + 4.
func (p *Pipeline) resolveBranch(exLatch StageLatch, taken bool) {
	if !taken {
		return
	}
	p.branchTaken = true
	p.branchTarget = uint64(int64(exLatch.PCOfCmd) + int64(exLatch.D) + 4)
}
