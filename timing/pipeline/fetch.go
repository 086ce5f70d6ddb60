package pipeline

import "github.com/sarchlab/p5core/insts"

// fetch reads the instruction at pc from instruction memory and builds
// the IF latch for it (spec §4.1). Instruction memory reads are
// single-cycle, so this never signals wait.
func (p *Pipeline) fetch(pc uint64) StageLatch {
	word := p.instMem.Read(pc)
	return StageLatch{
		Cmd:     insts.Decode(word),
		PCOfCmd: pc,
	}
}
