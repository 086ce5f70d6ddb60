// Package pipeline implements THE CORE: the five-stage pipeline advance
// engine described by the specification — stage latches, the forwarding
// unit, the load-use hazard stall, branch resolution/flush, and the
// memory-wait freeze. Every exported behavior here is driven by a single
// entry point, Pipeline.Tick.
package pipeline

import "github.com/sarchlab/p5core/insts"

// StageLatch is a snapshot carrying the instruction, the PC that fetched
// it, and three resolved 32-bit slots (s1, s2, d) whose interpretation is
// stage-dependent (see the package doc and the Decode/Execute/Memory
// stage functions).
type StageLatch struct {
	Cmd     insts.Instruction
	PCOfCmd uint64
	S1      int32
	S2      int32
	D       int32
}

// NOPLatch is the canonical bubble/flush contents: a NOP instruction with
// all operand slots zeroed.
func NOPLatch() StageLatch {
	return StageLatch{Cmd: insts.NOPInstruction}
}

// IsBubble reports whether the latch contributes no side effect this
// cycle (spec §8 invariant: cmd.opcode == NOP implies no side effect).
func (l StageLatch) IsBubble() bool {
	return l.Cmd.IsNOP()
}
