package pipeline

import (
	"github.com/sarchlab/p5core/insts"
	"github.com/sarchlab/p5core/memsys"
)

// resolveOperands fills s1, s2, and d for cmd against the current
// register file (spec §4.2). s1 and, when not an immediate, s2 are
// straightforward register reads. d is a register read for every
// opcode except BR/BREQ/BRNEQ: the branch opcodes carry a PC-relative
// offset directly in the dst field rather than a register index (the
// non-standard convention called out in spec §9), so d there is the
// sign-extended (as an int8) literal value of dst, never a register
// lookup. dst is only a 5-bit field once it round-trips through
// insts.Encode/Decode (codec.go's regMask), and Decode returns it
// unsigned, so a branch offset built by Assemble and encoded to a word
// comes back in [0, 31]: a negative offset does not survive (#-4 decodes
// as 28). An in-memory Instruction built directly (bypassing the codec,
// as in a white-box test) can carry a full int8 offset, negative or not.
func resolveOperands(cmd insts.Instruction, regs *memsys.RegFile) (s1, s2, d int32) {
	s1 = regs.Read(cmd.Src1)

	if cmd.IsSrc2Imm {
		s2 = cmd.Imm
	} else {
		s2 = regs.Read(cmd.Src2)
	}

	if cmd.Op.IsBranch() {
		d = int32(int8(cmd.Dst))
	} else {
		d = regs.Read(cmd.Dst)
	}

	return s1, s2, d
}

// decode builds the ID latch for the instruction sitting in ifLatch.
// No hazard checking happens here (spec §4.2); detectLoadUseHazard runs
// separately once the result is known.
func (p *Pipeline) decode(ifLatch StageLatch) StageLatch {
	s1, s2, d := resolveOperands(ifLatch.Cmd, p.regs)
	return StageLatch{
		Cmd:     ifLatch.Cmd,
		PCOfCmd: ifLatch.PCOfCmd,
		S1:      s1,
		S2:      s2,
		D:       d,
	}
}

// refreshDisplaySlots re-derives a latch's s1/s2/d from the (possibly
// just-updated) register file. Writeback's commit this same cycle must
// be visible in the ID latch's slots for external inspection (spec
// §4.7), so this runs again after writeback on whatever latch ends up
// in ID.
func (p *Pipeline) refreshDisplaySlots(l StageLatch) StageLatch {
	l.S1, l.S2, l.D = resolveOperands(l.Cmd, p.regs)
	return l
}
