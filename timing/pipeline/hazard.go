package pipeline

import "github.com/sarchlab/p5core/insts"

// detectLoadUseHazard implements the hazard detector (spec §4.3). exEntry
// is the instruction about to move from ID into EX this cycle; newID is
// the instruction just decoded into ID this same cycle. If exEntry is a
// LOAD whose destination feeds either of newID's register operands, the
// caller must stall.
func detectLoadUseHazard(exEntry, newID StageLatch) bool {
	if exEntry.Cmd.Op != insts.LOAD {
		return false
	}

	dst := exEntry.Cmd.Dst
	if newID.Cmd.Src1 == dst {
		return true
	}
	if !newID.Cmd.IsSrc2Imm && newID.Cmd.Src2 == dst {
		return true
	}

	return false
}

// forward implements the forwarding unit (spec §4.4). It mutates ex in
// place, reading from two candidate sources in order: snapMEM (the prior
// cycle's MEM latch, about to retire through WB — the "forward-from-WB"
// path) and snapEX (the prior cycle's EX latch, about to land in MEM —
// "forward-from-MEM"). Applying WB first and MEM second means a match in
// both sources resolves to the MEM one, the more recent result.
func forward(ex *StageLatch, snapMEM, snapEX StageLatch) {
	for _, src := range [2]StageLatch{snapMEM, snapEX} {
		if !src.Cmd.Op.IsRegisterWriter() {
			continue
		}

		if src.Cmd.Dst == ex.Cmd.Src1 {
			ex.S1 = src.D
		}
		if !ex.Cmd.IsSrc2Imm && src.Cmd.Dst == ex.Cmd.Src2 {
			ex.S2 = src.D
		}
		if (ex.Cmd.Op.IsBranch() || ex.Cmd.Op == insts.STORE) && src.Cmd.Dst == ex.Cmd.Dst {
			ex.D = src.D
		}
	}
}
