package pipeline

import (
	"fmt"

	"github.com/sarchlab/p5core/insts"
)

// execute builds the EX latch from the ID-stage latch idLatch, applying
// forwarding from the two snapshotted sources first (spec §4.4) and then
// the ALU (spec §4.5). NOP, STORE, BR, BREQ, and BRNEQ leave d exactly as
// forwarding/decode left it; ADD, SUB, and LOAD compute a fresh d.
func (p *Pipeline) execute(idLatch, snapMEM, snapEX StageLatch) (StageLatch, error) {
	ex := idLatch

	forward(&ex, snapMEM, snapEX)

	switch ex.Cmd.Op {
	case insts.NOP, insts.STORE, insts.BR, insts.BREQ, insts.BRNEQ:
		// d unchanged.
	case insts.ADD:
		ex.D = ex.S1 + ex.S2
	case insts.SUB:
		ex.D = ex.S1 - ex.S2
	case insts.LOAD:
		ex.D = ex.S1 + ex.S2
	default:
		return ex, fmt.Errorf("execute: %w: %d", ErrUnknownOpcode, ex.Cmd.Op)
	}

	return ex, nil
}
