package pipeline

// writeback commits memLatch's d into the register file when its opcode
// is a register writer (ADD, SUB, LOAD); every other opcode, including
// NOP, is a no-op (spec §4.7).
func (p *Pipeline) writeback(memLatch StageLatch) {
	if memLatch.Cmd.Op.IsRegisterWriter() {
		p.regs.Write(memLatch.Cmd.Dst, memLatch.D)
	}
}
