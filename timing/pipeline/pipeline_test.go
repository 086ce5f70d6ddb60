package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/p5core/insts"
	"github.com/sarchlab/p5core/memsys"
	"github.com/sarchlab/p5core/timing/cache"
	"github.com/sarchlab/p5core/timing/pipeline"
)

func newTestPipeline(program string) (*pipeline.Pipeline, *memsys.DataMemory) {
	program_, err := insts.Assemble(program)
	Expect(err).NotTo(HaveOccurred())

	words := make([]uint32, len(program_))
	for i, in := range program_ {
		words[i] = insts.Encode(in)
	}

	im := memsys.NewInstMemory()
	im.LoadProgram(0, words)
	dm := memsys.NewDataMemory(cache.DefaultDataCacheConfig())

	p := pipeline.NewPipeline(pipeline.DefaultConfig(), im, dm)
	p.Reset()
	return p, dm
}

func runTicks(p *pipeline.Pipeline, dm *memsys.DataMemory, n int) {
	for i := 0; i < n; i++ {
		p.Tick()
		dm.Tick()
	}
}

var _ = Describe("Pipeline", func() {
	It("executes an immediate ADD and commits it through to the register file", func() {
		p, dm := newTestPipeline("ADD R1, R0, #5\nNOP\nNOP\nNOP\nNOP\nNOP\n")
		runTicks(p, dm, 8)
		Expect(p.Regs().Read(1)).To(Equal(int32(5)))
	})

	It("stalls exactly one cycle on a load-use hazard, rides out the ensuing mem_wait, and forwards the loaded value", func() {
		// Address 0 is never pre-warmed, so this LOAD is a genuine cold miss
		// (DefaultDataCacheConfig's MissLatency=4): both the load-use stall
		// and the mem_wait freeze/retry fire in the same short window.
		p, dm := newTestPipeline("LOAD R2, R0, #0\nADD R3, R2, #1\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\n")

		stallCycles, sawWait := 0, false
		for i := 0; i < 20; i++ {
			s := p.State()
			if s.Stall {
				stallCycles++
			}
			sawWait = sawWait || s.MemWait
			p.Tick()
			dm.Tick()
		}

		Expect(stallCycles).To(Equal(1))
		Expect(sawWait).To(BeTrue())
		Expect(p.Regs().Read(3)).To(Equal(int32(1))) // cold LOAD yields 0, +1 = 1
	})

	It("completes a cold load through the mem_wait freeze and writes the loaded value back", func() {
		p, dm := newTestPipeline(
			"ADD R2, R0, #77\n" + // poison R2 so the LOAD's commit is observable
				"LOAD R2, R0, #0x80\n" + // 0x80 is never touched: guaranteed cold miss
				"NOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\nNOP\n",
		)

		sawWait := false
		for i := 0; i < 20; i++ {
			if p.State().MemWait {
				sawWait = true
			}
			p.Tick()
			dm.Tick()
		}

		Expect(sawWait).To(BeTrue())
		Expect(p.Regs().Read(2)).To(Equal(int32(0))) // backing defaults to 0 for an untouched address
	})

	It("forwards an EX-stage result into the very next instruction's EX stage", func() {
		p, dm := newTestPipeline("ADD R1, R0, #5\nADD R2, R1, #1\nNOP\nNOP\nNOP\nNOP\n")
		runTicks(p, dm, 10)
		Expect(p.Regs().Read(1)).To(Equal(int32(5)))
		Expect(p.Regs().Read(2)).To(Equal(int32(6)))
	})

	It("takes an unconditional branch and squashes the two instructions behind it", func() {
		p, dm := newTestPipeline(
			"ADD R1, R0, #1\n" + // addr 0
				"BR R0, R0, #8\n" + // addr 4, target = 8 + 4 + 4 = 16
				"ADD R2, R0, #99\n" + // addr 8, squashed
				"ADD R2, R0, #77\n" + // addr 12, squashed
				"ADD R3, R0, #5\n" + // addr 16, runs
				"NOP\nNOP\nNOP\nNOP\n",
		)
		runTicks(p, dm, 16)
		Expect(p.Regs().Read(1)).To(Equal(int32(1)))
		Expect(p.Regs().Read(2)).To(Equal(int32(0)))
		Expect(p.Regs().Read(3)).To(Equal(int32(5)))
	})

	It("takes BREQ when the operands are equal", func() {
		p, dm := newTestPipeline(
			"NOP\n" +
				"BREQ R0, R0, #8\n" + // addr 4, always equal, target = 16
				"ADD R9, R0, #123\n" + // addr 8, squashed
				"ADD R9, R0, #124\n" + // addr 12, squashed
				"ADD R9, R0, #7\n" + // addr 16, runs
				"NOP\nNOP\nNOP\nNOP\n",
		)
		runTicks(p, dm, 16)
		Expect(p.Regs().Read(9)).To(Equal(int32(7)))
	})

	It("does not take BREQ when the operands differ", func() {
		p, dm := newTestPipeline(
			"ADD R1, R0, #1\n" +
				"BREQ R1, R0, #8\n" + // 1 != 0, falls through
				"ADD R9, R0, #55\n" +
				"NOP\nNOP\nNOP\nNOP\n",
		)
		runTicks(p, dm, 14)
		Expect(p.Regs().Read(9)).To(Equal(int32(55)))
	})

	It("stores a register and loads it back from the same address", func() {
		p, dm := newTestPipeline(
			"ADD R1, R0, #0x99\n" +
				"STORE R1, R0, #0x40\n" +
				"LOAD R2, R0, #0x40\n" +
				"NOP\nNOP\nNOP\nNOP\nNOP\nNOP\n",
		)
		runTicks(p, dm, 16)
		Expect(p.Regs().Read(2)).To(Equal(int32(0x99)))
	})

	It("is deterministic across repeated resets", func() {
		p, dm := newTestPipeline("ADD R1, R0, #5\nADD R2, R1, #1\nNOP\nNOP\nNOP\nNOP\n")
		runTicks(p, dm, 10)
		r1, r2 := p.Regs().Read(1), p.Regs().Read(2)

		p.Reset()
		runTicks(p, dm, 10)
		Expect(p.Regs().Read(1)).To(Equal(r1))
		Expect(p.Regs().Read(2)).To(Equal(r2))
	})
})
