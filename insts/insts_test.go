package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/p5core/insts"
)

var _ = Describe("Opcode", func() {
	It("prints mnemonics", func() {
		Expect(insts.ADD.String()).To(Equal("ADD"))
		Expect(insts.BRNEQ.String()).To(Equal("BRNEQ"))
	})

	It("classifies register writers", func() {
		Expect(insts.ADD.IsRegisterWriter()).To(BeTrue())
		Expect(insts.LOAD.IsRegisterWriter()).To(BeTrue())
		Expect(insts.STORE.IsRegisterWriter()).To(BeFalse())
		Expect(insts.BR.IsRegisterWriter()).To(BeFalse())
	})

	It("classifies branches", func() {
		Expect(insts.BR.IsBranch()).To(BeTrue())
		Expect(insts.BREQ.IsBranch()).To(BeTrue())
		Expect(insts.ADD.IsBranch()).To(BeFalse())
	})

	It("rejects opcodes outside the enumeration", func() {
		Expect(insts.Opcode(200).Valid()).To(BeFalse())
	})
})

var _ = Describe("Instruction", func() {
	It("is zero-valued as a NOP", func() {
		var i insts.Instruction
		Expect(i.IsNOP()).To(BeTrue())
	})
})

var _ = Describe("Assemble", func() {
	It("parses an immediate add", func() {
		program, err := insts.Assemble("ADD R1, R0, #5")
		Expect(err).NotTo(HaveOccurred())
		Expect(program).To(HaveLen(1))
		Expect(program[0]).To(Equal(insts.Instruction{
			Op: insts.ADD, Dst: 1, Src1: 0, IsSrc2Imm: true, Imm: 5,
		}))
	})

	It("parses a register-register sub", func() {
		program, err := insts.Assemble("SUB R2, R1, R0")
		Expect(err).NotTo(HaveOccurred())
		Expect(program[0]).To(Equal(insts.Instruction{Op: insts.SUB, Dst: 2, Src1: 1, Src2: 0}))
	})

	It("parses a load", func() {
		program, err := insts.Assemble("LOAD R1, R0, #100")
		Expect(err).NotTo(HaveOccurred())
		Expect(program[0]).To(Equal(insts.Instruction{
			Op: insts.LOAD, Dst: 1, Src1: 0, IsSrc2Imm: true, Imm: 100,
		}))
	})

	It("parses a store with base+offset", func() {
		program, err := insts.Assemble("STORE R1, R0, #200")
		Expect(err).NotTo(HaveOccurred())
		Expect(program[0]).To(Equal(insts.Instruction{
			Op: insts.STORE, Src1: 1, Dst: 0, IsSrc2Imm: true, Imm: 200,
		}))
	})

	It("parses an unconditional branch with the offset in Dst", func() {
		program, err := insts.Assemble("BR R0, R0, #8")
		Expect(err).NotTo(HaveOccurred())
		Expect(program[0]).To(Equal(insts.Instruction{Op: insts.BR, Src1: 0, Src2: 0, Dst: 8}))
	})

	It("parses BREQ/BRNEQ", func() {
		program, err := insts.Assemble("BREQ R1, R2, #4\nBRNEQ R1, R2, #4")
		Expect(err).NotTo(HaveOccurred())
		Expect(program).To(HaveLen(2))
		Expect(program[0].Op).To(Equal(insts.BREQ))
		Expect(program[1].Op).To(Equal(insts.BRNEQ))
	})

	It("skips blank lines and comments", func() {
		program, err := insts.Assemble("; a comment\nNOP\n\nNOP")
		Expect(err).NotTo(HaveOccurred())
		Expect(program).To(HaveLen(2))
	})

	It("rejects an unknown mnemonic", func() {
		_, err := insts.Assemble("FROB R0, R0, R0")
		Expect(err).To(HaveOccurred())
	})

	It("rejects the wrong operand count", func() {
		_, err := insts.Assemble("ADD R0, R1")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Encode/Decode", func() {
	It("round-trips a register-form instruction", func() {
		inst := insts.Instruction{Op: insts.ADD, Dst: 3, Src1: 1, Src2: 2}
		Expect(insts.Decode(insts.Encode(inst))).To(Equal(inst))
	})

	It("round-trips an immediate-form instruction", func() {
		inst := insts.Instruction{Op: insts.LOAD, Dst: 3, Src1: 1, IsSrc2Imm: true, Imm: -42}
		Expect(insts.Decode(insts.Encode(inst))).To(Equal(inst))
	})
})
