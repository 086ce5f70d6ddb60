// Package memsys provides the register file and the instruction/data
// memory collaborators that the pipeline core consumes through the
// mem_inst_read / mem_data_read / mem_data_write contract (spec §6).
// These are explicitly external to THE CORE (spec §1) and live in their
// own package; package pipeline holds references to the concrete
// RegFile, InstMemory and DataMemory types defined here.
package memsys

// DefaultRegCount is the conventional register-file size (spec §6:
// "register-file size = implementation-defined (commonly 32)").
const DefaultRegCount = 32

// RegFile is a fixed-size array of 32-bit signed integers, all zero after
// reset. Unlike many real ISAs this RegFile has no hardwired zero
// register: register 0 is an ordinary writable register (spec §3).
type RegFile struct {
	r []int32
}

// NewRegFile creates a RegFile with n registers, all zero.
func NewRegFile(n int) *RegFile {
	if n <= 0 {
		n = DefaultRegCount
	}
	return &RegFile{r: make([]int32, n)}
}

// Size returns the number of registers.
func (f *RegFile) Size() int {
	return len(f.r)
}

// Read returns the value of register idx. Out-of-range indices read as
// zero, matching a hardware register file with no trap on bad indices
// (the core never produces an out-of-range index for a validly decoded
// instruction; this is defense for external callers only).
func (f *RegFile) Read(idx uint8) int32 {
	if int(idx) >= len(f.r) {
		return 0
	}
	return f.r[idx]
}

// Write stores value into register idx. Writes to an out-of-range index
// are silently dropped (see Read).
func (f *RegFile) Write(idx uint8, value int32) {
	if int(idx) >= len(f.r) {
		return
	}
	f.r[idx] = value
}

// Reset zeros every register.
func (f *RegFile) Reset() {
	for i := range f.r {
		f.r[i] = 0
	}
}

// Snapshot returns a copy of the register contents, for core_get_state
// (spec §6).
func (f *RegFile) Snapshot() []int32 {
	out := make([]int32, len(f.r))
	copy(out, f.r)
	return out
}
