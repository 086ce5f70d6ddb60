package memsys

import (
	"github.com/sarchlab/p5core/timing/cache"
)

// InstMemory is a flat, byte-addressable instruction store. Reads are
// always single-cycle (spec §4.1: "Instruction memory reads are assumed
// single-cycle"), so it carries no cache or wait-state model.
type InstMemory struct {
	words map[uint64]uint32
}

// NewInstMemory creates an empty instruction memory.
func NewInstMemory() *InstMemory {
	return &InstMemory{words: make(map[uint64]uint32)}
}

// LoadProgram places a program's words starting at base, four bytes
// apart, matching the spec's "PC increment = 4" addressing.
func (m *InstMemory) LoadProgram(base uint64, words []uint32) {
	for i, w := range words {
		m.words[base+uint64(i)*4] = w
	}
}

// Read implements mem_inst_read(pc, out_cmd): synchronous, always
// succeeds. Addresses with nothing loaded read as zero (conventionally
// decoded as NOP by the caller).
func (m *InstMemory) Read(pc uint64) uint32 {
	return m.words[pc]
}

// flatBacking is a plain byte-addressable array used as the cache's
// BackingStore. It satisfies cache.BackingStore without depending on the
// cache package for anything but that interface.
type flatBacking struct {
	bytes map[uint64]byte
}

func newFlatBacking() *flatBacking {
	return &flatBacking{bytes: make(map[uint64]byte)}
}

func (b *flatBacking) Read(addr uint64, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		out[i] = b.bytes[addr+uint64(i)]
	}
	return out
}

func (b *flatBacking) Write(addr uint64, data []byte) {
	for i, v := range data {
		b.bytes[addr+uint64(i)] = v
	}
}

// DataMemory is the core's data-side external collaborator. It serves
// mem_data_read/mem_data_write (spec §6) through an Akita directory cache
// (package cache); a miss surfaces as a multi-cycle "not ready" signal
// that the core's mem_wait freeze (spec §4.6, §4.8 step 1) retries
// against each subsequent mem_clock_tick.
type DataMemory struct {
	c            *cache.Cache
	pendingUntil map[uint64]uint64 // addr -> cycle at which the pending miss completes
	cycle        uint64
}

// NewDataMemory creates a DataMemory with the given cache configuration.
func NewDataMemory(cfg cache.Config) *DataMemory {
	return &DataMemory{
		c:            cache.New(cfg, newFlatBacking()),
		pendingUntil: make(map[uint64]uint64),
	}
}

// Tick advances the memory subsystem's own clock. The host drives this
// alongside core_clock_tick (spec §6: "mem_clock_tick(): driven by the
// host alongside core_clock_tick(); not called by the core").
func (m *DataMemory) Tick() {
	m.cycle++
}

// ReadWord implements mem_data_read(addr, out_word) -> {ok, wait}. The
// first access to a missing line reports wait=true and schedules
// readiness MissLatency cycles later; a retry at or after that cycle
// resolves to ok=true with the (now-cached) word.
func (m *DataMemory) ReadWord(addr uint64) (word uint32, ok bool, wait bool) {
	if until, pending := m.pendingUntil[addr]; pending {
		if m.cycle < until {
			return 0, false, true
		}
		delete(m.pendingUntil, addr)
	}

	result := m.c.Read(addr, 4)
	if !result.Hit {
		m.pendingUntil[addr] = m.cycle + result.Latency
		return 0, false, true
	}

	return uint32(result.Data), true, false
}

// WriteWord implements mem_data_write(addr, word): fire-and-forget from
// the core's perspective (spec §6), so it never reports wait even on a
// cache miss — the write-allocate cache absorbs the miss immediately.
func (m *DataMemory) WriteWord(addr uint64, word uint32) {
	m.c.Write(addr, 4, uint64(word))
}

// Stats exposes the underlying cache's hit/miss bookkeeping for tests
// and driver reporting.
func (m *DataMemory) Stats() cache.Statistics {
	return m.c.Stats()
}
