package pipeline

import "errors"

// ErrUnknownOpcode is returned by a stage that encounters an opcode
// outside the enumerated set (spec §7). The stage's latch is left in
// its post-copy state; the caller decides whether to keep ticking.
var ErrUnknownOpcode = errors.New("pipeline: unknown opcode")
