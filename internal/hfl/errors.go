package hfl

import (
	"errors"
	"fmt"
)

// Decode error taxonomy. Every condition is per-fragment and recoverable:
// the state machines self-heal on the next well-formed sequence starting at
// row 31 (frames) or a fresh first fragment (object lists).
var (
	// ErrFragmentGap indicates the frame row continuity contract was
	// broken (lost, duplicated or reordered fragment). The in-progress
	// frame is discarded and reassembly resets to row 31.
	ErrFragmentGap = errors.New("frame fragment continuity broken")

	// ErrTruncatedFragment indicates a fragment shorter than the region
	// its decode requires. The fragment is dropped with no state change.
	ErrTruncatedFragment = errors.New("fragment shorter than required region")

	// ErrObjectOverflow indicates an object fragment arrived with an
	// accumulated count the two-packet protocol cannot produce (for
	// example a third fragment before the final-fragment flag). The
	// accumulator is reset.
	ErrObjectOverflow = errors.New("object fragment outside two-packet protocol")
)

// GapError carries the row indices involved in a continuity violation.
type GapError struct {
	Expected int
	Received int
}

func (e *GapError) Error() string {
	return fmt.Sprintf("unexpected fragment (dropped packet?) expecting row %d, received row %d", e.Expected, e.Received)
}

func (e *GapError) Unwrap() error {
	return ErrFragmentGap
}
