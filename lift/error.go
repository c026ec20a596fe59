package lift

import (
	"errors"
	"fmt"
)

// ErrStackUnderflow is returned (wrapped in a LiftError) when an
// instruction consumes a value but the simulated stack is empty: either
// the per-block fresh-stack assumption (4.G) does not hold for this
// bytecode stream, or an earlier bug in the decoder left the stream
// malformed.
var ErrStackUnderflow = errors.New("stack underflow")

// ErrBranchMismatch is returned when an If's two branches reach their
// merge point leaving different numbers of values live on the simulated
// stack, meaning the branches cannot be reconciled into one Context at the
// join point.
var ErrBranchMismatch = errors.New("branch depth mismatch at if-merge")

// LiftError reports an invariant violation encountered while symbolically
// executing a code object's opcode stream (component G): a stack
// underflow, a branch-depth mismatch at an if-merge, or any other
// condition that makes it unsafe to keep lifting. The lifting pass aborts
// as soon as one is produced, but the IR built before the failure is
// returned alongside it rather than discarded.
type LiftError struct {
	Offset  int
	Context string
	Err     error
}

func (e LiftError) Error() string {
	return fmt.Sprintf("lift: %s at offset %d: %v", e.Context, e.Offset, e.Err)
}

func (e LiftError) Unwrap() error { return e.Err }
