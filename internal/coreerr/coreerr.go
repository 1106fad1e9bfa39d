// Package coreerr carries the single fatal-assertion error kind the
// analysis core uses for structural invariant violations: a malformed
// CFG, a loop block with the wrong predecessor count, a duplicate
// outstanding load, an unknown opcode reached mid-walk. These are never
// recovered locally; the caller (cmd/ptxcycles) logs and exits non-zero.
package coreerr

import "fmt"

// AssertionError is a structural invariant violation in the analysis
// core. No partial results accompany it.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string { return "assertion failed: " + e.Msg }

// Assert panics with an *AssertionError if cond is false. The core never
// recovers from this itself; recover happens once, at the CLI boundary.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(&AssertionError{Msg: fmt.Sprintf(format, args...)})
	}
}
