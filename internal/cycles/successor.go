package cycles

import (
	"github.com/ptxtools/cyclecount/internal/cfg"
	"github.com/ptxtools/cyclecount/internal/coreerr"
)

// findBBSuccessor picks the next block for a walk that has reached b
// with two successors, whether that walk is the top-level kernel walk
// or a non-innermost loop's forward walk over its body. The fall-through
// edge is Succ[0] by construction, but which successor actually
// continues the current walk is disambiguated by predecessor count, not
// by always preferring fall-through:
//
//  1. a successor with exactly one predecessor is part of the current
//     walk's body (nothing else branches into it);
//  2. a successor with two predecessors that is itself a loop header is
//     also part of the body (the second predecessor is its own back
//     edge);
//  3. otherwise the successor has two predecessors and is the point
//     where an unrelated path merges back in — the other successor is
//     the one to take.
func findBBSuccessor(b *cfg.BasicBlock) *cfg.BasicBlock {
	succ0, succ1 := b.Succ[0], b.Succ[1]
	coreerr.Assert(succ0.NumPred() > 0 && succ1.NumPred() > 0, "block %d has a successor with no predecessors", b.ID)

	if succ1.NumPred() == 1 || (succ1.NumPred() == 2 && succ1.LoopHeader) {
		return succ1
	}
	return succ0
}

// findSuccessor picks the kernel-level walk's next block. Loop headers
// are handled before this is ever called, so by the time the top-level
// walk reaches a two-successor block it is either a loop-free
// conditional or an early-exit branch whose target never merges back;
// findBBSuccessor's predecessor-count rule picks the right one in both
// cases.
func findSuccessor(b *cfg.BasicBlock) *cfg.BasicBlock {
	switch b.NumSucc() {
	case 1:
		return b.Succ[0]
	case 2:
		return findBBSuccessor(b)
	default:
		coreerr.Assert(false, "block %d has an unsupported successor count %d", b.ID, b.NumSucc())
		return nil
	}
}

// findLoopFooterSuccessor resolves where the kernel-level walk resumes
// once a loop's cost has been folded in: the unique successor of the
// loop's footer that does not lead back into the loop's own
// natural-loop set.
func findLoopFooterSuccessor(loop *cfg.Loop) *cfg.BasicBlock {
	footer := loop.Footer
	switch footer.NumSucc() {
	case 1:
		return footer.Succ[0]
	case 2:
		a, b := footer.Succ[0], footer.Succ[1]
		aIn, bIn := loop.NatLoop[a], loop.NatLoop[b]
		coreerr.Assert(aIn != bIn, "loop footer %d has no unique exit successor", footer.ID)
		if aIn {
			return b
		}
		return a
	default:
		coreerr.Assert(false, "loop footer %d has an unsupported successor count %d", footer.ID, footer.NumSucc())
		return nil
	}
}

// pickInLoopSuccessor is findSuccessor's counterpart for the
// non-innermost loop's forward walk over its own body: the same
// predecessor-count rule as findBBSuccessor picks the successor that
// stays in the loop body over the one that is the loop's exit.
func pickInLoopSuccessor(b *cfg.BasicBlock) *cfg.BasicBlock {
	switch b.NumSucc() {
	case 1:
		return b.Succ[0]
	case 2:
		return findBBSuccessor(b)
	default:
		coreerr.Assert(false, "block %d has an unsupported successor count %d", b.ID, b.NumSucc())
		return nil
	}
}
