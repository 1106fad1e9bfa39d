package cycles

import (
	"github.com/ptxtools/cyclecount/internal/cfg"
	"github.com/ptxtools/cyclecount/internal/coreerr"
	"github.com/ptxtools/cyclecount/internal/instr"
)

// countLoop returns one iteration's cost times loop.TripCount. It runs
// with its own fresh current/total accumulator, saved and restored
// around the call so the enclosing walk's state is untouched.
func (w *walker) countLoop(loop *cfg.Loop) uint64 {
	if loop.HasInnerLoops() {
		return w.countOuterLoop(loop)
	}
	return w.countInnermostLoop(loop)
}

// countOuterLoop walks a loop that itself contains nested loops: block by
// block from header to footer along the in-loop successor, delegating to
// countLoop recursively whenever the walk reaches a nested loop's header.
func (w *walker) countOuterLoop(loop *cfg.Loop) uint64 {
	savedTotal, savedCurrent := w.total, w.current
	w.total, w.current = 0, 0

	lastInst := loop.Footer.End.Next
	bb := loop.Header

	for {
		w.walkBlock(bb.Begin, bb.End)
		if bb.End.Next == lastInst {
			w.flush()
			break
		}

		next := pickInLoopSuccessor(bb)
		if next.LoopHeader {
			inner := w.cfg.LoopFromHeader(next)
			coreerr.Assert(inner != nil, "block %d flagged as loop header has no registered loop", next.ID)
			w.flush()
			w.total += w.countLoop(inner)
			bb = findLoopFooterSuccessor(inner)
		} else {
			bb = next
		}
	}

	result := loop.TripCount * w.total
	w.total, w.current = savedTotal, savedCurrent
	return result
}

// countInnermostLoop applies the tail-overlap optimization: scan
// backward from the footer to find the last global/local/sync
// instruction in program order (the "first blocking instruction"
// relative to the forward walk) and the ALU-only cost after it, then
// walk forward from the header, seeding current with that tail cost,
// stopping the moment the forward walk reaches the same instruction
// again.
func (w *walker) countInnermostLoop(loop *cfg.Loop) uint64 {
	laterCycles, firstBlocking := w.backwardScanForBlocking(loop)
	if firstBlocking == nil {
		return loop.TripCount * laterCycles * w.warps
	}
	return w.forwardInnermostWalk(loop, laterCycles, firstBlocking)
}

func (w *walker) backwardScanForBlocking(loop *cfg.Loop) (laterCycles uint64, firstBlocking *instr.Instruction) {
	bb := loop.Footer
	cur := bb.End
	headerPrevBoundary := loop.Header.Begin.Prev

	for cur != headerPrevBoundary {
		blockFirstPrev := bb.Begin.Prev
		found := false
		for cur != blockFirstPrev {
			if cur.Op.IsGlobalMem() || cur.Op.IsLocalMem() || cur.Op.IsSync() {
				firstBlocking = cur
				found = true
				break
			}
			laterCycles += w.params.InstrCost
			cur = cur.Prev
		}
		if found {
			break
		}

		coreerr.Assert(bb.NumPred() == 1 || bb.LoopHeader, "innermost loop block %d has multiple predecessors", bb.ID)
		bb = bb.Pred[0]
		cur = bb.End
	}

	return laterCycles, firstBlocking
}

func (w *walker) forwardInnermostWalk(loop *cfg.Loop, laterCycles uint64, firstBlocking *instr.Instruction) uint64 {
	savedTotal, savedCurrent := w.total, w.current
	w.total, w.current = 0, laterCycles

	cur := loop.Header.Begin
	for {
		stamped, next := w.stepLinear(cur)
		stamped.Cycles = w.total
		if stamped == firstBlocking {
			w.flush()
			result := loop.TripCount * w.total
			w.total, w.current = savedTotal, savedCurrent
			return result
		}
		cur = next
	}
}
