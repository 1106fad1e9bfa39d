package cycles

import (
	"github.com/ptxtools/cyclecount/internal/cfg"
	"github.com/ptxtools/cyclecount/internal/coreerr"
)

// Count walks g from entry to exit with the default parameters: the
// kernel-level walk applies the block walk to straight-line blocks and
// delegates to the loop walker at every loop header.
func Count(g *cfg.CFG, warps uint, mode Mode) Result {
	return CountWithParams(g, warps, mode, DefaultParams())
}

// CountWithParams is Count with explicit Params, for callers modeling a
// device whose issue cost or global memory latency differs from the
// defaults.
func CountWithParams(g *cfg.CFG, warps uint, mode Mode, params Params) Result {
	w := newWalker(g, params, uint64(warps), mode)

	bb := g.Entry
	for {
		if bb == g.Exit {
			w.flush()
			break
		}

		if bb.LoopHeader {
			loop := g.LoopFromHeader(bb)
			coreerr.Assert(loop != nil, "block %d flagged as loop header has no registered loop", bb.ID)
			w.flush()
			w.total += w.countLoop(loop)
			bb = findLoopFooterSuccessor(loop)
			continue
		}

		w.walkBlock(bb.Begin, bb.End)
		bb = findSuccessor(bb)
	}

	return Result{TotalCycles: w.total, StallCycles: w.stall}
}
