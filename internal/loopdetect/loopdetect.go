// Package loopdetect finds natural loops over an already-built CFG:
// back-edge discovery by DFS, natural-loop construction, a
// nesting-level fixpoint, optional unroll-factor rescaling, and
// outermost-loop retention.
package loopdetect

import (
	"github.com/ptxtools/cyclecount/internal/cfg"
	"github.com/ptxtools/cyclecount/internal/coreerr"
	"github.com/ptxtools/cyclecount/internal/unrollcfg"
)

// Detect runs the full loop-detection pipeline over g, mutating it in
// place: block loop-header/footer flags, g.Loops, g.HeaderLoop. If
// unrolled is true, table is consulted to rescale trip counts; a nil or
// mismatched table falls back to defaults silently (for a nil table the
// warning was already logged by unrollcfg.Load; a length mismatch is not
// logged anywhere).
func Detect(g *cfg.CFG, unrolled bool, table unrollcfg.Table) {
	d := &detector{cfg: g}
	d.dfs(g.Entry)

	for _, loop := range g.Loops {
		d.constructNatLoop(loop)
	}

	fixNestingLevels(g.Loops)

	if unrolled {
		applyUnrollFactors(g.Loops, table)
	}

	g.Loops = outermostOnly(g.Loops)
}

type detector struct {
	cfg    *cfg.CFG
	nextID int
}

// dfs is the recursive back-edge discovery pass. White =
// unvisited, Gray = on the current DFS stack, Black = done. A gray
// successor is the target of a back edge: the current block is that
// loop's footer.
func (d *detector) dfs(b *cfg.BasicBlock) {
	coreerr.Assert(b.Color != cfg.Black, "invalid CFG edge detected")

	if b.Color == cfg.Gray {
		return
	}
	if b.Color == cfg.White {
		b.Color = cfg.Gray
	}

	for _, succ := range b.Succ {
		if succ.Color == cfg.Gray {
			if !succ.LoopHeader {
				succ.LoopHeader = true
				loop := cfg.NewLoop(d.nextID, succ, b)
				d.nextID++
				d.cfg.Loops = append(d.cfg.Loops, loop)
				d.cfg.HeaderLoop[succ] = loop
			} else {
				loop := d.cfg.HeaderLoop[succ]
				coreerr.Assert(loop != nil, "invalid loop information")
				loop.AddFooter(b)
			}
			b.LoopFooter = true
		}
		if succ.Color == cfg.White {
			d.dfs(succ)
		}
	}

	b.Color = cfg.Black
}

// constructNatLoop builds the natural-loop block set by walking
// predecessors back from the footer to the header (the Dragon-book
// technique): push the footer, then repeatedly pop and add any
// not-yet-included predecessor until the stack is empty. Along the way,
// any popped block that is itself an (unclaimed) loop header becomes a
// directly nested inner loop of this one.
func (d *detector) constructNatLoop(loop *cfg.Loop) {
	var stack []*cfg.BasicBlock
	instrCount := 0

	loop.NatLoop[loop.Header] = true
	instrCount += loop.Header.TotalCount

	if !loop.NatLoop[loop.Footer] {
		loop.NatLoop[loop.Footer] = true
		stack = append(stack, loop.Footer)
		instrCount += loop.Footer.TotalCount
	}

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if b.LoopHeader {
			coreerr.Assert(b != loop.Header, "inconsistent natural-loop state")
			inner := d.cfg.HeaderLoop[b]
			coreerr.Assert(inner != nil, "loop for header not found")
			if inner.Enclosing == nil {
				loop.AddInnerLoop(inner)
				inner.Enclosing = loop
			}
		}

		for _, pred := range b.Pred {
			if !loop.NatLoop[pred] {
				loop.NatLoop[pred] = true
				stack = append(stack, pred)
				instrCount += pred.TotalCount
			}
		}
	}

	loop.InstrCount = instrCount
}

// fixNestingLevels iterates to a fixpoint: any loop with an enclosing
// loop gets enclosing.NestingLevel + 1. O(L*D) where D is max nesting
// depth.
func fixNestingLevels(loops []*cfg.Loop) {
	changed := true
	for changed {
		changed = false
		for _, loop := range loops {
			if loop.Enclosing == nil {
				continue
			}
			newLevel := loop.Enclosing.NestingLevel + 1
			if newLevel != loop.NestingLevel {
				loop.NestingLevel = newLevel
				changed = true
			}
		}
	}
}

// applyUnrollFactors rescales each loop's trip count by its table entry:
// u==0 eliminates the loop (trip count 0), otherwise trip count is
// divided (integer division) by u. A missing or mis-sized table leaves
// every loop at its default trip count.
func applyUnrollFactors(loops []*cfg.Loop, table unrollcfg.Table) {
	for _, loop := range loops {
		factor, ok := table.FactorFor(loop.ID, len(loops))
		if !ok {
			continue
		}
		if factor == 0 {
			loop.TripCount = 0
		} else {
			loop.TripCount = loop.TripCount / factor
		}
	}
}

// outermostOnly keeps only nesting-level-0 loops, preserving discovery
// order; inner loops remain reachable through InnerLoops chains.
func outermostOnly(loops []*cfg.Loop) []*cfg.Loop {
	kept := loops[:0:0]
	for _, loop := range loops {
		if loop.NestingLevel == 0 {
			kept = append(kept, loop)
		}
	}
	return kept
}
