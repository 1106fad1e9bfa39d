package cycles

import (
	"github.com/ptxtools/cyclecount/internal/cfg"
	"github.com/ptxtools/cyclecount/internal/coreerr"
	"github.com/ptxtools/cyclecount/internal/instr"
)

// walker holds the running state of one cycle-counting pass: the
// not-yet-flushed issue cost for the current warp (current), the
// committed total across all warps (total), and, in experimental mode,
// the age of every outstanding global/local load keyed by destination
// register.
type walker struct {
	cfg    *cfg.CFG
	params Params
	warps  uint64
	mode   Mode

	current uint64
	total   uint64
	stall   uint64

	outstanding map[int]uint64
}

func newWalker(g *cfg.CFG, params Params, warps uint64, mode Mode) *walker {
	w := &walker{cfg: g, params: params, warps: warps, mode: mode}
	if mode == ModeExperimental {
		w.outstanding = map[int]uint64{}
	}
	return w
}

// flush commits current's cost across all warps into total.
func (w *walker) flush() {
	w.total += w.current * w.warps
	w.current = 0
}

func (w *walker) ageOutstanding(delta uint64) {
	for reg := range w.outstanding {
		w.outstanding[reg] += delta
	}
}

// stepBounded processes the instruction at cur, absorbing any run of
// immediately-following global/local instructions into the same burst
// in baseline mode, but never reading past boundExclusive
// — the sentinel one past the current basic block's last instruction.
// Crossing a block boundary mid-burst would double-count the spilled-over
// instructions once here and again when the next block's walk starts
// fresh at its own first instruction, so absorption is block-scoped.
// Returns the instruction to stamp with the post-step total and the next
// instruction to resume from.
func (w *walker) stepBounded(cur, boundExclusive *instr.Instruction) (stamped, next *instr.Instruction) {
	if w.mode == ModeExperimental {
		w.processExperimental(cur)
		return cur, cur.Next
	}

	switch {
	case cur.Op.IsSync():
		w.flush()
		return cur, cur.Next
	case cur.Op.IsSharedMem():
		w.current += w.params.InstrCost
		return cur, cur.Next
	case cur.Op.IsGlobalMem() || cur.Op.IsLocalMem():
		last := cur
		w.current += w.params.InstrCost
		for last.Next != boundExclusive && (last.Next.Op.IsGlobalMem() || last.Next.Op.IsLocalMem()) {
			last = last.Next
			w.current += w.params.InstrCost
		}
		w.flushAtLeast(w.params.GlobalLatency)
		return last, last.Next
	case cur.Op.IsMem():
		coreerr.Assert(false, "memory instruction with unknown space on line %d", cur.Line)
		return cur, cur.Next
	default: // ALU, Branch, CondBranch
		w.current += w.params.InstrCost
		return cur, cur.Next
	}
}

// stepLinear is stepBounded's unbounded counterpart, used only by the
// innermost loop's forward walk, which walks the raw
// instruction chain rather than block by block.
func (w *walker) stepLinear(cur *instr.Instruction) (stamped, next *instr.Instruction) {
	if w.mode == ModeExperimental {
		w.processExperimental(cur)
		return cur, cur.Next
	}

	switch {
	case cur.Op.IsSync():
		w.flush()
		return cur, cur.Next
	case cur.Op.IsSharedMem():
		w.current += w.params.InstrCost
		return cur, cur.Next
	case cur.Op.IsGlobalMem() || cur.Op.IsLocalMem():
		last := cur
		w.current += w.params.InstrCost
		for last.Next != nil && (last.Next.Op.IsGlobalMem() || last.Next.Op.IsLocalMem()) {
			last = last.Next
			w.current += w.params.InstrCost
		}
		w.flushAtLeast(w.params.GlobalLatency)
		return last, last.Next
	case cur.Op.IsMem():
		coreerr.Assert(false, "memory instruction with unknown space on line %d", cur.Line)
		return cur, cur.Next
	default:
		w.current += w.params.InstrCost
		return cur, cur.Next
	}
}

// flushAtLeast commits current*W cycles, padded up to floor if the
// warp-switch latency isn't already hidden by accumulated work.
func (w *walker) flushAtLeast(floor uint64) {
	committed := w.current * w.warps
	if committed < floor {
		committed = floor
	}
	w.total += committed
	w.current = 0
}

// processExperimental implements the per-register load-to-use model:
// resolve any outstanding load consumed by this instruction's source
// operands before accounting for the instruction itself, then register
// a new outstanding load or flush as appropriate.
func (w *walker) processExperimental(cur *instr.Instruction) {
	for _, reg := range cur.SrcRegs() {
		if reg == instr.NoReg {
			continue
		}
		age, ok := w.outstanding[reg]
		if !ok {
			continue
		}
		if age < w.params.GlobalLatency {
			need := w.params.GlobalLatency - age
			committed := w.current * w.warps
			if committed < need {
				w.stall += need - committed
			}
			delta := committed
			if delta < need {
				delta = need
			}
			w.total += delta
			w.ageOutstanding(delta)
			w.current = 0
		}
		delete(w.outstanding, reg)
	}

	w.current += w.params.InstrCost
	w.ageOutstanding(w.params.InstrCost)

	switch {
	case cur.Op.IsGlobalMem() || cur.Op.IsLocalMem():
		if cur.Op.IsLoad() {
			_, exists := w.outstanding[cur.RegDst]
			coreerr.Assert(!exists, "register %d already has an outstanding load", cur.RegDst)
			w.outstanding[cur.RegDst] = w.params.InstrCost
		} else {
			w.flushAtLeast(w.params.GlobalLatency)
		}
	case cur.Op.IsSync():
		w.flush()
	}
}
