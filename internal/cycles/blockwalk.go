package cycles

import "github.com/ptxtools/cyclecount/internal/instr"

// walkBlock runs the block walk over [begin, end], both
// inclusive, stamping the Cycles field of the last instruction of each
// step (a whole global/local burst is one step in baseline mode) with the
// running total as of when it was processed. A nil begin (the entry/exit
// sentinels carry no instructions) is a no-op.
func (w *walker) walkBlock(begin, end *instr.Instruction) {
	if begin == nil {
		return
	}
	boundExclusive := end.Next
	for cur := begin; cur != boundExclusive; {
		stamped, next := w.stepBounded(cur, boundExclusive)
		stamped.Cycles = w.total
		cur = next
	}
}
