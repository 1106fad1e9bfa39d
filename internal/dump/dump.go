// Package dump renders analysis results as plain-text reports, in the
// shape of the original analyzer's Output.cxx formats. Printer follows
// the io.Writer-plus-fmt.Fprintf idiom rather than building strings.
package dump

import (
	"fmt"
	"io"

	"github.com/ptxtools/cyclecount/internal/cfg"
	"github.com/ptxtools/cyclecount/internal/cycles"
	"github.com/ptxtools/cyclecount/internal/instr"
)

// Printer writes reports to w.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

type tally struct {
	total, alu, global, shared, local, branch int
}

func tallyBlocks(blocks []*cfg.BasicBlock) tally {
	var t tally
	for _, b := range blocks {
		t.total += b.TotalCount
		t.alu += b.ALUCount
		t.global += b.GlobalCount
		t.shared += b.SharedCount
		t.local += b.LocalCount
		t.branch += b.BranchCount
	}
	return t
}

func (p *Printer) printCounts(prefix string, t tally) {
	fmt.Fprintf(p.w, "%sInstruction count summary:\n", prefix)
	fmt.Fprintf(p.w, "%sTotal instructions = %d\n", prefix, t.total)
	fmt.Fprintf(p.w, "%s  ALU instructions = %d\n", prefix, t.alu)
	fmt.Fprintf(p.w, "%s  Global mem instructions = %d\n", prefix, t.global)
	fmt.Fprintf(p.w, "%s  Shared mem instructions = %d\n", prefix, t.shared)
	fmt.Fprintf(p.w, "%s  Local mem instructions = %d\n", prefix, t.local)
	fmt.Fprintf(p.w, "%s  Branch instructions = %d\n", prefix, t.branch)
}

func (p *Printer) printRatios(prefix string, t tally) {
	fmt.Fprintf(p.w, "%s#ALU instructions = %d\n", prefix, t.alu)
	fmt.Fprintf(p.w, "%s#Global instructions = %d\n", prefix, t.global)
	if t.global > 0 {
		fmt.Fprintf(p.w, "%sRatio of ALU ops to global ops = %g\n", prefix, float64(t.alu)/float64(t.global))
	}
}

// InstCounts implements -counts: instruction class totals across every
// block in the CFG.
func (p *Printer) InstCounts(g *cfg.CFG) {
	p.printCounts("", tallyBlocks(g.Blocks))
}

// Ratios implements -ratios.
func (p *Printer) Ratios(g *cfg.CFG) {
	p.printRatios("", tallyBlocks(g.Blocks))
}

// BasicBlocks implements -dumpbb: each block's raw instruction text.
func (p *Printer) BasicBlocks(g *cfg.CFG) {
	for _, b := range g.Blocks {
		if b.Begin == nil {
			continue
		}
		fmt.Fprintf(p.w, "Basic Block # %d :\n", b.ID)
		for cur := b.Begin; ; cur = cur.Next {
			fmt.Fprintln(p.w, cur.Text)
			if cur == b.End {
				break
			}
		}
		fmt.Fprintln(p.w)
	}
}

// CFG implements -dumpcfg: per block, header/footer flags and
// successor/predecessor ids.
func (p *Printer) CFG(g *cfg.CFG) {
	for _, b := range g.Blocks {
		fmt.Fprintf(p.w, "Basic Block # %d :\n", b.ID)
		if b.LoopHeader {
			fmt.Fprintln(p.w, "LH")
		}
		if b.LoopFooter {
			fmt.Fprintln(p.w, "LF")
		}
		fmt.Fprint(p.w, "Successors: ")
		for _, s := range b.Succ {
			fmt.Fprintf(p.w, "%d ", s.ID)
		}
		fmt.Fprintln(p.w)
		fmt.Fprint(p.w, "Predecessors: ")
		for _, pr := range b.Pred {
			fmt.Fprintf(p.w, "%d ", pr.ID)
		}
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w)
	}
}

// InstructionStream implements -dumpinst: the raw instruction chain with
// a memory-class suffix on every memory instruction.
func (p *Printer) InstructionStream(stream *instr.Stream) {
	stream.Each(func(inst *instr.Instruction) {
		if inst.IsDeleted {
			return
		}
		fmt.Fprint(p.w, inst.Text)
		switch {
		case inst.Op.IsGlobalMem():
			fmt.Fprint(p.w, " : GLOBAL OP")
		case inst.Op.IsSharedMem():
			fmt.Fprint(p.w, " : SHARED OP")
		case inst.Op.IsLocalMem():
			fmt.Fprint(p.w, " : LOCAL OP")
		}
		fmt.Fprintln(p.w)
	})
}

// Cycles implements -cycles and -loopcycles: the kernel-level totals,
// plus the experimental-mode stall-cycle count carried for
// observability, in place of the original's process-wide mutable
// counter.
func (p *Printer) Cycles(r cycles.Result) {
	fmt.Fprintf(p.w, "Total cycles = %d\n", r.TotalCycles)
	if r.StallCycles > 0 {
		fmt.Fprintf(p.w, "Stall cycles (experimental mode) = %d\n", r.StallCycles)
	}
}
