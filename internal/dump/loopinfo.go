package dump

import (
	"fmt"
	"strings"

	"github.com/ptxtools/cyclecount/internal/cfg"
)

// LoopDumpKind selects which sub-sections LoopInfo prints per loop,
// mirroring the original's DumpType bitmask (DUMP_INFO is implicit).
type LoopDumpKind struct {
	Counts bool
	Ratios bool
}

// LoopInfo implements -loopinfo/-loopcounts/-loopratios: recursively
// prints every outermost loop, each loop before its nested loops, with
// the nested loops of one loop visited in reverse order of discovery,
// in the shape of Loop::DumpInfo and
// CFG::DumpLoopInfo/DumpLoopInstCounts/DumpLoopRatios.
func (p *Printer) LoopInfo(loops []*cfg.Loop, kind LoopDumpKind) {
	fmt.Fprintf(p.w, "Detected %d outer loop(s)\n", len(loops))
	for _, loop := range loops {
		p.dumpLoop(loop, kind)
	}
}

func (p *Printer) dumpLoop(loop *cfg.Loop, kind LoopDumpKind) {
	tabs := strings.Repeat("\t", loop.NestingLevel)

	fmt.Fprintf(p.w, "%sLoop index: %d, Nesting level: %d\n", tabs, loop.ID, loop.NestingLevel)
	fmt.Fprintf(p.w, "%sInstruction count: %d\n", tabs, loop.InstrCount)
	fmt.Fprint(p.w, tabs+"Enclosing loop: ")
	if loop.Enclosing == nil {
		fmt.Fprintln(p.w, "None")
	} else {
		fmt.Fprintln(p.w, loop.Enclosing.ID)
	}

	t := tallyBlocks(natLoopBlocks(loop))
	if kind.Counts {
		p.printCounts(tabs, t)
	}
	if kind.Ratios {
		p.printRatios(tabs, t)
	}
	fmt.Fprintln(p.w)

	if loop.HasInnerLoops() {
		for i := len(loop.InnerLoops) - 1; i >= 0; i-- {
			fmt.Fprintln(p.w, tabs+"Inner loop details: ")
			p.dumpLoop(loop.InnerLoops[i], kind)
			fmt.Fprintln(p.w)
		}
	}
}

func natLoopBlocks(loop *cfg.Loop) []*cfg.BasicBlock {
	blocks := make([]*cfg.BasicBlock, 0, len(loop.NatLoop))
	for b := range loop.NatLoop {
		blocks = append(blocks, b)
	}
	return blocks
}
