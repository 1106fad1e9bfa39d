// Package dotgraph emits a Graphviz .dot rendering of a CFG, matching
// the original analyzer's DumpCFGToDot format (per-instruction
// opcode-class suffix, loop header/footer annotation, cycle stamps).
// No example repo in the retrieval pack carries a Graphviz client
// library, and the format is small and fixed, so this is hand-written
// against io.Writer like the rest of the dump layer.
package dotgraph

import (
	"fmt"
	"io"
	"strings"

	"github.com/ptxtools/cyclecount/internal/cfg"
	"github.com/ptxtools/cyclecount/internal/instr"
)

// Write renders g as a .dot digraph to w.
func Write(w io.Writer, g *cfg.CFG) {
	fmt.Fprintln(w, "digraph structs {")
	fmt.Fprintln(w, `size = "7.5, 10";`)
	fmt.Fprintln(w, "node [shape=record];")

	for _, b := range g.Blocks {
		writeNode(w, g, b)
	}
	for _, b := range g.Blocks {
		writeEdges(w, b)
	}

	fmt.Fprintln(w, "}")
}

func writeNode(w io.Writer, g *cfg.CFG, b *cfg.BasicBlock) {
	fmt.Fprintf(w, "\t struct%d[shape=record, label=\"", b.ID)
	switch b.ID {
	case cfg.EntryID:
		fmt.Fprint(w, `Entry block \n`)
		fmt.Fprintln(w, "\"];")
		return
	case cfg.ExitID:
		fmt.Fprint(w, `Exit block \n`)
		fmt.Fprintln(w, "\"];")
		return
	}

	fmt.Fprintf(w, `BB %d\n`, b.ID)
	fmt.Fprintf(w, `(Instruction count: %d)\n`, b.TotalCount)
	if b.LoopHeader {
		loop := g.LoopFromHeader(b)
		fmt.Fprintf(w, `Loop Header (Nesting depth %d)\n`, loop.NestingLevel)
	}
	if b.LoopFooter {
		fmt.Fprint(w, `Loop Footer\n`)
	}

	if b.Begin != nil {
		for cur := b.Begin; ; cur = cur.Next {
			fmt.Fprint(w, escapePipe(cur.Text))
			fmt.Fprint(w, classSuffix(cur.Op))
			fmt.Fprintf(w, `\n%d\n`, cur.Cycles)
			if cur == b.End {
				break
			}
		}
	}

	fmt.Fprintln(w, "\"];")
}

func writeEdges(w io.Writer, b *cfg.BasicBlock) {
	for _, succ := range b.Succ {
		fmt.Fprintf(w, "\t struct%d -> struct%d", b.ID, succ.ID)
		if b.LoopFooter && succ.LoopHeader && b.ID == succ.ID {
			fmt.Fprint(w, " [dir=back]")
		}
		fmt.Fprintln(w, ";")
	}
}

func escapePipe(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func classSuffix(op instr.Opcode) string {
	switch {
	case op.IsALU():
		return ` (A)`
	case op.IsBranchOp():
		return ` (B)`
	case op.IsLocalMem():
		return ` (L)`
	case op.IsSharedMem():
		return ` (S)`
	case op.IsGlobalMem():
		return ` (G)`
	case op.IsSync():
		return ` (N)`
	default:
		return ""
	}
}
