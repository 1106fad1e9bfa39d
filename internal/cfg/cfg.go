package cfg

import (
	"github.com/ptxtools/cyclecount/internal/coreerr"
	"github.com/ptxtools/cyclecount/internal/instr"
)

// CFG owns all basic blocks and (after loop detection) all loops,
// including transitively nested inner loops. Blocks hold non-owning
// references to instructions in the kernel's stream.
type CFG struct {
	Entry, Exit *BasicBlock
	Blocks      []*BasicBlock

	// Loops holds only outermost loops once loop detection finishes;
	// inner loops remain reachable through their enclosing loop's
	// InnerLoops chain.
	Loops []*Loop

	HeaderLoop map[*BasicBlock]*Loop

	// blockMap is transient: populated during Build, cleared once edges
	// are wired.
	blockMap map[*instr.Instruction]*BasicBlock

	nextLoopID int
}

// LoopFromHeader returns the loop headed by b, or nil if b is not a loop
// header (or its loop hasn't been registered yet).
func (g *CFG) LoopFromHeader(b *BasicBlock) *Loop {
	if g.HeaderLoop == nil {
		return nil
	}
	return g.HeaderLoop[b]
}

// Build splits stream into basic blocks using the leader rule and wires
// successor/predecessor edges. stream must already have
// had inline.Run applied so all BranchTarget pointers are resolved.
func Build(stream *instr.Stream) *CFG {
	g := &CFG{HeaderLoop: map[*BasicBlock]*Loop{}}
	g.computeBlocks(stream)
	g.wireEdges()
	return g
}

func (g *CFG) addBlock(b *BasicBlock) { g.Blocks = append(g.Blocks, b) }

// computeBlocks is pass A: the classical leader algorithm. A new block
// starts at the stream's first instruction, at any branch target (unless
// the previous instruction already closed a block), and right after any
// branch/cond-branch.
func (g *CFG) computeBlocks(stream *instr.Stream) {
	g.blockMap = map[*instr.Instruction]*BasicBlock{}
	g.Entry = newBlock(nil, nil, EntryID)
	g.addBlock(g.Entry)

	var first, cur *instr.Instruction
	index := 0

	stream.Each(func(inst *instr.Instruction) {
		if inst.IsDeleted {
			return
		}
		prev := cur
		cur = inst
		if first == nil {
			first = cur
		}

		if cur.IsBranchTarget && first != cur {
			last := prev
			b := newBlock(first, last, index)
			index++
			g.blockMap[first] = b
			g.addBlock(b)
			first = cur
		}

		if cur.Op.IsBranchOp() {
			b := newBlock(first, cur, index)
			index++
			g.blockMap[first] = b
			g.addBlock(b)
			first = nil
		}
	})

	if first != nil {
		b := newBlock(first, cur, index)
		index++
		g.blockMap[first] = b
		g.addBlock(b)
	}

	g.Exit = newBlock(nil, nil, ExitID)
	g.addBlock(g.Exit)
}

// wireEdges is pass B: walk interior blocks in creation order, adding
// each block's fall-through edge (if it has one) before its taken-branch
// edge. This ordering is load-bearing: later passes rely on Succ[0]
// always being the fall-through successor. A block falls through to
// the next interior block unless it ends in an unconditional branch or
// return; the last interior block falls through to Exit.
func (g *CFG) wireEdges() {
	interior := g.Blocks[1 : len(g.Blocks)-1]
	if len(interior) == 0 {
		link(g.Entry, g.Exit)
		g.blockMap = nil
		return
	}

	link(g.Entry, interior[0])

	for i, b := range interior {
		terminator := b.End
		isBranch := terminator.Op.IsBranchOp()

		if !isBranch || terminator.Op.IsCondBranch() {
			if i+1 < len(interior) {
				link(b, interior[i+1])
			} else {
				link(b, g.Exit)
			}
		}

		if isBranch {
			if terminator.BranchTarget == nil {
				coreerr.Assert(terminator.LabelNumber == instr.ReturnLabel, "missing branch target for non-return statement")
				link(b, g.Exit)
			} else {
				target, ok := g.blockMap[terminator.BranchTarget]
				coreerr.Assert(ok, "incorrect block map state")
				link(b, target)
			}
		}
	}

	g.blockMap = nil
}

func link(from, to *BasicBlock) {
	from.addSucc(to)
	to.addPred(from)
}
