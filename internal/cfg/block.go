// Package cfg holds the basic-block and control-flow-graph data model
// and the leader-based CFG builder. Loop is
// defined here too, alongside BasicBlock, since the loop detector
// (internal/loopdetect) mutates BasicBlock/Loop fields directly and the
// two data types are mutually referential in the same way the original
// analyzer's single CFG.h header describes them.
package cfg

import "github.com/ptxtools/cyclecount/internal/instr"

// Sentinel block ids.
const (
	EntryID = 65535
	ExitID  = 65536
)

// Color is the DFS visit state used by the loop detector.
type Color int

const (
	White Color = iota
	Gray
	Black
)

// BasicBlock is a maximal straight-line instruction run. Begin/End are
// inclusive and nil for the entry/exit sentinels.
type BasicBlock struct {
	ID int

	Begin, End *instr.Instruction

	Succ, Pred []*BasicBlock

	LoopHeader, LoopFooter bool
	Color                  Color

	ALUCount, GlobalCount, SharedCount, LocalCount, BranchCount, SyncCount, TotalCount int
}

func newBlock(begin, end *instr.Instruction, id int) *BasicBlock {
	b := &BasicBlock{ID: id, Begin: begin, End: end}
	if begin != nil && end != nil {
		for cur := begin; ; cur = cur.Next {
			b.tally(cur)
			if cur == end {
				break
			}
		}
	}
	b.TotalCount = b.ALUCount + b.GlobalCount + b.SharedCount + b.LocalCount + b.BranchCount + b.SyncCount
	return b
}

func (b *BasicBlock) tally(inst *instr.Instruction) {
	switch {
	case inst.Op.IsALU():
		b.ALUCount++
	case inst.Op.IsBranchOp():
		b.BranchCount++
	case inst.Op.IsSharedMem():
		b.SharedCount++
	case inst.Op.IsLocalMem():
		b.LocalCount++
	case inst.Op.IsGlobalMem():
		b.GlobalCount++
	case inst.Op.IsSync():
		b.SyncCount++
	}
}

func (b *BasicBlock) addSucc(s *BasicBlock) { b.Succ = append(b.Succ, s) }
func (b *BasicBlock) addPred(p *BasicBlock) { b.Pred = append(b.Pred, p) }

// NumSucc and NumPred mirror the C++ accessors used throughout the loop
// detector and cycle counter for the CFG well-formedness checks.
func (b *BasicBlock) NumSucc() int { return len(b.Succ) }
func (b *BasicBlock) NumPred() int { return len(b.Pred) }
