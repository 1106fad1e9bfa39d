package inline

import (
	"testing"

	"github.com/ptxtools/cyclecount/internal/instr"
)

func newALU(line int) *instr.Instruction {
	return instr.New(line, "add.s32 r1, r1, r1", instr.Opcode{Class: instr.ClassALU})
}

func newBranch(line, label int) *instr.Instruction {
	i := instr.New(line, "bra L", instr.Opcode{Class: instr.ClassBranch})
	i.LabelNumber = label
	return i
}

func newCall(line, label int) *instr.Instruction {
	i := instr.New(line, "call L", instr.Opcode{Class: instr.ClassBranch})
	i.LabelNumber = label
	i.IsCall = true
	return i
}

func newRet(line int) *instr.Instruction {
	i := instr.New(line, "ret", instr.Opcode{Class: instr.ClassBranch})
	i.LabelNumber = instr.ReturnLabel
	i.IsReturn = true
	return i
}

// TestRunInlinesCallSite builds "call L1; ret" followed by "L1: add; ret"
// and checks the callee body gets spliced in right after the call site,
// with the inlined ret's BranchTarget rewired to the call's continuation.
func TestRunInlinesCallSite(t *testing.T) {
	stream := instr.NewStream()

	call := newCall(1, 1)
	mainRet := newRet(2)
	calleeBody := newALU(3)
	calleeRet := newRet(4)

	stream.Append(call)
	stream.Append(mainRet)
	stream.Append(calleeBody)
	stream.Append(calleeRet)

	calleeBody.IsBranchTarget = true
	label := &instr.Label{Number: 1, NextInst: calleeBody}

	Run(stream, map[int]*instr.Label{1: label})

	if call.BranchTarget != calleeBody {
		t.Fatalf("call's BranchTarget should resolve to the callee entry")
	}
	// After splicing, the stream order should be: call, calleeBody,
	// calleeRet, mainRet — the callee body now sits between the call site
	// and whatever used to follow it.
	if call.Next != calleeBody {
		t.Errorf("callee body should immediately follow the call site")
	}
	if calleeBody.Next != calleeRet {
		t.Errorf("callee body should be followed by its own ret")
	}
	if calleeRet.Next != mainRet {
		t.Errorf("callee's ret should now lead into the call's continuation")
	}
	if calleeRet.BranchTarget != mainRet {
		t.Errorf("inlined ret's BranchTarget should point at the call's continuation")
	}
}

func TestRunResolvesPlainBranch(t *testing.T) {
	stream := instr.NewStream()
	branch := newBranch(1, 1)
	target := newALU(2)
	target.IsBranchTarget = true
	stream.Append(branch)
	stream.Append(target)

	label := &instr.Label{Number: 1, NextInst: target}
	Run(stream, map[int]*instr.Label{1: label})

	if branch.BranchTarget != target {
		t.Errorf("branch should resolve to the labeled instruction")
	}
}

func TestRunLeavesReturnsUntouched(t *testing.T) {
	stream := instr.NewStream()
	ret := newRet(1)
	stream.Append(ret)

	Run(stream, map[int]*instr.Label{})

	if ret.BranchTarget != nil {
		t.Errorf("a top-level ret should keep a nil BranchTarget")
	}
}
