package instr

// Instruction is one node in a doubly-linked instruction stream. Prev/Next
// are stable once CFG construction starts; BranchTarget is stable once the
// inliner has run. Scratch fields (BranchTarget, Cycles, IsBranchTarget)
// are mutated by the inliner and the CFG builder, never by the cycle
// counter itself (it only writes Cycles as a diagnostic stamp).
type Instruction struct {
	Line int
	Text string

	Op Opcode

	// LabelNumber is only meaningful for branch instructions: ReturnLabel
	// (-1) denotes a return, any other value names a label to resolve.
	LabelNumber int

	BranchTarget   *Instruction
	IsBranchTarget bool
	IsCall         bool
	IsReturn       bool
	IsDeleted      bool

	RegDst  int
	RegSrc0 int
	RegSrc1 int
	RegSrc2 int

	Prev, Next *Instruction

	// Cycles is a diagnostic stamp: the running cycle total as of when the
	// cycle counter finished processing this instruction.
	Cycles uint64
}

// New returns an Instruction with no register operands set.
func New(line int, text string, op Opcode) *Instruction {
	return &Instruction{
		Line:        line,
		Text:        text,
		Op:          op,
		LabelNumber: 0,
		RegDst:      NoReg,
		RegSrc0:     NoReg,
		RegSrc1:     NoReg,
		RegSrc2:     NoReg,
	}
}

// SrcRegs returns the up-to-three source register ids, NoReg for absent
// operands.
func (i *Instruction) SrcRegs() [3]int {
	return [3]int{i.RegSrc0, i.RegSrc1, i.RegSrc2}
}

// Label carries a numeric id and a reference to the first non-label
// instruction following it. Label numbers are unique within a kernel.
type Label struct {
	Number   int
	NextInst *Instruction
}

// Directive is an unclassified line (PTX directive, comment, etc.) kept
// only so a complete text dump can reproduce the source faithfully.
// The analysis core never looks inside a Directive.
type Directive struct {
	Line int
	Text string
}
