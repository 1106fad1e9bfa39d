package classify

import (
	"testing"

	"github.com/ptxtools/cyclecount/internal/instr"
)

func TestOneLabel(t *testing.T) {
	line, err := One(1, "L3:")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	if line.Label == nil {
		t.Fatalf("expected a Label, got %+v", line)
	}
	if line.Label.Number != 3 {
		t.Errorf("label number = %d, want 3", line.Label.Number)
	}
}

func TestOneDirective(t *testing.T) {
	cases := []string{"// a comment", "# a comment", "{", "}"}
	for _, text := range cases {
		line, err := One(1, text)
		if err != nil {
			t.Fatalf("One(%q) returned error: %v", text, err)
		}
		if line.Directive == nil {
			t.Errorf("One(%q): expected a Directive, got %+v", text, line)
		}
	}
}

func TestOneALU(t *testing.T) {
	line, err := One(1, "add.s32 r1, r2, r3")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	inst := line.Instruction
	if inst == nil {
		t.Fatalf("expected an Instruction")
	}
	if !inst.Op.IsALU() {
		t.Errorf("class = %v, want ALU", inst.Op.Class)
	}
	if inst.RegDst != 1 {
		t.Errorf("RegDst = %d, want 1", inst.RegDst)
	}
	if inst.RegSrc0 != 2 || inst.RegSrc1 != 3 {
		t.Errorf("RegSrc0/1 = %d/%d, want 2/3", inst.RegSrc0, inst.RegSrc1)
	}
}

func TestOneGlobalLoad(t *testing.T) {
	line, err := One(1, "ld.global.f32 r1, [r2]")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	inst := line.Instruction
	if !inst.Op.IsGlobalMem() || !inst.Op.IsLoad() {
		t.Errorf("op = %+v, want global load", inst.Op)
	}
	if inst.RegDst != 1 {
		t.Errorf("RegDst = %d, want 1", inst.RegDst)
	}
	if inst.RegSrc0 != 2 {
		t.Errorf("RegSrc0 = %d, want 2 (address register)", inst.RegSrc0)
	}
}

func TestOneSharedStore(t *testing.T) {
	line, err := One(1, "st.shared.f32 [r2], r1")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	inst := line.Instruction
	if !inst.Op.IsSharedMem() || !inst.Op.IsStore() {
		t.Errorf("op = %+v, want shared store", inst.Op)
	}
}

func TestOneBranch(t *testing.T) {
	line, err := One(1, "bra L7")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	inst := line.Instruction
	if !inst.Op.IsBranchOp() || inst.Op.IsCondBranch() {
		t.Errorf("op = %+v, want unconditional branch", inst.Op)
	}
	if inst.LabelNumber != 7 {
		t.Errorf("LabelNumber = %d, want 7", inst.LabelNumber)
	}
}

func TestOneCondBranch(t *testing.T) {
	line, err := One(1, "bra.cond L2")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	if !line.Instruction.Op.IsCondBranch() {
		t.Errorf("expected a conditional branch")
	}
}

func TestOneReturn(t *testing.T) {
	line, err := One(1, "ret")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	inst := line.Instruction
	if !inst.IsReturn || inst.LabelNumber != instr.ReturnLabel {
		t.Errorf("ret: IsReturn=%v LabelNumber=%d, want true/%d", inst.IsReturn, inst.LabelNumber, instr.ReturnLabel)
	}
}

func TestOneCall(t *testing.T) {
	line, err := One(1, "call L5")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	inst := line.Instruction
	if !inst.IsCall || inst.LabelNumber != 5 {
		t.Errorf("call: IsCall=%v LabelNumber=%d, want true/5", inst.IsCall, inst.LabelNumber)
	}
}

func TestOneSync(t *testing.T) {
	line, err := One(1, "bar.sync")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	if !line.Instruction.Op.IsSync() {
		t.Errorf("expected a sync instruction")
	}
}

func TestOneBlank(t *testing.T) {
	line, err := One(1, "   ")
	if err != nil {
		t.Fatalf("One returned error: %v", err)
	}
	if !line.Blank() {
		t.Errorf("expected a blank line")
	}
}
