package dump_test

import (
	"strings"
	"testing"

	"github.com/ptxtools/cyclecount/internal/cycles"
	"github.com/ptxtools/cyclecount/internal/dump"
	"github.com/ptxtools/cyclecount/internal/kernel"
	"github.com/ptxtools/cyclecount/internal/reader"
)

func buildKernel(t *testing.T, src string) *kernel.Kernel {
	t.Helper()
	r := reader.New(strings.NewReader(src))
	k := kernel.New()
	if _, err := k.Construct(r); err != nil {
		t.Fatalf("Construct: %v", err)
	}
	k.BuildCFG(false, nil)
	return k
}

func TestInstCounts(t *testing.T) {
	k := buildKernel(t, `
add.s32 r1, r2, r3
ld.global.f32 r4, [r1]
ret
`)
	var buf strings.Builder
	dump.NewPrinter(&buf).InstCounts(k.CFG)
	out := buf.String()

	if !strings.Contains(out, "Total instructions = 3") {
		t.Errorf("missing total instructions line, got:\n%s", out)
	}
	if !strings.Contains(out, "ALU instructions = 1") {
		t.Errorf("missing ALU count, got:\n%s", out)
	}
	if !strings.Contains(out, "Global mem instructions = 1") {
		t.Errorf("missing global mem count, got:\n%s", out)
	}
}

func TestRatios(t *testing.T) {
	k := buildKernel(t, `
add.s32 r1, r2, r3
add.s32 r1, r2, r3
ld.global.f32 r4, [r1]
ret
`)
	var buf strings.Builder
	dump.NewPrinter(&buf).Ratios(k.CFG)
	out := buf.String()
	if !strings.Contains(out, "Ratio of ALU ops to global ops = 2") {
		t.Errorf("expected a 2:1 ALU-to-global ratio, got:\n%s", out)
	}
}

func TestInstructionStreamTagsMemOps(t *testing.T) {
	k := buildKernel(t, `
ld.global.f32 r1, [r2]
st.shared.f32 [r3], r1
ret
`)
	var buf strings.Builder
	dump.NewPrinter(&buf).InstructionStream(k.Stream)
	out := buf.String()

	if !strings.Contains(out, "ld.global.f32 r1, [r2] : GLOBAL OP") {
		t.Errorf("missing GLOBAL OP tag, got:\n%s", out)
	}
	if !strings.Contains(out, "st.shared.f32 [r3], r1 : SHARED OP") {
		t.Errorf("missing SHARED OP tag, got:\n%s", out)
	}
	if strings.Contains(out, "ret : ") {
		t.Errorf("ret should carry no memory-class tag, got:\n%s", out)
	}
}

func TestCFGDumpMarksHeaderAndFooter(t *testing.T) {
	k := buildKernel(t, `
L1:
add.s32 r1, r1, r2
bra.cond L1
ret
`)
	var buf strings.Builder
	dump.NewPrinter(&buf).CFG(k.CFG)
	out := buf.String()
	if !strings.Contains(out, "LH") {
		t.Errorf("expected a loop header (LH) marker, got:\n%s", out)
	}
	if !strings.Contains(out, "LF") {
		t.Errorf("expected a loop footer (LF) marker, got:\n%s", out)
	}
}

func TestCyclesOmitsStallInBaselineMode(t *testing.T) {
	var buf strings.Builder
	dump.NewPrinter(&buf).Cycles(cycles.Result{TotalCycles: 42})
	out := buf.String()
	if !strings.Contains(out, "Total cycles = 42") {
		t.Errorf("missing total cycles line, got:\n%s", out)
	}
	if strings.Contains(out, "Stall") {
		t.Errorf("a zero stall count should not be printed, got:\n%s", out)
	}
}

func TestCyclesShowsStallWhenNonzero(t *testing.T) {
	var buf strings.Builder
	dump.NewPrinter(&buf).Cycles(cycles.Result{TotalCycles: 100, StallCycles: 7})
	out := buf.String()
	if !strings.Contains(out, "Stall cycles (experimental mode) = 7") {
		t.Errorf("missing stall cycles line, got:\n%s", out)
	}
}
