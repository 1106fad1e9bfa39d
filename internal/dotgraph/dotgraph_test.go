package dotgraph_test

import (
	"strings"
	"testing"

	"github.com/ptxtools/cyclecount/internal/dotgraph"
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

func TestWriteEmitsEntryAndExitSentinels(t *testing.T) {
	k := buildKernel(t, `
add.s32 r1, r2, r3
ret
`)
	var buf strings.Builder
	dotgraph.Write(&buf, k.CFG)
	out := buf.String()

	if !strings.HasPrefix(out, "digraph structs {") {
		t.Fatalf("expected a digraph header, got:\n%s", out)
	}
	if !strings.Contains(out, `Entry block`) {
		t.Errorf("missing entry sentinel node, got:\n%s", out)
	}
	if !strings.Contains(out, `Exit block`) {
		t.Errorf("missing exit sentinel node, got:\n%s", out)
	}
	if !strings.Contains(out, "(A)") {
		t.Errorf("expected the ALU instruction's (A) class suffix, got:\n%s", out)
	}
	if !strings.Contains(out, "(B)") {
		t.Errorf("expected ret's (B) branch class suffix, got:\n%s", out)
	}
}

func TestWriteMarksSelfLoopBackEdge(t *testing.T) {
	k := buildKernel(t, `
L1:
add.s32 r1, r1, r2
bra.cond L1
ret
`)
	var buf strings.Builder
	dotgraph.Write(&buf, k.CFG)
	out := buf.String()

	if !strings.Contains(out, "Loop Header") {
		t.Errorf("missing loop header annotation, got:\n%s", out)
	}
	if !strings.Contains(out, "Loop Footer") {
		t.Errorf("missing loop footer annotation, got:\n%s", out)
	}
	if !strings.Contains(out, "[dir=back]") {
		t.Errorf("expected the self-loop edge to be marked dir=back, got:\n%s", out)
	}
}
