// Package kernel owns one kernel's instruction/label/directive streams and
// drives it through construction (label resolution + inlining), CFG/loop
// construction, and cycle counting.
package kernel

import (
	"log/slog"

	"github.com/ptxtools/cyclecount/internal/cfg"
	"github.com/ptxtools/cyclecount/internal/classify"
	"github.com/ptxtools/cyclecount/internal/cycles"
	"github.com/ptxtools/cyclecount/internal/inline"
	"github.com/ptxtools/cyclecount/internal/instr"
	"github.com/ptxtools/cyclecount/internal/loopdetect"
	"github.com/ptxtools/cyclecount/internal/reader"
	"github.com/ptxtools/cyclecount/internal/unrollcfg"
)

// Kernel is one analyzable unit: an instruction stream plus its derived
// CFG, once built.
type Kernel struct {
	Stream     *instr.Stream
	Directives []*instr.Directive
	NumWarps   uint

	CFG *cfg.CFG
}

// New returns an empty kernel ready for Construct.
func New() *Kernel {
	return &Kernel{Stream: instr.NewStream(), NumWarps: 32}
}

// Construct reads lines from r one at a time via classify.One, builds the
// instruction stream, links labels to their following instruction, then
// runs the inliner. Lines the classifier rejects are logged and skipped
// without aborting the parse; comments/directives are kept only for
// completeness of -dumpinst.
//
// A source file may hold several kernels back to back, each wrapped in a
// matching pair of brace lines ("{" ... "}"), mirroring the way the
// original analyzer uses brace-nesting to tell kernels apart in its
// comment/directive stream. Construct stops as soon as the opening
// kernel's braces balance back to zero and reports more=true; the caller
// should keep calling Construct on fresh Kernels until one comes back
// with zero instructions and more=false.
func (k *Kernel) Construct(r *reader.Reader) (more bool, err error) {
	labels := map[int]*instr.Label{}
	var pendingLabels []*instr.Label
	lineNum := 0
	depth := 0
	seenOpenBrace := false

	var line string
	for r.NextLine(&line) {
		lineNum++
		classified, cerr := classify.One(lineNum, line)
		if cerr != nil {
			slog.Warn("skipping unparsable line", "line", lineNum, "error", cerr)
			continue
		}
		if classified.Blank() {
			continue
		}

		switch {
		case classified.Label != nil:
			lbl := classified.Label
			labels[lbl.Number] = lbl
			pendingLabels = append(pendingLabels, lbl)

		case classified.Directive != nil:
			k.Directives = append(k.Directives, classified.Directive)
			switch classified.Directive.Text {
			case "{":
				depth++
				seenOpenBrace = true
			case "}":
				depth--
				if seenOpenBrace && depth == 0 {
					inline.Run(k.Stream, labels)
					return true, r.Err()
				}
			}

		case classified.Instruction != nil:
			inst := classified.Instruction
			if len(pendingLabels) > 0 {
				for _, lbl := range pendingLabels {
					lbl.NextInst = inst
				}
				pendingLabels = nil
				inst.IsBranchTarget = true
			}
			k.Stream.Append(inst)
		}
	}
	if err := r.Err(); err != nil {
		return false, err
	}

	inline.Run(k.Stream, labels)
	return false, nil
}

// BuildCFG constructs the CFG and detects loops. If unrolled is true, the
// loop detector consults the unroll-factor table (best effort, falls back
// to defaults on any read error).
func (k *Kernel) BuildCFG(unrolled bool, table unrollcfg.Table) {
	k.CFG = cfg.Build(k.Stream)
	loopdetect.Detect(k.CFG, unrolled, table)
}

// CountCycles runs the cycle counter over the kernel's CFG.
func (k *Kernel) CountCycles(mode cycles.Mode) cycles.Result {
	return cycles.Count(k.CFG, k.NumWarps, mode)
}
