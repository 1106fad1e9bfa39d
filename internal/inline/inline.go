// Package inline implements the call-site inlining pass that runs before
// CFG construction: resolve every branch's label number to
// a concrete target instruction, match call sites to their callee's
// matching return via a stack (function bodies are emitted contiguously),
// then splice each callee body in place at its call site.
package inline

import (
	"github.com/ptxtools/cyclecount/internal/coreerr"
	"github.com/ptxtools/cyclecount/internal/instr"
)

// Run resolves branch targets against labels and inlines every call site
// in stream. labels maps a label number to the Label statement that
// introduces it; NextInst on each Label must already point at the
// instruction immediately following it (kernel.Construct sets this up
// while building the stream).
func Run(stream *instr.Stream, labels map[int]*instr.Label) {
	callSites := []*instr.Instruction{}
	callSiteToEntry := map[*instr.Instruction]*instr.Instruction{}
	entryToExit := map[*instr.Instruction]*instr.Instruction{}
	knownEntries := map[*instr.Instruction]bool{}
	var pending []*instr.Instruction // stack of function entries awaiting a matching ret

	stream.Each(func(inst *instr.Instruction) {
		if inst.IsDeleted {
			return
		}
		if inst.IsBranchTarget && knownEntries[inst] {
			pending = append(pending, inst)
		}

		if !inst.Op.IsBranchOp() {
			return
		}

		if inst.LabelNumber == instr.ReturnLabel {
			inst.BranchTarget = nil
			if len(pending) > 0 {
				entry := pending[len(pending)-1]
				pending = pending[:len(pending)-1]
				entryToExit[entry] = inst
			}
			return
		}

		label, ok := labels[inst.LabelNumber]
		coreerr.Assert(ok, "unseen label %d referenced", inst.LabelNumber)
		target := label.NextInst
		inst.BranchTarget = target

		if inst.IsCall {
			knownEntries[target] = true
			callSiteToEntry[inst] = target
			callSites = append(callSites, inst)
		}
	})

	for _, cs := range callSites {
		entry, ok := callSiteToEntry[cs]
		coreerr.Assert(ok, "call site missing from entry map")
		exit, ok := entryToExit[entry]
		// A call whose callee never returned is a malformed kernel; the
		// original treats unmatched top-level returns as terminal, but an
		// unmatched call is always a structural error.
		coreerr.Assert(ok, "call site has no matching return")
		spliceCallee(stream, cs, entry, exit)
	}
}

// spliceCallee moves [entry, exit] to sit immediately after cs, and makes
// exit's (a ret instruction's) BranchTarget point at whatever used to
// follow cs, so the inlined ret now behaves like an unconditional branch
// back to the caller's continuation.
func spliceCallee(stream *instr.Stream, cs, entry, exit *instr.Instruction) {
	continuation := cs.Next
	stream.SpliceAfter(cs, entry, exit)
	exit.BranchTarget = continuation
}
