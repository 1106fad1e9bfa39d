// Package options holds the analyzer's CLI-level configuration, kept as
// a single struct so cmd/ptxcycles can build it once from flags and
// pass it down instead of threading a dozen booleans.
package options

import "github.com/ptxtools/cyclecount/internal/cycles"

// Options is the full set of flags the analyzer accepts.
type Options struct {
	InputFile string

	Counts     bool
	Ratios     bool
	LoopInfo   bool
	LoopCounts bool
	LoopRatios bool
	DumpBB     bool
	DumpCFG    bool
	DumpInst   bool
	DotCFG     bool
	Cycles     bool
	LoopCycles bool

	Unrolled     bool
	Experimental bool
	Warps        uint
}

// Default returns the analyzer's baked-in defaults: 32 warps, baseline
// mode, no dumps requested.
func Default() Options {
	return Options{Warps: 32}
}

// Mode translates Experimental into the cycle counter's Mode.
func (o Options) Mode() cycles.Mode {
	if o.Experimental {
		return cycles.ModeExperimental
	}
	return cycles.ModeBaseline
}

// AnyDumpRequested reports whether at least one report flag is set, so
// the driver can skip building reports nobody asked for.
func (o Options) AnyDumpRequested() bool {
	return o.Counts || o.Ratios || o.LoopInfo || o.LoopCounts || o.LoopRatios ||
		o.DumpBB || o.DumpCFG || o.DumpInst || o.DotCFG || o.Cycles || o.LoopCycles
}
