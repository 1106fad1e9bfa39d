package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ptxtools/cyclecount/internal/cfg"
	"github.com/ptxtools/cyclecount/internal/coreerr"
	"github.com/ptxtools/cyclecount/internal/dotgraph"
	"github.com/ptxtools/cyclecount/internal/dump"
	"github.com/ptxtools/cyclecount/internal/kernel"
	"github.com/ptxtools/cyclecount/internal/options"
	"github.com/ptxtools/cyclecount/internal/reader"
	"github.com/ptxtools/cyclecount/internal/unrollcfg"
)

var version = "0.1.0"

// Report flags, one per -dump-style legacy option. Bound directly to
// cobra flags the same way ralph-cc binds its debug flags.
var (
	fCounts     bool
	fRatios     bool
	fLoopInfo   bool
	fLoopCounts bool
	fLoopRatios bool
	fDumpBB     bool
	fDumpCFG    bool
	fDumpInst   bool
	fDotCFG     bool
	fCycles     bool
	fLoopCycles bool
	fUnrolled   bool
	fExp        bool
	fWarps      uint
)

// legacyFlagNames lists every single-dash flag the original analyzer
// accepted, so normalizeFlags can rewrite them to pflag's double-dash
// form before cobra ever sees them.
var legacyFlagNames = []string{
	"counts", "ratios", "loopinfo", "loopcounts", "loopratios",
	"dumpbb", "dumpcfg", "dumpinst", "dotcfg", "cycles", "loopcycles",
	"unrolled", "exp",
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// normalizeFlags rewrites legacy single-dash flags like -counts and
// -warps=32 to --counts and --warps=32, the way ralph-cc's main.go
// normalizes CompCert-style single-dash debug flags for pflag.
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = arg
		if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
			continue
		}
		body := arg[1:]
		name := body
		if idx := indexByte(body, '='); idx >= 0 {
			name = body[:idx]
		}
		for _, legacy := range legacyFlagNames {
			if name == legacy {
				result[i] = "-" + arg
				break
			}
		}
		if name == "warps" {
			result[i] = "-" + arg
		}
	}
	return result
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ptxcycles [file]",
		Short: "ptxcycles estimates SIMT warp execution cycles for a PTX-like kernel",
		Long: `ptxcycles statically analyzes a PTX-like assembly kernel and estimates
the number of cycles a warp spends executing it, hiding memory latency
behind the configured number of concurrently resident warps.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options.Default()
			opts.InputFile = args[0]
			opts.Counts, opts.Ratios = fCounts, fRatios
			opts.LoopInfo, opts.LoopCounts, opts.LoopRatios = fLoopInfo, fLoopCounts, fLoopRatios
			opts.DumpBB, opts.DumpCFG, opts.DumpInst, opts.DotCFG = fDumpBB, fDumpCFG, fDumpInst, fDotCFG
			opts.Cycles, opts.LoopCycles = fCycles, fLoopCycles
			opts.Unrolled, opts.Experimental = fUnrolled, fExp
			opts.Warps = fWarps
			return runWithRecover(opts, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&fCounts, "counts", false, "dump per-kernel instruction class counts")
	rootCmd.Flags().BoolVar(&fRatios, "ratios", false, "dump the ALU-to-global-memory op ratio")
	rootCmd.Flags().BoolVar(&fLoopInfo, "loopinfo", false, "dump loop nesting and instruction counts")
	rootCmd.Flags().BoolVar(&fLoopCounts, "loopcounts", false, "dump per-loop instruction class counts")
	rootCmd.Flags().BoolVar(&fLoopRatios, "loopratios", false, "dump per-loop ALU-to-global ratios")
	rootCmd.Flags().BoolVar(&fDumpBB, "dumpbb", false, "dump each basic block's instructions")
	rootCmd.Flags().BoolVar(&fDumpCFG, "dumpcfg", false, "dump the CFG's block/edge structure")
	rootCmd.Flags().BoolVar(&fDumpInst, "dumpinst", false, "dump the raw instruction stream")
	rootCmd.Flags().BoolVar(&fDotCFG, "dotcfg", false, "write cfg.dot, a Graphviz rendering of the CFG")
	rootCmd.Flags().BoolVar(&fCycles, "cycles", false, "estimate and print total warp cycles")
	rootCmd.Flags().BoolVar(&fLoopCycles, "loopcycles", false, "estimate and print total warp cycles, including stall observability")
	rootCmd.Flags().BoolVar(&fUnrolled, "unrolled", false, "rescale loop trip counts using ./.uconf")
	rootCmd.Flags().BoolVar(&fExp, "exp", false, "use the experimental per-register dependency cycle model")
	rootCmd.Flags().UintVar(&fWarps, "warps", 32, "number of concurrently resident warps")

	return rootCmd
}

// runWithRecover is the single point that recovers a
// *coreerr.AssertionError: the analysis core never recovers from one
// itself, so any structural invariant violation surfaces here as a
// logged fatal error and a non-zero exit, not a crash.
func runWithRecover(opts options.Options, out, errOut io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ae, ok := r.(*coreerr.AssertionError); ok {
				slog.Error("internal assertion failed", "error", ae)
				err = ae
				return
			}
			panic(r)
		}
	}()
	return execute(opts, out, errOut)
}

func execute(opts options.Options, out, errOut io.Writer) error {
	r, closer, err := reader.Open(opts.InputFile)
	if err != nil {
		fmt.Fprintln(errOut, "Input file not found")
		return err
	}
	defer closer.Close()

	var table unrollcfg.Table
	if opts.Unrolled {
		table = unrollcfg.Load()
	}

	for {
		k := kernel.New()
		k.NumWarps = opts.Warps

		more, cerr := k.Construct(r)
		if cerr != nil {
			return cerr
		}
		if k.Stream.Len() == 0 {
			if !more {
				break
			}
			continue
		}

		k.BuildCFG(opts.Unrolled, table)
		if err := report(k, opts, out); err != nil {
			return err
		}

		if !more {
			break
		}
	}
	return nil
}

func report(k *kernel.Kernel, opts options.Options, out io.Writer) error {
	p := dump.NewPrinter(out)

	if opts.Counts {
		p.InstCounts(k.CFG)
	}
	if opts.Ratios {
		p.Ratios(k.CFG)
	}
	if opts.LoopRatios {
		p.LoopInfo(k.CFG.Loops, dump.LoopDumpKind{Ratios: true})
	}
	if opts.LoopInfo {
		p.LoopInfo(k.CFG.Loops, dump.LoopDumpKind{})
	}
	if opts.LoopCounts {
		p.LoopInfo(k.CFG.Loops, dump.LoopDumpKind{Counts: true})
	}
	if opts.DumpInst {
		p.InstructionStream(k.Stream)
	}
	if opts.DumpCFG {
		p.CFG(k.CFG)
	}
	if opts.DumpBB {
		p.BasicBlocks(k.CFG)
	}
	if opts.Cycles || opts.LoopCycles {
		p.Cycles(k.CountCycles(opts.Mode()))
	}
	if opts.DotCFG {
		if err := writeDot(k.CFG); err != nil {
			return err
		}
	}
	return nil
}

func writeDot(g *cfg.CFG) error {
	f, err := os.Create("cfg.dot")
	if err != nil {
		return err
	}
	defer f.Close()
	dotgraph.Write(f, g)
	return nil
}
