// Package unrollcfg reads the unroll-factor table: a
// whitespace-separated list of non-negative integers in "./.uconf",
// indexed by loop id. Any read error is non-fatal: Load logs a warning
// and callers fall back to default trip counts.
package unrollcfg

import (
	"bufio"
	"log/slog"
	"os"
	"strconv"
)

// Table maps a loop id to its unroll factor.
type Table []uint64

// Path is the fixed location of the unroll-factor file.
const Path = "./.uconf"

// Load reads Path. On any failure (missing file, bad token) it logs a
// warning and returns a nil table; callers must treat a nil table the
// same as "no factors available."
func Load() Table {
	f, err := os.Open(Path)
	if err != nil {
		slog.Warn("unroll config file unavailable, using default loop iteration counts", "path", Path, "error", err)
		return nil
	}
	defer f.Close()

	var factors Table
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseUint(scanner.Text(), 10, 64)
		if err != nil {
			slog.Warn("malformed unroll factor, using default loop iteration counts", "token", scanner.Text())
			return nil
		}
		factors = append(factors, v)
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("error reading unroll config file, using default loop iteration counts", "error", err)
		return nil
	}
	return factors
}

// FactorFor returns the unroll factor for loopID and whether the table
// actually covers that id. numLoops is the current loop count; by
// design, a length mismatch between the table and the loop list makes
// the whole table unusable.
func (t Table) FactorFor(loopID int, numLoops int) (uint64, bool) {
	if t == nil || len(t) != numLoops {
		return 0, false
	}
	if loopID < 0 || loopID >= len(t) {
		return 0, false
	}
	return t[loopID], true
}
