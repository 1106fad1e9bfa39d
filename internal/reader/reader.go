// Package reader is the line-oriented text reader the parser reads from.
// It is an external collaborator per the analysis core's contract: the
// core never touches it directly.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Reader hands out one source line at a time, tracking line numbers for
// diagnostics.
type Reader struct {
	scanner *bufio.Scanner
	lineNum int
}

// New wraps r for line-by-line reading.
func New(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Open opens path for reading, or reads from stdin if path is "-".
// Callers are responsible for closing the returned closer once the
// Reader built on top of it is no longer needed.
func Open(path string) (*Reader, io.Closer, error) {
	if path == "-" {
		return New(os.Stdin), io.NopCloser(os.Stdin), nil
	}
	f, err := openFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return New(f), f, nil
}

// NextLine advances to the next line, storing it in *line. It reports
// false once the underlying reader is exhausted.
func (r *Reader) NextLine(line *string) bool {
	if !r.scanner.Scan() {
		return false
	}
	r.lineNum++
	*line = r.scanner.Text()
	return true
}

// LineNum returns the 1-based number of the line most recently returned by
// NextLine.
func (r *Reader) LineNum() int { return r.lineNum }

// Err returns any non-EOF error encountered while scanning.
func (r *Reader) Err() error { return r.scanner.Err() }
