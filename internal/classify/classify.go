// Package classify turns one source line into a typed instr.Instruction,
// instr.Label, or instr.Directive. This is the "token/opcode classifier"
// collaborator: the analysis core consumes its output but never imports
// this package. Mnemonic tables mirror the opt-unroll analyzer's
// alu_opcs/branch_opcs/mem_opcs/sync_opcs tables.
package classify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ptxtools/cyclecount/internal/instr"
)

// aluMnemonics are arithmetic/compare/logical/shift/FP ops: one fixed cost,
// no further subclassification (see spec's note that a real model would
// split div/mul/etc., which this analyzer intentionally does not do).
var aluMnemonics = map[string]bool{
	"add": true, "sub": true, "addc": true, "subc": true, "mul": true,
	"mad": true, "mul24": true, "mad24": true, "sad": true, "div": true,
	"rem": true, "subr": true, "abs": true, "neg": true, "min": true,
	"max": true, "ex2": true, "set": true, "setp": true, "selp": true,
	"slct": true, "and": true, "or": true, "xor": true, "not": true,
	"cnot": true, "shl": true, "shr": true, "rcp": true, "sqrt": true,
	"rsqrt": true, "sin": true, "cos": true, "lg2": true, "nop": true,
	"mov": true, "cvt": true,
}

var syncMnemonics = map[string]bool{
	"bar": true, "atom": true, "red": true, "vote": true,
}

// Line is the outcome of classifying one source line: at most one of
// Instruction, Label, Directive is non-nil.
type Line struct {
	Instruction *instr.Instruction
	Label       *instr.Label
	Directive   *instr.Directive
}

// Blank reports whether the line carried nothing at all (e.g. whitespace),
// the "null statement" case the driver silently drops per spec.
func (l Line) Blank() bool {
	return l.Instruction == nil && l.Label == nil && l.Directive == nil
}

// One classifies a single source line. A parse failure on the line is
// reported via the error return; callers log it and skip the line
// they do not abort the analysis.
func One(lineNum int, raw string) (Line, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Line{}, nil
	}
	if strings.HasPrefix(text, "//") || strings.HasPrefix(text, "#") ||
		strings.HasPrefix(text, "{") || strings.HasPrefix(text, "}") {
		return Line{Directive: &instr.Directive{Line: lineNum, Text: text}}, nil
	}

	text = strings.TrimSpace(stripInlineComment(text))
	if text == "" {
		return Line{}, nil
	}
	if lbl, ok := strings.CutSuffix(text, ":"); ok && isLabelName(lbl) {
		n, err := labelNumber(lbl)
		if err != nil {
			return Line{}, fmt.Errorf("line %d: %w", lineNum, err)
		}
		return Line{Label: &instr.Label{Number: n}}, nil
	}

	inst, err := parseInstruction(lineNum, text)
	if err != nil {
		return Line{}, fmt.Errorf("line %d: %w", lineNum, err)
	}
	return Line{Instruction: inst}, nil
}

func stripInlineComment(s string) string {
	if idx := strings.Index(s, "//"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func isLabelName(s string) bool {
	return strings.HasPrefix(s, "L") && len(s) > 1
}

func labelNumber(labelName string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(labelName, "L"))
}

// parseInstruction parses "mnemonic operand, operand, ..." into a typed
// instruction. Operand conventions: destination register (if any) comes
// first for ALU/load ops; memory address operands are written "[rN]".
func parseInstruction(lineNum int, text string) (*instr.Instruction, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty instruction")
	}
	mnemonic := fields[0]
	rest := strings.Join(fields[1:], " ")
	operands := splitOperands(rest)

	base, suffix := mnemonic, ""
	if idx := strings.Index(mnemonic, "."); idx >= 0 {
		base, suffix = mnemonic[:idx], mnemonic[idx+1:]
	}

	inst := instr.New(lineNum, text, instr.Opcode{})

	switch {
	case base == "ret" || base == "return":
		inst.Op = instr.Opcode{Class: instr.ClassBranch}
		inst.LabelNumber = instr.ReturnLabel
		inst.IsReturn = true
		return inst, nil

	case base == "call":
		inst.Op = instr.Opcode{Class: instr.ClassBranch}
		inst.IsCall = true
		n, err := operandLabel(operands)
		if err != nil {
			return nil, err
		}
		inst.LabelNumber = n
		return inst, nil

	case base == "bra" || base == "exit":
		cond := strings.Contains(suffix, "cond") || strings.HasPrefix(text, "@")
		if cond {
			inst.Op = instr.Opcode{Class: instr.ClassCondBranch}
		} else {
			inst.Op = instr.Opcode{Class: instr.ClassBranch}
		}
		if base == "exit" {
			inst.LabelNumber = instr.ReturnLabel
			inst.IsReturn = true
			return inst, nil
		}
		n, err := operandLabel(operands)
		if err != nil {
			return nil, err
		}
		inst.LabelNumber = n
		return inst, nil

	case base == "ld" || base == "st":
		space := memSpace(suffix)
		dir := instr.MemDirLoad
		if base == "st" {
			dir = instr.MemDirStore
		}
		inst.Op = instr.Opcode{Class: instr.ClassMem, Space: space, Dir: dir}
		return parseMemOperands(inst, dir, operands)

	case syncMnemonics[base]:
		inst.Op = instr.Opcode{Class: instr.ClassSync}
		return inst, nil

	case aluMnemonics[base]:
		inst.Op = instr.Opcode{Class: instr.ClassALU}
		return parseALUOperands(inst, operands)

	default:
		return nil, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
}

func splitOperands(rest string) []string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	parts := strings.Split(rest, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func operandLabel(operands []string) (int, error) {
	if len(operands) == 0 {
		return 0, fmt.Errorf("branch missing target operand")
	}
	return labelNumber(operands[0])
}

func memSpace(suffix string) instr.MemSpace {
	switch {
	case strings.Contains(suffix, "global"):
		return instr.MemSpaceGlobal
	case strings.Contains(suffix, "shared"):
		return instr.MemSpaceShared
	case strings.Contains(suffix, "local"):
		return instr.MemSpaceLocal
	default:
		return instr.MemSpaceGlobal
	}
}

func parseMemOperands(inst *instr.Instruction, dir instr.MemDir, operands []string) (*instr.Instruction, error) {
	regs := make([]int, 0, len(operands))
	for _, op := range operands {
		r, ok := registerOf(op)
		if !ok {
			continue
		}
		regs = append(regs, r)
	}
	switch dir {
	case instr.MemDirLoad:
		if len(regs) < 2 {
			return nil, fmt.Errorf("load needs dest and address registers")
		}
		inst.RegDst = regs[0]
		inst.RegSrc0 = regs[1]
	case instr.MemDirStore:
		if len(regs) < 2 {
			return nil, fmt.Errorf("store needs address and value registers")
		}
		inst.RegSrc0 = regs[0]
		inst.RegSrc1 = regs[1]
	}
	return inst, nil
}

func parseALUOperands(inst *instr.Instruction, operands []string) (*instr.Instruction, error) {
	if len(operands) == 0 {
		return inst, nil
	}
	if r, ok := registerOf(operands[0]); ok {
		inst.RegDst = r
	}
	srcs := []*int{&inst.RegSrc0, &inst.RegSrc1, &inst.RegSrc2}
	si := 0
	for _, op := range operands[1:] {
		if si >= len(srcs) {
			break
		}
		if r, ok := registerOf(op); ok {
			*srcs[si] = r
			si++
		}
	}
	return inst, nil
}

func registerOf(operand string) (int, bool) {
	operand = strings.Trim(operand, "[]")
	if !strings.HasPrefix(operand, "r") {
		return 0, false
	}
	n, err := strconv.Atoi(operand[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
