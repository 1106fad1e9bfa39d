package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"gopkg.in/yaml.v3"
)

// cycleTestSpec is one golden-kernel case: a kernel source plus the
// totals the CLI's -cycles report should produce for it, in a
// YAML-driven end-to-end fixture style.
type cycleTestSpec struct {
	Name               string  `yaml:"name"`
	Input              string  `yaml:"input"`
	Warps              uint    `yaml:"warps"`
	Mode               string  `yaml:"mode"`
	ExpectTotal        *uint64 `yaml:"expect_total"`
	ExpectNonzero      bool    `yaml:"expect_nonzero"`
	ExpectStallNonzero bool    `yaml:"expect_stall_nonzero"`
}

type cycleTestFile struct {
	Tests []cycleTestSpec `yaml:"tests"`
}

var (
	totalCyclesRE = regexp.MustCompile(`Total cycles = (\d+)`)
	stallCyclesRE = regexp.MustCompile(`Stall cycles \(experimental mode\) = (\d+)`)
)

func TestCyclesGolden(t *testing.T) {
	data, err := os.ReadFile("testdata/cycles.yaml")
	if err != nil {
		t.Fatalf("testdata/cycles.yaml not found: %v", err)
	}
	var tf cycleTestFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		t.Fatalf("failed to parse cycles.yaml: %v", err)
	}

	for _, tc := range tf.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			tmpDir := t.TempDir()
			inputPath := filepath.Join(tmpDir, "kernel.ptx")
			if err := os.WriteFile(inputPath, []byte(tc.Input), 0644); err != nil {
				t.Fatalf("failed to write kernel: %v", err)
			}

			warps := tc.Warps
			if warps == 0 {
				warps = 32
			}
			args := []string{"--cycles", fmt.Sprintf("--warps=%d", warps)}
			if tc.Mode == "experimental" {
				args = append(args, "--exp")
			}
			args = append(args, inputPath)

			var out, errOut bytes.Buffer
			cmd := newRootCmd(&out, &errOut)
			cmd.SetArgs(args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("ptxcycles failed: %v\nstderr: %s", err, errOut.String())
			}

			output := out.String()
			m := totalCyclesRE.FindStringSubmatch(output)
			if m == nil {
				t.Fatalf("no \"Total cycles\" line in output:\n%s", output)
			}
			total, err := strconv.ParseUint(m[1], 10, 64)
			if err != nil {
				t.Fatalf("unparsable total cycles %q: %v", m[1], err)
			}

			if tc.ExpectTotal != nil && total != *tc.ExpectTotal {
				t.Errorf("total cycles = %d, want %d", total, *tc.ExpectTotal)
			}
			if tc.ExpectNonzero && total == 0 {
				t.Errorf("expected non-zero total cycles")
			}
			if tc.ExpectStallNonzero {
				sm := stallCyclesRE.FindStringSubmatch(output)
				if sm == nil {
					t.Fatalf("expected a non-zero stall line in output:\n%s", output)
				}
				stall, err := strconv.ParseUint(sm[1], 10, 64)
				if err != nil || stall == 0 {
					t.Errorf("expected a positive stall count, got %q", sm[1])
				}
			}
		})
	}
}

func TestDumpInstAnnotatesMemoryOps(t *testing.T) {
	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "kernel.ptx")
	src := "ld.global.f32 r1, [r2]\nret\n"
	if err := os.WriteFile(inputPath, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write kernel: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--dumpinst", inputPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("ptxcycles failed: %v\nstderr: %s", err, errOut.String())
	}

	if !bytesContains(out.Bytes(), []byte("GLOBAL OP")) {
		t.Errorf("expected a GLOBAL OP annotation, got:\n%s", out.String())
	}
}

func bytesContains(haystack, needle []byte) bool {
	return bytes.Contains(haystack, needle)
}

func TestLegacySingleDashFlagsNormalize(t *testing.T) {
	args := normalizeFlags([]string{"-cycles", "-warps=4", "kernel.ptx"})
	want := []string{"--cycles", "--warps=4", "kernel.ptx"}
	if len(args) != len(want) {
		t.Fatalf("normalizeFlags(...) = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestLegacyFlagsUnaffectedWhenAlreadyDoubleDash(t *testing.T) {
	args := normalizeFlags([]string{"--cycles", "--warps=4"})
	if args[0] != "--cycles" || args[1] != "--warps=4" {
		t.Errorf("normalizeFlags should leave already-double-dash flags alone, got %v", args)
	}
}
