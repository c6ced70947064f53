package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestKindsPrintsOneNamePerLine(t *testing.T) {
	t.Setenv("SHEETWRIGHT_DATA_DIR", t.TempDir())

	var out bytes.Buffer
	cmd := newKindsCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("kinds: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) < 90 {
		t.Fatalf("printed %d kinds, want at least 90", len(lines))
	}
	for _, line := range lines {
		name, _, ok := strings.Cut(line, "\t")
		if !ok || name == "" {
			t.Fatalf("malformed line %q", line)
		}
		if strings.Contains(line, "0x") || strings.Contains(line, "{") {
			t.Fatalf("line %q leaks struct formatting", line)
		}
	}
}
