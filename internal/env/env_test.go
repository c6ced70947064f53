package env

import (
	"os"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		"PLAIN=value",
		"export EXPORTED=yes",
		`QUOTED="has spaces"`,
		"SINGLE='single'",
		"EMPTY=",
		"not-a-pair",
		"=nokey",
	}, "\n")
	vars, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := map[string]string{
		"PLAIN":    "value",
		"EXPORTED": "yes",
		"QUOTED":   "has spaces",
		"SINGLE":   "single",
		"EMPTY":    "",
	}
	if len(vars) != len(want) {
		t.Fatalf("vars = %v", vars)
	}
	for key, value := range want {
		if vars[key] != value {
			t.Fatalf("vars[%q] = %q, want %q", key, vars[key], value)
		}
	}
}

func TestLoadDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/.env"
	if err := os.WriteFile(path, []byte("ENVTEST_KEPT=file\nENVTEST_NEW=file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	os.Setenv("ENVTEST_KEPT", "process")
	defer os.Unsetenv("ENVTEST_KEPT")
	defer os.Unsetenv("ENVTEST_NEW")

	res := loadPath(path)
	if res.Err != nil || !res.Loaded {
		t.Fatalf("load = %+v", res)
	}
	if res.Applied != 1 {
		t.Fatalf("Applied = %d", res.Applied)
	}
	if os.Getenv("ENVTEST_KEPT") != "process" {
		t.Fatal("existing variable was overwritten")
	}
	if os.Getenv("ENVTEST_NEW") != "file" {
		t.Fatal("new variable was not applied")
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "TRUE": true, "on": true, "yes": true,
		"0": false, "false": false, "off": false, "": false,
	}
	for value, want := range cases {
		os.Setenv("ENVTEST_BOOL", value)
		if got := Bool("ENVTEST_BOOL"); got != want {
			t.Fatalf("Bool(%q) = %v, want %v", value, got, want)
		}
	}
	os.Unsetenv("ENVTEST_BOOL")
	if Bool("ENVTEST_BOOL") {
		t.Fatal("unset variable should be false")
	}
}
