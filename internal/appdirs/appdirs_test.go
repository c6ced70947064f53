package appdirs

import (
	"os"
	"testing"
)

func TestDataDirOverride(t *testing.T) {
	os.Setenv("SHEETWRIGHT_DATA_DIR", "/tmp/sheetwright-test")
	defer os.Unsetenv("SHEETWRIGHT_DATA_DIR")
	path, err := DataDir()
	if err != nil {
		t.Fatalf("data dir: %v", err)
	}
	if path != "/tmp/sheetwright-test" {
		t.Fatalf("expected override path, got %s", path)
	}
}
