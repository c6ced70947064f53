package grid

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"sheetwright/engine/internal/addr"
)

func testWorkbook(t *testing.T) *Workbook {
	t.Helper()
	wb := NewWorkbook(filepath.Join(t.TempDir(), "test.xlsx"))
	t.Cleanup(func() { wb.Close() })
	return wb
}

func TestNewWorkbookSheetNamesInitialSheet(t *testing.T) {
	wb := NewWorkbookSheet(filepath.Join(t.TempDir(), "test.xlsx"), "Budget")
	defer wb.Close()
	sheets, err := wb.Sheets(context.Background())
	if err != nil {
		t.Fatalf("Sheets: %v", err)
	}
	if len(sheets) != 1 || sheets[0] != "Budget" {
		t.Fatalf("sheets = %v, want [Budget]", sheets)
	}

	wb = NewWorkbookSheet(filepath.Join(t.TempDir(), "plain.xlsx"), "")
	defer wb.Close()
	sheets, _ = wb.Sheets(context.Background())
	if len(sheets) != 1 || sheets[0] != "Sheet1" {
		t.Fatalf("sheets = %v, want [Sheet1]", sheets)
	}
}

func TestClearHyperlinksUnsupportedOnXlsx(t *testing.T) {
	ctx := context.Background()
	wb := testWorkbook(t)
	target := addr.Range{Sheet: "Sheet1", Anchor: addr.Cell{Col: 0, Row: 0}, Rows: 1, Cols: 1}
	if err := wb.SetHyperlink(ctx, target, "https://example.com", ""); err != nil {
		t.Fatalf("SetHyperlink: %v", err)
	}
	err := wb.ClearHyperlinks(ctx, target)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("ClearHyperlinks = %v, want ErrUnsupported", err)
	}
}

func TestClearAutoFilterUnsupportedOnXlsx(t *testing.T) {
	wb := testWorkbook(t)
	err := wb.ClearAutoFilter(context.Background(), "Sheet1")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("ClearAutoFilter = %v, want ErrUnsupported", err)
	}
}
