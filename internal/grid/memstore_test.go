package grid

import (
	"context"
	"errors"
	"testing"

	"sheetwright/engine/internal/addr"
)

func mustRange(t *testing.T, ref string) addr.Range {
	t.Helper()
	rng, err := addr.ParseRange(ref)
	if err != nil {
		t.Fatalf("ParseRange(%q): %v", ref, err)
	}
	return rng
}

func TestMemStoreWriteAndRead(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	rng := mustRange(t, "Sheet1!A1:B2")

	err := store.WriteValues(ctx, rng, [][]string{{"a", "b"}, {"c", "d"}})
	if err != nil {
		t.Fatalf("WriteValues: %v", err)
	}

	data, err := store.ReadRange(ctx, rng)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if data.Values[1][1] != "d" {
		t.Fatalf("Values[1][1] = %q, want %q", data.Values[1][1], "d")
	}
	// Plain values round-trip through the Formulas plane unchanged.
	if data.Formulas[0][0] != "a" {
		t.Fatalf("Formulas[0][0] = %q, want %q", data.Formulas[0][0], "a")
	}
}

func TestMemStoreFormulasPlane(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	rng := mustRange(t, "Sheet1!C1:C2")

	err := store.WriteFormulas(ctx, rng, [][]string{{"=SUM(A1:A9)"}, {"plain"}})
	if err != nil {
		t.Fatalf("WriteFormulas: %v", err)
	}

	data, err := store.ReadRange(ctx, rng)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if data.Formulas[0][0] != "=SUM(A1:A9)" {
		t.Fatalf("Formulas[0][0] = %q", data.Formulas[0][0])
	}
	if data.Formulas[1][0] != "plain" || data.Values[1][0] != "plain" {
		t.Fatalf("mixed write: formulas %q values %q", data.Formulas[1][0], data.Values[1][0])
	}
}

func TestMemStoreExtentMismatch(t *testing.T) {
	store := NewMemStore()
	rng := mustRange(t, "Sheet1!A1:B2")

	err := store.WriteValues(context.Background(), rng, [][]string{{"only one row"}})
	if err == nil {
		t.Fatal("expected extent mismatch error")
	}
}

func TestMemStoreClearRange(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	store.SetCell("Sheet1", addr.Cell{Col: 0, Row: 0}, "keep", "")
	store.SetCell("Sheet1", addr.Cell{Col: 0, Row: 1}, "drop", "")

	if err := store.ClearRange(ctx, mustRange(t, "Sheet1!A2"), true); err != nil {
		t.Fatalf("ClearRange: %v", err)
	}
	if got, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 1}); got != "" {
		t.Fatalf("cleared cell still holds %q", got)
	}
	if got, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 0}); got != "keep" {
		t.Fatalf("neighbor cell lost: %q", got)
	}
}

func TestMemStoreInjectedFailure(t *testing.T) {
	store := NewMemStore()
	boom := errors.New("boom")
	store.FailWith("writeValues", boom)

	rng := mustRange(t, "Sheet1!A1")
	err := store.WriteValues(context.Background(), rng, [][]string{{"x"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	// One-shot: the next call succeeds.
	if err := store.WriteValues(context.Background(), rng, [][]string{{"x"}}); err != nil {
		t.Fatalf("second WriteValues: %v", err)
	}
}

func TestMemStoreOpLog(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	rng := mustRange(t, "Sheet1!A1:A3")

	if err := store.MergeCells(ctx, rng); err != nil {
		t.Fatalf("MergeCells: %v", err)
	}
	if err := store.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if store.CallCount("mergeCells") != 1 {
		t.Fatalf("mergeCells count = %d", store.CallCount("mergeCells"))
	}
	ops := store.Ops()
	if len(ops) == 0 || ops[len(ops)-1] != "commit" {
		t.Fatalf("op log = %v, want trailing commit", ops)
	}
}

func TestMemStoreSheetLifecycle(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	if err := store.AddSheet(ctx, "Data"); err != nil {
		t.Fatalf("AddSheet: %v", err)
	}
	if err := store.RenameSheet(ctx, "Data", "Data2"); err != nil {
		t.Fatalf("RenameSheet: %v", err)
	}
	sheets, err := store.Sheets(ctx)
	if err != nil {
		t.Fatalf("Sheets: %v", err)
	}
	found := false
	for _, s := range sheets {
		if s == "Data2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Sheets() = %v, want Data2 present", sheets)
	}
	if err := store.DeleteSheet(ctx, "Data2"); err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
}
