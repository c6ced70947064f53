package history

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"sheetwright/engine/internal/addr"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/grid"
)

func snapshotOf(t *testing.T, store *grid.MemStore, ref string) *grid.RangeData {
	t.Helper()
	rng, err := addr.ParseRange(ref)
	if err != nil {
		t.Fatalf("ParseRange(%q): %v", ref, err)
	}
	data, err := store.ReadRange(context.Background(), rng)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	return data
}

func TestUndoRestoresValuesAndFormulas(t *testing.T) {
	ctx := context.Background()
	store := grid.NewMemStore()
	store.SetCell("Sheet1", addr.Cell{Col: 0, Row: 0}, "10", "")
	store.SetCell("Sheet1", addr.Cell{Col: 0, Row: 1}, "30", "=A1*3")

	stack := NewStack()
	stack.Push("setValue", "Sheet1!A1:A2", snapshotOf(t, store, "Sheet1!A1:A2"))

	// Overwrite, then undo.
	rng, _ := addr.ParseRange("Sheet1!A1:A2")
	if err := store.WriteValues(ctx, rng, [][]string{{"x"}, {"y"}}); err != nil {
		t.Fatalf("WriteValues: %v", err)
	}

	entry, err := stack.Undo(ctx, store)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if entry.Kind != "setValue" {
		t.Fatalf("entry.Kind = %q", entry.Kind)
	}
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 0}); value != "10" {
		t.Fatalf("A1 after undo = %q, want 10", value)
	}
	if _, formula := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 1}); formula != "=A1*3" {
		t.Fatalf("A2 formula after undo = %q, want =A1*3", formula)
	}
	if !stack.IsEmpty() {
		t.Fatalf("stack not empty after undo, len = %d", stack.Len())
	}
}

func TestUndoEmptyStack(t *testing.T) {
	stack := NewStack()
	_, err := stack.Undo(context.Background(), grid.NewMemStore())
	var info *errinfo.ErrorInfo
	if !errors.As(err, &info) || info.ErrorCode != errinfo.CodeNothingToUndo {
		t.Fatalf("Undo on empty stack = %v, want %s", err, errinfo.CodeNothingToUndo)
	}
}

func TestEvictionBeyondCapacity(t *testing.T) {
	stack := NewStack()
	for i := 0; i < MaxEntries+1; i++ {
		stack.Push("setValue", fmt.Sprintf("Sheet1!A%d", i+1), nil)
	}
	if stack.Len() != MaxEntries {
		t.Fatalf("Len = %d, want %d", stack.Len(), MaxEntries)
	}
	entries := stack.Entries()
	// Newest first; the very first push (A1) fell off.
	if entries[0].Target != fmt.Sprintf("Sheet1!A%d", MaxEntries+1) {
		t.Fatalf("newest entry target = %q", entries[0].Target)
	}
	if entries[len(entries)-1].Target != "Sheet1!A2" {
		t.Fatalf("oldest entry target = %q, want Sheet1!A2", entries[len(entries)-1].Target)
	}
}

func TestConfiguredDepth(t *testing.T) {
	stack := NewStackDepth(3)
	if stack.Cap() != 3 {
		t.Fatalf("Cap = %d, want 3", stack.Cap())
	}
	for i := 0; i < 5; i++ {
		stack.Push("setValue", fmt.Sprintf("Sheet1!A%d", i+1), nil)
	}
	if stack.Len() != 3 {
		t.Fatalf("Len = %d, want 3", stack.Len())
	}

	// Out-of-range depths fall back to the hard bound.
	if got := NewStackDepth(0).Cap(); got != MaxEntries {
		t.Fatalf("Cap for depth 0 = %d, want %d", got, MaxEntries)
	}
	if got := NewStackDepth(MaxEntries + 5).Cap(); got != MaxEntries {
		t.Fatalf("Cap for oversize depth = %d, want %d", got, MaxEntries)
	}
}

func TestUndoKeepsEntryOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := grid.NewMemStore()
	store.SetCell("Sheet1", addr.Cell{Col: 0, Row: 0}, "before", "")

	stack := NewStack()
	stack.Push("setValue", "Sheet1!A1", snapshotOf(t, store, "Sheet1!A1"))

	store.FailWith("writeFormulas", errors.New("host rejected"))
	if _, err := stack.Undo(ctx, store); err == nil {
		t.Fatal("expected undo failure")
	}
	if stack.Len() != 1 {
		t.Fatalf("entry dropped after failed undo, Len = %d", stack.Len())
	}

	// Retry succeeds and pops.
	if _, err := stack.Undo(ctx, store); err != nil {
		t.Fatalf("retry Undo: %v", err)
	}
	if stack.Len() != 0 {
		t.Fatalf("Len after retry = %d", stack.Len())
	}
}
