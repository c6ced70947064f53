package preview

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"sheetwright/engine/internal/action"
	"sheetwright/engine/internal/addr"
	"sheetwright/engine/internal/diff"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/grid"
)

func setValue(target, value string) action.Action {
	return action.Action{
		Kind:    "setValue",
		Target:  target,
		Payload: json.RawMessage(`{"value":"` + value + `"}`),
	}
}

func TestNewProposalSelectsEverything(t *testing.T) {
	state := NewProposal("fill totals", []action.Action{
		setValue("A1", "x"),
		setValue("A2", "y"),
	})
	if state.ID() == "" {
		t.Fatal("proposal has no id")
	}
	for i, selected := range state.Selection() {
		if !selected {
			t.Fatalf("action %d not selected by default", i)
		}
	}
	for _, a := range state.Actions() {
		if a.ID == "" {
			t.Fatal("staged action has no id")
		}
	}
}

func TestSelectionFilterPreservesOrder(t *testing.T) {
	state := NewProposal("", []action.Action{
		setValue("A1", "first"),
		setValue("A2", "second"),
		setValue("A3", "third"),
	})
	if err := state.SetSelected(1, false); err != nil {
		t.Fatalf("SetSelected: %v", err)
	}
	kept := state.SelectedActions()
	if len(kept) != 2 || kept[0].Target != "A1" || kept[1].Target != "A3" {
		t.Fatalf("kept = %+v", kept)
	}
}

func TestSetSelectedOutOfRange(t *testing.T) {
	state := NewProposal("", []action.Action{setValue("A1", "x")})
	err := state.SetSelected(5, true)
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
	info, ok := err.(*errinfo.ErrorInfo)
	if !ok || info.ErrorCode != errinfo.CodeValidationFailed {
		t.Fatalf("err = %v", err)
	}
}

func TestRenderDiffsValueChanges(t *testing.T) {
	registry := action.NewRegistry()
	store := grid.NewMemStore()
	store.SetCell("Sheet1", addr.Cell{Col: 0, Row: 0}, "old", "")

	state := NewProposal("", []action.Action{setValue("Sheet1!A1", "new")})
	previews := Render(context.Background(), registry, store, state, 0)
	if len(previews) != 1 {
		t.Fatalf("previews = %d", len(previews))
	}
	p := previews[0]
	if p.Err != nil {
		t.Fatalf("preview error: %v", p.Err)
	}
	if diff.ChangeCount(p.Hunks) == 0 {
		t.Fatal("expected a changed line in the preview")
	}
	var added string
	for _, hunk := range p.Hunks {
		for _, line := range hunk.Lines {
			if line.Type == diff.LineAdded {
				added = line.Text
			}
		}
	}
	if !strings.Contains(added, "new") {
		t.Fatalf("added line = %q", added)
	}
	// Preview never writes to the live store.
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 0}); value != "old" {
		t.Fatalf("live store mutated by preview: %q", value)
	}
}

func TestRenderNonValueKindsUseDoc(t *testing.T) {
	registry := action.NewRegistry()
	store := grid.NewMemStore()

	state := NewProposal("", []action.Action{{Kind: "mergeCells", Target: "A1:B2"}})
	previews := Render(context.Background(), registry, store, state, 0)
	if previews[0].Doc == "" {
		t.Fatal("formatting preview should carry the catalog description")
	}
	if len(previews[0].Hunks) != 0 {
		t.Fatal("formatting preview should not carry a diff")
	}
}

func TestRenderSurfacesResolveErrors(t *testing.T) {
	registry := action.NewRegistry()
	store := grid.NewMemStore()

	state := NewProposal("", []action.Action{{Kind: "bogusKind", Target: "A1"}})
	previews := Render(context.Background(), registry, store, state, 0)
	if previews[0].Err == nil || previews[0].Err.ErrorCode != errinfo.CodeUnsupportedAction {
		t.Fatalf("preview error = %+v", previews[0].Err)
	}
}
