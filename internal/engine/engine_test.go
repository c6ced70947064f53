package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"sheetwright/engine/internal/addr"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/grid"
	"sheetwright/engine/internal/settings"
)

func newTestEngine(t *testing.T) (*Engine, *grid.MemStore) {
	t.Helper()
	store := grid.NewMemStore()
	eng, err := New(
		WithDataDir(t.TempDir()),
		WithStoreOpener(func(path string, create bool) (grid.Store, error) {
			return store, nil
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng, store
}

func openTestWorkbook(t *testing.T, eng *Engine) {
	t.Helper()
	_, errInfo := eng.WorkbookOpen(context.Background(), json.RawMessage(`{"path":"book.xlsx","create":true}`))
	if errInfo != nil {
		t.Fatalf("WorkbookOpen: %v", errInfo)
	}
}

func TestMethodsRequireOpenWorkbook(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, errInfo := eng.ProposalSubmit(ctx, json.RawMessage(`{"actions":[{"kind":"setValue","target":"A1"}]}`))
	if errInfo == nil || errInfo.ErrorCode != errinfo.CodeNoWorkbook {
		t.Fatalf("submit without workbook = %v", errInfo)
	}
	_, errInfo = eng.HistoryUndo(ctx, nil)
	if errInfo == nil || errInfo.ErrorCode != errinfo.CodeNoWorkbook {
		t.Fatalf("undo without workbook = %v", errInfo)
	}
}

func TestProposalLifecycle(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()
	openTestWorkbook(t, eng)

	submitParams := `{"title":"fill","actions":[
		{"kind":"setValue","target":"Sheet1!A1","payload":{"value":"one"}},
		{"kind":"setValue","target":"Sheet1!A2","payload":{"value":"two"}}
	]}`
	result, errInfo := eng.ProposalSubmit(ctx, json.RawMessage(submitParams))
	if errInfo != nil {
		t.Fatalf("ProposalSubmit: %v", errInfo)
	}
	state := result.(proposalStateResult)
	if len(state.Actions) != 2 || !state.Selected[0] || !state.Selected[1] {
		t.Fatalf("state = %+v", state)
	}

	// Deselect the second action; only the first should apply.
	if _, errInfo = eng.ProposalSelect(ctx, json.RawMessage(`{"index":1,"selected":false}`)); errInfo != nil {
		t.Fatalf("ProposalSelect: %v", errInfo)
	}

	applied, errInfo := eng.ProposalApply(ctx, nil)
	if errInfo != nil {
		t.Fatalf("ProposalApply: %v", errInfo)
	}
	report := applied.(applyResult)
	if report.Summary != "1/1 changes applied" {
		t.Fatalf("Summary = %q", report.Summary)
	}
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 0}); value != "one" {
		t.Fatalf("A1 = %q", value)
	}
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 1}); value != "" {
		t.Fatalf("A2 = %q, deselected action ran", value)
	}

	// The proposal is consumed by apply.
	if _, errInfo = eng.ProposalState(ctx, nil); errInfo == nil {
		t.Fatal("expected no pending proposal after apply")
	}
}

func TestApplyThenUndoThroughRPC(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()
	openTestWorkbook(t, eng)
	store.SetCell("Sheet1", addr.Cell{Col: 0, Row: 0}, "before", "")

	_, errInfo := eng.ProposalSubmit(ctx, json.RawMessage(
		`{"actions":[{"kind":"setValue","target":"Sheet1!A1","payload":{"value":"after"}}]}`))
	if errInfo != nil {
		t.Fatalf("ProposalSubmit: %v", errInfo)
	}
	if _, errInfo = eng.ProposalApply(ctx, nil); errInfo != nil {
		t.Fatalf("ProposalApply: %v", errInfo)
	}

	listed, errInfo := eng.HistoryList(ctx, nil)
	if errInfo != nil {
		t.Fatalf("HistoryList: %v", errInfo)
	}
	entries := listed.(map[string]any)["entries"].([]historyEntry)
	if len(entries) != 1 || entries[0].Kind != "setValue" {
		t.Fatalf("entries = %+v", entries)
	}

	if _, errInfo = eng.HistoryUndo(ctx, nil); errInfo != nil {
		t.Fatalf("HistoryUndo: %v", errInfo)
	}
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 0}); value != "before" {
		t.Fatalf("A1 = %q after undo", value)
	}

	_, errInfo = eng.HistoryUndo(ctx, nil)
	if errInfo == nil || errInfo.ErrorCode != errinfo.CodeNothingToUndo {
		t.Fatalf("second undo = %v", errInfo)
	}
}

func TestProposalPreviewRendersDiffs(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()
	openTestWorkbook(t, eng)
	store.SetCell("Sheet1", addr.Cell{Col: 0, Row: 0}, "old", "")

	_, errInfo := eng.ProposalSubmit(ctx, json.RawMessage(
		`{"actions":[{"kind":"setValue","target":"Sheet1!A1","payload":{"value":"new"}}]}`))
	if errInfo != nil {
		t.Fatalf("ProposalSubmit: %v", errInfo)
	}
	result, errInfo := eng.ProposalPreview(ctx, nil)
	if errInfo != nil {
		t.Fatalf("ProposalPreview: %v", errInfo)
	}
	if result.(map[string]any)["previews"] == nil {
		t.Fatal("no previews in result")
	}
	// Preview must not mutate.
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 0}); value != "old" {
		t.Fatalf("A1 = %q after preview", value)
	}
}

func TestProposalDismiss(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	openTestWorkbook(t, eng)

	_, errInfo := eng.ProposalSubmit(ctx, json.RawMessage(
		`{"actions":[{"kind":"setValue","target":"A1","payload":{"value":"x"}}]}`))
	if errInfo != nil {
		t.Fatalf("ProposalSubmit: %v", errInfo)
	}
	if _, errInfo = eng.ProposalDismiss(ctx, nil); errInfo != nil {
		t.Fatalf("ProposalDismiss: %v", errInfo)
	}
	if _, errInfo = eng.ProposalApply(ctx, nil); errInfo == nil {
		t.Fatal("apply after dismiss should fail")
	}
}

func TestWorkbookOpenCreateUsesDefaultSheet(t *testing.T) {
	dir := t.TempDir()
	eng, err := New(WithDataDir(dir)) // production opener
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.settings.Save(&settings.Settings{DefaultSheet: "Budget"}); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	path := filepath.Join(dir, "fresh.xlsx")
	result, errInfo := eng.WorkbookOpen(context.Background(),
		json.RawMessage(fmt.Sprintf(`{"path":%q,"create":true}`, path)))
	if errInfo != nil {
		t.Fatalf("WorkbookOpen: %v", errInfo)
	}
	opened := result.(workbookOpenResult)
	if len(opened.Sheets) != 1 || opened.Sheets[0] != "Budget" {
		t.Fatalf("sheets = %v, want [Budget]", opened.Sheets)
	}
}

func TestEnginePing(t *testing.T) {
	eng, _ := newTestEngine(t)
	result, errInfo := eng.EnginePing(context.Background(), nil)
	if errInfo != nil {
		t.Fatalf("EnginePing: %v", errInfo)
	}
	info := result.(map[string]any)
	if info["status"] != "ok" || info["kinds"].(int) < 90 {
		t.Fatalf("ping = %v", info)
	}
}
