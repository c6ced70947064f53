package executor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"sheetwright/engine/internal/action"
	"sheetwright/engine/internal/addr"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/grid"
	"sheetwright/engine/internal/history"
)

func newExecutor() (*Executor, *history.Stack) {
	stack := history.NewStack()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(action.NewRegistry(), stack, log), stack
}

func setValue(target, value string) action.Action {
	return action.Action{
		Kind:    "setValue",
		Target:  target,
		Payload: json.RawMessage(`{"value":"` + value + `"}`),
	}
}

func TestApplyContinuesPastFailure(t *testing.T) {
	exec, _ := newExecutor()
	store := grid.NewMemStore()

	batch := []action.Action{
		setValue("Sheet1!A1", "first"),
		{Kind: "noSuchKind", Target: "Sheet1!A2"},
		setValue("Sheet1!A3", "third"),
	}
	report := exec.Apply(context.Background(), store, batch)

	if report.Total != 3 || report.SuccessCount != 2 {
		t.Fatalf("report = %d/%d, want 2/3", report.SuccessCount, report.Total)
	}
	if report.FirstError == nil || report.FirstError.ErrorCode != errinfo.CodeUnsupportedAction {
		t.Fatalf("FirstError = %+v", report.FirstError)
	}
	if report.Summary() != "2/3 changes applied" {
		t.Fatalf("Summary = %q", report.Summary())
	}
	// The action after the failure still ran.
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 2}); value != "third" {
		t.Fatalf("A3 = %q, want third", value)
	}
}

func TestApplyHostFailureIsRetryable(t *testing.T) {
	exec, _ := newExecutor()
	store := grid.NewMemStore()
	store.FailWith("writeValues", errors.New("host gone"))

	report := exec.Apply(context.Background(), store, []action.Action{setValue("A1", "x")})
	if report.SuccessCount != 0 {
		t.Fatalf("SuccessCount = %d", report.SuccessCount)
	}
	if report.FirstError.ErrorCode != errinfo.CodeHostAPIFailure || !report.FirstError.Retryable {
		t.Fatalf("FirstError = %+v", report.FirstError)
	}
}

func TestApplyPushesHistoryPerUndoableAction(t *testing.T) {
	exec, stack := newExecutor()
	store := grid.NewMemStore()

	batch := []action.Action{
		setValue("Sheet1!A1", "one"),
		{Kind: "setFontBold", Target: "Sheet1!A1"}, // formatting, no history
		setValue("Sheet1!A2", "two"),
	}
	report := exec.Apply(context.Background(), store, batch)
	if report.SuccessCount != 3 {
		t.Fatalf("SuccessCount = %d, want 3", report.SuccessCount)
	}
	if stack.Len() != 2 {
		t.Fatalf("history has %d entries, want 2", stack.Len())
	}
	latest, _ := stack.Latest()
	if latest.Target != "Sheet1!A2" {
		t.Fatalf("latest entry target = %q", latest.Target)
	}
}

func TestApplyThenUndoRestoresPriorContent(t *testing.T) {
	exec, stack := newExecutor()
	store := grid.NewMemStore()
	ctx := context.Background()
	store.SetCell("Sheet1", addr.Cell{Col: 0, Row: 0}, "before", "")

	exec.Apply(ctx, store, []action.Action{setValue("Sheet1!A1", "after")})
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 0}); value != "after" {
		t.Fatalf("A1 = %q after apply", value)
	}
	if _, err := stack.Undo(ctx, store); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 0}); value != "before" {
		t.Fatalf("A1 = %q after undo, want before", value)
	}
}

func TestSnapshotFailureSkipsHistoryNotMutation(t *testing.T) {
	exec, stack := newExecutor()
	store := grid.NewMemStore()
	store.FailWith("readRange", errors.New("read refused"))

	report := exec.Apply(context.Background(), store, []action.Action{setValue("Sheet1!A1", "x")})
	if report.SuccessCount != 1 {
		t.Fatalf("SuccessCount = %d, snapshot failure should not block the action", report.SuccessCount)
	}
	if value, _ := store.Cell("Sheet1", addr.Cell{Col: 0, Row: 0}); value != "x" {
		t.Fatalf("A1 = %q, want x", value)
	}
	if stack.Len() != 0 {
		t.Fatalf("history has %d entries, want none after failed capture", stack.Len())
	}
	capture := report.Results[0].Capture
	if capture == nil || capture.ErrorCode != errinfo.CodeUndoCaptureFailed {
		t.Fatalf("Capture = %v, want %s", capture, errinfo.CodeUndoCaptureFailed)
	}
	if report.Results[0].Err != nil {
		t.Fatalf("Err = %v, capture failure must not mark the action failed", report.Results[0].Err)
	}
}
