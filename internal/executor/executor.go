// Package executor applies proposal batches to the grid store, in order,
// continuing past failures and capturing undo snapshots as it goes.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sheetwright/engine/internal/action"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/grid"
	"sheetwright/engine/internal/history"
)

type Executor struct {
	registry *action.Registry
	history  *history.Stack
	log      *slog.Logger
}

func New(registry *action.Registry, stack *history.Stack, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{registry: registry, history: stack, log: log}
}

// Result is the outcome of one action in a batch. Capture is set when the
// action applied but its undo snapshot could not be taken, so the host can
// tell the user the change is permanent.
type Result struct {
	Action  action.Action      `json:"action"`
	Err     *errinfo.ErrorInfo `json:"error,omitempty"`
	Capture *errinfo.ErrorInfo `json:"captureError,omitempty"`
}

// Report summarizes a batch. Execution is sequential and a failed action
// does not stop the actions after it.
type Report struct {
	Total        int                `json:"total"`
	SuccessCount int                `json:"successCount"`
	FirstError   *errinfo.ErrorInfo `json:"firstError,omitempty"`
	Results      []Result           `json:"results"`
}

// Summary is the user-facing one-liner for a finished batch.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d/%d changes applied", r.SuccessCount, r.Total)
}

// Apply runs the batch against the store. Undo-capable actions get their
// target ranges snapshotted first; a failed snapshot is logged and skips the
// history entry but never blocks the mutation itself.
func (e *Executor) Apply(ctx context.Context, store grid.Store, actions []action.Action) *Report {
	report := &Report{Total: len(actions)}
	for _, a := range actions {
		result := Result{Action: a}
		var err error
		result.Capture, err = e.applyOne(ctx, store, a)
		if err != nil {
			result.Err = asErrorInfo(err)
			if report.FirstError == nil {
				report.FirstError = result.Err
			}
			e.log.Warn("action failed",
				"kind", a.Kind, "target", a.Target, "code", result.Err.ErrorCode)
		} else {
			report.SuccessCount++
		}
		report.Results = append(report.Results, result)
	}
	e.log.Info("batch applied",
		"total", report.Total, "succeeded", report.SuccessCount)
	return report
}

func (e *Executor) applyOne(ctx context.Context, store grid.Store, a action.Action) (*errinfo.ErrorInfo, error) {
	inv, err := e.registry.Resolve(a)
	if err != nil {
		return nil, err
	}

	var snapshots []*grid.RangeData
	var captureErr *errinfo.ErrorInfo
	if inv.Entry.Undoable {
		for _, rng := range inv.Snapshots {
			data, err := store.ReadRange(ctx, rng)
			if err != nil {
				captureErr = errinfo.UndoCaptureFailed(errinfo.PhaseApply,
					fmt.Sprintf("snapshot %s: %v", rng.String(), err)).WithAction(a.Kind, a.Target)
				e.log.Warn("undo capture failed",
					"kind", a.Kind, "target", a.Target, "range", rng.String(), "error", err)
				break
			}
			snapshots = append(snapshots, data)
		}
	}

	if err := inv.Run(ctx, store); err != nil {
		return captureErr, err
	}

	if inv.Entry.Undoable && captureErr == nil {
		e.history.Push(a.Kind, a.Target, snapshots...)
	}
	return captureErr, nil
}

func asErrorInfo(err error) *errinfo.ErrorInfo {
	var info *errinfo.ErrorInfo
	if errors.As(err, &info) {
		return info
	}
	return errinfo.HostAPIFailure(errinfo.PhaseApply, err.Error())
}
