package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sheetwright/engine/internal/action"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/executor"
	"sheetwright/engine/internal/history"
	"sheetwright/engine/internal/preview"
)

// The params and result shapes of the RPC surface.

type workbookOpenParams struct {
	Path   string `json:"path"`
	Create bool   `json:"create,omitempty"`
}

type workbookOpenResult struct {
	Path   string   `json:"path"`
	Sheets []string `json:"sheets"`
}

type proposalSubmitParams struct {
	Title   string          `json:"title,omitempty"`
	Actions []action.Action `json:"actions"`
}

type proposalSelectParams struct {
	Index    int  `json:"index"`
	Selected bool `json:"selected"`
}

type proposalStateResult struct {
	ID       string          `json:"id"`
	Title    string          `json:"title,omitempty"`
	Actions  []action.Action `json:"actions"`
	Selected []bool          `json:"selected"`
}

type applyResult struct {
	Report  *executor.Report `json:"report"`
	Summary string           `json:"summary"`
	Saved   bool             `json:"saved"`
}

type historyEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
}

func decodeParams[T any](params json.RawMessage, phase string) (T, *errinfo.ErrorInfo) {
	var p T
	if len(params) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return p, errinfo.InvalidPayload(phase, err.Error())
	}
	return p, nil
}

func (e *Engine) EnginePing(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	return map[string]any{
		"status":      "ok",
		"api_version": APIVersion,
		"kinds":       e.registry.Len(),
	}, nil
}

func (e *Engine) CatalogList(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	return e.registry.Kinds(), nil
}

func (e *Engine) WorkbookOpen(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	p, errInfo := decodeParams[workbookOpenParams](params, errinfo.PhaseSession)
	if errInfo != nil {
		return nil, errInfo
	}
	if p.Path == "" {
		return nil, errinfo.ValidationFailed(errinfo.PhaseSession, "path is required")
	}
	store, err := e.openStore(p.Path, p.Create)
	if err != nil {
		return nil, errinfo.FileReadFailed(errinfo.PhaseSession, fmt.Sprintf("open %s: %v", p.Path, err))
	}
	depth := history.MaxEntries
	if cfg, err := e.settings.Load(); err == nil {
		depth = cfg.HistoryDepth
	}
	stack := history.NewStackDepth(depth)
	e.session = &Session{
		Path:    p.Path,
		Store:   store,
		History: stack,
		exec:    executor.New(e.registry, stack, e.logger),
	}
	sheets, err := store.Sheets(ctx)
	if err != nil {
		return nil, errinfo.HostAPIFailure(errinfo.PhaseSession, err.Error())
	}
	e.logger.Info("workbook.opened", "path", p.Path, "sheets", len(sheets))
	return workbookOpenResult{Path: p.Path, Sheets: sheets}, nil
}

func (e *Engine) WorkbookSave(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	session, errInfo := e.currentSession(errinfo.PhaseSession)
	if errInfo != nil {
		return nil, errInfo
	}
	if err := session.Store.Commit(ctx); err != nil {
		return nil, errinfo.FileWriteFailed(errinfo.PhaseSession, err.Error())
	}
	return map[string]any{"path": session.Path}, nil
}

func (e *Engine) ProposalSubmit(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	session, errInfo := e.currentSession(errinfo.PhaseProposal)
	if errInfo != nil {
		return nil, errInfo
	}
	p, errInfo := decodeParams[proposalSubmitParams](params, errinfo.PhaseProposal)
	if errInfo != nil {
		return nil, errInfo
	}
	if len(p.Actions) == 0 {
		return nil, errinfo.ValidationFailed(errinfo.PhaseProposal, "proposal has no actions")
	}
	// A new submission replaces any pending proposal.
	session.Proposal = preview.NewProposal(p.Title, p.Actions)
	e.logger.Info("proposal.submitted",
		"id", session.Proposal.ID(), "actions", session.Proposal.Len())
	e.emit("proposal.pending", map[string]any{"id": session.Proposal.ID()})
	return proposalState(session.Proposal), nil
}

func (e *Engine) ProposalState(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	_, proposal, errInfo := e.currentProposal()
	if errInfo != nil {
		return nil, errInfo
	}
	return proposalState(proposal), nil
}

func (e *Engine) ProposalSelect(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	_, proposal, errInfo := e.currentProposal()
	if errInfo != nil {
		return nil, errInfo
	}
	p, errInfo := decodeParams[proposalSelectParams](params, errinfo.PhaseProposal)
	if errInfo != nil {
		return nil, errInfo
	}
	if err := proposal.SetSelected(p.Index, p.Selected); err != nil {
		return nil, asErrorInfo(err)
	}
	return proposalState(proposal), nil
}

func (e *Engine) ProposalPreview(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	session, proposal, errInfo := e.currentProposal()
	if errInfo != nil {
		return nil, errInfo
	}
	cfg, err := e.settings.Load()
	if err != nil {
		return nil, errinfo.FileReadFailed(errinfo.PhaseSettings, err.Error())
	}
	previews := preview.Render(ctx, e.registry, session.Store, proposal, cfg.PreviewLineLimit)
	return map[string]any{"id": proposal.ID(), "previews": previews}, nil
}

func (e *Engine) ProposalApply(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	session, proposal, errInfo := e.currentProposal()
	if errInfo != nil {
		return nil, errInfo
	}
	selected := proposal.SelectedActions()
	if len(selected) == 0 {
		return nil, errinfo.ValidationFailed(errinfo.PhaseApply, "no actions selected")
	}
	report := session.exec.Apply(ctx, session.Store, selected)
	session.Proposal = nil

	saved := false
	cfg, err := e.settings.Load()
	if err == nil && cfg.AutosaveOnApply && report.SuccessCount > 0 {
		if err := session.Store.Commit(ctx); err != nil {
			e.logger.Warn("workbook.autosave_failed", "path", session.Path, "error", err.Error())
		} else {
			saved = true
		}
	}
	e.emit("proposal.applied", map[string]any{
		"id": proposal.ID(), "summary": report.Summary(),
	})
	return applyResult{Report: report, Summary: report.Summary(), Saved: saved}, nil
}

func (e *Engine) ProposalDismiss(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	session, proposal, errInfo := e.currentProposal()
	if errInfo != nil {
		return nil, errInfo
	}
	session.Proposal = nil
	e.logger.Info("proposal.dismissed", "id", proposal.ID())
	return map[string]any{"id": proposal.ID()}, nil
}

func (e *Engine) HistoryList(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	session, errInfo := e.currentSession(errinfo.PhaseUndo)
	if errInfo != nil {
		return nil, errInfo
	}
	entries := session.History.Entries()
	out := make([]historyEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyEntry{
			ID:        entry.ID,
			Kind:      entry.Kind,
			Target:    entry.Target,
			Timestamp: entry.Timestamp,
		})
	}
	return map[string]any{"entries": out, "capacity": session.History.Cap()}, nil
}

func (e *Engine) HistoryUndo(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	session, errInfo := e.currentSession(errinfo.PhaseUndo)
	if errInfo != nil {
		return nil, errInfo
	}
	entry, err := session.History.Undo(ctx, session.Store)
	if err != nil {
		return nil, asErrorInfo(err)
	}
	e.logger.Info("history.undone", "kind", entry.Kind, "target", entry.Target)
	return historyEntry{
		ID:        entry.ID,
		Kind:      entry.Kind,
		Target:    entry.Target,
		Timestamp: entry.Timestamp,
	}, nil
}

func (e *Engine) currentSession(phase string) (*Session, *errinfo.ErrorInfo) {
	if e.session == nil {
		return nil, errinfo.NoWorkbook(phase)
	}
	return e.session, nil
}

func (e *Engine) currentProposal() (*Session, *preview.State, *errinfo.ErrorInfo) {
	session, errInfo := e.currentSession(errinfo.PhaseProposal)
	if errInfo != nil {
		return nil, nil, errInfo
	}
	if session.Proposal == nil {
		return nil, nil, errinfo.ValidationFailed(errinfo.PhaseProposal, "no pending proposal")
	}
	return session, session.Proposal, nil
}

func proposalState(proposal *preview.State) proposalStateResult {
	return proposalStateResult{
		ID:       proposal.ID(),
		Title:    proposal.Title(),
		Actions:  proposal.Actions(),
		Selected: proposal.Selection(),
	}
}

func asErrorInfo(err error) *errinfo.ErrorInfo {
	if info, ok := err.(*errinfo.ErrorInfo); ok {
		return info
	}
	return errinfo.HostAPIFailure(errinfo.PhaseApply, err.Error())
}
