// Package preview holds a pending proposal between submission and apply: the
// batch of actions, which of them the user kept selected, and rendered
// before/after diffs for the selectable list.
package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"sheetwright/engine/internal/action"
	"sheetwright/engine/internal/diff"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/grid"
)

// State is one pending proposal. Selection always has exactly one flag per
// action; nothing else is a legal state.
type State struct {
	mu       sync.Mutex
	id       string
	title    string
	actions  []action.Action
	selected []bool
}

// NewProposal stages a batch with every action selected. Actions without an
// id get one assigned.
func NewProposal(title string, actions []action.Action) *State {
	staged := make([]action.Action, len(actions))
	selected := make([]bool, len(actions))
	for i, a := range actions {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		staged[i] = a
		selected[i] = true
	}
	return &State{
		id:       uuid.NewString(),
		title:    title,
		actions:  staged,
		selected: selected,
	}
}

func (s *State) ID() string {
	return s.id
}

func (s *State) Title() string {
	return s.title
}

func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// SetSelected toggles one action by index.
func (s *State) SetSelected(index int, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.actions) {
		return errinfo.ValidationFailed(errinfo.PhaseProposal,
			fmt.Sprintf("action index %d out of range, proposal has %d actions", index, len(s.actions)))
	}
	s.selected[index] = selected
	return nil
}

// Selection reports the selected flag per action, aligned with Actions.
func (s *State) Selection() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bool, len(s.selected))
	copy(out, s.selected)
	return out
}

// Actions returns the staged batch in submission order.
func (s *State) Actions() []action.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]action.Action, len(s.actions))
	copy(out, s.actions)
	return out
}

// SelectedActions filters the batch down to the kept actions, preserving
// submission order.
func (s *State) SelectedActions() []action.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []action.Action
	for i, a := range s.actions {
		if s.selected[i] {
			out = append(out, a)
		}
	}
	return out
}

// ActionPreview is the rendered preview for one staged action.
type ActionPreview struct {
	Action    action.Action      `json:"action"`
	Selected  bool               `json:"selected"`
	Doc       string             `json:"doc,omitempty"`
	Hunks     []diff.Hunk        `json:"hunks,omitempty"`
	Truncated bool               `json:"truncated,omitempty"`
	Err       *errinfo.ErrorInfo `json:"error,omitempty"`
}

// Render builds previews for the whole batch. Value and formula changes get
// before/after diffs computed against a scratch copy of the affected ranges;
// everything else previews as its catalog description. The live store is only
// read, never written.
func Render(ctx context.Context, registry *action.Registry, store grid.Store, s *State, maxLines int) []ActionPreview {
	s.mu.Lock()
	actions := make([]action.Action, len(s.actions))
	copy(actions, s.actions)
	selected := make([]bool, len(s.selected))
	copy(selected, s.selected)
	s.mu.Unlock()

	out := make([]ActionPreview, 0, len(actions))
	for i, a := range actions {
		p := ActionPreview{Action: a, Selected: selected[i]}
		inv, err := registry.Resolve(a)
		if err != nil {
			p.Err = asErrorInfo(err)
			out = append(out, p)
			continue
		}
		p.Doc = inv.Entry.Doc
		if inv.Entry.Undoable {
			hunks, truncated, err := diffAgainstScratch(ctx, store, inv, maxLines)
			if err != nil {
				p.Err = asErrorInfo(err)
			} else {
				p.Hunks = hunks
				p.Truncated = truncated
			}
		}
		out = append(out, p)
	}
	return out
}

// diffAgainstScratch replays the invocation on an in-memory copy of the
// ranges it will touch and diffs the copies against the originals.
func diffAgainstScratch(ctx context.Context, store grid.Store, inv *action.Invocation, maxLines int) ([]diff.Hunk, bool, error) {
	scratch := grid.NewMemStore()
	before := make([]*grid.RangeData, 0, len(inv.Snapshots))
	for _, rng := range inv.Snapshots {
		data, err := store.ReadRange(ctx, rng)
		if err != nil {
			return nil, false, err
		}
		before = append(before, data)
		if err := scratch.WriteFormulas(ctx, rng, data.Formulas); err != nil {
			return nil, false, err
		}
	}
	if err := inv.Run(ctx, scratch); err != nil {
		return nil, false, err
	}

	var hunks []diff.Hunk
	truncated := false
	for i, rng := range inv.Snapshots {
		after, err := scratch.ReadRange(ctx, rng)
		if err != nil {
			return nil, false, err
		}
		rangeHunks, rangeTruncated := diff.RangeDiff(before[i], after, maxLines)
		if rangeTruncated {
			truncated = true
			continue
		}
		hunks = append(hunks, rangeHunks...)
	}
	return hunks, truncated, nil
}

func asErrorInfo(err error) *errinfo.ErrorInfo {
	var info *errinfo.ErrorInfo
	if errors.As(err, &info) {
		return info
	}
	return errinfo.HostAPIFailure(errinfo.PhaseProposal, err.Error())
}
