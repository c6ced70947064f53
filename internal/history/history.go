// Package history keeps the bounded undo stack for applied mutations.
//
// Each undo-capable action captures a snapshot of its target range before it
// runs; undo writes that snapshot back through the grid store. The stack is
// depth-bounded: once full, the oldest entry falls off and its change becomes
// permanent.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/grid"
)

// MaxEntries bounds how many applied actions can be rolled back.
const MaxEntries = 20

// Entry is one undoable applied action, newest at the top of the stack.
// Actions that write outside their target range (copy, move, transpose)
// carry one snapshot per mutated range.
type Entry struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Target    string            `json:"target"`
	Timestamp time.Time         `json:"timestamp"`
	Snapshots []*grid.RangeData `json:"-"`
}

type Stack struct {
	mu      sync.Mutex
	max     int
	entries []Entry // index 0 is newest
}

func NewStack() *Stack {
	return NewStackDepth(MaxEntries)
}

// NewStackDepth builds a stack holding at most depth entries. Depths outside
// (0, MaxEntries] fall back to MaxEntries.
func NewStackDepth(depth int) *Stack {
	if depth <= 0 || depth > MaxEntries {
		depth = MaxEntries
	}
	return &Stack{max: depth}
}

// Cap returns the configured depth bound.
func (s *Stack) Cap() int {
	return s.max
}

// Push records an applied action. When the stack is at capacity the oldest
// entry is evicted.
func (s *Stack) Push(kind, target string, snapshots ...*grid.RangeData) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := Entry{
		ID:        uuid.NewString(),
		Kind:      kind,
		Target:    target,
		Timestamp: time.Now().UTC(),
		Snapshots: snapshots,
	}
	s.entries = append([]Entry{entry}, s.entries...)
	if len(s.entries) > s.max {
		s.entries = s.entries[:s.max]
	}
	return entry
}

// Entries returns the stack newest-first.
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Stack) IsEmpty() bool {
	return s.Len() == 0
}

// Latest returns the entry that the next Undo would roll back.
func (s *Stack) Latest() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[0], true
}

// Undo writes the newest snapshot back through the store and pops the entry.
// The snapshot's formula plane carries literal text for non-formula cells, so
// a single formula write restores both values and formulas. If the write-back
// fails the entry stays on the stack so the host can retry.
func (s *Stack) Undo(ctx context.Context, store grid.RangeAccess) (Entry, error) {
	s.mu.Lock()
	if len(s.entries) == 0 {
		s.mu.Unlock()
		return Entry{}, errinfo.NothingToUndo()
	}
	entry := s.entries[0]
	s.mu.Unlock()

	for _, snapshot := range entry.Snapshots {
		if snapshot == nil {
			continue
		}
		err := store.WriteFormulas(ctx, snapshot.Address, snapshot.Formulas)
		if err != nil {
			return Entry{}, errinfo.HostAPIFailure(errinfo.PhaseUndo,
				fmt.Sprintf("restore %s: %v", entry.Target, err)).WithAction(entry.Kind, entry.Target)
		}
	}

	s.mu.Lock()
	if len(s.entries) > 0 && s.entries[0].ID == entry.ID {
		s.entries = s.entries[1:]
	}
	s.mu.Unlock()
	return entry, nil
}

// Clear drops all entries, used when a workbook is closed.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
