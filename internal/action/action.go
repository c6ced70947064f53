// Package action holds the static catalog of mutation kinds and the dispatch
// pipeline that turns an incoming action into a validated, runnable store
// invocation.
package action

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"sheetwright/engine/internal/addr"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/grid"
)

// TargetMode says how an action's target string is interpreted.
type TargetMode string

const (
	// TargetRange targets are A1-style range addresses, optionally
	// sheet-qualified.
	TargetRange TargetMode = "range"
	// TargetName targets are opaque logical identifiers: sheet names, table
	// names, chart names, defined names.
	TargetName TargetMode = "name"
)

// Action is one requested mutation, as produced by the proposal layer.
type Action struct {
	ID      string          `json:"id,omitempty"`
	Kind    string          `json:"kind"`
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// step is a fully validated mutation ready to hit the store.
type step func(ctx context.Context, store grid.Store) error

// CatalogEntry describes one registered action kind.
type CatalogEntry struct {
	Kind     string     `json:"kind"`
	Mode     TargetMode `json:"targetMode"`
	Undoable bool       `json:"undoable"`
	Doc      string     `json:"doc"`

	prepare func(a Action, rng addr.Range) (*Invocation, error)
}

// Invocation is a resolved, validated action. Snapshots lists the ranges an
// undo capture must cover before Run mutates the store; for most kinds that
// is just the resolved target range.
type Invocation struct {
	Action    Action
	Entry     CatalogEntry
	Range     addr.Range // zero value when Entry.Mode == TargetName
	Snapshots []addr.Range
	run       step
}

func (inv *Invocation) Run(ctx context.Context, store grid.Store) error {
	if err := inv.run(ctx, store); err != nil {
		var info *errinfo.ErrorInfo
		if errors.As(err, &info) {
			return info.WithAction(inv.Action.Kind, inv.Action.Target)
		}
		return errinfo.HostAPIFailure(errinfo.PhaseApply, err.Error()).
			WithAction(inv.Action.Kind, inv.Action.Target)
	}
	return nil
}

// Registry is the static action catalog. It is built once at startup and is
// read-only afterwards.
type Registry struct {
	entries map[string]CatalogEntry
}

// Lookup finds a catalog entry by kind.
func (r *Registry) Lookup(kind string) (CatalogEntry, bool) {
	entry, ok := r.entries[kind]
	return entry, ok
}

// Kinds returns the catalog sorted by kind name.
func (r *Registry) Kinds() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Len reports the number of registered kinds.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Resolve runs the dispatch pipeline short of mutation: unknown kinds,
// malformed targets, and invalid payloads are all rejected here, before any
// store call. On success the returned invocation is ready to run.
func (r *Registry) Resolve(a Action) (*Invocation, error) {
	entry, ok := r.entries[a.Kind]
	if !ok {
		return nil, errinfo.UnsupportedAction(errinfo.PhaseApply, a.Kind).
			WithAction(a.Kind, a.Target)
	}

	var rng addr.Range
	switch entry.Mode {
	case TargetRange:
		parsed, err := addr.ParseRange(a.Target)
		if err != nil {
			return nil, errinfo.InvalidTarget(errinfo.PhaseApply, err.Error()).
				WithAction(a.Kind, a.Target)
		}
		rng = parsed
	case TargetName:
		if a.Target == "" {
			return nil, errinfo.InvalidTarget(errinfo.PhaseApply, "empty logical name").
				WithAction(a.Kind, a.Target)
		}
	}

	inv, err := entry.prepare(a, rng)
	if err != nil {
		var info *errinfo.ErrorInfo
		if errors.As(err, &info) {
			return nil, info.WithAction(a.Kind, a.Target)
		}
		return nil, errinfo.InvalidPayload(errinfo.PhaseApply, err.Error()).
			WithAction(a.Kind, a.Target)
	}
	inv.Action = a
	inv.Entry = entry
	inv.Range = rng
	if entry.Undoable && inv.Snapshots == nil {
		inv.Snapshots = []addr.Range{rng}
	}
	return inv, nil
}

type validated interface {
	validate() error
}

// decodePayload unmarshals strictly: unknown fields are payload errors, and
// the decoded struct validates itself.
func decodePayload[T validated](a Action) (T, error) {
	var p T
	if len(a.Payload) > 0 {
		dec := json.NewDecoder(bytes.NewReader(a.Payload))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return p, fmt.Errorf("decode %s payload: %w", a.Kind, err)
		}
	}
	if err := p.validate(); err != nil {
		return p, err
	}
	return p, nil
}

// register adds a kind whose handler receives the decoded payload.
func register[T validated](r *Registry, kind string, mode TargetMode, undoable bool, doc string,
	run func(ctx context.Context, store grid.Store, rng addr.Range, target string, p T) error,
) {
	r.registerEntry(kind, mode, undoable, doc, func(a Action, rng addr.Range) (*Invocation, error) {
		p, err := decodePayload[T](a)
		if err != nil {
			return nil, err
		}
		target := a.Target
		return &Invocation{
			Snapshots: snapshotRanges(p, rng, undoable),
			run: func(ctx context.Context, store grid.Store) error {
				return run(ctx, store, rng, target, p)
			},
		}, nil
	})
}

// snapshotExtender lets a payload widen the undo capture beyond the target,
// for kinds that also write a destination range.
type snapshotExtender interface {
	extraSnapshots(target addr.Range) []addr.Range
}

func snapshotRanges(p any, rng addr.Range, undoable bool) []addr.Range {
	if !undoable {
		return nil
	}
	out := []addr.Range{rng}
	if ext, ok := p.(snapshotExtender); ok {
		out = append(out, ext.extraSnapshots(rng)...)
	}
	return out
}

func (r *Registry) registerEntry(kind string, mode TargetMode, undoable bool, doc string,
	prepare func(a Action, rng addr.Range) (*Invocation, error),
) {
	if _, exists := r.entries[kind]; exists {
		panic(fmt.Sprintf("action kind %q registered twice", kind))
	}
	r.entries[kind] = CatalogEntry{
		Kind:     kind,
		Mode:     mode,
		Undoable: undoable,
		Doc:      doc,
		prepare:  prepare,
	}
}
