// Package edit provides the mutation surface for TextGrid documents.
//
// Every operation validates its result before committing, mutates the
// document atomically (a failed call leaves the document untouched), and
// records exactly one history entry on success. Read-only queries live on
// the model and bypass history entirely.
package edit

import (
	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/history"
	"github.com/spokenlab/textgrid/core/model"
	"github.com/spokenlab/textgrid/core/validate"
)

// Editor wraps a document with validated, undoable mutation operations.
// Editor and document are single-owner: no internal locking is provided, and
// the history holds no references outside the document it mutates.
type Editor struct {
	doc  *model.TextGrid
	hist *history.Stack
}

// New creates an editor for doc with the default history capacity.
func New(doc *model.TextGrid) *Editor {
	return NewWithCapacity(doc, history.DefaultMaxEntries)
}

// NewWithCapacity creates an editor whose history keeps at most max entries.
func NewWithCapacity(doc *model.TextGrid, max int) *Editor {
	return &Editor{doc: doc, hist: history.NewStack(max)}
}

// Document returns the edited document.
func (e *Editor) Document() *model.TextGrid { return e.doc }

// Undo reverses the most recent mutation. Fails ErrNothingToUndo.
func (e *Editor) Undo() error { return e.hist.Undo(e.doc) }

// Redo re-applies the most recently undone mutation. Fails ErrNothingToRedo.
func (e *Editor) Redo() error { return e.hist.Redo(e.doc) }

// CanUndo reports whether an undo is available.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether a redo is available.
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// History exposes the underlying stack for inspection.
func (e *Editor) History() *history.Stack { return e.hist }

// AddTier appends a tier to the document.
// Fails ErrDuplicateTierName if the name exists, ErrOutOfBounds if the
// tier's range is not within the document's range, and rejects a tier whose
// own content violates the structural invariants.
func (e *Editor) AddTier(t *model.Tier) error {
	if e.doc.HasTier(t.Name) {
		return errors.Wrapf(errors.ErrDuplicateTierName, "tier %q", t.Name)
	}
	if err := validate.Tier(t, e.doc.Xmin, e.doc.Xmax); err != nil {
		return err
	}
	cmd := &cmdAddTier{index: len(e.doc.Tiers), tier: t.Clone()}
	if err := cmd.Apply(e.doc); err != nil {
		return err
	}
	e.hist.Push(cmd)
	return nil
}

// RemoveTier removes the named tier. Fails ErrTierNotFound; removal is
// otherwise unconditional.
func (e *Editor) RemoveTier(name string) error {
	i := e.doc.TierIndex(name)
	if i < 0 {
		return errors.NewTierNotFound(name)
	}
	cmd := &cmdRemoveTier{index: i, tier: e.doc.Tiers[i].Clone()}
	if err := cmd.Apply(e.doc); err != nil {
		return err
	}
	e.hist.Push(cmd)
	return nil
}

// RenameTier renames a tier. Fails ErrTierNotFound if from is absent and
// ErrDuplicateTierName if to is already taken.
func (e *Editor) RenameTier(from, to string) error {
	if _, err := e.doc.TierByName(from); err != nil {
		return err
	}
	if from != to && e.doc.HasTier(to) {
		return errors.Wrapf(errors.ErrDuplicateTierName, "tier %q", to)
	}
	cmd := &cmdRenameTier{from: from, to: to}
	if err := cmd.Apply(e.doc); err != nil {
		return err
	}
	e.hist.Push(cmd)
	return nil
}

// AdjustBounds changes the document's time range and stretches every tier to
// the new range, padding interval tiers with silence at the edges so they
// keep tiling it. Fails ErrInvalidRange for a degenerate range and
// ErrOutOfBounds if any existing entry would fall outside the new range.
func (e *Editor) AdjustBounds(newMin, newMax float64) error {
	if err := validate.Range(newMin, newMax); err != nil {
		return err
	}
	for _, t := range e.doc.Tiers {
		if n := len(t.Intervals); n > 0 {
			if err := validate.Bounds(t.Intervals[0].Xmin, t.Intervals[n-1].Xmax, newMin, newMax); err != nil {
				return errors.Wrapf(err, "tier %q", t.Name)
			}
		}
		if n := len(t.Points); n > 0 {
			if err := validate.Bounds(t.Points[0].Time, t.Points[n-1].Time, newMin, newMax); err != nil {
				return errors.Wrapf(err, "tier %q", t.Name)
			}
		}
	}
	cmd := &cmdAdjustBounds{
		oldMin: e.doc.Xmin, oldMax: e.doc.Xmax,
		newMin: newMin, newMax: newMax,
	}
	for _, t := range e.doc.Tiers {
		cmd.oldTiers = append(cmd.oldTiers, t.Clone())
	}
	if err := cmd.Apply(e.doc); err != nil {
		return err
	}
	e.hist.Push(cmd)
	return nil
}

// intervalTier resolves a named tier and requires it to be an interval tier.
func (e *Editor) intervalTier(name string) (*model.Tier, error) {
	t, err := e.doc.TierByName(name)
	if err != nil {
		return nil, err
	}
	if t.Type != model.IntervalTier {
		return nil, errors.Wrapf(errors.ErrInvalidTierType, "tier %q is not an interval tier", name)
	}
	return t, nil
}

// pointTier resolves a named tier and requires it to be a point tier.
func (e *Editor) pointTier(name string) (*model.Tier, error) {
	t, err := e.doc.TierByName(name)
	if err != nil {
		return nil, err
	}
	if t.Type != model.PointTier {
		return nil, errors.Wrapf(errors.ErrInvalidTierType, "tier %q is not a point tier", name)
	}
	return t, nil
}

// commitIntervals validates a candidate interval list for tier t and, if
// valid, swaps it in and records one history entry. The document is never
// touched on failure.
func (e *Editor) commitIntervals(t *model.Tier, op string, after []model.Interval) error {
	if err := validate.Contiguous(after, t.Xmin, t.Xmax); err != nil {
		return err
	}
	cmd := &cmdSetIntervals{
		tier:   t.Name,
		op:     op,
		before: append([]model.Interval(nil), t.Intervals...),
		after:  after,
	}
	if err := cmd.Apply(e.doc); err != nil {
		return err
	}
	e.hist.Push(cmd)
	return nil
}

// commitPoints is the point-tier counterpart of commitIntervals.
func (e *Editor) commitPoints(t *model.Tier, op string, after []model.Point) error {
	if err := validate.PointSpacing(after); err != nil {
		return err
	}
	for _, p := range after {
		if !model.Within(p.Time, t.Xmin, t.Xmax) {
			return errors.Wrapf(errors.ErrOutOfBounds,
				"point at %g outside tier [%g, %g]", p.Time, t.Xmin, t.Xmax)
		}
	}
	cmd := &cmdSetPoints{
		tier:   t.Name,
		op:     op,
		before: append([]model.Point(nil), t.Points...),
		after:  after,
	}
	if err := cmd.Apply(e.doc); err != nil {
		return err
	}
	e.hist.Push(cmd)
	return nil
}
