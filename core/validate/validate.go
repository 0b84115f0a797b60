// Package validate provides the pure structural checks shared by the codec
// and the editor. Every function is stateless, never mutates its input, and
// is safe to call concurrently against an unmutated document.
package validate

import (
	"fmt"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// Bounds fails ErrOutOfBounds unless [childMin, childMax] is contained in
// [parentMin, parentMax] within epsilon.
func Bounds(childMin, childMax, parentMin, parentMax float64) error {
	if childMin < parentMin-model.Epsilon || childMax > parentMax+model.Epsilon {
		return errors.Wrapf(errors.ErrOutOfBounds,
			"[%g, %g] not contained in [%g, %g]", childMin, childMax, parentMin, parentMax)
	}
	return nil
}

// Range fails ErrInvalidRange unless min < max.
func Range(min, max float64) error {
	if min >= max {
		return errors.Wrapf(errors.ErrInvalidRange, "min %g not less than max %g", min, max)
	}
	return nil
}

// Ordering fails ErrUnorderedEntries unless starts is strictly increasing.
func Ordering(starts []float64) error {
	for i := 1; i < len(starts); i++ {
		if starts[i] <= starts[i-1] {
			return errors.Wrapf(errors.ErrUnorderedEntries,
				"entry %d starts at %g, not after %g", i, starts[i], starts[i-1])
		}
	}
	return nil
}

// Contiguous fails ErrGapOrOverlap unless the intervals tile
// [tierMin, tierMax] exactly: each interval well-formed, consecutive
// intervals sharing a boundary within epsilon, the first starting at tierMin
// and the last ending at tierMax. An empty interval list is accepted.
func Contiguous(intervals []model.Interval, tierMin, tierMax float64) error {
	if len(intervals) == 0 {
		return nil
	}
	for i, iv := range intervals {
		if iv.Xmin >= iv.Xmax {
			return errors.Wrapf(errors.ErrInvalidRange,
				"interval %d has xmin %g >= xmax %g", i, iv.Xmin, iv.Xmax)
		}
		if i > 0 && !model.Close(intervals[i-1].Xmax, iv.Xmin) {
			return errors.Wrapf(errors.ErrGapOrOverlap,
				"interval %d starts at %g, previous ends at %g", i, iv.Xmin, intervals[i-1].Xmax)
		}
	}
	if !model.Close(intervals[0].Xmin, tierMin) {
		return errors.Wrapf(errors.ErrGapOrOverlap,
			"first interval starts at %g, tier starts at %g", intervals[0].Xmin, tierMin)
	}
	last := intervals[len(intervals)-1]
	if !model.Close(last.Xmax, tierMax) {
		return errors.Wrapf(errors.ErrGapOrOverlap,
			"last interval ends at %g, tier ends at %g", last.Xmax, tierMax)
	}
	return nil
}

// PointSpacing fails ErrDuplicateTime if any two consecutive points collide
// within epsilon, and ErrUnorderedEntries if they are not sorted ascending.
func PointSpacing(points []model.Point) error {
	for i := 1; i < len(points); i++ {
		if points[i].Time < points[i-1].Time {
			return errors.Wrapf(errors.ErrUnorderedEntries,
				"point %d at %g before point %d at %g", i, points[i].Time, i-1, points[i-1].Time)
		}
		if model.Close(points[i].Time, points[i-1].Time) {
			return errors.Wrapf(errors.ErrDuplicateTime,
				"points %d and %d both at %g", i-1, i, points[i].Time)
		}
	}
	return nil
}

// Tier runs the full per-tier check against the owning document's bounds:
// tier range validity and containment, then the collection invariants for
// the tier's type.
func Tier(t *model.Tier, docMin, docMax float64) error {
	if err := Range(t.Xmin, t.Xmax); err != nil {
		return errors.NewValidation(t.Name, err.Error(), errors.ErrInvalidRange)
	}
	if err := Bounds(t.Xmin, t.Xmax, docMin, docMax); err != nil {
		return errors.NewValidation(t.Name, err.Error(), errors.ErrOutOfBounds)
	}
	switch t.Type {
	case model.IntervalTier:
		if len(t.Points) != 0 {
			return errors.NewValidation(t.Name,
				"interval tier carries points", errors.ErrInvalidTierType)
		}
		if err := Contiguous(t.Intervals, t.Xmin, t.Xmax); err != nil {
			return fmt.Errorf("tier %q: %w", t.Name, err)
		}
	case model.PointTier:
		if len(t.Intervals) != 0 {
			return errors.NewValidation(t.Name,
				"point tier carries intervals", errors.ErrInvalidTierType)
		}
		if err := PointSpacing(t.Points); err != nil {
			return fmt.Errorf("tier %q: %w", t.Name, err)
		}
		for i, p := range t.Points {
			if !model.Within(p.Time, t.Xmin, t.Xmax) {
				return errors.Wrapf(errors.ErrOutOfBounds,
					"tier %q: point %d at %g outside [%g, %g]", t.Name, i, p.Time, t.Xmin, t.Xmax)
			}
		}
	}
	return nil
}

// Document runs the whole-document walk: global range, unique tier names,
// and the per-tier checks.
func Document(g *model.TextGrid) error {
	if err := Range(g.Xmin, g.Xmax); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(g.Tiers))
	for _, t := range g.Tiers {
		if _, dup := seen[t.Name]; dup {
			return errors.Wrapf(errors.ErrDuplicateTierName, "tier %q", t.Name)
		}
		seen[t.Name] = struct{}{}
		if err := Tier(t, g.Xmin, g.Xmax); err != nil {
			return err
		}
	}
	return nil
}
