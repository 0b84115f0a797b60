package edit

import (
	"sort"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// SplitInterval splits interval index of the named tier into two at time at.
// Fails ErrIndexOutOfRange for an invalid index and ErrInvalidSplitPoint
// unless at lies strictly inside the interval. Both halves inherit the
// original text.
func (e *Editor) SplitInterval(tier string, index int, at float64) error {
	t, err := e.intervalTier(tier)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.Intervals) {
		return errors.Wrapf(errors.ErrIndexOutOfRange, "interval %d of %d in tier %q", index, len(t.Intervals), tier)
	}
	iv := t.Intervals[index]
	if at <= iv.Xmin+model.Epsilon || at >= iv.Xmax-model.Epsilon {
		return errors.Wrapf(errors.ErrInvalidSplitPoint,
			"time %g not strictly inside [%g, %g]", at, iv.Xmin, iv.Xmax)
	}
	after := make([]model.Interval, 0, len(t.Intervals)+1)
	after = append(after, t.Intervals[:index]...)
	after = append(after,
		model.Interval{Xmin: iv.Xmin, Xmax: at, Text: iv.Text},
		model.Interval{Xmin: at, Xmax: iv.Xmax, Text: iv.Text},
	)
	after = append(after, t.Intervals[index+1:]...)
	return e.commitIntervals(t, "split interval", after)
}

// JoinText combines the labels of two merged intervals.
type JoinText func(left, right string) string

// DefaultJoin joins non-empty labels with a single space; if either side is
// empty it returns the other unchanged.
func DefaultJoin(left, right string) string {
	switch {
	case left == "":
		return right
	case right == "":
		return left
	default:
		return left + " " + right
	}
}

// MergeIntervals merges interval index of the named tier with its successor
// using DefaultJoin. Fails ErrIndexOutOfRange if no successor exists.
func (e *Editor) MergeIntervals(tier string, index int) error {
	return e.MergeIntervalsWith(tier, index, DefaultJoin)
}

// MergeIntervalsWith merges interval index with its successor, combining the
// two labels with join.
func (e *Editor) MergeIntervalsWith(tier string, index int, join JoinText) error {
	t, err := e.intervalTier(tier)
	if err != nil {
		return err
	}
	if index < 0 || index+1 >= len(t.Intervals) {
		return errors.Wrapf(errors.ErrIndexOutOfRange,
			"interval %d has no successor in tier %q (%d intervals)", index, tier, len(t.Intervals))
	}
	left, right := t.Intervals[index], t.Intervals[index+1]
	merged := model.Interval{Xmin: left.Xmin, Xmax: right.Xmax, Text: join(left.Text, right.Text)}
	after := make([]model.Interval, 0, len(t.Intervals)-1)
	after = append(after, t.Intervals[:index]...)
	after = append(after, merged)
	after = append(after, t.Intervals[index+2:]...)
	return e.commitIntervals(t, "merge intervals", after)
}

// AddInterval places a labeled interval into the named tier, keeping the
// tier contiguous: silence around the new interval is carved to fit, and on
// an empty tier the remainder of the range is padded with silence. The
// target range must lie within the tier and may cover only empty-labeled
// intervals; covering an existing label fails ErrGapOrOverlap.
func (e *Editor) AddInterval(tier string, iv model.Interval) error {
	t, err := e.intervalTier(tier)
	if err != nil {
		return err
	}
	if iv.Xmin >= iv.Xmax {
		return errors.Wrapf(errors.ErrInvalidRange, "interval [%g, %g]", iv.Xmin, iv.Xmax)
	}
	if err := validateInTier(iv.Xmin, iv.Xmax, t); err != nil {
		return err
	}
	for _, existing := range t.Intervals {
		if existing.Overlaps(iv) && existing.Text != "" {
			return errors.Wrapf(errors.ErrGapOrOverlap,
				"interval [%g, %g] overlaps labeled interval [%g, %g] %q",
				iv.Xmin, iv.Xmax, existing.Xmin, existing.Xmax, existing.Text)
		}
	}
	base := t.Intervals
	if len(base) == 0 {
		base = []model.Interval{{Xmin: t.Xmin, Xmax: t.Xmax}}
	}
	after := carve(base, iv)
	return e.commitIntervals(t, "add interval", after)
}

// RemoveInterval clears the label of interval index and coalesces it with
// any adjacent empty intervals, so the tier stays contiguous.
func (e *Editor) RemoveInterval(tier string, index int) error {
	t, err := e.intervalTier(tier)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.Intervals) {
		return errors.Wrapf(errors.ErrIndexOutOfRange, "interval %d of %d in tier %q", index, len(t.Intervals), tier)
	}
	after := append([]model.Interval(nil), t.Intervals...)
	after[index].Text = ""
	after = coalesceEmpty(after)
	return e.commitIntervals(t, "remove interval", after)
}

// InsertSilence carves an empty interval over [from, to], trimming any
// intervals it overlaps. Intervals it covers entirely are dropped.
func (e *Editor) InsertSilence(tier string, from, to float64) error {
	t, err := e.intervalTier(tier)
	if err != nil {
		return err
	}
	if from >= to {
		return errors.Wrapf(errors.ErrInvalidRange, "silence [%g, %g]", from, to)
	}
	if err := validateInTier(from, to, t); err != nil {
		return err
	}
	base := t.Intervals
	if len(base) == 0 {
		base = []model.Interval{{Xmin: t.Xmin, Xmax: t.Xmax}}
	}
	after := carve(base, model.Interval{Xmin: from, Xmax: to})
	return e.commitIntervals(t, "insert silence", after)
}

// AddPoint inserts a point into the named tier in time order.
// Fails ErrOutOfBounds outside the tier range and ErrDuplicateTime if a
// point already exists at that time within epsilon.
func (e *Editor) AddPoint(tier string, p model.Point) error {
	t, err := e.pointTier(tier)
	if err != nil {
		return err
	}
	after := append([]model.Point(nil), t.Points...)
	after = append(after, p)
	sort.SliceStable(after, func(i, j int) bool { return after[i].Time < after[j].Time })
	return e.commitPoints(t, "add point", after)
}

// RemovePoint removes the point at index from the named tier.
func (e *Editor) RemovePoint(tier string, index int) error {
	t, err := e.pointTier(tier)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.Points) {
		return errors.Wrapf(errors.ErrIndexOutOfRange, "point %d of %d in tier %q", index, len(t.Points), tier)
	}
	after := make([]model.Point, 0, len(t.Points)-1)
	after = append(after, t.Points[:index]...)
	after = append(after, t.Points[index+1:]...)
	return e.commitPoints(t, "remove point", after)
}

func validateInTier(from, to float64, t *model.Tier) error {
	if from < t.Xmin-model.Epsilon || to > t.Xmax+model.Epsilon {
		return errors.Wrapf(errors.ErrOutOfBounds,
			"[%g, %g] outside tier %q [%g, %g]", from, to, t.Name, t.Xmin, t.Xmax)
	}
	return nil
}

// carve replaces the region covered by iv inside a contiguous interval list,
// trimming partial overlaps. Degenerate slivers shorter than epsilon are
// dropped; the neighbours still meet iv's boundary within tolerance.
func carve(intervals []model.Interval, iv model.Interval) []model.Interval {
	var out []model.Interval
	for _, cur := range intervals {
		if cur.Xmax <= iv.Xmin+model.Epsilon || cur.Xmin >= iv.Xmax-model.Epsilon {
			out = append(out, cur)
			continue
		}
		if iv.Xmin-cur.Xmin > model.Epsilon {
			out = append(out, model.Interval{Xmin: cur.Xmin, Xmax: iv.Xmin, Text: cur.Text})
		}
		if cur.Xmax-iv.Xmax > model.Epsilon {
			out = append(out, model.Interval{Xmin: iv.Xmax, Xmax: cur.Xmax, Text: cur.Text})
		}
	}
	out = append(out, iv)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Xmin < out[j].Xmin })
	return out
}

// coalesceEmpty merges runs of adjacent empty-labeled intervals into one.
func coalesceEmpty(intervals []model.Interval) []model.Interval {
	if len(intervals) == 0 {
		return intervals
	}
	out := []model.Interval{intervals[0]}
	for _, cur := range intervals[1:] {
		last := &out[len(out)-1]
		if last.Text == "" && cur.Text == "" {
			last.Xmax = cur.Xmax
			continue
		}
		out = append(out, cur)
	}
	return out
}
