package edit

import (
	"sort"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
	"github.com/spokenlab/textgrid/core/validate"
)

// MergeStrategy combines one candidate pair of intervals during a tier
// merge. At least one argument is non-nil; a nil argument marks an interval
// with no intersecting counterpart on the other tier. Returning nil means
// the pair contributes nothing to the merged tier. The strategy is invoked
// synchronously during MergeTiers only and is never stored in history.
type MergeStrategy func(a, b *model.Interval) *model.Interval

// DefaultMergeStrategy merges a pair when the labels agree or one side is
// empty, spanning the union of the two ranges and keeping the non-empty
// label. Unpaired intervals pass through; disagreeing labels contribute
// nothing.
func DefaultMergeStrategy(a, b *model.Interval) *model.Interval {
	if a == nil {
		c := *b
		return &c
	}
	if b == nil {
		c := *a
		return &c
	}
	if a.Text != b.Text && a.Text != "" && b.Text != "" {
		return nil
	}
	text := a.Text
	if text == "" {
		text = b.Text
	}
	return &model.Interval{
		Xmin: minF(a.Xmin, b.Xmin),
		Xmax: maxF(a.Xmax, b.Xmax),
		Text: text,
	}
}

// MergeTiers builds a new interval tier named newName by sweeping tiers a
// and b in time order and handing every intersecting pair to the strategy;
// intervals without an intersecting counterpart are passed with a nil
// partner. The strategy's output must be non-overlapping; gaps between
// outputs are padded with empty intervals so the merged tier tiles the
// document range. Fails ErrTierNotFound if either source is absent,
// ErrDuplicateTierName if newName collides, and ErrGapOrOverlap if the
// output overlaps; on any failure no tier is added.
func (e *Editor) MergeTiers(a, b, newName string, strategy MergeStrategy) error {
	ta, err := e.intervalTier(a)
	if err != nil {
		return err
	}
	tb, err := e.intervalTier(b)
	if err != nil {
		return err
	}
	if e.doc.HasTier(newName) {
		return errors.Wrapf(errors.ErrDuplicateTierName, "tier %q", newName)
	}
	if strategy == nil {
		strategy = DefaultMergeStrategy
	}

	outputs := sweepPairs(ta.Intervals, tb.Intervals, strategy)
	sort.SliceStable(outputs, func(i, j int) bool { return outputs[i].Xmin < outputs[j].Xmin })
	for i, iv := range outputs {
		if iv.Xmin >= iv.Xmax {
			return errors.Wrapf(errors.ErrInvalidRange,
				"strategy output %d has range [%g, %g]", i, iv.Xmin, iv.Xmax)
		}
		if i > 0 && outputs[i-1].Xmax > iv.Xmin+model.Epsilon {
			return errors.Wrapf(errors.ErrGapOrOverlap,
				"strategy outputs overlap at [%g, %g]", iv.Xmin, outputs[i-1].Xmax)
		}
	}

	merged := model.NewIntervalTier(newName, e.doc.Xmin, e.doc.Xmax)
	merged.Intervals = padGaps(outputs, e.doc.Xmin, e.doc.Xmax)
	if err := validateMerged(merged, e.doc.Xmin, e.doc.Xmax); err != nil {
		return err
	}

	cmd := &cmdMergeTiers{tier: merged}
	if err := cmd.Apply(e.doc); err != nil {
		return err
	}
	e.hist.Push(cmd)
	return nil
}

// sweepPairs walks both interval lists in time order. Each intersecting
// (a, b) pair is handed to the strategy once; an interval that intersects
// nothing on the other tier is handed over with a nil partner. Strategy
// arguments are copies, so a strategy cannot corrupt the source tiers.
func sweepPairs(as, bs []model.Interval, strategy MergeStrategy) []model.Interval {
	var out []model.Interval
	emit := func(iv *model.Interval) {
		if iv != nil {
			out = append(out, *iv)
		}
	}

	ai, bi := 0, 0
	aPaired, bPaired := false, false
	for ai < len(as) && bi < len(bs) {
		a, b := as[ai], bs[bi]
		if a.Overlaps(b) {
			emit(strategy(&a, &b))
			aPaired, bPaired = true, true
		}
		if a.Xmax <= b.Xmax+model.Epsilon {
			if !aPaired {
				emit(strategy(&a, nil))
			}
			ai++
			aPaired = false
		} else {
			if !bPaired {
				emit(strategy(nil, &b))
			}
			bi++
			bPaired = false
		}
	}
	for ; ai < len(as); ai++ {
		a := as[ai]
		if !aPaired {
			emit(strategy(&a, nil))
		}
		aPaired = false
	}
	for ; bi < len(bs); bi++ {
		b := bs[bi]
		if !bPaired {
			emit(strategy(nil, &b))
		}
		bPaired = false
	}
	return out
}

// padGaps fills the spaces between sorted, non-overlapping outputs with
// empty intervals so the result tiles [min, max]. Praat represents silence
// as empty-labeled intervals, which keeps the contiguity invariant intact
// for strategies that only label part of the range.
func padGaps(outputs []model.Interval, min, max float64) []model.Interval {
	var out []model.Interval
	cursor := min
	for _, iv := range outputs {
		if iv.Xmin-cursor > model.Epsilon {
			out = append(out, model.Interval{Xmin: cursor, Xmax: iv.Xmin})
		}
		// Clamp tiny serialization slack at the seams.
		if iv.Xmin < cursor {
			iv.Xmin = cursor
		}
		out = append(out, iv)
		cursor = iv.Xmax
	}
	if max-cursor > model.Epsilon {
		out = append(out, model.Interval{Xmin: cursor, Xmax: max})
	}
	return out
}

func validateMerged(t *model.Tier, docMin, docMax float64) error {
	for _, iv := range t.Intervals {
		if iv.Xmin < docMin-model.Epsilon || iv.Xmax > docMax+model.Epsilon {
			return errors.Wrapf(errors.ErrOutOfBounds,
				"merged interval [%g, %g] outside document [%g, %g]", iv.Xmin, iv.Xmax, docMin, docMax)
		}
	}
	return validate.Contiguous(t.Intervals, docMin, docMax)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
