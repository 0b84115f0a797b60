package model

import "strings"

// IntervalMatch pairs a tier with the intervals that satisfied a query.
type IntervalMatch struct {
	Tier      *Tier
	Intervals []Interval
}

// PointMatch pairs a tier with the points that satisfied a query.
type PointMatch struct {
	Tier   *Tier
	Points []Point
}

// Query operations are read-only and never touch the edit history. Text
// matching is exact-substring and case-sensitive.

// IntervalsByText returns, per tier, the intervals whose text contains sub.
func (g *TextGrid) IntervalsByText(sub string) []IntervalMatch {
	var out []IntervalMatch
	for _, t := range g.Tiers {
		if t.Type != IntervalTier {
			continue
		}
		var hits []Interval
		for _, iv := range t.Intervals {
			if strings.Contains(iv.Text, sub) {
				hits = append(hits, iv)
			}
		}
		if len(hits) > 0 {
			out = append(out, IntervalMatch{Tier: t, Intervals: hits})
		}
	}
	return out
}

// IntervalsAtTime returns, per tier, the intervals containing time t.
func (g *TextGrid) IntervalsAtTime(t float64) []IntervalMatch {
	var out []IntervalMatch
	for _, tier := range g.Tiers {
		if tier.Type != IntervalTier {
			continue
		}
		var hits []Interval
		for _, iv := range tier.Intervals {
			if iv.Contains(t) {
				hits = append(hits, iv)
			}
		}
		if len(hits) > 0 {
			out = append(out, IntervalMatch{Tier: tier, Intervals: hits})
		}
	}
	return out
}

// IntervalsInRange returns, per tier, the intervals intersecting [from, to].
func (g *TextGrid) IntervalsInRange(from, to float64) []IntervalMatch {
	probe := Interval{Xmin: from, Xmax: to}
	var out []IntervalMatch
	for _, tier := range g.Tiers {
		if tier.Type != IntervalTier {
			continue
		}
		var hits []Interval
		for _, iv := range tier.Intervals {
			if iv.Overlaps(probe) {
				hits = append(hits, iv)
			}
		}
		if len(hits) > 0 {
			out = append(out, IntervalMatch{Tier: tier, Intervals: hits})
		}
	}
	return out
}

// PointsByMark returns, per tier, the points whose mark contains sub.
func (g *TextGrid) PointsByMark(sub string) []PointMatch {
	var out []PointMatch
	for _, tier := range g.Tiers {
		if tier.Type != PointTier {
			continue
		}
		var hits []Point
		for _, p := range tier.Points {
			if strings.Contains(p.Mark, sub) {
				hits = append(hits, p)
			}
		}
		if len(hits) > 0 {
			out = append(out, PointMatch{Tier: tier, Points: hits})
		}
	}
	return out
}

// PointsAtTime returns, per tier, the points at time t (within Epsilon).
func (g *TextGrid) PointsAtTime(t float64) []PointMatch {
	var out []PointMatch
	for _, tier := range g.Tiers {
		if tier.Type != PointTier {
			continue
		}
		var hits []Point
		for _, p := range tier.Points {
			if Close(p.Time, t) {
				hits = append(hits, p)
			}
		}
		if len(hits) > 0 {
			out = append(out, PointMatch{Tier: tier, Points: hits})
		}
	}
	return out
}

// PointsInRange returns, per tier, the points with from <= time <= to.
func (g *TextGrid) PointsInRange(from, to float64) []PointMatch {
	var out []PointMatch
	for _, tier := range g.Tiers {
		if tier.Type != PointTier {
			continue
		}
		var hits []Point
		for _, p := range tier.Points {
			if Within(p.Time, from, to) {
				hits = append(hits, p)
			}
		}
		if len(hits) > 0 {
			out = append(out, PointMatch{Tier: tier, Points: hits})
		}
	}
	return out
}
