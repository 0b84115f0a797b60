// Package model defines the in-memory representation of a Praat TextGrid
// document: a time-bounded set of tiers holding labeled intervals or points.
//
// The model is a single-owner data structure. Fields are exported so the
// codec and editor packages can build and transform documents, but callers
// that want validation and undo support should mutate only through
// core/edit; direct field writes bypass both.
package model

import (
	"math"

	"github.com/spokenlab/textgrid/core/errors"
)

// Epsilon is the shared absolute tolerance for all boundary, containment and
// equality comparisons on time values. The codec and the editor use the same
// constant so round-trips through serialization stay stable.
const Epsilon = 1e-6

// Close reports whether two time values are equal within Epsilon.
func Close(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

// Within reports whether t lies in [min, max] within Epsilon.
func Within(t, min, max float64) bool {
	return t >= min-Epsilon && t <= max+Epsilon
}

// TierType distinguishes interval tiers from point tiers.
type TierType int

const (
	// IntervalTier holds contiguous labeled time ranges.
	IntervalTier TierType = iota
	// PointTier holds discrete labeled instants (TextTier in Praat terms).
	PointTier
)

// Class returns the Praat class name used in all three serializations.
func (t TierType) Class() string {
	if t == PointTier {
		return "TextTier"
	}
	return "IntervalTier"
}

func (t TierType) String() string { return t.Class() }

// TierTypeFromClass maps a Praat class name to a TierType.
// Fails ErrInvalidTierType for anything other than IntervalTier or TextTier.
func TierTypeFromClass(class string) (TierType, error) {
	switch class {
	case "IntervalTier":
		return IntervalTier, nil
	case "TextTier":
		return PointTier, nil
	default:
		return 0, errors.Wrapf(errors.ErrInvalidTierType, "class %q", class)
	}
}

// Interval is a labeled time range. Text may be empty to denote silence.
type Interval struct {
	Xmin float64
	Xmax float64
	Text string
}

// Contains reports whether t lies inside the interval, within Epsilon.
func (iv Interval) Contains(t float64) bool {
	return Within(t, iv.Xmin, iv.Xmax)
}

// Overlaps reports whether the interval intersects other by more than Epsilon.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Xmin < other.Xmax-Epsilon && other.Xmin < iv.Xmax-Epsilon
}

// Point is a labeled instant.
type Point struct {
	Time float64
	Mark string
}

// Tier is one annotation channel. Exactly one of Intervals or Points is
// populated, according to Type.
type Tier struct {
	Name      string
	Type      TierType
	Xmin      float64
	Xmax      float64
	Intervals []Interval
	Points    []Point
}

// NewIntervalTier creates an empty interval tier spanning [xmin, xmax].
func NewIntervalTier(name string, xmin, xmax float64) *Tier {
	return &Tier{Name: name, Type: IntervalTier, Xmin: xmin, Xmax: xmax}
}

// NewPointTier creates an empty point tier spanning [xmin, xmax].
func NewPointTier(name string, xmin, xmax float64) *Tier {
	return &Tier{Name: name, Type: PointTier, Xmin: xmin, Xmax: xmax}
}

// Len returns the number of entries in the tier's populated collection.
func (t *Tier) Len() int {
	if t.Type == PointTier {
		return len(t.Points)
	}
	return len(t.Intervals)
}

// Clone returns a deep copy of the tier.
func (t *Tier) Clone() *Tier {
	c := *t
	c.Intervals = append([]Interval(nil), t.Intervals...)
	c.Points = append([]Point(nil), t.Points...)
	return &c
}

// Equal reports whether two tiers carry the same content, with time values
// compared within Epsilon and text compared exactly.
func (t *Tier) Equal(other *Tier) bool {
	if t.Name != other.Name || t.Type != other.Type {
		return false
	}
	if !Close(t.Xmin, other.Xmin) || !Close(t.Xmax, other.Xmax) {
		return false
	}
	if len(t.Intervals) != len(other.Intervals) || len(t.Points) != len(other.Points) {
		return false
	}
	for i, iv := range t.Intervals {
		o := other.Intervals[i]
		if !Close(iv.Xmin, o.Xmin) || !Close(iv.Xmax, o.Xmax) || iv.Text != o.Text {
			return false
		}
	}
	for i, p := range t.Points {
		o := other.Points[i]
		if !Close(p.Time, o.Time) || p.Mark != o.Mark {
			return false
		}
	}
	return true
}

// TextGrid is the annotation document: global time bounds plus an ordered
// sequence of uniquely named tiers.
type TextGrid struct {
	Xmin  float64
	Xmax  float64
	Tiers []*Tier
}

// New creates an empty TextGrid with the given bounds.
// Fails ErrInvalidRange unless xmin < xmax.
func New(xmin, xmax float64) (*TextGrid, error) {
	if xmin >= xmax {
		return nil, errors.Wrapf(errors.ErrInvalidRange, "xmin %g must be less than xmax %g", xmin, xmax)
	}
	return &TextGrid{Xmin: xmin, Xmax: xmax}, nil
}

// Len returns the number of tiers.
func (g *TextGrid) Len() int { return len(g.Tiers) }

// TierAt returns the tier at index i.
func (g *TextGrid) TierAt(i int) (*Tier, error) {
	if i < 0 || i >= len(g.Tiers) {
		return nil, errors.Wrapf(errors.ErrIndexOutOfRange, "tier index %d of %d", i, len(g.Tiers))
	}
	return g.Tiers[i], nil
}

// TierByName returns the tier with the given name. Lookup is case-sensitive
// and exact.
func (g *TextGrid) TierByName(name string) (*Tier, error) {
	for _, t := range g.Tiers {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, errors.NewTierNotFound(name)
}

// TierIndex returns the position of the named tier, or -1.
func (g *TextGrid) TierIndex(name string) int {
	for i, t := range g.Tiers {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// HasTier reports whether a tier with the given name exists.
func (g *TextGrid) HasTier(name string) bool { return g.TierIndex(name) >= 0 }

// Clone returns a deep copy of the document.
func (g *TextGrid) Clone() *TextGrid {
	c := &TextGrid{Xmin: g.Xmin, Xmax: g.Xmax}
	c.Tiers = make([]*Tier, len(g.Tiers))
	for i, t := range g.Tiers {
		c.Tiers[i] = t.Clone()
	}
	return c
}

// Equal reports whether two documents carry the same content, with time
// values compared within Epsilon.
func (g *TextGrid) Equal(other *TextGrid) bool {
	if !Close(g.Xmin, other.Xmin) || !Close(g.Xmax, other.Xmax) {
		return false
	}
	if len(g.Tiers) != len(other.Tiers) {
		return false
	}
	for i, t := range g.Tiers {
		if !t.Equal(other.Tiers[i]) {
			return false
		}
	}
	return true
}
