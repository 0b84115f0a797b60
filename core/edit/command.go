package edit

import (
	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// History commands. Each is pure data: applying or reverting replays stored
// state and never re-invokes caller code. Tier snapshots are cloned on both
// store and replay so a command never aliases live document state.

type cmdAddTier struct {
	index int
	tier  *model.Tier
}

func (c *cmdAddTier) Tag() string { return "add tier" }

func (c *cmdAddTier) Apply(g *model.TextGrid) error {
	if c.index < 0 || c.index > len(g.Tiers) {
		return errors.Wrapf(errors.ErrIndexOutOfRange, "tier index %d", c.index)
	}
	g.Tiers = append(g.Tiers, nil)
	copy(g.Tiers[c.index+1:], g.Tiers[c.index:])
	g.Tiers[c.index] = c.tier.Clone()
	return nil
}

func (c *cmdAddTier) Revert(g *model.TextGrid) error {
	return removeTierAt(g, c.index)
}

type cmdRemoveTier struct {
	index int
	tier  *model.Tier
}

func (c *cmdRemoveTier) Tag() string { return "remove tier" }

func (c *cmdRemoveTier) Apply(g *model.TextGrid) error {
	return removeTierAt(g, c.index)
}

func (c *cmdRemoveTier) Revert(g *model.TextGrid) error {
	add := cmdAddTier{index: c.index, tier: c.tier}
	return add.Apply(g)
}

type cmdRenameTier struct {
	from string
	to   string
}

func (c *cmdRenameTier) Tag() string { return "rename tier" }

func (c *cmdRenameTier) Apply(g *model.TextGrid) error {
	t, err := g.TierByName(c.from)
	if err != nil {
		return err
	}
	t.Name = c.to
	return nil
}

func (c *cmdRenameTier) Revert(g *model.TextGrid) error {
	t, err := g.TierByName(c.to)
	if err != nil {
		return err
	}
	t.Name = c.from
	return nil
}

// cmdSetIntervals snapshots a tier's interval list before and after an
// operation. It backs every interval rewrite (split, merge, add, remove,
// insert silence); the tag preserves the operation kind.
type cmdSetIntervals struct {
	tier   string
	op     string
	before []model.Interval
	after  []model.Interval
}

func (c *cmdSetIntervals) Tag() string { return c.op }

func (c *cmdSetIntervals) Apply(g *model.TextGrid) error {
	t, err := g.TierByName(c.tier)
	if err != nil {
		return err
	}
	t.Intervals = append([]model.Interval(nil), c.after...)
	return nil
}

func (c *cmdSetIntervals) Revert(g *model.TextGrid) error {
	t, err := g.TierByName(c.tier)
	if err != nil {
		return err
	}
	t.Intervals = append([]model.Interval(nil), c.before...)
	return nil
}

// cmdSetPoints is the point-tier counterpart of cmdSetIntervals.
type cmdSetPoints struct {
	tier   string
	op     string
	before []model.Point
	after  []model.Point
}

func (c *cmdSetPoints) Tag() string { return c.op }

func (c *cmdSetPoints) Apply(g *model.TextGrid) error {
	t, err := g.TierByName(c.tier)
	if err != nil {
		return err
	}
	t.Points = append([]model.Point(nil), c.after...)
	return nil
}

func (c *cmdSetPoints) Revert(g *model.TextGrid) error {
	t, err := g.TierByName(c.tier)
	if err != nil {
		return err
	}
	t.Points = append([]model.Point(nil), c.before...)
	return nil
}

// cmdMergeTiers stores only the resulting merged tier, never the strategy
// that produced it.
type cmdMergeTiers struct {
	tier *model.Tier
}

func (c *cmdMergeTiers) Tag() string { return "merge tiers" }

func (c *cmdMergeTiers) Apply(g *model.TextGrid) error {
	g.Tiers = append(g.Tiers, c.tier.Clone())
	return nil
}

func (c *cmdMergeTiers) Revert(g *model.TextGrid) error {
	i := g.TierIndex(c.tier.Name)
	if i < 0 {
		return errors.NewTierNotFound(c.tier.Name)
	}
	return removeTierAt(g, i)
}

// cmdAdjustBounds retargets the document and every tier to a new range.
// Interval tiers are padded with silence at either edge so they keep tiling
// their range; the full pre-edit tiers are snapshotted for revert.
type cmdAdjustBounds struct {
	oldMin, oldMax float64
	newMin, newMax float64
	oldTiers       []*model.Tier
}

func (c *cmdAdjustBounds) Tag() string { return "adjust bounds" }

func (c *cmdAdjustBounds) Apply(g *model.TextGrid) error {
	g.Xmin, g.Xmax = c.newMin, c.newMax
	for _, t := range g.Tiers {
		t.Xmin, t.Xmax = c.newMin, c.newMax
		if t.Type != model.IntervalTier || len(t.Intervals) == 0 {
			continue
		}
		if t.Intervals[0].Xmin-c.newMin > model.Epsilon {
			t.Intervals = append([]model.Interval{
				{Xmin: c.newMin, Xmax: t.Intervals[0].Xmin},
			}, t.Intervals...)
		}
		if last := t.Intervals[len(t.Intervals)-1]; c.newMax-last.Xmax > model.Epsilon {
			t.Intervals = append(t.Intervals, model.Interval{Xmin: last.Xmax, Xmax: c.newMax})
		}
	}
	return nil
}

func (c *cmdAdjustBounds) Revert(g *model.TextGrid) error {
	g.Xmin, g.Xmax = c.oldMin, c.oldMax
	for _, old := range c.oldTiers {
		i := g.TierIndex(old.Name)
		if i < 0 {
			return errors.NewTierNotFound(old.Name)
		}
		g.Tiers[i] = old.Clone()
	}
	return nil
}

func removeTierAt(g *model.TextGrid, i int) error {
	if i < 0 || i >= len(g.Tiers) {
		return errors.Wrapf(errors.ErrIndexOutOfRange, "tier index %d of %d", i, len(g.Tiers))
	}
	g.Tiers = append(g.Tiers[:i], g.Tiers[i+1:]...)
	return nil
}
