package codec

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spokenlab/textgrid/core/encoding"
	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// ShortText implements the positional text format: the same field sequence
// as the long format with one bare value per line, no labels, no bracketed
// indices.
type ShortText struct{}

func (ShortText) Name() string { return "short text" }

func (ShortText) Decode(r io.Reader) (*model.TextGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	c := newLineCursor("short text", data)
	if err := c.header(); err != nil {
		return nil, err
	}

	xmin, err := c.bareNumber()
	if err != nil {
		return nil, err
	}
	xmax, err := c.bareNumber()
	if err != nil {
		return nil, err
	}
	size, err := c.bareCount()
	if err != nil {
		return nil, err
	}

	g, err := model.New(xmin, xmax)
	if err != nil {
		return nil, errors.NewParse("short text", c.lineno(), err.Error())
	}
	for i := 0; i < size; i++ {
		t, err := decodeShortTier(c)
		if err != nil {
			return nil, err
		}
		g.Tiers = append(g.Tiers, t)
	}
	if err := c.trailing(); err != nil {
		return nil, err
	}
	return finish(g, "short text")
}

func decodeShortTier(c *lineCursor) (*model.Tier, error) {
	class, err := c.bareQuoted()
	if err != nil {
		return nil, err
	}
	tierType, err := model.TierTypeFromClass(class)
	if err != nil {
		return nil, errors.NewParseAt("short text", -1, fmt.Sprintf("line %d: unknown tier class %q", c.lineno(), class), errors.ErrInvalidTierType)
	}
	name, err := c.bareQuoted()
	if err != nil {
		return nil, err
	}
	xmin, err := c.bareNumber()
	if err != nil {
		return nil, err
	}
	xmax, err := c.bareNumber()
	if err != nil {
		return nil, err
	}
	count, err := c.bareCount()
	if err != nil {
		return nil, err
	}

	t := &model.Tier{Name: name, Type: tierType, Xmin: xmin, Xmax: xmax}
	switch tierType {
	case model.IntervalTier:
		for j := 0; j < count; j++ {
			ivMin, err := c.bareNumber()
			if err != nil {
				return nil, err
			}
			ivMax, err := c.bareNumber()
			if err != nil {
				return nil, err
			}
			text, err := c.bareQuoted()
			if err != nil {
				return nil, err
			}
			t.Intervals = append(t.Intervals, model.Interval{Xmin: ivMin, Xmax: ivMax, Text: text})
		}
	case model.PointTier:
		for j := 0; j < count; j++ {
			time, err := c.bareNumber()
			if err != nil {
				return nil, err
			}
			mark, err := c.bareQuoted()
			if err != nil {
				return nil, err
			}
			t.Points = append(t.Points, model.Point{Time: time, Mark: mark})
		}
	}
	return t, nil
}

func (ShortText) Encode(w io.Writer, g *model.TextGrid) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%s\n", textMagic, textClass)
	fmt.Fprintf(bw, "%s\n", encoding.FormatTime(g.Xmin))
	fmt.Fprintf(bw, "%s\n", encoding.FormatTime(g.Xmax))
	fmt.Fprintf(bw, "%d\n", len(g.Tiers))

	for _, t := range g.Tiers {
		fmt.Fprintf(bw, "%s\n", encoding.EscapeQuoted(t.Type.Class()))
		fmt.Fprintf(bw, "%s\n", encoding.EscapeQuoted(t.Name))
		fmt.Fprintf(bw, "%s\n", encoding.FormatTime(t.Xmin))
		fmt.Fprintf(bw, "%s\n", encoding.FormatTime(t.Xmax))
		switch t.Type {
		case model.IntervalTier:
			fmt.Fprintf(bw, "%d\n", len(t.Intervals))
			for _, iv := range t.Intervals {
				fmt.Fprintf(bw, "%s\n", encoding.FormatTime(iv.Xmin))
				fmt.Fprintf(bw, "%s\n", encoding.FormatTime(iv.Xmax))
				fmt.Fprintf(bw, "%s\n", encoding.EscapeQuoted(iv.Text))
			}
		case model.PointTier:
			fmt.Fprintf(bw, "%d\n", len(t.Points))
			for _, p := range t.Points {
				fmt.Fprintf(bw, "%s\n", encoding.FormatTime(p.Time))
				fmt.Fprintf(bw, "%s\n", encoding.EscapeQuoted(p.Mark))
			}
		}
	}
	return bw.Flush()
}
