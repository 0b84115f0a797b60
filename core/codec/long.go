package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spokenlab/textgrid/core/encoding"
	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// LongText implements the verbose labeled text format: `xmin = 0` style
// fields, `item [i]:` tier blocks and `intervals [j]:` / `points [j]:`
// entry blocks.
type LongText struct{}

func (LongText) Name() string { return "long text" }

func (LongText) Decode(r io.Reader) (*model.TextGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	c := newLineCursor("long text", data)
	if err := c.header(); err != nil {
		return nil, err
	}

	xmin, err := c.numberField("xmin")
	if err != nil {
		return nil, err
	}
	xmax, err := c.numberField("xmax")
	if err != nil {
		return nil, err
	}
	flag, err := c.next()
	if err != nil {
		return nil, err
	}
	if !containsTiersFlag(flag) {
		return nil, c.errf("expected tiers? <exists> declaration")
	}
	size, err := c.countField("size")
	if err != nil {
		return nil, err
	}
	if err := c.block("item []"); err != nil {
		return nil, err
	}

	g, err := model.New(xmin, xmax)
	if err != nil {
		return nil, errors.NewParse("long text", c.lineno(), err.Error())
	}
	for i := 0; i < size; i++ {
		t, err := decodeLongTier(c)
		if err != nil {
			return nil, err
		}
		g.Tiers = append(g.Tiers, t)
	}
	if err := c.trailing(); err != nil {
		return nil, err
	}
	return finish(g, "long text")
}

func decodeLongTier(c *lineCursor) (*model.Tier, error) {
	if err := c.block("item ["); err != nil {
		return nil, err
	}
	class, err := c.quotedField("class")
	if err != nil {
		return nil, err
	}
	tierType, err := model.TierTypeFromClass(class)
	if err != nil {
		return nil, errors.NewParseAt("long text", -1, fmt.Sprintf("line %d: unknown tier class %q", c.lineno(), class), errors.ErrInvalidTierType)
	}
	name, err := c.quotedField("name")
	if err != nil {
		return nil, err
	}
	xmin, err := c.numberField("xmin")
	if err != nil {
		return nil, err
	}
	xmax, err := c.numberField("xmax")
	if err != nil {
		return nil, err
	}

	t := &model.Tier{Name: name, Type: tierType, Xmin: xmin, Xmax: xmax}
	switch tierType {
	case model.IntervalTier:
		count, err := c.countField("intervals: size")
		if err != nil {
			return nil, err
		}
		for j := 0; j < count; j++ {
			if err := c.block("intervals ["); err != nil {
				return nil, err
			}
			ivMin, err := c.numberField("xmin")
			if err != nil {
				return nil, err
			}
			ivMax, err := c.numberField("xmax")
			if err != nil {
				return nil, err
			}
			text, err := c.quotedField("text")
			if err != nil {
				return nil, err
			}
			t.Intervals = append(t.Intervals, model.Interval{Xmin: ivMin, Xmax: ivMax, Text: text})
		}
	case model.PointTier:
		count, err := c.countField("points: size")
		if err != nil {
			return nil, err
		}
		for j := 0; j < count; j++ {
			if err := c.block("points ["); err != nil {
				return nil, err
			}
			time, err := c.numberField("time")
			if err != nil {
				return nil, err
			}
			mark, err := c.quotedField("mark")
			if err != nil {
				return nil, err
			}
			t.Points = append(t.Points, model.Point{Time: time, Mark: mark})
		}
	}
	return t, nil
}

func (LongText) Encode(w io.Writer, g *model.TextGrid) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%s\n", textMagic, textClass)
	fmt.Fprintf(bw, "xmin = %s\n", encoding.FormatTime(g.Xmin))
	fmt.Fprintf(bw, "xmax = %s\n", encoding.FormatTime(g.Xmax))
	fmt.Fprintf(bw, "tiers? <exists>\n")
	fmt.Fprintf(bw, "size = %d\n", len(g.Tiers))
	fmt.Fprintf(bw, "item []:\n")

	for i, t := range g.Tiers {
		fmt.Fprintf(bw, "    item [%d]:\n", i+1)
		fmt.Fprintf(bw, "        class = %s\n", encoding.EscapeQuoted(t.Type.Class()))
		fmt.Fprintf(bw, "        name = %s\n", encoding.EscapeQuoted(t.Name))
		fmt.Fprintf(bw, "        xmin = %s\n", encoding.FormatTime(t.Xmin))
		fmt.Fprintf(bw, "        xmax = %s\n", encoding.FormatTime(t.Xmax))
		switch t.Type {
		case model.IntervalTier:
			fmt.Fprintf(bw, "        intervals: size = %d\n", len(t.Intervals))
			for j, iv := range t.Intervals {
				fmt.Fprintf(bw, "        intervals [%d]:\n", j+1)
				fmt.Fprintf(bw, "            xmin = %s\n", encoding.FormatTime(iv.Xmin))
				fmt.Fprintf(bw, "            xmax = %s\n", encoding.FormatTime(iv.Xmax))
				fmt.Fprintf(bw, "            text = %s\n", encoding.EscapeQuoted(iv.Text))
			}
		case model.PointTier:
			fmt.Fprintf(bw, "        points: size = %d\n", len(t.Points))
			for j, p := range t.Points {
				fmt.Fprintf(bw, "        points [%d]:\n", j+1)
				fmt.Fprintf(bw, "            time = %s\n", encoding.FormatTime(p.Time))
				fmt.Fprintf(bw, "            mark = %s\n", encoding.EscapeQuoted(p.Mark))
			}
		}
	}
	return bw.Flush()
}

// containsTiersFlag accepts the `tiers? <exists>` declaration with any
// surrounding whitespace.
func containsTiersFlag(line string) bool {
	return strings.TrimSpace(line) == "tiers? <exists>"
}
