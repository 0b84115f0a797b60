// Package eaf imports ELAN annotation documents (.eaf) into the TextGrid
// model. ELAN stores times as millisecond slots referenced by ID; aligned
// annotations become interval tiers, with gaps filled by empty intervals so
// imported tiers satisfy the same contiguity rules as native documents.
package eaf

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
	"github.com/spokenlab/textgrid/core/validate"
)

var (
	timeSlotExpr   = xpath.MustCompile("//TIME_ORDER/TIME_SLOT")
	tierExpr       = xpath.MustCompile("//TIER")
	alignableExpr  = xpath.MustCompile("ANNOTATION/ALIGNABLE_ANNOTATION")
	annotationText = xpath.MustCompile("ANNOTATION_VALUE")
)

// Import parses an ELAN .eaf document from r and converts its time-aligned
// tiers into a TextGrid. Tiers with no alignable annotations are skipped;
// reference (symbolic association) annotations have no time of their own and
// are not imported.
func Import(r io.Reader) (*model.TextGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParseAt("eaf", -1, fmt.Sprintf("parsing XML: %v", err), errors.ErrParse)
	}
	if xmlquery.FindOne(root, "//ANNOTATION_DOCUMENT") == nil {
		return nil, errors.Wrap(errors.ErrUnrecognizedFormat, "not an ELAN annotation document")
	}

	slots, err := timeSlots(root)
	if err != nil {
		return nil, err
	}

	var tiers []*model.Tier
	var docMin, docMax float64
	first := true
	for _, tierNode := range xmlquery.QuerySelectorAll(root, tierExpr) {
		t, err := importTier(tierNode, slots)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		if first || t.Xmin < docMin {
			docMin = t.Xmin
		}
		if first || t.Xmax > docMax {
			docMax = t.Xmax
		}
		first = false
		tiers = append(tiers, t)
	}
	if first {
		docMin, docMax = 0, 1
	}

	g, err := model.New(docMin, docMax)
	if err != nil {
		return nil, errors.Wrap(err, "eaf: document range")
	}
	for _, t := range tiers {
		t.Xmin, t.Xmax = docMin, docMax
		t.Intervals = fillGaps(t.Intervals, docMin, docMax)
		g.Tiers = append(g.Tiers, t)
	}
	if err := validate.Document(g); err != nil {
		return nil, errors.Wrap(err, "eaf: imported document invalid")
	}
	return g, nil
}

// timeSlots reads the TIME_ORDER block into a slot-ID to seconds map.
// ELAN stores TIME_VALUE in milliseconds.
func timeSlots(root *xmlquery.Node) (map[string]float64, error) {
	slots := make(map[string]float64)
	for _, n := range xmlquery.QuerySelectorAll(root, timeSlotExpr) {
		id := n.SelectAttr("TIME_SLOT_ID")
		if id == "" {
			return nil, errors.NewParseAt("eaf", -1, "TIME_SLOT without TIME_SLOT_ID", errors.ErrParse)
		}
		raw := n.SelectAttr("TIME_VALUE")
		if raw == "" {
			// Unaligned slot; annotations referencing it are skipped.
			continue
		}
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.NewParseAt("eaf", -1,
				fmt.Sprintf("slot %s: malformed TIME_VALUE %q", id, raw), errors.ErrParse)
		}
		slots[id] = ms / 1000.0
	}
	return slots, nil
}

func importTier(tierNode *xmlquery.Node, slots map[string]float64) (*model.Tier, error) {
	name := tierNode.SelectAttr("TIER_ID")
	if name == "" {
		return nil, errors.NewParseAt("eaf", -1, "TIER without TIER_ID", errors.ErrParse)
	}

	var intervals []model.Interval
	for _, ann := range xmlquery.QuerySelectorAll(tierNode, alignableExpr) {
		t1, ok1 := slots[ann.SelectAttr("TIME_SLOT_REF1")]
		t2, ok2 := slots[ann.SelectAttr("TIME_SLOT_REF2")]
		if !ok1 || !ok2 {
			// References an unaligned slot; nothing to place on the timeline.
			continue
		}
		if t2 <= t1 {
			return nil, errors.NewValidation("tier "+name,
				fmt.Sprintf("annotation %q has range [%g, %g]", ann.SelectAttr("ANNOTATION_ID"), t1, t2),
				errors.ErrInvalidRange)
		}
		text := ""
		if v := xmlquery.QuerySelector(ann, annotationText); v != nil {
			text = v.InnerText()
		}
		intervals = append(intervals, model.Interval{Xmin: t1, Xmax: t2, Text: text})
	}
	if len(intervals) == 0 {
		return nil, nil
	}

	sort.SliceStable(intervals, func(i, j int) bool { return intervals[i].Xmin < intervals[j].Xmin })
	for i := 1; i < len(intervals); i++ {
		if intervals[i-1].Xmax > intervals[i].Xmin+model.Epsilon {
			return nil, errors.NewValidation("tier "+name,
				fmt.Sprintf("annotations overlap at %g", intervals[i].Xmin),
				errors.ErrGapOrOverlap)
		}
	}

	t := model.NewIntervalTier(name, intervals[0].Xmin, intervals[len(intervals)-1].Xmax)
	t.Intervals = intervals
	return t, nil
}

// fillGaps pads the spaces between sorted annotations with empty intervals so
// the tier tiles [min, max].
func fillGaps(intervals []model.Interval, min, max float64) []model.Interval {
	var out []model.Interval
	cursor := min
	for _, iv := range intervals {
		if iv.Xmin-cursor > model.Epsilon {
			out = append(out, model.Interval{Xmin: cursor, Xmax: iv.Xmin})
		}
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
