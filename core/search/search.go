// Package search evaluates a small query language over TextGrid documents.
// Queries are conjunctions of clauses over tier names, labels and times:
//
//	tier = "words" and text contains "he" and time in [0.5, 2.0]
//	mark = "H*"
//	time in [1, 2]
//
// Interval tiers are matched through their text, point tiers through their
// mark; a query naming both matches nothing.
package search

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// Result collects the entries matched by a query, grouped per tier.
type Result struct {
	Intervals []model.IntervalMatch
	Points    []model.PointMatch
}

// Len reports the total number of matched entries.
func (r *Result) Len() int {
	n := 0
	for _, m := range r.Intervals {
		n += len(m.Intervals)
	}
	for _, m := range r.Points {
		n += len(m.Points)
	}
	return n
}

// queryGrammar is the participle grammar for the query language.
//
//nolint:govet // participle grammar tags are not standard struct tags
type queryGrammar struct {
	First *clauseGrammar   `parser:"@@"`
	Rest  []*clauseGrammar `parser:"( \"and\" @@ )*"`
}

//nolint:govet
type clauseGrammar struct {
	Tier         *string    `parser:"  \"tier\" \"=\" @String"`
	TextEq       *string    `parser:"| \"text\" \"=\" @String"`
	TextContains *string    `parser:"| \"text\" \"contains\" @String"`
	MarkEq       *string    `parser:"| \"mark\" \"=\" @String"`
	MarkContains *string    `parser:"| \"mark\" \"contains\" @String"`
	TimeRange    *timeRange `parser:"| \"time\" \"in\" \"[\" @@ \"]\""`
	TimeAt       *float64   `parser:"| \"time\" \"=\" @Number"`
}

//nolint:govet
type timeRange struct {
	Min float64 `parser:"@Number \",\""`
	Max float64 `parser:"@Number"`
}

var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `[-+]?[0-9]+(?:\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[=\[\],]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var queryParser = participle.MustBuild[queryGrammar](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// Query is a compiled query, reusable across documents.
type Query struct {
	tier         *string
	textEq       *string
	textContains *string
	markEq       *string
	markContains *string
	timeMin      *float64
	timeMax      *float64
	timeAt       *float64
}

// Compile parses a query string. Fails ErrParse on grammar violations and on
// contradictory clauses (an empty time range, or two different tier names).
func Compile(s string) (*Query, error) {
	parsed, err := queryParser.ParseString("", s)
	if err != nil {
		return nil, errors.NewParseAt("query", -1, err.Error(), errors.ErrParse)
	}

	q := &Query{}
	clauses := append([]*clauseGrammar{parsed.First}, parsed.Rest...)
	for _, c := range clauses {
		switch {
		case c.Tier != nil:
			if q.tier != nil && *q.tier != *c.Tier {
				return nil, errors.NewParseAt("query", -1, "conflicting tier clauses", errors.ErrParse)
			}
			q.tier = c.Tier
		case c.TextEq != nil:
			q.textEq = c.TextEq
		case c.TextContains != nil:
			q.textContains = c.TextContains
		case c.MarkEq != nil:
			q.markEq = c.MarkEq
		case c.MarkContains != nil:
			q.markContains = c.MarkContains
		case c.TimeRange != nil:
			if c.TimeRange.Max < c.TimeRange.Min {
				return nil, errors.NewParseAt("query", -1, "empty time range", errors.ErrParse)
			}
			q.timeMin, q.timeMax = &c.TimeRange.Min, &c.TimeRange.Max
		case c.TimeAt != nil:
			q.timeAt = c.TimeAt
		}
	}
	return q, nil
}

// Run compiles and evaluates a query against g.
func Run(g *model.TextGrid, query string) (*Result, error) {
	q, err := Compile(query)
	if err != nil {
		return nil, err
	}
	return q.Eval(g), nil
}

// Eval evaluates the query against g. Evaluation is read-only.
func (q *Query) Eval(g *model.TextGrid) *Result {
	res := &Result{}
	for _, t := range g.Tiers {
		if q.tier != nil && t.Name != *q.tier {
			continue
		}
		switch t.Type {
		case model.IntervalTier:
			if q.markEq != nil || q.markContains != nil {
				continue
			}
			var hits []model.Interval
			for _, iv := range t.Intervals {
				if q.matchInterval(iv) {
					hits = append(hits, iv)
				}
			}
			if len(hits) > 0 {
				res.Intervals = append(res.Intervals, model.IntervalMatch{Tier: t, Intervals: hits})
			}
		case model.PointTier:
			if q.textEq != nil || q.textContains != nil {
				continue
			}
			var hits []model.Point
			for _, p := range t.Points {
				if q.matchPoint(p) {
					hits = append(hits, p)
				}
			}
			if len(hits) > 0 {
				res.Points = append(res.Points, model.PointMatch{Tier: t, Points: hits})
			}
		}
	}
	return res
}

func (q *Query) matchInterval(iv model.Interval) bool {
	if q.textEq != nil && iv.Text != *q.textEq {
		return false
	}
	if q.textContains != nil && !strings.Contains(iv.Text, *q.textContains) {
		return false
	}
	if q.timeAt != nil && !iv.Contains(*q.timeAt) {
		return false
	}
	if q.timeMin != nil {
		// A time range matches intervals it intersects.
		if iv.Xmax <= *q.timeMin || iv.Xmin >= *q.timeMax {
			return false
		}
	}
	return true
}

func (q *Query) matchPoint(p model.Point) bool {
	if q.markEq != nil && p.Mark != *q.markEq {
		return false
	}
	if q.markContains != nil && !strings.Contains(p.Mark, *q.markContains) {
		return false
	}
	if q.timeAt != nil && !model.Close(p.Time, *q.timeAt) {
		return false
	}
	if q.timeMin != nil && (p.Time < *q.timeMin || p.Time > *q.timeMax) {
		return false
	}
	return true
}
