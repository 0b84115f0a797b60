package search

import (
	"testing"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

func testGrid(t *testing.T) *model.TextGrid {
	t.Helper()
	g, err := model.New(0, 3)
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}
	words := model.NewIntervalTier("words", 0, 3)
	words.Intervals = []model.Interval{
		{Xmin: 0, Xmax: 1, Text: "hello"},
		{Xmin: 1, Xmax: 2, Text: "world"},
		{Xmin: 2, Xmax: 3, Text: ""},
	}
	phones := model.NewIntervalTier("phones", 0, 3)
	phones.Intervals = []model.Interval{
		{Xmin: 0, Xmax: 1.5, Text: "h"},
		{Xmin: 1.5, Xmax: 3, Text: "w"},
	}
	tones := model.NewPointTier("tones", 0, 3)
	tones.Points = []model.Point{
		{Time: 0.5, Mark: "H*"},
		{Time: 2.5, Mark: "L-L%"},
	}
	g.Tiers = append(g.Tiers, words, phones, tones)
	return g
}

func TestRun(t *testing.T) {
	g := testGrid(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "text equality", query: `text = "hello"`, want: 1},
		{name: "text contains", query: `text contains "o"`, want: 2},
		{name: "tier restriction", query: `tier = "phones" and text contains "h"`, want: 1},
		{name: "time range intervals and points", query: `time in [0, 1]`, want: 3},
		{name: "time point", query: `time = 1.2`, want: 2},
		{name: "mark equality", query: `mark = "H*"`, want: 1},
		{name: "mark contains", query: `mark contains "L"`, want: 1},
		{name: "conjunction", query: `tier = "words" and text contains "l" and time in [0, 1]`, want: 1},
		{name: "no matches", query: `text = "absent"`, want: 0},
		{name: "empty label", query: `text = ""`, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(g, tt.query)
			if err != nil {
				t.Fatalf("Run(%q): %v", tt.query, err)
			}
			if res.Len() != tt.want {
				t.Errorf("Run(%q) matched %d entries, want %d", tt.query, res.Len(), tt.want)
			}
		})
	}
}

func TestRunGrouping(t *testing.T) {
	g := testGrid(t)
	res, err := Run(g, `text contains "o"`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Intervals) != 1 || res.Intervals[0].Tier.Name != "words" {
		t.Fatalf("matches = %+v, want one group on tier words", res.Intervals)
	}
	if len(res.Intervals[0].Intervals) != 2 {
		t.Errorf("group size = %d, want 2", len(res.Intervals[0].Intervals))
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "missing value", query: `text =`},
		{name: "unknown field", query: `color = "red"`},
		{name: "unterminated string", query: `text = "oops`},
		{name: "empty time range", query: `time in [2, 1]`},
		{name: "conflicting tiers", query: `tier = "a" and tier = "b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.query); !errors.Is(err, errors.ErrParse) {
				t.Fatalf("Compile(%q) error = %v, want ErrParse", tt.query, err)
			}
		})
	}
}

func TestMarkQuerySkipsIntervalTiers(t *testing.T) {
	g := testGrid(t)
	res, err := Run(g, `mark contains ""`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Intervals) != 0 {
		t.Errorf("mark query matched interval tiers: %+v", res.Intervals)
	}
	if res.Len() != 2 {
		t.Errorf("matched %d points, want 2", res.Len())
	}
}

func TestQueryReuse(t *testing.T) {
	q, err := Compile(`text = "hello"`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for i := 0; i < 2; i++ {
		if got := q.Eval(testGrid(t)).Len(); got != 1 {
			t.Fatalf("Eval run %d matched %d, want 1", i, got)
		}
	}
}
