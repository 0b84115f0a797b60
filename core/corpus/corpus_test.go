package corpus

import (
	"path/filepath"
	"testing"

	"github.com/spokenlab/textgrid/core/model"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func grid(t *testing.T, labels ...string) *model.TextGrid {
	t.Helper()
	g, err := model.New(0, float64(len(labels)))
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}
	tier := model.NewIntervalTier("words", 0, float64(len(labels)))
	for i, label := range labels {
		tier.Intervals = append(tier.Intervals, model.Interval{
			Xmin: float64(i), Xmax: float64(i + 1), Text: label,
		})
	}
	tones := model.NewPointTier("tones", 0, float64(len(labels)))
	tones.Points = []model.Point{{Time: 0.5, Mark: "H*"}}
	g.Tiers = append(g.Tiers, tier, tones)
	return g
}

func TestAddAndSearch(t *testing.T) {
	ix := openTestIndex(t)

	if _, err := ix.Add("a.TextGrid", grid(t, "hello", "world")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := ix.Add("b.TextGrid", grid(t, "other", "hello again")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	hits, err := ix.SearchLabels("hello")
	if err != nil {
		t.Fatalf("SearchLabels: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hit count = %d, want 2", len(hits))
	}
	if hits[0].Path != "a.TextGrid" || hits[1].Path != "b.TextGrid" {
		t.Errorf("hit paths = %q, %q", hits[0].Path, hits[1].Path)
	}
	if hits[0].Tier != "words" || hits[0].Xmax == nil {
		t.Errorf("interval hit = %+v, want tier words with xmax", hits[0])
	}

	marks, err := ix.SearchLabels("H*")
	if err != nil {
		t.Fatalf("SearchLabels: %v", err)
	}
	if len(marks) != 2 {
		t.Fatalf("mark hit count = %d, want 2", len(marks))
	}
	for _, h := range marks {
		if h.Xmax != nil {
			t.Errorf("point hit carries xmax: %+v", h)
		}
	}
}

func TestAddIsIdempotentForUnchangedContent(t *testing.T) {
	ix := openTestIndex(t)

	id1, err := ix.Add("a.TextGrid", grid(t, "hello"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	id2, err := ix.Add("a.TextGrid", grid(t, "hello"))
	if err != nil {
		t.Fatalf("Add again: %v", err)
	}
	if id1 != id2 {
		t.Errorf("unchanged content got a new id: %s vs %s", id1, id2)
	}

	docs, err := ix.Documents()
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("document count = %d, want 1", len(docs))
	}
}

func TestReindexReplacesRows(t *testing.T) {
	ix := openTestIndex(t)

	if _, err := ix.Add("a.TextGrid", grid(t, "before")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := ix.Add("a.TextGrid", grid(t, "after")); err != nil {
		t.Fatalf("re-Add: %v", err)
	}

	if hits, _ := ix.SearchLabels("before"); len(hits) != 0 {
		t.Errorf("stale labels survived re-index: %+v", hits)
	}
	hits, err := ix.SearchLabels("after")
	if err != nil {
		t.Fatalf("SearchLabels: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("hit count = %d, want 1", len(hits))
	}
}

func TestRemove(t *testing.T) {
	ix := openTestIndex(t)

	if _, err := ix.Add("a.TextGrid", grid(t, "hello")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ix.Remove("a.TextGrid"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if hits, _ := ix.SearchLabels("hello"); len(hits) != 0 {
		t.Errorf("labels survived document removal: %+v", hits)
	}
	if err := ix.Remove("missing.TextGrid"); err != nil {
		t.Errorf("Remove of unknown path: %v", err)
	}
}

func TestEmptyLabelsNotIndexed(t *testing.T) {
	ix := openTestIndex(t)

	if _, err := ix.Add("a.TextGrid", grid(t, "hello", "", "world")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hits, err := ix.SearchLabels("")
	if err != nil {
		t.Fatalf("SearchLabels: %v", err)
	}
	// instr(text, '') matches every row, so this counts all indexed labels:
	// two interval labels and one point mark.
	if len(hits) != 3 {
		t.Errorf("indexed label count = %d, want 3", len(hits))
	}
}
