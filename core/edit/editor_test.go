package edit

import (
	"testing"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// newEditor builds an editor over a document with a three-interval "words"
// tier and a two-point "tones" tier on [0, 3].
func newEditor(t *testing.T) *Editor {
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
	tones := model.NewPointTier("tones", 0, 3)
	tones.Points = []model.Point{
		{Time: 0.5, Mark: "H*"},
		{Time: 2.5, Mark: "L%"},
	}
	g.Tiers = append(g.Tiers, words, tones)
	return New(g)
}

func TestAddTier(t *testing.T) {
	e := newEditor(t)

	fresh := model.NewIntervalTier("phones", 0, 3)
	fresh.Intervals = []model.Interval{{Xmin: 0, Xmax: 3, Text: ""}}
	if err := e.AddTier(fresh); err != nil {
		t.Fatalf("AddTier: %v", err)
	}
	if e.Document().Len() != 3 {
		t.Errorf("tier count = %d, want 3", e.Document().Len())
	}

	// The editor stores a clone; later caller mutations must not leak in.
	fresh.Name = "mutated"
	if !e.Document().HasTier("phones") {
		t.Errorf("caller mutation leaked into the document")
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if e.Document().Len() != 2 {
		t.Errorf("tier count after undo = %d, want 2", e.Document().Len())
	}
	if err := e.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if !e.Document().HasTier("phones") {
		t.Errorf("redo did not restore the tier")
	}
}

func TestAddTierRejections(t *testing.T) {
	e := newEditor(t)
	before := e.Document().Clone()

	tests := []struct {
		name    string
		tier    *model.Tier
		wantErr error
	}{
		{
			name:    "duplicate name",
			tier:    model.NewIntervalTier("words", 0, 3),
			wantErr: errors.ErrDuplicateTierName,
		},
		{
			name:    "outside document range",
			tier:    model.NewIntervalTier("wide", -1, 5),
			wantErr: errors.ErrOutOfBounds,
		},
		{
			name: "non-contiguous content",
			tier: func() *model.Tier {
				tr := model.NewIntervalTier("holes", 0, 3)
				tr.Intervals = []model.Interval{{Xmin: 0, Xmax: 1}, {Xmin: 2, Xmax: 3}}
				return tr
			}(),
			wantErr: errors.ErrGapOrOverlap,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.AddTier(tt.tier); !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddTier error = %v, want %v", err, tt.wantErr)
			}
			if !e.Document().Equal(before) {
				t.Errorf("failed AddTier mutated the document")
			}
			if e.CanUndo() {
				t.Errorf("failed AddTier recorded history")
			}
		})
	}
}

func TestRemoveTier(t *testing.T) {
	e := newEditor(t)

	if err := e.RemoveTier("words"); err != nil {
		t.Fatalf("RemoveTier: %v", err)
	}
	if e.Document().HasTier("words") {
		t.Errorf("tier survived removal")
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	words, err := e.Document().TierByName("words")
	if err != nil {
		t.Fatalf("undo did not restore the tier: %v", err)
	}
	// Restored at its original position with its original content.
	if e.Document().TierIndex("words") != 0 || len(words.Intervals) != 3 {
		t.Errorf("restored tier = index %d, %d intervals", e.Document().TierIndex("words"), len(words.Intervals))
	}

	if err := e.RemoveTier("missing"); !errors.Is(err, errors.ErrTierNotFound) {
		t.Errorf("RemoveTier(missing) error = %v, want ErrTierNotFound", err)
	}
}

func TestRenameTier(t *testing.T) {
	e := newEditor(t)

	if err := e.RenameTier("words", "lexical"); err != nil {
		t.Fatalf("RenameTier: %v", err)
	}
	if !e.Document().HasTier("lexical") || e.Document().HasTier("words") {
		t.Errorf("rename did not take effect")
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !e.Document().HasTier("words") {
		t.Errorf("undo did not restore the name")
	}

	if err := e.RenameTier("words", "tones"); !errors.Is(err, errors.ErrDuplicateTierName) {
		t.Errorf("collision error = %v, want ErrDuplicateTierName", err)
	}
	if err := e.RenameTier("missing", "x"); !errors.Is(err, errors.ErrTierNotFound) {
		t.Errorf("missing error = %v, want ErrTierNotFound", err)
	}
}

func TestAdjustBounds(t *testing.T) {
	e := newEditor(t)

	if err := e.AdjustBounds(-1, 5); err != nil {
		t.Fatalf("AdjustBounds: %v", err)
	}
	g := e.Document()
	if g.Xmin != -1 || g.Xmax != 5 {
		t.Errorf("document range = [%g, %g], want [-1, 5]", g.Xmin, g.Xmax)
	}
	for _, tier := range g.Tiers {
		if tier.Xmin != -1 || tier.Xmax != 5 {
			t.Errorf("tier %q range = [%g, %g], want [-1, 5]", tier.Name, tier.Xmin, tier.Xmax)
		}
	}
	// Widening pads interval tiers with silence so they still tile the range.
	words, _ := g.TierByName("words")
	if len(words.Intervals) != 5 {
		t.Fatalf("interval count after widening = %d, want 5", len(words.Intervals))
	}
	if words.Intervals[0] != (model.Interval{Xmin: -1, Xmax: 0}) ||
		words.Intervals[4] != (model.Interval{Xmin: 3, Xmax: 5}) {
		t.Errorf("edge padding = %+v, %+v", words.Intervals[0], words.Intervals[4])
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	words, _ = g.TierByName("words")
	if g.Xmin != 0 || g.Xmax != 3 || words.Xmax != 3 || len(words.Intervals) != 3 {
		t.Errorf("undo did not restore bounds and padding: [%g, %g], %d intervals",
			g.Xmin, g.Xmax, len(words.Intervals))
	}

	if err := e.AdjustBounds(2, 2); !errors.Is(err, errors.ErrInvalidRange) {
		t.Errorf("degenerate error = %v, want ErrInvalidRange", err)
	}
	// Data spans [0, 3]; shrinking below that must fail.
	if err := e.AdjustBounds(0.5, 3); !errors.Is(err, errors.ErrOutOfBounds) {
		t.Errorf("shrink error = %v, want ErrOutOfBounds", err)
	}
}

func TestAddRemovePoint(t *testing.T) {
	e := newEditor(t)

	if err := e.AddPoint("tones", model.Point{Time: 1.5, Mark: "!H"}); err != nil {
		t.Fatalf("AddPoint: %v", err)
	}
	tones, _ := e.Document().TierByName("tones")
	if len(tones.Points) != 3 || tones.Points[1].Mark != "!H" {
		t.Fatalf("points = %+v", tones.Points)
	}

	if err := e.AddPoint("tones", model.Point{Time: 1.5 + model.Epsilon/2}); !errors.Is(err, errors.ErrDuplicateTime) {
		t.Errorf("duplicate error = %v, want ErrDuplicateTime", err)
	}
	if err := e.AddPoint("tones", model.Point{Time: 9}); !errors.Is(err, errors.ErrOutOfBounds) {
		t.Errorf("out of range error = %v, want ErrOutOfBounds", err)
	}
	if err := e.AddPoint("words", model.Point{Time: 1.5}); !errors.Is(err, errors.ErrInvalidTierType) {
		t.Errorf("wrong tier type error = %v, want ErrInvalidTierType", err)
	}

	if err := e.RemovePoint("tones", 1); err != nil {
		t.Fatalf("RemovePoint: %v", err)
	}
	if len(tones.Points) != 2 {
		t.Errorf("point count = %d, want 2", len(tones.Points))
	}
	if err := e.RemovePoint("tones", 5); !errors.Is(err, errors.ErrIndexOutOfRange) {
		t.Errorf("bad index error = %v, want ErrIndexOutOfRange", err)
	}

	// Two undos roll back the removal and the addition.
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(tones.Points) != 2 || tones.Points[0].Mark != "H*" {
		t.Errorf("points after full undo = %+v", tones.Points)
	}
}

func TestUndoRedoRoundTripWholeDocument(t *testing.T) {
	e := newEditor(t)
	initial := e.Document().Clone()

	steps := []func() error{
		func() error { return e.SplitInterval("words", 0, 0.4) },
		func() error { return e.RenameTier("tones", "pitch") },
		func() error { return e.AddPoint("pitch", model.Point{Time: 1.1, Mark: "X"}) },
		func() error { return e.InsertSilence("words", 1.2, 1.8) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	edited := e.Document().Clone()

	for e.CanUndo() {
		if err := e.Undo(); err != nil {
			t.Fatalf("Undo: %v", err)
		}
	}
	if !e.Document().Equal(initial) {
		t.Errorf("full undo did not restore the initial document")
	}

	for e.CanRedo() {
		if err := e.Redo(); err != nil {
			t.Fatalf("Redo: %v", err)
		}
	}
	if !e.Document().Equal(edited) {
		t.Errorf("full redo did not restore the edited document")
	}
}

func TestNewEditTruncatesRedo(t *testing.T) {
	e := newEditor(t)

	if err := e.SplitInterval("words", 0, 0.5); err != nil {
		t.Fatalf("SplitInterval: %v", err)
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := e.RenameTier("words", "w"); err != nil {
		t.Fatalf("RenameTier: %v", err)
	}
	if err := e.Redo(); !errors.Is(err, errors.ErrNothingToRedo) {
		t.Errorf("Redo error = %v, want ErrNothingToRedo", err)
	}
}

func TestHistoryTags(t *testing.T) {
	e := newEditor(t)
	if err := e.SplitInterval("words", 0, 0.5); err != nil {
		t.Fatalf("SplitInterval: %v", err)
	}
	if err := e.RemoveTier("tones"); err != nil {
		t.Fatalf("RemoveTier: %v", err)
	}
	tags := e.History().Tags()
	if len(tags) != 2 || tags[0] != "split interval" || tags[1] != "remove tier" {
		t.Errorf("tags = %v", tags)
	}
}
