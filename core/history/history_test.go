package history

import (
	"testing"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// shiftCmd widens the document's end by delta; reverting narrows it again.
type shiftCmd struct {
	delta float64
	fail  bool
}

func (c *shiftCmd) Tag() string { return "shift" }

func (c *shiftCmd) Apply(g *model.TextGrid) error {
	if c.fail {
		return errors.ErrInvalidRange
	}
	g.Xmax += c.delta
	return nil
}

func (c *shiftCmd) Revert(g *model.TextGrid) error {
	if c.fail {
		return errors.ErrInvalidRange
	}
	g.Xmax -= c.delta
	return nil
}

func newDoc(t *testing.T) *model.TextGrid {
	t.Helper()
	g, err := model.New(0, 1)
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}
	return g
}

func apply(t *testing.T, s *Stack, g *model.TextGrid, cmd Command) {
	t.Helper()
	if err := cmd.Apply(g); err != nil {
		t.Fatalf("apply: %v", err)
	}
	s.Push(cmd)
}

func TestUndoRedo(t *testing.T) {
	g := newDoc(t)
	s := NewStack(0)

	apply(t, s, g, &shiftCmd{delta: 1})
	apply(t, s, g, &shiftCmd{delta: 2})
	if g.Xmax != 4 {
		t.Fatalf("xmax = %g, want 4", g.Xmax)
	}

	if err := s.Undo(g); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if g.Xmax != 2 {
		t.Errorf("after undo xmax = %g, want 2", g.Xmax)
	}
	if err := s.Redo(g); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if g.Xmax != 4 {
		t.Errorf("after redo xmax = %g, want 4", g.Xmax)
	}

	if err := s.Undo(g); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := s.Undo(g); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := s.Undo(g); !errors.Is(err, errors.ErrNothingToUndo) {
		t.Fatalf("empty Undo error = %v, want ErrNothingToUndo", err)
	}
	if g.Xmax != 1 {
		t.Errorf("fully undone xmax = %g, want 1", g.Xmax)
	}
}

func TestRedoOnFreshStack(t *testing.T) {
	s := NewStack(0)
	if err := s.Redo(newDoc(t)); !errors.Is(err, errors.ErrNothingToRedo) {
		t.Fatalf("Redo error = %v, want ErrNothingToRedo", err)
	}
}

func TestPushTruncatesRedoTail(t *testing.T) {
	g := newDoc(t)
	s := NewStack(0)

	apply(t, s, g, &shiftCmd{delta: 1})
	apply(t, s, g, &shiftCmd{delta: 2})
	if err := s.Undo(g); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !s.CanRedo() {
		t.Fatalf("expected redo available after undo")
	}

	apply(t, s, g, &shiftCmd{delta: 10})

	if s.CanRedo() {
		t.Errorf("redo survived a new mutation")
	}
	if err := s.Redo(g); !errors.Is(err, errors.ErrNothingToRedo) {
		t.Errorf("Redo error = %v, want ErrNothingToRedo", err)
	}
	if got := s.Tags(); len(got) != 2 {
		t.Errorf("entry count = %d, want 2", len(got))
	}
}

func TestCapacityTrimsOldest(t *testing.T) {
	g := newDoc(t)
	s := NewStack(3)

	for i := 0; i < 5; i++ {
		apply(t, s, g, &shiftCmd{delta: 1})
	}
	if got := s.UndoCount(); got != 3 {
		t.Fatalf("UndoCount = %d, want 3", got)
	}

	// Only the three newest entries are reachable.
	for i := 0; i < 3; i++ {
		if err := s.Undo(g); err != nil {
			t.Fatalf("Undo %d: %v", i, err)
		}
	}
	if err := s.Undo(g); !errors.Is(err, errors.ErrNothingToUndo) {
		t.Fatalf("Undo past capacity error = %v, want ErrNothingToUndo", err)
	}
	if g.Xmax != 3 {
		t.Errorf("xmax = %g, want 3 (two trimmed entries stay applied)", g.Xmax)
	}
}

func TestFailedRevertKeepsPosition(t *testing.T) {
	g := newDoc(t)
	s := NewStack(0)

	bad := &shiftCmd{delta: 1}
	apply(t, s, g, bad)
	bad.fail = true

	if err := s.Undo(g); !errors.Is(err, errors.ErrInvalidRange) {
		t.Fatalf("Undo error = %v", err)
	}
	if !s.CanUndo() {
		t.Errorf("failed undo consumed the entry")
	}
}

func TestClear(t *testing.T) {
	g := newDoc(t)
	s := NewStack(0)
	apply(t, s, g, &shiftCmd{delta: 1})

	s.Clear()
	if s.CanUndo() || s.CanRedo() || s.UndoCount() != 0 || s.RedoCount() != 0 {
		t.Errorf("Clear left state behind: %+v", s)
	}
}
