// Package history provides the linear undo/redo stack for document edits.
//
// Entries are self-contained commands: each carries the data needed to apply
// and to revert itself against a document, so undo and redo are pure data
// replay and never re-run caller-supplied strategy functions. The stack is an
// index-addressed slice with a current position, so truncating redo state on
// a new edit is a length trim rather than pointer surgery.
package history

import (
	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// DefaultMaxEntries bounds history growth when no explicit cap is given.
const DefaultMaxEntries = 100

// Command is one reversible unit of document mutation.
type Command interface {
	// Tag identifies the operation kind, for display and debugging.
	Tag() string
	// Apply performs (or re-performs) the mutation.
	Apply(g *model.TextGrid) error
	// Revert restores the document to its state before Apply.
	Revert(g *model.TextGrid) error
}

// Stack is a linear undo/redo history owned by exactly one document.
// It provides no internal locking.
type Stack struct {
	entries []Command
	pos     int // entries[:pos] are applied; entries[pos:] are undone
	max     int
}

// NewStack creates a history stack holding at most max entries.
// A max of zero or less selects DefaultMaxEntries.
func NewStack(max int) *Stack {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Stack{max: max}
}

// Push records a command that has already been applied to the document.
// Any undone-but-not-redone entries are discarded; this is the only place
// history data is dropped.
func (s *Stack) Push(cmd Command) {
	s.entries = append(s.entries[:s.pos], cmd)
	s.pos = len(s.entries)
	if len(s.entries) > s.max {
		excess := len(s.entries) - s.max
		s.entries = s.entries[excess:]
		s.pos -= excess
	}
}

// Undo reverses the most recently applied command.
// Fails ErrNothingToUndo at the base of the stack.
func (s *Stack) Undo(g *model.TextGrid) error {
	if s.pos == 0 {
		return errors.ErrNothingToUndo
	}
	cmd := s.entries[s.pos-1]
	if err := cmd.Revert(g); err != nil {
		return errors.Wrapf(err, "undo %s", cmd.Tag())
	}
	s.pos--
	return nil
}

// Redo re-applies the most recently undone command.
// Fails ErrNothingToRedo if nothing was undone since the last new mutation.
func (s *Stack) Redo(g *model.TextGrid) error {
	if s.pos == len(s.entries) {
		return errors.ErrNothingToRedo
	}
	cmd := s.entries[s.pos]
	if err := cmd.Apply(g); err != nil {
		return errors.Wrapf(err, "redo %s", cmd.Tag())
	}
	s.pos++
	return nil
}

// CanUndo reports whether an undo is available.
func (s *Stack) CanUndo() bool { return s.pos > 0 }

// CanRedo reports whether a redo is available.
func (s *Stack) CanRedo() bool { return s.pos < len(s.entries) }

// UndoCount returns the number of applied entries.
func (s *Stack) UndoCount() int { return s.pos }

// RedoCount returns the number of undone entries awaiting redo.
func (s *Stack) RedoCount() int { return len(s.entries) - s.pos }

// Tags returns the tags of all recorded entries in order, for inspection.
func (s *Stack) Tags() []string {
	tags := make([]string, len(s.entries))
	for i, c := range s.entries {
		tags[i] = c.Tag()
	}
	return tags
}

// Clear drops all history.
func (s *Stack) Clear() {
	s.entries = nil
	s.pos = 0
}
