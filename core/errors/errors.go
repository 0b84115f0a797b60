// Package errors provides standardized error types and helpers for the textgrid codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the structural and format failure modes. Callers match
// these with errors.Is; the typed errors below unwrap to them.
var (
	// ErrInvalidRange indicates a time range whose start is not before its end.
	ErrInvalidRange = errors.New("invalid time range")
	// ErrOutOfBounds indicates a child range outside its parent range.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrUnorderedEntries indicates entries not strictly increasing in time.
	ErrUnorderedEntries = errors.New("unordered entries")
	// ErrGapOrOverlap indicates adjacent intervals that do not share a boundary.
	ErrGapOrOverlap = errors.New("gap or overlap between intervals")
	// ErrDuplicateTime indicates two points colliding within tolerance.
	ErrDuplicateTime = errors.New("duplicate point time")
	// ErrTierNotFound indicates a tier lookup by name that matched nothing.
	ErrTierNotFound = errors.New("tier not found")
	// ErrDuplicateTierName indicates a tier name already present in the document.
	ErrDuplicateTierName = errors.New("duplicate tier name")
	// ErrIndexOutOfRange indicates an entry index outside its collection.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidSplitPoint indicates a split time not strictly inside an interval.
	ErrInvalidSplitPoint = errors.New("invalid split point")
	// ErrUnrecognizedFormat indicates bytes matching no known serialization.
	ErrUnrecognizedFormat = errors.New("unrecognized format")
	// ErrParse indicates malformed input in a recognized format.
	ErrParse = errors.New("parse error")
	// ErrTruncatedData indicates a binary stream ending mid-record.
	ErrTruncatedData = errors.New("truncated data")
	// ErrInvalidTierType indicates an unknown tier class tag.
	ErrInvalidTierType = errors.New("invalid tier type")
	// ErrNothingToUndo indicates an undo with an empty history.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo indicates a redo with no undone entries.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// ParseError reports malformed input with position context.
type ParseError struct {
	Format  string // Format being parsed (e.g., "long text", "binary")
	Line    int    // 1-based line number for text formats, 0 if not applicable
	Offset  int64  // Byte offset for binary formats, -1 if not applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s: line %d: %s", e.Format, e.Line, e.Message)
	case e.Offset >= 0:
		return fmt.Sprintf("%s: offset %d: %s", e.Format, e.Offset, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Format, e.Message)
	}
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrParse
}

// TierNotFoundError reports a failed tier lookup with the name that was asked for.
type TierNotFoundError struct {
	Name string
}

func (e *TierNotFoundError) Error() string {
	return fmt.Sprintf("tier not found: %q", e.Name)
}

func (e *TierNotFoundError) Unwrap() error { return ErrTierNotFound }

// ValidationError reports a structural invariant violation with context.
type ValidationError struct {
	Subject string // What was being validated (e.g., a tier name, "document")
	Message string // Human-readable details
	Err     error  // Sentinel identifying the violated invariant
}

func (e *ValidationError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Subject, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidRange
}

// Helper constructors for the common cases.

// NewParse creates a ParseError for a text format at the given line.
func NewParse(format string, line int, message string) *ParseError {
	return &ParseError{Format: format, Line: line, Offset: -1, Message: message}
}

// NewParseAt creates a ParseError for a binary format at the given offset.
func NewParseAt(format string, offset int64, message string, err error) *ParseError {
	return &ParseError{Format: format, Offset: offset, Message: message, Err: err}
}

// NewTierNotFound creates a TierNotFoundError.
func NewTierNotFound(name string) *TierNotFoundError {
	return &TierNotFoundError{Name: name}
}

// NewValidation creates a ValidationError wrapping the violated sentinel.
func NewValidation(subject, message string, sentinel error) *ValidationError {
	return &ValidationError{Subject: subject, Message: message, Err: sentinel}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
