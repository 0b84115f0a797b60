package codec

import (
	"math"
	"strings"

	"github.com/spokenlab/textgrid/core/encoding"
	"github.com/spokenlab/textgrid/core/errors"
)

// lineCursor walks the lines of a text-format file, tracking position for
// error reporting.
type lineCursor struct {
	format string
	lines  []string
	pos    int // index of the next unread line
}

func newLineCursor(format string, data []byte) *lineCursor {
	return &lineCursor{format: format, lines: splitLines(data)}
}

// lineno is the 1-based number of the most recently read line.
func (c *lineCursor) lineno() int { return c.pos }

func (c *lineCursor) errf(msg string) error {
	return errors.NewParse(c.format, c.lineno(), msg)
}

// next returns the next non-blank line. Praat tolerates blank lines between
// fields in its own output, so both text decoders skip them.
func (c *lineCursor) next() (string, error) {
	for c.pos < len(c.lines) {
		line := c.lines[c.pos]
		c.pos++
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
	}
	return "", errors.NewParse(c.format, len(c.lines), "unexpected end of file")
}

// header consumes and verifies the two-line file header shared by both text
// formats.
func (c *lineCursor) header() error {
	first, err := c.next()
	if err != nil {
		return err
	}
	if strings.TrimSpace(first) != textMagic {
		return errors.Wrap(errors.ErrUnrecognizedFormat, "missing ooTextFile header")
	}
	second, err := c.next()
	if err != nil {
		return err
	}
	if strings.TrimSpace(second) != textClass {
		return errors.Wrap(errors.ErrUnrecognizedFormat, "missing TextGrid object class")
	}
	return nil
}

// trailing fails if any non-blank content remains after the document body.
func (c *lineCursor) trailing() error {
	for _, line := range c.lines[c.pos:] {
		if strings.TrimSpace(line) != "" {
			return errors.NewParse(c.format, c.pos+1,
				"trailing content after document (entry count mismatch?)")
		}
		c.pos++
	}
	return nil
}

// labeled splits a `name = value` line, tolerating surrounding whitespace.
func (c *lineCursor) labeled(name string) (string, error) {
	line, err := c.next()
	if err != nil {
		return "", err
	}
	left, right, found := strings.Cut(line, "=")
	if !found || strings.TrimSpace(left) != name {
		return "", c.errf("expected \"" + name + " =\", got " + strings.TrimSpace(line))
	}
	return strings.TrimSpace(right), nil
}

// numberField reads a labeled floating-point value.
func (c *lineCursor) numberField(name string) (float64, error) {
	raw, err := c.labeled(name)
	if err != nil {
		return 0, err
	}
	v, err := encoding.ParseTime(raw)
	if err != nil {
		return 0, c.errf("malformed number " + raw + " for " + name)
	}
	return v, nil
}

// countField reads a labeled non-negative integer count.
func (c *lineCursor) countField(name string) (int, error) {
	v, err := c.numberField(name)
	if err != nil {
		return 0, err
	}
	n := int(v)
	if v < 0 || float64(n) != math.Trunc(v) || v != math.Trunc(v) {
		return 0, c.errf(name + " must be a non-negative integer")
	}
	return n, nil
}

// quotedField reads a labeled quoted string, honoring doubled-quote escapes.
func (c *lineCursor) quotedField(name string) (string, error) {
	raw, err := c.labeled(name)
	if err != nil {
		return "", err
	}
	value, consumed, ok := encoding.ParseQuoted(raw)
	if !ok || consumed != len(raw) {
		return "", c.errf("unterminated or malformed quoted string for " + name)
	}
	return value, nil
}

// bareNumber reads a bare floating-point value (short format).
func (c *lineCursor) bareNumber() (float64, error) {
	line, err := c.next()
	if err != nil {
		return 0, err
	}
	v, err := encoding.ParseTime(line)
	if err != nil {
		return 0, c.errf("malformed number " + strings.TrimSpace(line))
	}
	return v, nil
}

// bareCount reads a bare non-negative integer count (short format).
func (c *lineCursor) bareCount() (int, error) {
	v, err := c.bareNumber()
	if err != nil {
		return 0, err
	}
	n := int(v)
	if v < 0 || v != math.Trunc(v) {
		return 0, c.errf("expected a non-negative integer count")
	}
	return n, nil
}

// bareQuoted reads a bare quoted string (short format).
func (c *lineCursor) bareQuoted() (string, error) {
	line, err := c.next()
	if err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(line)
	value, consumed, ok := encoding.ParseQuoted(trimmed)
	if !ok || consumed != len(trimmed) {
		return "", c.errf("unterminated or malformed quoted string")
	}
	return value, nil
}

// block consumes a structural marker line such as `item [1]:` or
// `intervals [2]:`, verifying the expected keyword.
func (c *lineCursor) block(keyword string) error {
	line, err := c.next()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(strings.TrimSpace(line), keyword) {
		return c.errf("expected " + keyword + " block, got " + strings.TrimSpace(line))
	}
	return nil
}
