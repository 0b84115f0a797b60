// Package codec maps between on-disk TextGrid representations and the
// in-memory model. The long text, short text, and binary codecs sit behind
// one small interface and share the model's validation logic, so a document
// decoded from any format satisfies the same invariants the editor
// maintains.
package codec

import (
	"bytes"
	"io"
	"strings"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
	"github.com/spokenlab/textgrid/core/validate"
)

// File header constants shared by all three serializations.
const (
	textMagic    = `File type = "ooTextFile"`
	textClass    = `Object class = "TextGrid"`
	binaryMagic  = "ooBinaryFile"
	documentType = "TextGrid"
)

// Format selects one of the three serializations.
type Format int

const (
	// FormatLong is the verbose labeled text format.
	FormatLong Format = iota
	// FormatShort is the positional text format.
	FormatShort
	// FormatBinary is the packed little-endian format.
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatLong:
		return "long"
	case FormatShort:
		return "short"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ParseFormat maps a format name ("long", "short", "binary") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "text", "longtext":
		return FormatLong, nil
	case "short", "shorttext":
		return FormatShort, nil
	case "binary", "bin":
		return FormatBinary, nil
	default:
		return 0, errors.Wrapf(errors.ErrUnrecognizedFormat, "format %q", s)
	}
}

// Codec is one serialization variant.
type Codec interface {
	// Name identifies the variant in error messages.
	Name() string
	// Decode parses a complete document from r and validates it.
	Decode(r io.Reader) (*model.TextGrid, error)
	// Encode writes g to w in this variant's grammar.
	Encode(w io.Writer, g *model.TextGrid) error
}

// ForFormat returns the codec implementing the given format.
func ForFormat(f Format) Codec {
	switch f {
	case FormatShort:
		return ShortText{}
	case FormatBinary:
		return Binary{}
	default:
		return LongText{}
	}
}

// Detect sniffs the serialization variant from the start of data.
// Fails ErrUnrecognizedFormat if no variant matches.
func Detect(data []byte) (Format, error) {
	if bytes.HasPrefix(data, []byte(binaryMagic)) {
		return FormatBinary, nil
	}
	lines := splitLines(data)
	if len(lines) >= 2 &&
		strings.TrimSpace(lines[0]) == textMagic &&
		strings.TrimSpace(lines[1]) == textClass {
		// Long format labels its fields; short format carries bare values.
		for _, line := range lines[2:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if strings.Contains(line, "xmin") && strings.Contains(line, "=") {
				return FormatLong, nil
			}
			return FormatShort, nil
		}
	}
	return 0, errors.ErrUnrecognizedFormat
}

// Decode sniffs the format of r's content and parses it.
func Decode(r io.Reader) (*model.TextGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	g, _, err := DecodeDetect(data)
	return g, err
}

// DecodeDetect sniffs and parses data, also reporting the detected format.
func DecodeDetect(data []byte) (*model.TextGrid, Format, error) {
	f, err := Detect(data)
	if err != nil {
		return nil, 0, err
	}
	g, err := ForFormat(f).Decode(bytes.NewReader(data))
	return g, f, err
}

// Encode writes g to w in the selected format.
func Encode(w io.Writer, g *model.TextGrid, f Format) error {
	return ForFormat(f).Encode(w, g)
}

// finish validates a freshly decoded document before handing it out. The
// codec never returns a document the editor would refuse to work on.
func finish(g *model.TextGrid, format string) (*model.TextGrid, error) {
	if err := validate.Document(g); err != nil {
		return nil, errors.Wrapf(err, "%s: decoded document invalid", format)
	}
	return g, nil
}

// splitLines splits on \n and strips trailing \r, tolerating both Unix and
// Windows line endings. A UTF-8 BOM on the first line is dropped.
func splitLines(data []byte) []string {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	raw := strings.Split(string(data), "\n")
	for i, line := range raw {
		raw[i] = strings.TrimSuffix(line, "\r")
	}
	return raw
}
