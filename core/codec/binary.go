package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/spokenlab/textgrid/core/errors"
	"github.com/spokenlab/textgrid/core/model"
)

// Binary implements the packed little-endian format: the ooBinaryFile magic,
// a length-prefixed object class, then 64-bit float times, 32-bit entry
// counts and 16-bit length-prefixed UTF-8 strings.
type Binary struct{}

func (Binary) Name() string { return "binary" }

func (Binary) Decode(r io.Reader) (*model.TextGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	c := &byteCursor{data: data}

	magic, err := c.bytes(len(binaryMagic))
	if err != nil || string(magic) != binaryMagic {
		return nil, errors.Wrap(errors.ErrUnrecognizedFormat, "missing ooBinaryFile header")
	}
	class, err := c.str()
	if err != nil {
		return nil, err
	}
	if class != documentType {
		return nil, errors.NewParseAt("binary", int64(c.pos),
			fmt.Sprintf("object class %q, want %q", class, documentType), errors.ErrParse)
	}

	xmin, err := c.f64()
	if err != nil {
		return nil, err
	}
	xmax, err := c.f64()
	if err != nil {
		return nil, err
	}
	size, err := c.u32()
	if err != nil {
		return nil, err
	}

	g, err := model.New(xmin, xmax)
	if err != nil {
		return nil, errors.Wrap(err, "binary: document range")
	}
	for i := uint32(0); i < size; i++ {
		t, err := decodeBinaryTier(c)
		if err != nil {
			return nil, err
		}
		g.Tiers = append(g.Tiers, t)
	}
	if c.pos != len(c.data) {
		return nil, errors.NewParseAt("binary", int64(c.pos),
			fmt.Sprintf("%d trailing bytes after document (tier count mismatch?)", len(c.data)-c.pos),
			errors.ErrParse)
	}
	return finish(g, "binary")
}

func decodeBinaryTier(c *byteCursor) (*model.Tier, error) {
	class, err := c.str()
	if err != nil {
		return nil, err
	}
	tierType, err := model.TierTypeFromClass(class)
	if err != nil {
		return nil, errors.NewParseAt("binary", int64(c.pos),
			fmt.Sprintf("unknown tier class %q", class), errors.ErrInvalidTierType)
	}
	name, err := c.str()
	if err != nil {
		return nil, err
	}
	xmin, err := c.f64()
	if err != nil {
		return nil, err
	}
	xmax, err := c.f64()
	if err != nil {
		return nil, err
	}
	count, err := c.u32()
	if err != nil {
		return nil, err
	}

	t := &model.Tier{Name: name, Type: tierType, Xmin: xmin, Xmax: xmax}
	switch tierType {
	case model.IntervalTier:
		for j := uint32(0); j < count; j++ {
			ivMin, err := c.f64()
			if err != nil {
				return nil, err
			}
			ivMax, err := c.f64()
			if err != nil {
				return nil, err
			}
			text, err := c.str()
			if err != nil {
				return nil, err
			}
			t.Intervals = append(t.Intervals, model.Interval{Xmin: ivMin, Xmax: ivMax, Text: text})
		}
	case model.PointTier:
		for j := uint32(0); j < count; j++ {
			time, err := c.f64()
			if err != nil {
				return nil, err
			}
			mark, err := c.str()
			if err != nil {
				return nil, err
			}
			t.Points = append(t.Points, model.Point{Time: time, Mark: mark})
		}
	}
	return t, nil
}

func (Binary) Encode(w io.Writer, g *model.TextGrid) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(binaryMagic)
	if err := writeStr(bw, documentType); err != nil {
		return err
	}
	writeF64(bw, g.Xmin)
	writeF64(bw, g.Xmax)
	writeU32(bw, uint32(len(g.Tiers)))

	for _, t := range g.Tiers {
		if err := writeStr(bw, t.Type.Class()); err != nil {
			return err
		}
		if err := writeStr(bw, t.Name); err != nil {
			return errors.Wrap(err, "tier name")
		}
		writeF64(bw, t.Xmin)
		writeF64(bw, t.Xmax)
		switch t.Type {
		case model.IntervalTier:
			writeU32(bw, uint32(len(t.Intervals)))
			for _, iv := range t.Intervals {
				writeF64(bw, iv.Xmin)
				writeF64(bw, iv.Xmax)
				if err := writeStr(bw, iv.Text); err != nil {
					return errors.Wrapf(err, "tier %q interval [%g, %g]", t.Name, iv.Xmin, iv.Xmax)
				}
			}
		case model.PointTier:
			writeU32(bw, uint32(len(t.Points)))
			for _, p := range t.Points {
				writeF64(bw, p.Time)
				if err := writeStr(bw, p.Mark); err != nil {
					return errors.Wrapf(err, "tier %q point %g", t.Name, p.Time)
				}
			}
		}
	}
	return bw.Flush()
}

// byteCursor walks a binary buffer, tracking the offset for error reporting.
// Every short read fails ErrTruncatedData.
type byteCursor struct {
	data []byte
	pos  int
}

func (c *byteCursor) bytes(n int) ([]byte, error) {
	if c.pos+n > len(c.data) {
		return nil, errors.NewParseAt("binary", int64(c.pos),
			fmt.Sprintf("need %d bytes, %d remain", n, len(c.data)-c.pos),
			errors.ErrTruncatedData)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *byteCursor) u16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *byteCursor) u32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *byteCursor) f64() (float64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// str reads a u16 length prefix followed by that many bytes of UTF-8.
func (c *byteCursor) str() (string, error) {
	n, err := c.u16()
	if err != nil {
		return "", err
	}
	start := c.pos
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.NewParseAt("binary", int64(start),
			"string is not valid UTF-8", errors.ErrParse)
	}
	return string(b), nil
}

// writeStr writes a u16 length prefix followed by the string bytes. The
// 16-bit prefix caps strings at 65535 bytes; longer text cannot be
// represented in this format and must not be truncated.
func writeStr(w *bufio.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return errors.NewParseAt("binary", -1,
			fmt.Sprintf("string of %d bytes exceeds the 16-bit length limit", len(s)),
			errors.ErrParse)
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(len(s)))
	w.Write(buf[:])
	w.WriteString(s)
	return nil
}

func writeU32(w *bufio.Writer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.Write(buf[:])
}

func writeF64(w *bufio.Writer, v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	w.Write(buf[:])
}
