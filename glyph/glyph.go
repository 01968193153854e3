// Package glyph renders text from fixed size bitmap glyph tables.
//
// A [Table] holds glyphs of one size and one bit packing. Text is drawn by a [Face],
// which pairs a table for single byte (ASCII) keys with a table for multibyte keys.
// The built-in faces are returned by [Builtin]; callers may assemble their own.
package glyph

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/BeatGlow/epaper/draw"
	"github.com/BeatGlow/epaper/pixel"
)

// Errors
var (
	ErrDecode        = errors.New("glyph: invalid UTF-8 sequence")
	ErrGlyphNotFound = errors.New("glyph: glyph not found")
	ErrSize          = errors.New("glyph: no glyph table for size")
	ErrPlacement     = errors.New("glyph: placement refers to a missing glyph")
)

// Packing is the bit layout of glyph data.
type Packing uint8

// Supported packings.
const (
	// ColumnLSB stores bands of 8 rows; each byte is one column of a band with the top
	// row in bit 0. Bands follow each other, so a band is Width bytes long.
	ColumnLSB Packing = iota

	// RowLSB stores rows padded to whole bytes with the leftmost pixel in bit 0.
	RowLSB

	// RowMSB stores rows padded to whole bytes with the leftmost pixel in bit 7.
	RowMSB
)

func (p Packing) String() string {
	switch p {
	case ColumnLSB:
		return "column-lsb"
	case RowLSB:
		return "row-lsb"
	case RowMSB:
		return "row-msb"
	default:
		return fmt.Sprintf("Packing(%d)", uint8(p))
	}
}

// Size is the number of data bytes of a w x h glyph.
func (p Packing) Size(w, h int) int {
	if p == ColumnLSB {
		return (h + 7) / 8 * w
	}
	return (w + 7) / 8 * h
}

func (p Packing) index(w, x, y int) (int, byte) {
	switch p {
	case ColumnLSB:
		return (y/8)*w + x, 1 << uint(y%8)
	case RowLSB:
		return y*((w+7)/8) + x/8, 1 << uint(x%8)
	default:
		return y*((w+7)/8) + x/8, 0x80 >> uint(x%8)
	}
}

// Bit reports if pixel (x, y) of a w pixels wide glyph is set. Bits past the end of
// data read as cleared.
func (p Packing) Bit(data []byte, w, x, y int) bool {
	i, mask := p.index(w, x, y)
	if i >= len(data) {
		return false
	}
	return data[i]&mask != 0
}

// Pack builds glyph data from a pixel predicate.
func (p Packing) Pack(w, h int, on func(x, y int) bool) []byte {
	data := make([]byte, p.Size(w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if on(x, y) {
				i, mask := p.index(w, x, y)
				data[i] |= mask
			}
		}
	}
	return data
}

// Glyph is one character bitmap, keyed by its UTF-8 encoding.
type Glyph struct {
	Key    string
	Width  int
	Height int
	Data   []byte
}

// Placement puts a glyph of a dynamic glyph table at (X, Y).
type Placement struct {
	Index int
	X, Y  int
}

// Table is an immutable set of equally sized glyphs.
type Table struct {
	Size    int
	Advance int
	Packing Packing

	// Opaque tables plot the background color for cleared bits.
	Opaque bool

	Glyphs []Glyph
}

// Lookup scans the table for key; the first match wins.
func (t *Table) Lookup(key string) (*Glyph, bool) {
	for i := range t.Glyphs {
		if t.Glyphs[i].Key == key {
			return &t.Glyphs[i], true
		}
	}
	return nil, false
}

// Draw plots g with its top left corner at (x, y).
func (t *Table) Draw(dst draw.Image, x, y int, g *Glyph, fg, bg color.Color) {
	for gy := 0; gy < g.Height; gy++ {
		for gx := 0; gx < g.Width; gx++ {
			if t.Packing.Bit(g.Data, g.Width, gx, gy) {
				dst.Set(x+gx, y+gy, fg)
			} else if t.Opaque {
				dst.Set(x+gx, y+gy, bg)
			}
		}
	}
}

// Face draws strings from a pair of tables.
type Face struct {
	// Single holds glyphs with one byte keys.
	Single *Table

	// Wide holds glyphs with multibyte keys.
	Wide *Table
}

// Builtin returns the built-in face for size. Sizes 8 and 48 only cover ASCII, size
// 32 only covers CJK.
func Builtin(size int) (Face, error) {
	var f Face
	if t, err := ASCII(size); err == nil {
		f.Single = t
	} else if !errors.Is(err, ErrSize) {
		return f, err
	}
	if t, err := CJK(size); err == nil {
		f.Wide = t
	} else if !errors.Is(err, ErrSize) {
		return f, err
	}
	if f.Single == nil && f.Wide == nil {
		return f, fmt.Errorf("%w: %d", ErrSize, size)
	}
	return f, nil
}

// sequenceLength decodes the length of a UTF-8 sequence from its lead byte, 0 for
// bytes that can not start a sequence.
func sequenceLength(b byte) int {
	switch {
	case b&0x80 == 0:
		return 1
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	default:
		return 0
	}
}

func (f Face) table(n int) *Table {
	if n == 1 {
		return f.Single
	}
	return f.Wide
}

// DrawText draws s with the top left corner of the first glyph at (x, y).
//
// Rendering stops at the first byte that does not start a UTF-8 sequence or the
// first character without a glyph; glyphs drawn before it stay on dst. A character
// whose byte class has no table in the face is missing a glyph too, the error then
// also matches ErrSize.
func (f Face) DrawText(dst draw.Image, x, y int, s string, fg, bg color.Color) error {
	for i := 0; i < len(s); {
		n := sequenceLength(s[i])
		if n == 0 {
			return fmt.Errorf("%w: lead byte %#02x at offset %d", ErrDecode, s[i], i)
		}
		if i+n > len(s) {
			return fmt.Errorf("%w: truncated sequence at offset %d", ErrDecode, i)
		}

		key := s[i : i+n]
		t := f.table(n)
		if t == nil {
			return fmt.Errorf("%w: %q (%w)", ErrGlyphNotFound, key, ErrSize)
		}
		g, ok := t.Lookup(key)
		if !ok {
			return fmt.Errorf("%w: %q at size %d", ErrGlyphNotFound, key, t.Size)
		}
		t.Draw(dst, x, y, g, fg, bg)

		x += t.Advance
		i += n
	}
	return nil
}

// DrawText draws s using the built-in face for size.
func DrawText(dst draw.Image, x, y int, s string, size int, fg, bg color.Color) error {
	f, err := Builtin(size)
	if err != nil {
		return err
	}
	return f.DrawText(dst, x, y, s, fg, bg)
}

// DrawDynamic blits glyphs supplied by the caller at the given placements.
//
// Dynamic glyph data is row-major with the leftmost pixel in the most significant bit
// and rows padded to whole bytes. Only set bits are plotted. Drawing stops at the first
// placement that refers to a missing or malformed glyph. The glyphs are not retained.
func DrawDynamic(dst draw.Image, glyphs []Glyph, placements []Placement, fg color.Color) error {
	for n, p := range placements {
		if p.Index < 0 || p.Index >= len(glyphs) {
			return fmt.Errorf("%w: placement %d has index %d of %d", ErrPlacement, n, p.Index, len(glyphs))
		}
		g := glyphs[p.Index]
		b, err := pixel.BitmapFrom(g.Data, g.Width, g.Height)
		if err != nil {
			return fmt.Errorf("%w: glyph %q: %v", ErrPlacement, g.Key, err)
		}
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				if b.Bit(x, y) {
					dst.Set(p.X+x, p.Y+y, fg)
				}
			}
		}
	}
	return nil
}
