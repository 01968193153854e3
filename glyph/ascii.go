package glyph

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// ASCIISizes are the sizes of the built-in ASCII tables.
var ASCIISizes = []int{8, 12, 16, 24, 48}

// Printable ASCII range covered by the built-in tables.
const (
	firstASCII = ' '
	lastASCII  = '~'
)

var (
	asciiOnce   sync.Once
	asciiTables map[int]*Table
	asciiErr    error
)

// ASCII returns the built-in ASCII table for size.
//
// Glyphs are size/2 pixels wide and size pixels high, packed in column bands and drawn
// with their background. Size 8 is the exception with 6 x 8 pixel glyphs.
func ASCII(size int) (*Table, error) {
	asciiOnce.Do(buildASCII)
	if asciiErr != nil {
		return nil, asciiErr
	}
	t, ok := asciiTables[size]
	if !ok {
		return nil, fmt.Errorf("%w: ascii %d", ErrSize, size)
	}
	return t, nil
}

func buildASCII() {
	tables := make(map[int]*Table, len(ASCIISizes))
	tables[8] = rasterBitmapFont(&proggy.TinySZ8pt7b, 6, 8, 6)

	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		asciiErr = fmt.Errorf("glyph: parse font: %w", err)
		return
	}
	for _, size := range ASCIISizes {
		if size == 8 {
			continue
		}
		tables[size] = rasterTrueType(f, size)
	}
	asciiTables = tables
}

// cell is a glyph sized scratch image that tinyfont and font.Drawer can draw on.
type cell struct {
	*image.Alpha
}

func newCell(w, h int) cell {
	return cell{image.NewAlpha(image.Rect(0, 0, w, h))}
}

func (c cell) reset() {
	for i := range c.Pix {
		c.Pix[i] = 0
	}
}

func (c cell) on(x, y int) bool {
	return c.AlphaAt(x, y).A >= 0x80
}

func (c cell) Size() (x, y int16) {
	size := c.Rect.Size()
	return int16(size.X), int16(size.Y)
}

func (c cell) SetPixel(x, y int16, _ color.RGBA) {
	c.SetAlpha(int(x), int(y), color.Alpha{A: 0xff})
}

func (c cell) Display() error {
	return nil
}

// rasterBitmapFont renders a tinyfont font into w x h cells with the baseline at row
// baseline.
func rasterBitmapFont(f tinyfont.Fonter, w, h int, baseline int16) *Table {
	var (
		c = newCell(w, h)
		t = &Table{
			Size:    h,
			Advance: w,
			Packing: ColumnLSB,
			Opaque:  true,
		}
	)
	for r := rune(firstASCII); r <= lastASCII; r++ {
		c.reset()
		tinyfont.DrawChar(c, f, 0, baseline, r, color.RGBA{A: 0xff})
		t.Glyphs = append(t.Glyphs, Glyph{
			Key:    string(r),
			Width:  w,
			Height: h,
			Data:   ColumnLSB.Pack(w, h, c.on),
		})
	}
	return t
}

// rasterTrueType renders f into size/2 x size cells. Go Mono advances 0.6 em, so an
// em of 5/6 size fills the cell width.
func rasterTrueType(f *truetype.Font, size int) *Table {
	var (
		w, h = size / 2, size
		face = truetype.NewFace(f, &truetype.Options{
			Size:    float64(size) * 5 / 6,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		metrics = face.Metrics()
		ascent  = metrics.Ascent.Ceil()
		top     = (h - ascent - metrics.Descent.Ceil()) / 2
		c       = newCell(w, h)
		d       = &font.Drawer{Dst: c.Alpha, Src: image.Opaque, Face: face}
		t       = &Table{
			Size:    size,
			Advance: w,
			Packing: ColumnLSB,
			Opaque:  true,
		}
	)
	defer face.Close()

	if top < 0 {
		top = 0
	}
	for r := rune(firstASCII); r <= lastASCII; r++ {
		c.reset()
		d.Dot = fixed.P(0, top+ascent)
		d.DrawString(string(r))
		t.Glyphs = append(t.Glyphs, Glyph{
			Key:    string(r),
			Width:  w,
			Height: h,
			Data:   ColumnLSB.Pack(w, h, c.on),
		})
	}
	return t
}
