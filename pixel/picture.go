package pixel

import (
	"fmt"
	"image"
	"image/color"
)

// picture4Codes maps stored picture values to panel codes.
var picture4Codes = [4]Index{White, Yellow, Red, Black}

// Picture4 is a 4-color picture as produced by common e-paper image converters.
//
// Pixels are stored column by column, four vertically adjacent pixels per byte with
// the top one in the two most significant bits. Stored values are 0 white, 1 yellow,
// 2 red and 3 black. Columns are padded to whole bytes.
type Picture4 struct {
	Rect image.Rectangle
	Pix  []byte

	// ColumnStride is the number of bytes per column.
	ColumnStride int
}

// Picture4Size is the number of bytes of a w x h picture.
func Picture4Size(w, h int) int {
	return w * ((h + 3) / 4)
}

// NewPicture4 wraps picture data without copying it.
func NewPicture4(data []byte, w, h int) (*Picture4, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pixel: invalid picture size %dx%d", w, h)
	}
	if need := Picture4Size(w, h); len(data) < need {
		return nil, fmt.Errorf("%w: picture %dx%d needs %d bytes, got %d", ErrBufferSize, w, h, need, len(data))
	}
	return &Picture4{
		Rect:         image.Rect(0, 0, w, h),
		Pix:          data,
		ColumnStride: (h + 3) / 4,
	}, nil
}

func (p *Picture4) Bounds() image.Rectangle {
	return p.Rect
}

// ColorModel of a picture is the 4-color palette.
func (p *Picture4) ColorModel() color.Model {
	return Color4Palette
}

// Code returns the panel code at (x, y).
func (p *Picture4) Code(x, y int) Index {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return White
	}
	var (
		v     = p.Pix[x*p.ColumnStride+y/4]
		shift = uint(6 - 2*(y%4))
	)
	return picture4Codes[(v>>shift)&3]
}

func (p *Picture4) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	return Color4Palette[p.Code(x, y)]
}
