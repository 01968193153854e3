package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Errors
var (
	ErrBounds     = errors.New("pixel: out of canvas bounds")
	ErrBufferSize = errors.New("pixel: buffer too small")
	ErrRotation   = errors.New("pixel: unsupported rotation")
	ErrDepth      = errors.New("pixel: unsupported color depth")
)

// Rotation defines pixel rotation.
type Rotation uint8

// Supported rotations.
const (
	NoRotation Rotation = iota
	Rotate90            // Rotate 90° clock wise
	Rotate180           // Rotate 180°
	Rotate270           // Rotate 270° clock wise
)

func (r Rotation) String() string {
	switch r {
	case NoRotation:
		return "0°"
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return fmt.Sprintf("Rotation(%d)", uint8(r))
	}
}

// ParseRotation parses a rotation in degrees or one of the named aliases.
func ParseRotation(s string) (Rotation, error) {
	switch s {
	case "", "no", "0":
		return NoRotation, nil
	case "90", "right", "cw":
		return Rotate90, nil
	case "180", "flip":
		return Rotate180, nil
	case "270", "left", "ccw":
		return Rotate270, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrRotation, s)
	}
}

// Buffer holds the pixel values and is a container that is used by most image formats in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

// Bitmap is a 1-bit per pixel image, row-major with the leftmost pixel in the most
// significant bit. Rows are padded to whole bytes.
type Bitmap struct {
	Buffer
}

// BitmapStride is the number of bytes per row of a w pixels wide bitmap.
func BitmapStride(w int) int {
	return (w + 7) / 8
}

// NewBitmap allocates a cleared bitmap.
func NewBitmap(w, h int) *Bitmap {
	stride := BitmapStride(w)
	return &Bitmap{
		Buffer: Buffer{
			Rect:   image.Rect(0, 0, w, h),
			Pix:    make([]byte, stride*h),
			Stride: stride,
		},
	}
}

// BitmapFrom wraps existing bitmap data without copying it.
func BitmapFrom(data []byte, w, h int) (*Bitmap, error) {
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("pixel: invalid bitmap size %dx%d", w, h)
	}
	stride := BitmapStride(w)
	if need := stride * h; len(data) < need {
		return nil, fmt.Errorf("%w: bitmap %dx%d needs %d bytes, got %d", ErrBufferSize, w, h, need, len(data))
	}
	return &Bitmap{
		Buffer: Buffer{
			Rect:   image.Rect(0, 0, w, h),
			Pix:    data,
			Stride: stride,
		},
	}, nil
}

func (p *Bitmap) ColorModel() color.Model {
	return MonoModel
}

// Bit reports if the pixel at (x, y) is set.
func (p *Bitmap) Bit(x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return false
	}
	return p.Pix[y*p.Stride+x/8]&(0x80>>uint(x%8)) != 0
}

func (p *Bitmap) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	return Mono{On: p.Bit(x, y)}
}

func (p *Bitmap) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	index := y*p.Stride + x/8
	if monoModel(c).(Mono).On {
		p.Pix[index] |= 0x80 >> uint(x%8)
	} else {
		p.Pix[index] &^= 0x80 >> uint(x%8)
	}
}

func (p *Bitmap) Fill(c color.Color) {
	var value byte
	if monoModel(c).(Mono).On {
		value = 0xff
	}
	for i := range p.Pix {
		p.Pix[i] = value
	}
}
