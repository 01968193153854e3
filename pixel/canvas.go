package pixel

import (
	"fmt"
	"image"
	"image/color"

	"tinygo.org/x/drivers"
)

// Canvas is a packed 1 or 2 bits per pixel buffer in panel memory order.
//
// Pixels are addressed in logical coordinates, which are mapped onto memory
// coordinates according to the canvas rotation:
//
//	0°:   X = widthMemory - y - 1, Y = x
//	90°:  X = widthMemory - x - 1, Y = heightMemory - y - 1
//	180°: X = y,                   Y = heightMemory - x - 1
//	270°: X = x,                   Y = y
//
// Within a byte the pixel with the lowest X occupies the most significant bits.
type Canvas struct {
	Buffer
	widthMemory  int
	heightMemory int
	width        int
	height       int
	rotation     Rotation
	depth        int
	palette      color.Palette
}

// CanvasSize returns the number of bytes needed to back a width x height canvas.
func CanvasSize(width, height, depth int) int {
	return (width*depth + 7) / 8 * height
}

// NewCanvas binds a canvas to buf and clears it to background.
func NewCanvas(buf []byte, width, height int, rotation Rotation, depth int, background uint8) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pixel: invalid canvas size %dx%d", width, height)
	}
	if rotation > Rotate270 {
		return nil, fmt.Errorf("%w: %s", ErrRotation, rotation)
	}

	var palette color.Palette
	switch depth {
	case 1:
		palette = MonoPalette
	case 2:
		palette = GrayPalette
	default:
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrDepth, depth)
	}

	stride := (width*depth + 7) / 8
	if need := stride * height; len(buf) < need {
		return nil, fmt.Errorf("%w: %dx%d at %d bpp needs %d bytes, got %d", ErrBufferSize, width, height, depth, need, len(buf))
	}

	p := &Canvas{
		Buffer: Buffer{
			Pix:    buf[:stride*height],
			Stride: stride,
		},
		widthMemory:  width,
		heightMemory: height,
		rotation:     rotation,
		depth:        depth,
		palette:      palette,
	}
	switch rotation {
	case NoRotation, Rotate180:
		p.width, p.height = width, height
		p.Rect = image.Rect(0, 0, height, width)
	default:
		p.width, p.height = height, width
		p.Rect = image.Rect(0, 0, width, height)
	}
	p.Clear(background)
	return p, nil
}

// SetPalette replaces the palette used to convert real colors into panel codes.
// The palette must not have more entries than the depth can encode.
func (p *Canvas) SetPalette(palette color.Palette) error {
	if len(palette) == 0 || len(palette) > 1<<p.depth {
		return fmt.Errorf("pixel: palette with %d entries does not fit %d bpp", len(palette), p.depth)
	}
	p.palette = palette
	return nil
}

// Palette in use.
func (p *Canvas) Palette() color.Palette {
	return p.palette
}

// Depth is the number of bits per pixel.
func (p *Canvas) Depth() int {
	return p.depth
}

// Rotation of the canvas.
func (p *Canvas) Rotation() Rotation {
	return p.rotation
}

// MemorySize is the canvas size in panel memory coordinates.
func (p *Canvas) MemorySize() image.Point {
	return image.Pt(p.widthMemory, p.heightMemory)
}

// Logical is the nominal logical size: the memory size for 0° and 180°, swapped for
// 90° and 270°. The addressable area in logical coordinates is reported by Bounds.
func (p *Canvas) Logical() image.Point {
	return image.Pt(p.width, p.height)
}

// WidthByte is the number of bytes per memory row.
func (p *Canvas) WidthByte() int {
	return p.Stride
}

// Clear fills every pixel with the color code c.
func (p *Canvas) Clear(c uint8) {
	var value byte
	switch p.depth {
	case 1:
		if c&1 != 0 {
			value = 0xff
		}
	case 2:
		value = c & 3
		value |= value << 2
		value |= value << 4
	}
	for i := range p.Pix {
		p.Pix[i] = value
	}
}

func (p *Canvas) memory(x, y int) (mx, my int, err error) {
	switch p.rotation {
	case NoRotation:
		mx, my = p.widthMemory-y-1, x
	case Rotate90:
		mx, my = p.widthMemory-x-1, p.heightMemory-y-1
	case Rotate180:
		mx, my = y, p.heightMemory-x-1
	default:
		mx, my = x, y
	}
	if mx < 0 || mx >= p.widthMemory || my < 0 || my >= p.heightMemory {
		return 0, 0, fmt.Errorf("%w: (%d,%d) maps to memory (%d,%d)", ErrBounds, x, y, mx, my)
	}
	return
}

func (p *Canvas) offset(mx, my int) (index int, shift uint) {
	bit := mx * p.depth
	return bit/8 + my*p.Stride, uint(8 - p.depth - bit%8)
}

// SetPixel stores color code c at logical (x, y).
func (p *Canvas) SetPixel(x, y int, c uint8) error {
	mx, my, err := p.memory(x, y)
	if err != nil {
		return err
	}
	index, shift := p.offset(mx, my)
	mask := byte(1)<<uint(p.depth) - 1
	p.Pix[index] = p.Pix[index]&^(mask<<shift) | (c&mask)<<shift
	return nil
}

// GetPixel returns the color code at logical (x, y).
func (p *Canvas) GetPixel(x, y int) (uint8, error) {
	mx, my, err := p.memory(x, y)
	if err != nil {
		return 0, err
	}
	index, shift := p.offset(mx, my)
	mask := byte(1)<<uint(p.depth) - 1
	return (p.Pix[index] >> shift) & mask, nil
}

// ColorModel converts colors to panel codes using the canvas palette.
func (p *Canvas) ColorModel() color.Model {
	return color.ModelFunc(p.convert)
}

// convert maps c to a panel code. Index values are taken as codes; every other color,
// Mono included, goes through the palette, so On is the palette's white and Off its
// black at any depth.
func (p *Canvas) convert(c color.Color) color.Color {
	if c, ok := c.(Index); ok {
		return c & Index(1<<uint(p.depth)-1)
	}
	return Index(p.palette.Index(c))
}

func (p *Canvas) At(x, y int) color.Color {
	v, err := p.GetPixel(x, y)
	if err != nil {
		return color.Transparent
	}
	return Index(v)
}

// Set the pixel at logical (x, y); pixels outside of the canvas are dropped.
func (p *Canvas) Set(x, y int, c color.Color) {
	_ = p.SetPixel(x, y, uint8(p.convert(c).(Index)))
}

// Fill the canvas with a single color.
func (p *Canvas) Fill(c color.Color) {
	p.Clear(uint8(p.convert(c).(Index)))
}

// Displayer returns a view of the canvas for tinygo display code such as tinyfont.
func (p *Canvas) Displayer() drivers.Displayer {
	return displayer{p}
}

type displayer struct {
	p *Canvas
}

func (d displayer) Size() (x, y int16) {
	size := d.p.Rect.Size()
	return int16(size.X), int16(size.Y)
}

func (d displayer) SetPixel(x, y int16, c color.RGBA) {
	d.p.Set(int(x), int(y), c)
}

func (d displayer) Display() error {
	return nil
}
