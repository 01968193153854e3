package pixel

import "image/color"

// Models for the standard color types.
var (
	MonoModel  color.Model = color.ModelFunc(monoModel)
	IndexModel color.Model = color.ModelFunc(indexModel)
)

var (
	Off = Mono{false}
	On  = Mono{true}
)

// Mono represents a 1-bit monochrome color.
type Mono struct {
	On bool
}

func (c Mono) RGBA() (r, g, b, a uint32) {
	if c.On {
		return 0xffff, 0xffff, 0xffff, 0xffff
	}
	return 0, 0, 0, 0xffff
}

func monoModel(c color.Color) color.Color {
	switch c := c.(type) {
	case Mono:
		return c
	case Index:
		return Mono{On: c&1 != 0}
	}
	r, g, b, _ := c.RGBA()

	// These coefficients (the fractions 0.299, 0.587 and 0.114) are the same
	// as those given by the JFIF specification and used by func RGBToYCbCr in
	// ycbcr.go.
	//
	// Note that 19595 + 38470 + 7471 equals 65536.
	//
	// The 31 is 16 + 15. The 16 is the same as used in RGBToYCbCr. The 15 is
	// because the return value is 1 bit color, not 16 bit color.
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 31

	return Mono{On: y != 0}
}

// Index is a raw panel color code (up to 2 bits) as stored in a canvas.
//
// What a code looks like on glass is panel defined; RGBA reports a plain gray ramp
// with 0 as black.
type Index uint8

func (c Index) RGBA() (r, g, b, a uint32) {
	y := uint32(c&3) * 0x5555
	return y, y, y, 0xffff
}

func indexModel(c color.Color) color.Color {
	switch c := c.(type) {
	case Index:
		return c & 3
	case Mono:
		if c.On {
			return Index(1)
		}
		return Index(0)
	}
	r, g, b, _ := c.RGBA()
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 30
	return Index(y & 3)
}

// Panel color codes.
const (
	// 1-bit panels: a cleared bit is black, a set bit is white.
	MonoBlack Index = 0
	MonoWhite Index = 1

	// 4-color panels.
	Black  Index = 0
	White  Index = 1
	Yellow Index = 2
	Red    Index = 3

	// 4-gray panels, ordered by darkness.
	GrayWhite Index = 0
	GrayLight Index = 1
	GrayDark  Index = 2
	GrayBlack Index = 3
)

// Palettes map real colors to panel codes; the position in the palette is the code.
var (
	MonoPalette = color.Palette{
		color.Gray{Y: 0x00},
		color.Gray{Y: 0xff},
	}
	Color4Palette = color.Palette{
		color.RGBA{A: 0xff},
		color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		color.RGBA{R: 0xff, G: 0xd7, A: 0xff},
		color.RGBA{R: 0xe0, A: 0xff},
	}
	GrayPalette = color.Palette{
		color.Gray{Y: 0xff},
		color.Gray{Y: 0xaa},
		color.Gray{Y: 0x55},
		color.Gray{Y: 0x00},
	}
)
