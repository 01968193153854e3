package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func TestNewCanvas(t *testing.T) {
	tests := []struct {
		Name     string
		Size     int
		Width    int
		Height   int
		Rotation Rotation
		Depth    int
		Err      error
	}{
		{"mono", 16 * 296, 128, 296, NoRotation, 1, nil},
		{"color4", 45 * 384, 180, 384, Rotate90, 2, nil},
		{"short", 10, 128, 296, NoRotation, 1, ErrBufferSize},
		{"depth", 1024, 8, 8, NoRotation, 4, ErrDepth},
		{"rotation", 1024, 8, 8, Rotation(4), 1, ErrRotation},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			p, err := NewCanvas(make([]byte, test.Size), test.Width, test.Height, test.Rotation, test.Depth, 0)
			if test.Err != nil {
				if !errors.Is(err, test.Err) {
					it.Fatalf("expected error %v, got %v", test.Err, err)
				}
				return
			}
			if err != nil {
				it.Fatal(err)
			}
			if v, want := p.WidthByte(), (test.Width*test.Depth+7)/8; v != want {
				it.Errorf("expected width byte %d, got %d", want, v)
			}
			if v, want := len(p.Pix), CanvasSize(test.Width, test.Height, test.Depth); v != want {
				it.Errorf("expected %d bytes of pixels, got %d", want, v)
			}
		})
	}
}

func TestCanvasLogical(t *testing.T) {
	tests := []struct {
		Rotation Rotation
		Logical  image.Point
		Bounds   image.Point
	}{
		{NoRotation, image.Pt(180, 384), image.Pt(384, 180)},
		{Rotate90, image.Pt(384, 180), image.Pt(180, 384)},
		{Rotate180, image.Pt(180, 384), image.Pt(384, 180)},
		{Rotate270, image.Pt(384, 180), image.Pt(180, 384)},
	}
	for _, test := range tests {
		t.Run(test.Rotation.String(), func(it *testing.T) {
			p, err := NewCanvas(make([]byte, CanvasSize(180, 384, 2)), 180, 384, test.Rotation, 2, 0)
			if err != nil {
				it.Fatal(err)
			}
			if v := p.Logical(); !v.Eq(test.Logical) {
				it.Errorf("expected logical size %s, got %s", test.Logical, v)
			}
			if v := p.Bounds().Size(); !v.Eq(test.Bounds) {
				it.Errorf("expected bounds %s, got %s", test.Bounds, v)
			}
		})
	}
}

func TestCanvasSetPixel(t *testing.T) {
	for _, depth := range []int{1, 2} {
		for rotation := NoRotation; rotation <= Rotate270; rotation++ {
			t.Run(fmt.Sprintf("%dbpp/%s", depth, rotation), func(it *testing.T) {
				const w, h = 20, 12
				p, err := NewCanvas(make([]byte, CanvasSize(w, h, depth)), w, h, rotation, depth, 0)
				if err != nil {
					it.Fatal(err)
				}
				r := p.Bounds()
				for y := r.Min.Y; y < r.Max.Y; y++ {
					for x := r.Min.X; x < r.Max.X; x++ {
						c := uint8(rand.Intn(1 << depth))
						before := append([]byte(nil), p.Pix...)
						if err := p.SetPixel(x, y, c); err != nil {
							it.Fatalf("pixel (%d,%d): %v", x, y, err)
						}
						if v, err := p.GetPixel(x, y); err != nil || v != c {
							it.Fatalf("pixel (%d,%d) is %d (%v), expected %d", x, y, v, err, c)
						}
						var changed int
						for i := range before {
							if before[i] != p.Pix[i] {
								changed++
							}
						}
						if changed > 1 {
							it.Fatalf("pixel (%d,%d) changed %d bytes", x, y, changed)
						}
					}
				}
			})
		}
	}
}

func TestCanvasAddress(t *testing.T) {
	tests := []struct {
		Name     string
		Width    int
		Height   int
		Rotation Rotation
		Depth    int
		X, Y     int
		C        uint8
		Index    int
		Want     byte
	}{
		{"2bpp/270", 8, 4, Rotate270, 2, 5, 1, 3, 1 + 2, 0x30},
		{"2bpp/270/first", 8, 4, Rotate270, 2, 0, 0, 2, 0, 0x80},
		{"1bpp/270", 16, 2, Rotate270, 1, 9, 1, 1, 1 + 2, 0x40},
		{"1bpp/0", 16, 2, NoRotation, 1, 1, 0, 1, 1*2 + 1, 0x01},
		{"1bpp/90", 16, 2, Rotate90, 1, 0, 0, 1, 1*2 + 1, 0x01},
		{"1bpp/180", 16, 2, Rotate180, 1, 0, 3, 1, 1*2 + 0, 0x10},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			p, err := NewCanvas(make([]byte, CanvasSize(test.Width, test.Height, test.Depth)), test.Width, test.Height, test.Rotation, test.Depth, 0)
			if err != nil {
				it.Fatal(err)
			}
			if err = p.SetPixel(test.X, test.Y, test.C); err != nil {
				it.Fatal(err)
			}
			if v := p.Pix[test.Index]; v != test.Want {
				it.Errorf("expected byte %d to be %#02x, got %#02x (%x)", test.Index, test.Want, v, p.Pix)
			}
		})
	}
}

func TestCanvasBounds(t *testing.T) {
	for rotation := NoRotation; rotation <= Rotate270; rotation++ {
		t.Run(rotation.String(), func(it *testing.T) {
			p, err := NewCanvas(make([]byte, CanvasSize(16, 8, 1)), 16, 8, rotation, 1, 1)
			if err != nil {
				it.Fatal(err)
			}
			before := append([]byte(nil), p.Pix...)
			r := p.Bounds()
			for _, pt := range []image.Point{
				{X: -1, Y: 0},
				{X: 0, Y: -1},
				{X: r.Max.X, Y: 0},
				{X: 0, Y: r.Max.Y},
				{X: 1000, Y: 1000},
			} {
				if err := p.SetPixel(pt.X, pt.Y, 0); !errors.Is(err, ErrBounds) {
					it.Errorf("expected %s to be rejected, got %v", pt, err)
				}
				if _, err := p.GetPixel(pt.X, pt.Y); !errors.Is(err, ErrBounds) {
					it.Errorf("expected read at %s to be rejected, got %v", pt, err)
				}
				p.Set(pt.X, pt.Y, Index(0))
				if v := p.At(pt.X, pt.Y); v != color.Transparent {
					it.Errorf("pixel %s is %#+v, expected transparent", pt, v)
				}
			}
			if !bytes.Equal(before, p.Pix) {
				it.Error("out of bounds writes modified the buffer")
			}
		})
	}
}

func TestCanvasClear(t *testing.T) {
	for _, depth := range []int{1, 2} {
		for c := 0; c < 1<<depth; c++ {
			t.Run(fmt.Sprintf("%dbpp/%d", depth, c), func(it *testing.T) {
				p, err := NewCanvas(make([]byte, CanvasSize(13, 7, depth)), 13, 7, Rotate270, depth, 0)
				if err != nil {
					it.Fatal(err)
				}
				p.Clear(uint8(c))
				r := p.Bounds()
				for y := r.Min.Y; y < r.Max.Y; y++ {
					for x := r.Min.X; x < r.Max.X; x++ {
						if v, _ := p.GetPixel(x, y); v != uint8(c) {
							it.Fatalf("pixel (%d,%d) is %d, expected %d", x, y, v, c)
						}
					}
				}
			})
		}
	}
	p, _ := NewCanvas(make([]byte, 2), 4, 2, NoRotation, 2, 0)
	p.Clear(2)
	if p.Pix[0] != 0xaa {
		t.Errorf("expected replicated byte 0xaa, got %#02x", p.Pix[0])
	}
}

func TestCanvasColorModel(t *testing.T) {
	p, err := NewCanvas(make([]byte, CanvasSize(4, 4, 2)), 4, 4, Rotate270, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err = p.SetPalette(Color4Palette); err != nil {
		t.Fatal(err)
	}
	p.Set(1, 1, color.RGBA{R: 0xff, A: 0xff})
	if v := p.At(1, 1); v != Red {
		t.Errorf("expected red code %d, got %v", Red, v)
	}
	p.Fill(color.White)
	if v := p.At(3, 3); v != White {
		t.Errorf("expected white code %d, got %v", White, v)
	}
	if err = p.SetPalette(make(color.Palette, 5)); err == nil {
		t.Error("expected oversized palette to be rejected")
	}
}

func TestCanvasMono(t *testing.T) {
	tests := []struct {
		Name    string
		Depth   int
		Palette color.Palette
		On, Off Index
	}{
		{"mono", 1, MonoPalette, MonoWhite, MonoBlack},
		{"gray", 2, GrayPalette, GrayWhite, GrayBlack},
		{"color4", 2, Color4Palette, White, Black},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			p, err := NewCanvas(make([]byte, CanvasSize(8, 8, test.Depth)), 8, 8, Rotate270, test.Depth, 0)
			if err != nil {
				it.Fatal(err)
			}
			if err = p.SetPalette(test.Palette); err != nil {
				it.Fatal(err)
			}
			p.Set(1, 2, On)
			p.Set(3, 4, Off)
			if v, _ := p.GetPixel(1, 2); Index(v) != test.On {
				it.Errorf("expected On as code %d, got %d", test.On, v)
			}
			if v, _ := p.GetPixel(3, 4); Index(v) != test.Off {
				it.Errorf("expected Off as code %d, got %d", test.Off, v)
			}
		})
	}
}

func TestCanvasDisplayer(t *testing.T) {
	p, err := NewCanvas(make([]byte, CanvasSize(8, 8, 1)), 8, 8, Rotate270, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	d := p.Displayer()
	if x, y := d.Size(); x != 8 || y != 8 {
		t.Errorf("expected size 8x8, got %dx%d", x, y)
	}
	d.SetPixel(2, 3, color.RGBA{A: 0xff})
	if v, _ := p.GetPixel(2, 3); v != uint8(MonoBlack) {
		t.Errorf("expected black pixel, got %d", v)
	}
	if err = d.Display(); err != nil {
		t.Error(err)
	}
}

func TestParseRotation(t *testing.T) {
	tests := []struct {
		In   string
		Want Rotation
		Err  bool
	}{
		{"", NoRotation, false},
		{"90", Rotate90, false},
		{"flip", Rotate180, false},
		{"ccw", Rotate270, false},
		{"45", 0, true},
	}
	for _, test := range tests {
		t.Run(test.In, func(it *testing.T) {
			v, err := ParseRotation(test.In)
			if test.Err {
				if !errors.Is(err, ErrRotation) {
					it.Errorf("expected ErrRotation, got %v", err)
				}
				return
			}
			if err != nil || v != test.Want {
				it.Errorf("expected %s, got %s (%v)", test.Want, v, err)
			}
		})
	}
}
