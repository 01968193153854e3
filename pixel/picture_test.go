package pixel

import (
	"errors"
	"image"
	"image/draw"
	"testing"
)

func TestPicture4(t *testing.T) {
	// 2x5 picture, two bytes per column.
	data := []byte{
		0b00_01_10_11, 0b11_000000,
		0b11_11_00_00, 0b01_000000,
	}
	p, err := NewPicture4(data, 2, 5)
	if err != nil {
		t.Fatal(err)
	}

	want := [2][5]Index{
		{White, Yellow, Red, Black, Black},
		{Black, Black, White, White, Yellow},
	}
	for x := 0; x < 2; x++ {
		for y := 0; y < 5; y++ {
			if v := p.Code(x, y); v != want[x][y] {
				t.Errorf("pixel (%d,%d) is %d, expected %d", x, y, v, want[x][y])
			}
		}
	}

	t.Run("canvas", func(it *testing.T) {
		c, err := NewCanvas(make([]byte, CanvasSize(8, 8, 2)), 8, 8, Rotate270, 2, uint8(White))
		if err != nil {
			it.Fatal(err)
		}
		if err = c.SetPalette(Color4Palette); err != nil {
			it.Fatal(err)
		}
		draw.Draw(c, image.Rect(3, 1, 5, 6), p, image.Point{}, draw.Src)
		for x := 0; x < 2; x++ {
			for y := 0; y < 5; y++ {
				if v, _ := c.GetPixel(3+x, 1+y); Index(v) != want[x][y] {
					it.Errorf("canvas pixel (%d,%d) is %d, expected %d", 3+x, 1+y, v, want[x][y])
				}
			}
		}
	})

	if _, err = NewPicture4(data[:3], 2, 5); !errors.Is(err, ErrBufferSize) {
		t.Errorf("expected ErrBufferSize, got %v", err)
	}
}
