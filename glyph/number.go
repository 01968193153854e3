package glyph

import (
	"fmt"
	"image/color"
	"math"

	"github.com/BeatGlow/epaper/draw"
)

func pow10(n int) uint64 {
	v := uint64(1)
	for ; n > 0; n-- {
		v *= 10
	}
	return v
}

func (f Face) digit(dst draw.Image, x, y int, c byte, fg, bg color.Color) error {
	if f.Single == nil {
		return fmt.Errorf("%w: no table for digits", ErrSize)
	}
	g, ok := f.Single.Lookup(string(c))
	if !ok {
		return fmt.Errorf("%w: %q at size %d", ErrGlyphNotFound, c, f.Single.Size)
	}
	f.Single.Draw(dst, x, y, g, fg, bg)
	return nil
}

// ShowNumber draws the last digits decimal digits of num, zero padded.
func (f Face) ShowNumber(dst draw.Image, x, y int, num uint64, digits int, fg, bg color.Color) error {
	if f.Single == nil {
		return fmt.Errorf("%w: no table for digits", ErrSize)
	}
	pitch := f.Single.Advance
	for t := 0; t < digits; t++ {
		d := byte(num/pow10(digits-t-1)%10) + '0'
		if err := f.digit(dst, x+t*pitch, y, d, fg, bg); err != nil {
			return err
		}
	}
	return nil
}

// ShowFloat draws num with digits digits in total, precision of them after the
// decimal point.
func (f Face) ShowFloat(dst draw.Image, x, y int, num float64, digits, precision int, fg, bg color.Color) error {
	return f.showFixed(dst, x, y, num, digits, precision, '.', 0, 0, fg, bg)
}

// ShowClock draws num like [Face.ShowFloat] with a colon as separator, so 12.05 shows
// as 12:05. The colon is nudged towards the middle of its cell and raised by an eighth
// of the glyph size.
func (f Face) ShowClock(dst draw.Image, x, y int, num float64, digits, precision int, fg, bg color.Color) error {
	if f.Single == nil {
		return fmt.Errorf("%w: no table for digits", ErrSize)
	}
	return f.showFixed(dst, x, y, num, digits, precision, ':', f.Single.Advance/2-2, -f.Single.Size/8, fg, bg)
}

func (f Face) showFixed(dst draw.Image, x, y int, num float64, digits, precision int, sep byte, dx, dy int, fg, bg color.Color) error {
	if f.Single == nil {
		return fmt.Errorf("%w: no table for digits", ErrSize)
	}
	if precision < 0 || precision > digits {
		return fmt.Errorf("glyph: precision %d out of range for %d digits", precision, digits)
	}

	var (
		pitch = f.Single.Advance
		point = digits - precision
		value = uint64(math.Round(math.Abs(num) * float64(pow10(precision))))
	)
	// The separator goes first so the digit after it is drawn on top.
	column := 0
	for t := 0; t < digits; t++ {
		if t == point {
			if err := f.digit(dst, x+point*pitch+dx, y+dy, sep, fg, bg); err != nil {
				return err
			}
			column++
		}
		d := byte(value/pow10(digits-t-1)%10) + '0'
		if err := f.digit(dst, x+column*pitch, y, d, fg, bg); err != nil {
			return err
		}
		column++
	}
	return nil
}

// ShowNumber draws num using the built-in face for size.
func ShowNumber(dst draw.Image, x, y int, num uint64, digits, size int, fg, bg color.Color) error {
	f, err := Builtin(size)
	if err != nil {
		return err
	}
	return f.ShowNumber(dst, x, y, num, digits, fg, bg)
}

// ShowFloat draws num using the built-in face for size.
func ShowFloat(dst draw.Image, x, y int, num float64, digits, precision, size int, fg, bg color.Color) error {
	f, err := Builtin(size)
	if err != nil {
		return err
	}
	return f.ShowFloat(dst, x, y, num, digits, precision, fg, bg)
}

// ShowClock draws num as a clock using the built-in face for size.
func ShowClock(dst draw.Image, x, y int, num float64, digits, precision, size int, fg, bg color.Color) error {
	f, err := Builtin(size)
	if err != nil {
		return err
	}
	return f.ShowClock(dst, x, y, num, digits, precision, fg, bg)
}
