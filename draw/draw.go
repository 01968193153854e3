// Package draw implements line, rectangle and circle rasterization on top of
// [image/draw.Image], so shapes work on any canvas regardless of its color depth.
package draw

import "image/draw"

// Image is an alias for [image/draw.Image].
type Image = draw.Image

// Style selects between outlined and solid shapes.
type Style uint8

// Shape styles.
const (
	Hollow Style = iota
	Filled
)

func (s Style) String() string {
	if s == Filled {
		return "filled"
	}
	return "hollow"
}
