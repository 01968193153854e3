package glyph

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// DefaultFont is used by WriteLine and LineWidth when no font is given.
var DefaultFont tinyfont.Fonter = &proggy.TinySZ8pt7b

// WriteLine draws s with any tinyfont font, with its baseline at y. Unlike DrawText it
// is not limited to the built-in tables, and it only plots the foreground.
func WriteLine(dst drivers.Displayer, font tinyfont.Fonter, x, y int16, s string, c color.RGBA) {
	if font == nil {
		font = DefaultFont
	}
	tinyfont.WriteLine(dst, font, x, y, s, c)
}

// LineWidth is the width in pixels WriteLine needs for s.
func LineWidth(font tinyfont.Fonter, s string) int {
	if font == nil {
		font = DefaultFont
	}
	_, outboxWidth := tinyfont.LineWidth(font, s)
	return int(outboxWidth)
}
