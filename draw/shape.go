package draw

import (
	"image"
	"image/color"
)

// Line draws a line between two points, both inclusive.
func Line(dst Image, a, b image.Point, c color.Color) {
	bresenham(dst, a.X, a.Y, b.X, b.Y, c)
}

// HorizontalLine draws a line between (x,y) and (x+w-1,y).
func HorizontalLine(dst Image, x, y, w int, c color.Color) {
	if w <= 0 {
		return
	}
	bresenham(dst, x, y, x+w-1, y, c)
}

// VerticalLine draws a line between (x,y) and (x,y+h-1).
func VerticalLine(dst Image, x, y, h int, c color.Color) {
	if h <= 0 {
		return
	}
	bresenham(dst, x, y, x, y+h-1, c)
}

// Rectangle draws a rectangle with corners a and b.
//
// A hollow rectangle outlines both corners. A filled rectangle draws one horizontal
// line from a.X to b.X for every row from a.Y up to, but not including, b.Y.
func Rectangle(dst Image, a, b image.Point, style Style, c color.Color) {
	if style == Filled {
		for y := a.Y; y < b.Y; y++ {
			bresenham(dst, a.X, y, b.X, y, c)
		}
		return
	}
	bresenham(dst, a.X, a.Y, b.X, a.Y, c)
	bresenham(dst, a.X, a.Y, a.X, b.Y, c)
	bresenham(dst, b.X, b.Y, b.X, a.Y, c)
	bresenham(dst, b.X, b.Y, a.X, b.Y, c)
}

// RoundedRectangle draws rect with radius pixels rounded corners. The radius is
// limited to what fits the shorter side.
//
// A hollow rectangle plots the outline; a filled one plots one horizontal span per row.
func RoundedRectangle(dst Image, rect image.Rectangle, radius int, style Style, c color.Color) {
	rect = rect.Canon()
	var (
		w, h = rect.Dx(), rect.Dy()
		r    = min(radius, (min(w, h)-1)/2)
	)
	if w == 0 || h == 0 {
		return
	}
	if r <= 0 {
		if style == Filled {
			for y := rect.Min.Y; y < rect.Max.Y; y++ {
				HorizontalLine(dst, rect.Min.X, y, w, c)
			}
			return
		}
		Rectangle(dst, rect.Min, rect.Max.Sub(image.Pt(1, 1)), Hollow, c)
		return
	}

	// Centers of the corner arcs.
	var (
		left, right = rect.Min.X + r, rect.Max.X - r - 1
		top, bottom = rect.Min.Y + r, rect.Max.Y - r - 1
	)
	if style == Filled {
		for y := top; y <= bottom; y++ {
			HorizontalLine(dst, rect.Min.X, y, w, c)
		}
		arc(r, func(dx, dy int) {
			HorizontalLine(dst, left-dx, top-dy, right-left+2*dx+1, c)
			HorizontalLine(dst, left-dx, bottom+dy, right-left+2*dx+1, c)
		})
		return
	}

	HorizontalLine(dst, left, rect.Min.Y, right-left+1, c)
	HorizontalLine(dst, left, rect.Max.Y-1, right-left+1, c)
	VerticalLine(dst, rect.Min.X, top, bottom-top+1, c)
	VerticalLine(dst, rect.Max.X-1, top, bottom-top+1, c)
	arc(r, func(dx, dy int) {
		dst.Set(left-dx, top-dy, c)
		dst.Set(right+dx, top-dy, c)
		dst.Set(left-dx, bottom+dy, c)
		dst.Set(right+dx, bottom+dy, c)
	})
}

// arc walks one octant of a circle with radius r using the midpoint algorithm and
// reports every step with its mirrored offset, which together cover a quarter circle.
func arc(r int, plot func(dx, dy int)) {
	f, x, y := 1-r, 0, r
	for x <= y {
		plot(x, y)
		plot(y, x)
		x++
		if f < 0 {
			f += 2*x + 1
		} else {
			y--
			f += 2*(x-y) + 1
		}
	}
}

// Circle draws a circle around center using the midpoint algorithm.
//
// A hollow circle plots the 8 symmetric points per step, a filled circle plots every
// point between the diagonal and the arc in each octant.
func Circle(dst Image, center image.Point, radius int, style Style, c color.Color) {
	var (
		cx, cy = center.X, center.Y
		x      = 0
		y      = radius
		esp    = 3 - radius<<1
	)
	for x <= y {
		if style == Filled {
			for s := x; s <= y; s++ {
				octants(dst, cx, cy, x, s, c)
			}
		} else {
			octants(dst, cx, cy, x, y, c)
		}
		if esp < 0 {
			esp += 4*x + 6
		} else {
			esp += 10 + 4*(x-y)
			y--
		}
		x++
	}
}

func octants(dst Image, cx, cy, x, y int, c color.Color) {
	dst.Set(cx+x, cy+y, c)
	dst.Set(cx-x, cy+y, c)
	dst.Set(cx-y, cy+x, c)
	dst.Set(cx-y, cy-x, c)
	dst.Set(cx-x, cy-y, c)
	dst.Set(cx+x, cy-y, c)
	dst.Set(cx+y, cy-x, c)
	dst.Set(cx+y, cy+x, c)
}

// bresenham steps x and y independently using the error term esp = dx + dy, where dy
// is negative. It stops as soon as either coordinate reaches its end point.
func bresenham(dst Image, x1, y1, x2, y2 int, c color.Color) {
	var (
		dx    = abs(x2 - x1)
		dy    = -abs(y2 - y1)
		stepX = 1
		stepY = 1
		esp   = dx + dy
	)
	if x1 >= x2 {
		stepX = -1
	}
	if y1 >= y2 {
		stepY = -1
	}

	for {
		dst.Set(x1, y1, c)
		if 2*esp >= dy {
			if x1 == x2 {
				return
			}
			esp += dy
			x1 += stepX
		}
		if 2*esp <= dx {
			if y1 == y2 {
				return
			}
			esp += dx
			y1 += stepY
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
