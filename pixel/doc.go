// Package pixel implements the packed pixel buffers used by e-paper panels.
//
// The central type is [Canvas], a rotation-aware 1 or 2 bits per pixel buffer bound to
// caller-owned memory. [Bitmap] is a plain 1 bit per pixel row-major image used for
// glyph bitmaps and partial window payloads. Both are compatible with Go's native
// [color.Color] and [image.Image] / [draw.Image] interfaces.
package pixel
