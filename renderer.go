package epaper

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/MaxHalford/halfgone"
	"github.com/disintegration/imaging"

	"github.com/BeatGlow/epaper/glyph"
	"github.com/BeatGlow/epaper/internal/log"
	"github.com/BeatGlow/epaper/pixel"
)

// Layout describes how a Renderer draws and refreshes.
type Layout struct {
	// Origin of the text in logical canvas coordinates.
	Origin image.Point

	// Size of the built-in glyphs.
	Size int

	// Mode the panel is configured and refreshed in.
	Mode Mode

	// Foreground and Background colors of the text, nil selects black on white.
	Foreground color.Color
	Background color.Color

	// Sleep puts the panel into deep sleep after every refresh.
	Sleep bool
}

// DefaultLayout draws 16 pixel text at the top left corner with a full refresh.
var DefaultLayout = Layout{
	Size:  16,
	Mode:  Full,
	Sleep: true,
}

func (l Layout) colors() (fg, bg color.Color) {
	fg, bg = l.Foreground, l.Background
	if fg == nil {
		fg = color.Black
	}
	if bg == nil {
		bg = color.White
	}
	return
}

// Renderer owns a canvas and a panel and runs complete draw and refresh cycles.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	Canvas *pixel.Canvas
	Panel  *Panel
	Layout Layout
}

// NewRenderer allocates a canvas for the panel in the layout mode.
func NewRenderer(p *Panel, rotation pixel.Rotation, layout Layout) (*Renderer, error) {
	if layout.Size == 0 {
		layout.Size = DefaultLayout.Size
	}
	c, err := p.Variant().NewCanvas(layout.Mode, rotation)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		Canvas: c,
		Panel:  p,
		Layout: layout,
	}, nil
}

// Clear the canvas to blank paper.
func (r *Renderer) Clear() {
	r.Canvas.Clear(r.Panel.Variant().Blank(r.Layout.Mode))
}

// RenderAndPush draws text and the dynamic glyphs on a blank canvas and pushes it to
// the panel.
//
// Text that fails to decode or has characters without a glyph is drawn up to that
// character; the partial canvas is still pushed and the error is returned after the
// refresh. The glyphs and placements are only used during the call.
func (r *Renderer) RenderAndPush(text string, glyphs []glyph.Glyph, placements []glyph.Placement) error {
	r.Clear()

	var drawErr error
	fg, bg := r.Layout.colors()
	if text != "" {
		if err := glyph.DrawText(r.Canvas, r.Layout.Origin.X, r.Layout.Origin.Y, text, r.Layout.Size, fg, bg); err != nil {
			if !errors.Is(err, glyph.ErrDecode) && !errors.Is(err, glyph.ErrGlyphNotFound) {
				return err
			}
			drawErr = err
		}
	}
	if len(placements) > 0 {
		if err := glyph.DrawDynamic(r.Canvas, glyphs, placements, fg); err != nil {
			drawErr = errors.Join(drawErr, err)
		}
	}
	if drawErr != nil && debug {
		log.Debug("partial render", "panel", r.Panel.Variant().Name, "error", drawErr)
	}

	if err := r.Push(); err != nil {
		return err
	}
	return drawErr
}

// Push sends the canvas to the panel: reset, init, plane writes, refresh and, when
// the layout asks for it, deep sleep.
//
// A partial push to a panel that kept its registers through deep sleep skips the
// init.
func (r *Renderer) Push() error {
	var (
		p = r.Panel
		m = r.Layout.Mode
	)
	encoder, ok := p.Variant().Encoders[m]
	if !ok {
		return fmt.Errorf("%w: no encoder for %s on %s", ErrMode, m, p.Variant().Name)
	}
	planes, err := encoder.Encode(r.Canvas.Pix)
	if err != nil {
		return err
	}

	if err = p.HWReset(); err != nil {
		return err
	}
	if m != Partial || !p.Retained() {
		if err = p.Init(m); err != nil {
			return err
		}
	}
	for i, data := range planes {
		if err = p.WritePlane(Plane(i), data); err != nil {
			return err
		}
	}
	if err = p.Refresh(m); err != nil {
		return err
	}
	if r.Layout.Sleep {
		return p.DeepSleep()
	}
	return nil
}

// DrawPicture scales img to fit the canvas and draws it centered. Mono canvases are
// dithered with Floyd-Steinberg in gray, 2-bit canvases are quantized to the canvas
// palette.
func (r *Renderer) DrawPicture(img image.Image) {
	var (
		bounds = r.Canvas.Bounds()
		size   = bounds.Size()
		src    = img
	)
	if img.Bounds().Size() != size {
		src = imaging.Fit(img, size.X, size.Y, imaging.Lanczos)
	}
	var (
		sb     = src.Bounds()
		offset = image.Pt((size.X-sb.Dx())/2, (size.Y-sb.Dy())/2)
		target = image.Rectangle{Min: offset, Max: offset.Add(sb.Size())}
	)

	if r.Canvas.Depth() == 1 {
		gray := image.NewGray(image.Rectangle{Max: sb.Size()})
		draw.Draw(gray, gray.Rect, src, sb.Min, draw.Src)
		draw.Draw(r.Canvas, target, halfgone.FloydSteinbergDitherer{}.Apply(gray), image.Point{}, draw.Src)
		return
	}

	paletted := image.NewPaletted(image.Rectangle{Max: sb.Size()}, r.Canvas.Palette())
	draw.FloydSteinberg.Draw(paletted, paletted.Rect, src, sb.Min)
	for y := 0; y < paletted.Rect.Dy(); y++ {
		for x := 0; x < paletted.Rect.Dx(); x++ {
			_ = r.Canvas.SetPixel(target.Min.X+x, target.Min.Y+y, paletted.ColorIndexAt(x, y))
		}
	}
}

// RenderPicture draws img on a blank canvas and pushes it to the panel.
func (r *Renderer) RenderPicture(img image.Image) error {
	r.Clear()
	r.DrawPicture(img)
	return r.Push()
}

// Polarity selects how a partial region is written.
type Polarity uint8

// Region polarities.
const (
	Positive Polarity = iota // bitmap as is, a set bit is white
	Negative                 // inverted bitmap
	Off                      // region cleared to white
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	case Off:
		return "off"
	default:
		return fmt.Sprintf("Polarity(%d)", uint8(p))
	}
}

// Region is a bitmap placed in a partial update window. X runs along the long side
// of the panel, Y along the short side and must be a multiple of 8, as must the
// bitmap height.
type Region struct {
	X, Y     int
	Bitmap   *pixel.Bitmap
	Polarity Polarity
}

// payload converts the bitmap to window order: one run of height/8 bytes per column,
// the top pixel of each byte in the most significant bit.
func (r Region) payload() []byte {
	var (
		w, h   = r.Bitmap.Rect.Dx(), r.Bitmap.Rect.Dy()
		stride = h / 8
		data   = make([]byte, w*stride)
	)
	if r.Polarity == Off {
		for i := range data {
			data[i] = 0xff
		}
		return data
	}
	for x := 0; x < w; x++ {
		for y := 0; y < stride*8; y++ {
			if r.Bitmap.Bit(r.Bitmap.Rect.Min.X+x, r.Bitmap.Rect.Min.Y+y) {
				data[x*stride+y/8] |= 0x80 >> uint(y%8)
			}
		}
	}
	if r.Polarity == Negative {
		for i := range data {
			data[i] = ^data[i]
		}
	}
	return data
}

// PushPartial writes regions into the panel RAM and runs a partial refresh.
//
// A sleeping panel that kept its registers is only reset; otherwise it is reset and
// configured for partial updates first. The previous full refresh should have
// written both planes, so the controller has a base image to compare against.
func (r *Renderer) PushPartial(regions ...Region) error {
	p := r.Panel
	if !p.Variant().PartialCapable() {
		return fmt.Errorf("%w: %s has no partial refresh", ErrMode, p.Variant().Name)
	}

	if s := p.State(); s == Uninitialized || s == Sleeping {
		if err := p.HWReset(); err != nil {
			return err
		}
	}
	if p.State() == Reset && !p.Retained() {
		if err := p.Init(Partial); err != nil {
			return err
		}
	}

	for _, region := range regions {
		if region.Bitmap == nil {
			continue
		}
		size := region.Bitmap.Rect.Size()
		if err := p.PartialWindow(region.X, region.Y, size.X, size.Y); err != nil {
			return err
		}
		if err := p.WritePlane(PlaneBW, region.payload()); err != nil {
			return err
		}
	}
	if err := p.Refresh(Partial); err != nil {
		return err
	}
	if r.Layout.Sleep {
		return p.DeepSleep()
	}
	return nil
}
