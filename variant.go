package epaper

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/epaper/conn"
	"github.com/BeatGlow/epaper/encode"
	"github.com/BeatGlow/epaper/pixel"
)

// Step is a single command with its arguments.
type Step struct {
	Cmd  byte
	Data []byte

	// Wait for the busy line to signal ready after the step.
	Wait bool
}

// Program is a sequence of steps.
type Program []Step

func cmd(c byte, data ...byte) Step {
	return Step{Cmd: c, Data: data}
}

func cmdWait(c byte, data ...byte) Step {
	return Step{Cmd: c, Data: data, Wait: true}
}

// WindowFunc computes the program that selects a RAM window for partial updates,
// and the number of bytes per plane the window accepts.
type WindowFunc func(x, y, width, height int) (Program, int, error)

// Variant describes a panel controller, all behaviour of the generic panel driver
// is derived from it.
type Variant struct {
	Name string

	// Width and Height of the panel memory in pixels.
	Width  int
	Height int

	// Depth in bits per canvas pixel, per mode.
	Depth map[Mode]int

	// Sequence is the bit-bang framing used by the panel.
	Sequence conn.Sequence

	// BusyReady is the busy pin level that signals the controller is idle.
	BusyReady gpio.Level

	// Reset timing: settle time before the pulse, pulse width and recovery.
	ResetDelay time.Duration
	ResetLow   time.Duration
	ResetHigh  time.Duration

	// PostReset runs after every hardware reset.
	PostReset Program

	// Init programs per supported mode.
	Init map[Mode]Program

	// Planes holds the RAM select command per plane.
	Planes []byte

	// Refresh programs per mode.
	Refresh map[Mode]Program

	// Sleep program, the last step is never followed by a busy wait.
	Sleep Program

	// Window is nil for panels without partial refresh support.
	Window WindowFunc

	// Encoders per mode convert canvas bytes to plane data.
	Encoders map[Mode]encode.Encoder

	// Palette per mode maps colors to canvas codes.
	Palette map[Mode]color.Palette
}

func (v *Variant) String() string {
	return fmt.Sprintf("%s %dx%d", v.Name, v.Width, v.Height)
}

// Supports checks if the panel can be configured in mode m.
func (v *Variant) Supports(m Mode) bool {
	_, ok := v.Init[m]
	return ok
}

// PartialCapable checks if the panel retains its registers for partial updates.
func (v *Variant) PartialCapable() bool {
	return v.Window != nil && v.Supports(Partial)
}

// PlaneSize is the number of bytes of one full plane in mode m.
func (v *Variant) PlaneSize(m Mode) int {
	size := pixel.CanvasSize(v.Width, v.Height, v.Depth[m])
	if m == Gray4 {
		// two 2-bit canvas bytes make one plane byte
		size /= 2
	}
	return size
}

// Blank is the canvas code of white paper in mode m.
func (v *Variant) Blank(m Mode) uint8 {
	if palette, ok := v.Palette[m]; ok {
		return uint8(palette.Index(color.White))
	}
	return 0
}

// NewCanvas allocates a canvas matching the panel memory in mode m.
func (v *Variant) NewCanvas(m Mode, rotation pixel.Rotation) (*pixel.Canvas, error) {
	if !v.Supports(m) {
		return nil, fmt.Errorf("%w: %s on %s", ErrMode, m, v.Name)
	}
	depth := v.Depth[m]
	p, err := pixel.NewCanvas(make([]byte, pixel.CanvasSize(v.Width, v.Height, depth)), v.Width, v.Height, rotation, depth, v.Blank(m))
	if err != nil {
		return nil, err
	}
	if palette, ok := v.Palette[m]; ok {
		if err = p.SetPalette(palette); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Variants holds all known panels by name.
var Variants = map[string]*Variant{}

func register(v *Variant) *Variant {
	Variants[strings.ToLower(v.Name)] = v
	return v
}

// LookupVariant finds a panel by name.
func LookupVariant(name string) (*Variant, error) {
	if v, ok := Variants[strings.ToLower(name)]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrVariant, name, strings.Join(VariantNames(), ", "))
}

// VariantNames lists the registered panel names.
func VariantNames() []string {
	names := make([]string, 0, len(Variants))
	for name := range Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
