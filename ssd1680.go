package epaper

import (
	"fmt"
	"image/color"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/epaper/conn"
	"github.com/BeatGlow/epaper/encode"
	"github.com/BeatGlow/epaper/pixel"
)

const (
	ssd1680Width  = 128
	ssd1680Height = 296
)

const (
	ssd1680DriverOutput    = 0x01
	ssd1680GateVoltage     = 0x03
	ssd1680SourceVoltage   = 0x04
	ssd1680DeepSleep       = 0x10
	ssd1680DataEntry       = 0x11
	ssd1680SoftReset       = 0x12
	ssd1680TempSensor      = 0x18
	ssd1680Activate        = 0x20
	ssd1680UpdateControl1  = 0x21
	ssd1680UpdateControl2  = 0x22
	ssd1680WriteBW         = 0x24
	ssd1680WriteRed        = 0x26
	ssd1680WriteVCOM       = 0x2C
	ssd1680WriteLUT        = 0x32
	ssd1680BorderWaveform  = 0x3C
	ssd1680LUTEnd          = 0x3F
	ssd1680RAMXRange       = 0x44
	ssd1680RAMYRange       = 0x45
	ssd1680RAMXCounter     = 0x4E
	ssd1680RAMYCounter     = 0x4F
	ssd1680SequenceFull    = 0xF7
	ssd1680SequencePartial = 0xFF
	ssd1680SequenceGray    = 0xC7
)

// ssd1680Refresh loads the update sequence and activates it.
func ssd1680Refresh(sequence byte) Program {
	return Program{
		cmd(ssd1680UpdateControl2, sequence),
		cmdWait(ssd1680Activate),
	}
}

var ssd1680Sleep = Program{
	cmd(ssd1680DeepSleep, 0x01),
}

// SSD1680 is the 2.9" 128x296 monochrome panel.
var SSD1680 = register(&Variant{
	Name:       "ssd1680",
	Width:      ssd1680Width,
	Height:     ssd1680Height,
	Depth:      map[Mode]int{Full: 1},
	Sequence:   conn.SequenceByte,
	BusyReady:  gpio.Low,
	ResetDelay: 100 * time.Millisecond,
	ResetLow:   20 * time.Millisecond,
	ResetHigh:  20 * time.Millisecond,
	PostReset: Program{
		cmdWait(ssd1680SoftReset),
	},
	Init: map[Mode]Program{
		Full: {
			cmd(ssd1680DriverOutput, (ssd1680Height-1)&0xFF, (ssd1680Height-1)>>8, 0x01),
			cmd(ssd1680DataEntry, 0x01),
			cmd(ssd1680RAMXRange, 0x00, ssd1680Width/8-1),
			cmd(ssd1680RAMYRange, (ssd1680Height-1)&0xFF, (ssd1680Height-1)>>8, 0x00, 0x00),
			cmd(ssd1680BorderWaveform, 0x05),
			cmd(ssd1680UpdateControl1, 0x00, 0x80),
			cmd(ssd1680TempSensor, 0x80),
			cmd(ssd1680RAMXCounter, 0x00),
			cmdWait(ssd1680RAMYCounter, (ssd1680Height-1)&0xFF, (ssd1680Height-1)>>8),
		},
	},
	Planes: []byte{ssd1680WriteBW},
	Refresh: map[Mode]Program{
		Full: ssd1680Refresh(ssd1680SequenceFull),
	},
	Sleep:    ssd1680Sleep,
	Encoders: map[Mode]encode.Encoder{Full: encode.Mono{}},
	Palette:  map[Mode]color.Palette{Full: pixel.MonoPalette},
})

// ssd1680Gray4LUT is the waveform table for 4 level grayscale, the trailing bytes
// hold the EOPT, gate, source and VCOM voltages.
var ssd1680Gray4LUT = [159]byte{
	0x40, 0x48, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x08, 0x48, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x48, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x20, 0x48, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x0A, 0x19, 0x00, 0x03, 0x08, 0x00, 0x00,
	0x14, 0x01, 0x00, 0x14, 0x01, 0x00, 0x03,
	0x0A, 0x03, 0x00, 0x08, 0x19, 0x00, 0x00,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x22, 0x22, 0x22, 0x22, 0x22, 0x22,
	0x00, 0x00, 0x00,
	0x22, 0x17, 0x41, 0x00, 0x32, 0x1C,
}

const (
	ssd1680GrayWidth  = 128
	ssd1680GrayHeight = 296
)

// SSD1680Gray is the 2.9" 296x128 panel with partial refresh and 4 level grayscale.
//
// Full refreshes write the image to both RAM planes, so the panel keeps a base image
// for subsequent partial refreshes after a hardware reset.
var SSD1680Gray = register(&Variant{
	Name:       "ssd1680gray",
	Width:      ssd1680GrayWidth,
	Height:     ssd1680GrayHeight,
	Depth:      map[Mode]int{Full: 1, Partial: 1, Gray4: 2},
	Sequence:   conn.SequenceFramed,
	BusyReady:  gpio.Low,
	ResetDelay: 20 * time.Millisecond,
	ResetLow:   10 * time.Millisecond,
	ResetHigh:  10 * time.Millisecond,
	Init: map[Mode]Program{
		Full:    ssd1680GrayInitMono,
		Partial: ssd1680GrayInitMono,
		Gray4:   ssd1680GrayInit4Gray,
	},
	Planes: []byte{ssd1680WriteBW, ssd1680WriteRed},
	Refresh: map[Mode]Program{
		Full:    ssd1680Refresh(ssd1680SequenceFull),
		Partial: ssd1680Refresh(ssd1680SequencePartial),
		Gray4:   ssd1680Refresh(ssd1680SequenceGray),
	},
	Sleep:  ssd1680Sleep,
	Window: ssd1680GrayWindow,
	Encoders: map[Mode]encode.Encoder{
		Full:    encode.Mono{Mirror: true},
		Partial: encode.Mono{},
		Gray4:   encode.Gray4{},
	},
	Palette: map[Mode]color.Palette{
		Full:    pixel.MonoPalette,
		Partial: pixel.MonoPalette,
		Gray4:   pixel.GrayPalette,
	},
})

var ssd1680GrayInitMono = Program{
	cmdWait(ssd1680SoftReset),
	cmd(ssd1680DriverOutput, (ssd1680GrayHeight-1)&0xFF, (ssd1680GrayHeight-1)>>8, 0x00),
	cmd(ssd1680DataEntry, 0x01),
	cmd(ssd1680RAMXRange, 0x00, ssd1680GrayWidth/8-1),
	cmd(ssd1680RAMYRange, (ssd1680GrayHeight-1)&0xFF, (ssd1680GrayHeight-1)>>8, 0x00, 0x00),
	cmd(ssd1680BorderWaveform, 0x01),
	cmd(ssd1680TempSensor, 0x80),
	cmd(ssd1680UpdateControl1, 0x00, 0x80),
	cmd(ssd1680RAMXCounter, 0x00),
	cmdWait(ssd1680RAMYCounter, (ssd1680GrayHeight-1)&0xFF, (ssd1680GrayHeight-1)>>8),
}

// ssd1680GrayInit4Gray fills RAM in the same direction as the mono init, so a canvas
// row lands on the same gate in every mode.
var ssd1680GrayInit4Gray = Program{
	cmdWait(ssd1680SoftReset),
	cmd(ssd1680DriverOutput, (ssd1680GrayHeight-1)&0xFF, (ssd1680GrayHeight-1)>>8, 0x00),
	cmd(ssd1680DataEntry, 0x01),
	cmd(ssd1680BorderWaveform, 0x00),
	cmd(ssd1680UpdateControl1, 0x00, 0x80),
	cmd(ssd1680WriteVCOM, ssd1680Gray4LUT[158]),
	cmd(ssd1680LUTEnd, ssd1680Gray4LUT[153]),
	cmd(ssd1680GateVoltage, ssd1680Gray4LUT[154]),
	cmd(ssd1680SourceVoltage, ssd1680Gray4LUT[155], ssd1680Gray4LUT[156], ssd1680Gray4LUT[157]),
	cmd(ssd1680WriteLUT, ssd1680Gray4LUT[:152]...),
	cmd(ssd1680RAMXRange, 0x00, ssd1680GrayWidth/8-1),
	cmd(ssd1680RAMYRange, (ssd1680GrayHeight-1)&0xFF, (ssd1680GrayHeight-1)>>8, 0x00, 0x00),
	cmd(ssd1680RAMXCounter, 0x00),
	cmdWait(ssd1680RAMYCounter, (ssd1680GrayHeight-1)&0xFF, (ssd1680GrayHeight-1)>>8),
}

// ssd1680GrayWindow addresses a window in landscape coordinates: x runs along the
// 296 pixel gates from the right edge, y along the 128 pixel sources in steps of 8.
func ssd1680GrayWindow(x, y, width, height int) (Program, int, error) {
	if width <= 0 || height <= 0 || height%8 != 0 || y%8 != 0 {
		return nil, 0, fmt.Errorf("%w: %dx%d at (%d,%d), y and height must be multiples of 8", ErrWindow, width, height, x, y)
	}
	var (
		xStart = y / 8
		xEnd   = xStart + height/8 - 1
		yStart = ssd1680GrayHeight - 1 - x
		yEnd   = yStart - width + 1
	)
	if x < 0 || y < 0 || xEnd >= ssd1680GrayWidth/8 || yEnd < 0 {
		return nil, 0, fmt.Errorf("%w: %dx%d at (%d,%d)", ErrWindow, width, height, x, y)
	}
	return Program{
		cmd(ssd1680RAMXRange, byte(xStart), byte(xEnd)),
		cmd(ssd1680RAMYRange, byte(yStart), byte(yStart>>8), byte(yEnd), byte(yEnd>>8)),
		cmd(ssd1680RAMXCounter, byte(xStart)),
		cmdWait(ssd1680RAMYCounter, byte(yStart), byte(yStart>>8)),
	}, width * height / 8, nil
}
