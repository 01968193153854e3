package epaper

import (
	"image/color"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/epaper/conn"
	"github.com/BeatGlow/epaper/encode"
	"github.com/BeatGlow/epaper/pixel"
)

const (
	color4Width  = 180
	color4Height = 384
)

const (
	color4PanelSetting     = 0x00
	color4PowerSetting     = 0x01
	color4PowerOff         = 0x02
	color4PowerOffSeq      = 0x03
	color4PowerOn          = 0x04
	color4BoosterSoftStart = 0x06
	color4DeepSleep        = 0x07
	color4DataStart        = 0x10
	color4DisplayRefresh   = 0x12
	color4PLL              = 0x30
	color4TempCalibration  = 0x41
	color4VCOMInterval     = 0x50
	color4TCON             = 0x60
	color4Resolution       = 0x61
	color4GateSourceStart  = 0x65
	color4PowerSaving      = 0xE3
)

// Color4In352 is the 3.52" 180x384 black/white/yellow/red panel.
//
// Every canvas byte holds four 2-bit pixels with the panel codes of pixel.Black,
// pixel.White, pixel.Yellow and pixel.Red.
var Color4In352 = register(&Variant{
	Name:       "color4in352",
	Width:      color4Width,
	Height:     color4Height,
	Depth:      map[Mode]int{Full: 2},
	Sequence:   conn.SequenceByte,
	BusyReady:  gpio.High,
	ResetDelay: 100 * time.Millisecond,
	ResetLow:   10 * time.Millisecond,
	ResetHigh:  10 * time.Millisecond,
	Init: map[Mode]Program{
		Full: {
			cmd(0x4D, 0x78),
			cmd(color4PanelSetting, 0x0F, 0x09),
			cmd(color4PowerSetting, 0x07, 0x00, 0x22, 0x78, 0x0A, 0x22),
			cmd(color4PowerOffSeq, 0x10, 0x54, 0x44),
			cmd(color4BoosterSoftStart, 0x0F, 0x0A, 0x2F, 0x25, 0x22, 0x2E, 0x21),
			cmd(color4PLL, 0x02),
			cmd(color4TempCalibration, 0x00),
			cmd(color4VCOMInterval, 0x37),
			cmd(color4TCON, 0x02, 0x02),
			cmd(color4Resolution, color4Width>>8, color4Width&0xFF, color4Height>>8, color4Height&0xFF),
			cmd(color4GateSourceStart, 0x00, 0x00, 0x00, 0x00),
			cmd(0xE7, 0x1C),
			cmd(color4PowerSaving, 0x22),
			cmd(0xE0, 0x00),
			cmd(0xB4, 0xD0),
			cmd(0xB5, 0x03),
			cmd(0xE9, 0x01),
		},
	},
	Planes: []byte{color4DataStart},
	Refresh: map[Mode]Program{
		Full: {
			cmdWait(color4PowerOn),
			cmdWait(color4DisplayRefresh, 0x00),
		},
	},
	Sleep: Program{
		cmdWait(color4PowerOff, 0x00),
		cmd(color4DeepSleep, 0xA5),
	},
	Encoders: map[Mode]encode.Encoder{Full: encode.Identity},
	Palette:  map[Mode]color.Palette{Full: pixel.Color4Palette},
})
