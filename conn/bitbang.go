// Package conn implements the low level buses used to talk to panel controllers.
package conn

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Errors
var (
	ErrPin = errors.New("conn: GPIO pin is invalid")
)

// Sequence selects how chip select, data/command and clock edges are ordered around
// each byte. Both sequences shift MSB first and the controller samples SDA on the
// rising clock edge.
type Sequence uint8

const (
	// SequenceByte drives DC, then frames the byte with CS low. Every bit pulls CLK
	// low, presents the bit on SDA and raises CLK.
	SequenceByte Sequence = iota

	// SequenceFramed re-arms CS (high, then low) before every byte and only then
	// drives DC. CLK is pulled low once, after which every bit presents SDA, raises
	// CLK and returns it low.
	SequenceFramed
)

func (s Sequence) String() string {
	switch s {
	case SequenceByte:
		return "byte"
	case SequenceFramed:
		return "framed"
	default:
		return fmt.Sprintf("Sequence(%d)", uint8(s))
	}
}

// BitBang is a write-only 4-wire serial bus driven from plain GPIO pins.
type BitBang struct {
	clk  gpio.PinOut
	sda  gpio.PinOut
	cs   gpio.PinOut
	dc   gpio.PinOut
	seq  Sequence
	half time.Duration
}

// NewBitBang sets up a bit-banged bus. A zero maxSpeed toggles the clock as fast as
// the GPIO driver allows.
func NewBitBang(clk, sda, cs, dc gpio.PinOut, seq Sequence, maxSpeed physic.Frequency) (*BitBang, error) {
	for name, pin := range map[string]gpio.PinOut{"clock": clk, "data": sda, "chip select": cs, "data/command": dc} {
		if pin == nil || pin == gpio.INVALID {
			return nil, fmt.Errorf("%w: %s", ErrPin, name)
		}
	}
	if seq > SequenceFramed {
		return nil, fmt.Errorf("conn: unsupported bit-bang sequence %s", seq)
	}

	b := &BitBang{
		clk: clk,
		sda: sda,
		cs:  cs,
		dc:  dc,
		seq: seq,
	}
	if maxSpeed > 0 {
		b.half = maxSpeed.Period() / 2
	}

	var w pinWriter
	w.out(b.cs, gpio.High)
	w.out(b.clk, gpio.Low)
	w.out(b.dc, gpio.High)
	if w.err != nil {
		return nil, w.err
	}
	return b, nil
}

func (b *BitBang) String() string {
	return fmt.Sprintf("bit-bang bus clk=%s sda=%s cs=%s dc=%s (%s)", b.clk, b.sda, b.cs, b.dc, b.seq)
}

// Close releases the chip select line.
func (b *BitBang) Close() error {
	return b.cs.Out(gpio.High)
}

// Command sends a single command byte with DC held low, leaving DC high afterwards.
func (b *BitBang) Command(cmd byte) error {
	var w pinWriter
	b.write(&w, gpio.Low, cmd)
	w.out(b.dc, gpio.High)
	return w.err
}

// Write sends data bytes with DC held high.
func (b *BitBang) Write(data []byte) (int, error) {
	var w pinWriter
	for i, v := range data {
		if b.write(&w, gpio.High, v); w.err != nil {
			return i, w.err
		}
	}
	return len(data), nil
}

func (b *BitBang) write(w *pinWriter, dc gpio.Level, v byte) {
	switch b.seq {
	case SequenceFramed:
		w.out(b.cs, gpio.High)
		w.out(b.cs, gpio.Low)
		w.out(b.dc, dc)
		w.out(b.clk, gpio.Low)
		for i := 0; i < 8; i++ {
			w.out(b.sda, v&0x80 != 0)
			w.out(b.clk, gpio.High)
			b.delay()
			w.out(b.clk, gpio.Low)
			b.delay()
			v <<= 1
		}
	default:
		w.out(b.dc, dc)
		w.out(b.cs, gpio.Low)
		for i := 0; i < 8; i++ {
			w.out(b.clk, gpio.Low)
			w.out(b.sda, v&0x80 != 0)
			b.delay()
			w.out(b.clk, gpio.High)
			b.delay()
			v <<= 1
		}
	}
	w.out(b.cs, gpio.High)
}

func (b *BitBang) delay() {
	if b.half > 0 {
		time.Sleep(b.half)
	}
}

// pinWriter keeps the first error of a series of pin writes.
type pinWriter struct {
	err error
}

func (w *pinWriter) out(pin gpio.PinOut, level gpio.Level) {
	if w.err == nil {
		w.err = pin.Out(level)
	}
}
