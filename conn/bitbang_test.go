package conn

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// wire records every level change of a set of pins in order.
type wire struct {
	trace []edge
}

type edge struct {
	pin   string
	level gpio.Level
}

type tracedPin struct {
	*gpiotest.Pin
	w *wire
}

func (p tracedPin) Out(l gpio.Level) error {
	p.w.trace = append(p.w.trace, edge{p.N, l})
	return p.Pin.Out(l)
}

func (w *wire) pin(name string) tracedPin {
	return tracedPin{Pin: &gpiotest.Pin{N: name}, w: w}
}

type frame struct {
	command bool
	value   byte
}

// decode plays the receiving side: with CS low SDA is sampled on every rising CLK
// edge, and DC is latched with the eighth bit.
func (w *wire) decode() (out []frame) {
	var (
		level = map[string]gpio.Level{"CS": gpio.High}
		value byte
		bits  int
	)
	for _, e := range w.trace {
		rising := e.pin == "CLK" && !level["CLK"] && e.level
		level[e.pin] = e.level
		if e.pin == "CS" && e.level {
			bits, value = 0, 0
		}
		if !rising || level["CS"] {
			continue
		}
		value <<= 1
		if level["SDA"] {
			value |= 1
		}
		if bits++; bits == 8 {
			out = append(out, frame{command: bool(!level["DC"]), value: value})
			bits, value = 0, 0
		}
	}
	return
}

func TestNewBitBang(t *testing.T) {
	var w wire
	if _, err := NewBitBang(w.pin("CLK"), nil, w.pin("CS"), w.pin("DC"), SequenceByte, 0); !errors.Is(err, ErrPin) {
		t.Errorf("expected ErrPin for a missing pin, got %v", err)
	}
	if _, err := NewBitBang(w.pin("CLK"), w.pin("SDA"), gpio.INVALID, w.pin("DC"), SequenceByte, 0); !errors.Is(err, ErrPin) {
		t.Errorf("expected ErrPin for an invalid pin, got %v", err)
	}
	if _, err := NewBitBang(w.pin("CLK"), w.pin("SDA"), w.pin("CS"), w.pin("DC"), Sequence(9), 0); err == nil {
		t.Error("expected unknown sequence to be rejected")
	}

	cs, dc := w.pin("CS"), w.pin("DC")
	if _, err := NewBitBang(w.pin("CLK"), w.pin("SDA"), cs, dc, SequenceFramed, 0); err != nil {
		t.Fatal(err)
	}
	if !cs.Read() || !dc.Read() {
		t.Error("expected CS and DC to idle high")
	}
}

func TestBitBang(t *testing.T) {
	for _, seq := range []Sequence{SequenceByte, SequenceFramed} {
		t.Run(seq.String(), func(it *testing.T) {
			var w wire
			b, err := NewBitBang(w.pin("CLK"), w.pin("SDA"), w.pin("CS"), w.pin("DC"), seq, 0)
			if err != nil {
				it.Fatal(err)
			}
			if err = b.Command(0x4e); err != nil {
				it.Fatal(err)
			}
			if n, err := b.Write([]byte{0xa5, 0x01, 0xff}); err != nil || n != 3 {
				it.Fatalf("write returned %d, %v", n, err)
			}

			want := []frame{{true, 0x4e}, {false, 0xa5}, {false, 0x01}, {false, 0xff}}
			got := w.decode()
			if len(got) != len(want) {
				it.Fatalf("expected %d frames, got %d: %+v", len(want), len(got), got)
			}
			for i := range want {
				if got[i] != want[i] {
					it.Errorf("frame %d: expected %+v, got %+v", i, want[i], got[i])
				}
			}

			last := w.trace[len(w.trace)-1]
			if last.pin != "CS" || !last.level {
				it.Errorf("expected transfer to end with CS high, got %+v", last)
			}
		})
	}
}

func TestBitBangFramedOrder(t *testing.T) {
	var w wire
	b, err := NewBitBang(w.pin("CLK"), w.pin("SDA"), w.pin("CS"), w.pin("DC"), SequenceFramed, 0)
	if err != nil {
		t.Fatal(err)
	}
	w.trace = nil
	if err = b.Command(0x12); err != nil {
		t.Fatal(err)
	}
	want := []edge{{"CS", gpio.High}, {"CS", gpio.Low}, {"DC", gpio.Low}, {"CLK", gpio.Low}}
	for i, e := range want {
		if w.trace[i] != e {
			t.Errorf("edge %d: expected %+v, got %+v", i, e, w.trace[i])
		}
	}
}

type failingPin struct {
	*gpiotest.Pin
}

func (failingPin) Out(gpio.Level) error { return errors.New("pin fault") }

func TestBitBangError(t *testing.T) {
	var w wire
	b, err := NewBitBang(w.pin("CLK"), w.pin("SDA"), w.pin("CS"), w.pin("DC"), SequenceByte, 0)
	if err != nil {
		t.Fatal(err)
	}
	b.sda = failingPin{&gpiotest.Pin{N: "SDA"}}
	if n, err := b.Write([]byte{1, 2}); err == nil || n != 0 {
		t.Errorf("expected first byte to fail, got %d, %v", n, err)
	}
	if err = b.Command(0x10); err == nil {
		t.Error("expected command to fail")
	}
}
