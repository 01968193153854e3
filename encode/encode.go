// Package encode converts packed canvas bytes into the RAM planes of a panel controller.
package encode

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrLength = errors.New("encode: invalid input length")
)

// Encoder turns canvas bytes into one byte slice per controller RAM plane.
type Encoder interface {
	// Planes is the number of RAM planes Encode returns.
	Planes() int

	// Encode the packed canvas bytes.
	Encode(pix []byte) ([][]byte, error)
}

// Mono passes 1-bit canvas bytes through to a single plane, optionally inverted.
// With Mirror set the same bytes are produced for a second plane, which some
// controllers use as the reference image for partial refresh.
type Mono struct {
	Invert bool
	Mirror bool
}

func (e Mono) Planes() int {
	if e.Mirror {
		return 2
	}
	return 1
}

func (e Mono) Encode(pix []byte) ([][]byte, error) {
	plane := pix
	if e.Invert {
		plane = make([]byte, len(pix))
		for i, b := range pix {
			plane[i] = ^b
		}
	}
	if e.Mirror {
		return [][]byte{plane, plane}, nil
	}
	return [][]byte{plane}, nil
}

func (e Mono) String() string {
	return fmt.Sprintf("mono (invert=%t, mirror=%t)", e.Invert, e.Mirror)
}
