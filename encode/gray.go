package encode

import "fmt"

// Gray4 splits 2-bit gray samples over a black/white and a red plane.
//
// Every two canvas bytes (eight samples) produce one byte per plane, MSB first. A
// sample sets its bit in the black/white plane when it is 0b11 or 0b01, and in the
// red plane when it is 0b11 or 0b10. Both output bytes are inverted.
type Gray4 struct{}

func (Gray4) Planes() int {
	return 2
}

func (Gray4) Encode(pix []byte) ([][]byte, error) {
	if len(pix)%2 != 0 {
		return nil, fmt.Errorf("%w: 4-gray needs byte pairs, got %d bytes", ErrLength, len(pix))
	}

	var (
		bw  = make([]byte, len(pix)/2)
		red = make([]byte, len(pix)/2)
	)
	for i := 0; i < len(pix); i += 2 {
		bw[i/2] = ^threshold(pix[i], pix[i+1], 0b01)
		red[i/2] = ^threshold(pix[i], pix[i+1], 0b10)
	}
	return [][]byte{bw, red}, nil
}

func (Gray4) String() string {
	return "4-gray"
}

func threshold(a, b, level byte) (out byte) {
	for _, v := range [2]byte{a, b} {
		for i := 0; i < 4; i++ {
			out <<= 1
			if s := v >> 6; s == 0b11 || s == level {
				out |= 1
			}
			v <<= 2
		}
	}
	return
}
