package encode

import "fmt"

// Palette4 remaps every 2-bit pixel through a fixed lookup table into the panel's
// physical color code, producing one plane.
type Palette4 struct {
	LUT [4]uint8
}

// Identity is a Palette4 for canvases that already hold panel codes.
var Identity = Palette4{LUT: [4]uint8{0, 1, 2, 3}}

func (e Palette4) Planes() int {
	return 1
}

func (e Palette4) Encode(pix []byte) ([][]byte, error) {
	if e.LUT == Identity.LUT {
		return [][]byte{pix}, nil
	}

	plane := make([]byte, len(pix))
	for i, b := range pix {
		var out byte
		for shift := 0; shift < 8; shift += 2 {
			out |= (e.LUT[(b>>shift)&3] & 3) << shift
		}
		plane[i] = out
	}
	return [][]byte{plane}, nil
}

func (e Palette4) String() string {
	return fmt.Sprintf("palette %v", e.LUT)
}
