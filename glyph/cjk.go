package glyph

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// CJKSizes are the sizes of the built-in CJK tables.
var CJKSizes = []int{12, 16, 24, 32}

// cjkMaster holds the 16 x 16 masters every CJK size is scaled from.
var cjkMaster = []struct {
	key  string
	rows [16]string
}{
	{"一", [16]string{
		7: ".##############.",
	}},
	{"二", [16]string{
		3:  "...##########...",
		12: ".##############.",
	}},
	{"三", [16]string{
		2:  "..############..",
		7:  "...##########...",
		13: ".##############.",
	}},
	{"十", [16]string{
		1:  ".......##.......",
		2:  ".......##.......",
		3:  ".......##.......",
		4:  ".......##.......",
		5:  ".......##.......",
		6:  ".##############.",
		7:  ".......##.......",
		8:  ".......##.......",
		9:  ".......##.......",
		10: ".......##.......",
		11: ".......##.......",
		12: ".......##.......",
		13: ".......##.......",
		14: ".......##.......",
	}},
	{"口", [16]string{
		2:  "..############..",
		3:  "..##........##..",
		4:  "..##........##..",
		5:  "..##........##..",
		6:  "..##........##..",
		7:  "..##........##..",
		8:  "..##........##..",
		9:  "..##........##..",
		10: "..##........##..",
		11: "..##........##..",
		12: "..##........##..",
		13: "..############..",
	}},
	{"日", [16]string{
		1:  "...##########...",
		2:  "...##......##...",
		3:  "...##......##...",
		4:  "...##......##...",
		5:  "...##......##...",
		6:  "...##......##...",
		7:  "...##########...",
		8:  "...##......##...",
		9:  "...##......##...",
		10: "...##......##...",
		11: "...##......##...",
		12: "...##......##...",
		13: "...##......##...",
		14: "...##########...",
	}},
	{"中", [16]string{
		0:  ".......##.......",
		1:  ".......##.......",
		2:  ".......##.......",
		3:  ".##############.",
		4:  ".##....##....##.",
		5:  ".##....##....##.",
		6:  ".##....##....##.",
		7:  ".##....##....##.",
		8:  ".##....##....##.",
		9:  ".##############.",
		10: ".......##.......",
		11: ".......##.......",
		12: ".......##.......",
		13: ".......##.......",
		14: ".......##.......",
		15: ".......##.......",
	}},
	{"田", [16]string{
		1:  ".##############.",
		2:  ".##....##....##.",
		3:  ".##....##....##.",
		4:  ".##....##....##.",
		5:  ".##....##....##.",
		6:  ".##....##....##.",
		7:  ".##############.",
		8:  ".##....##....##.",
		9:  ".##....##....##.",
		10: ".##....##....##.",
		11: ".##....##....##.",
		12: ".##....##....##.",
		13: ".##....##....##.",
		14: ".##############.",
	}},
	{"王", [16]string{
		1:  ".##############.",
		2:  ".......##.......",
		3:  ".......##.......",
		4:  ".......##.......",
		5:  ".......##.......",
		6:  ".......##.......",
		7:  "..############..",
		8:  ".......##.......",
		9:  ".......##.......",
		10: ".......##.......",
		11: ".......##.......",
		12: ".......##.......",
		13: ".......##.......",
		14: "################",
	}},
	{"工", [16]string{
		2:  ".##############.",
		3:  ".......##.......",
		4:  ".......##.......",
		5:  ".......##.......",
		6:  ".......##.......",
		7:  ".......##.......",
		8:  ".......##.......",
		9:  ".......##.......",
		10: ".......##.......",
		11: ".......##.......",
		12: ".......##.......",
		13: "################",
	}},
	{"上", [16]string{
		1:  ".......##.......",
		2:  ".......##.......",
		3:  ".......##.......",
		4:  ".......##.......",
		5:  ".......##.......",
		6:  ".......#######..",
		7:  ".......##.......",
		8:  ".......##.......",
		9:  ".......##.......",
		10: ".......##.......",
		11: ".......##.......",
		12: ".......##.......",
		13: ".......##.......",
		14: "################",
	}},
}

const cjkMasterSize = 16

var (
	cjkOnce   sync.Once
	cjkTables map[int]*Table
)

// CJK returns the built-in CJK table for size.
//
// Glyphs are size x size pixels, packed row-major with the leftmost pixel in the least
// significant bit, and only plot their foreground.
func CJK(size int) (*Table, error) {
	cjkOnce.Do(buildCJK)
	t, ok := cjkTables[size]
	if !ok {
		return nil, fmt.Errorf("%w: cjk %d", ErrSize, size)
	}
	return t, nil
}

func buildCJK() {
	masters := make([]*image.Alpha, len(cjkMaster))
	for i, m := range cjkMaster {
		img := image.NewAlpha(image.Rect(0, 0, cjkMasterSize, cjkMasterSize))
		for y, row := range m.rows {
			for x := 0; x < len(row) && x < cjkMasterSize; x++ {
				if row[x] == '#' {
					img.SetAlpha(x, y, color.Alpha{A: 0xff})
				}
			}
		}
		masters[i] = img
	}

	tables := make(map[int]*Table, len(CJKSizes))
	for _, size := range CJKSizes {
		t := &Table{
			Size:    size,
			Advance: size,
			Packing: RowLSB,
		}
		scaled := newCell(size, size)
		for i, m := range cjkMaster {
			scaled.reset()
			xdraw.NearestNeighbor.Scale(scaled.Alpha, scaled.Rect, masters[i], masters[i].Rect, xdraw.Src, nil)
			t.Glyphs = append(t.Glyphs, Glyph{
				Key:    m.key,
				Width:  size,
				Height: size,
				Data:   RowLSB.Pack(size, size, scaled.on),
			})
		}
		tables[size] = t
	}
	cjkTables = tables
}
