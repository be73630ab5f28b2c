package decoder

import (
	"fmt"
	"math/bits"

	"github.com/qrsnap/qrsnap"
	"github.com/qrsnap/qrsnap/bitutil"
)

const (
	versionGenerator   = 0x1F25
	maxVersionDistance = 3
)

// BlockGroup is a run of blocks with the same data codeword count.
type BlockGroup struct {
	Count         int
	DataCodewords int
}

// ECBlocks is the block structure for one (version, EC level) pair.
type ECBlocks struct {
	ECCodewordsPerBlock int
	Groups              []BlockGroup
}

// NumBlocks returns the total number of blocks.
func (e ECBlocks) NumBlocks() int {
	n := 0
	for _, g := range e.Groups {
		n += g.Count
	}
	return n
}

// DataCodewords returns the number of data codewords over all blocks.
func (e ECBlocks) DataCodewords() int {
	n := 0
	for _, g := range e.Groups {
		n += g.Count * g.DataCodewords
	}
	return n
}

// Version describes one of the 40 symbol sizes.
type Version struct {
	Number           int
	AlignmentCenters []int
	TotalCodewords   int
	ecBlocks         [4]ECBlocks
}

// Dimension returns the side length in modules.
func (v *Version) Dimension() int {
	return 17 + 4*v.Number
}

// ECBlocks returns the block structure for level.
func (v *Version) ECBlocks(level ECLevel) ECBlocks {
	return v.ecBlocks[level]
}

// BuildFunctionPattern marks every module that carries no data: finders with
// separators and format areas, timing patterns, alignment patterns, version
// areas and the dark module.
func (v *Version) BuildFunctionPattern() *bitutil.BitMatrix {
	dim := v.Dimension()
	m := bitutil.NewBitMatrix(dim)

	m.SetRegion(0, 0, 9, 9)
	m.SetRegion(dim-8, 0, 8, 9)
	m.SetRegion(0, dim-8, 9, 8)

	last := len(v.AlignmentCenters) - 1
	for i, cy := range v.AlignmentCenters {
		for j, cx := range v.AlignmentCenters {
			// Skip the three corners occupied by finders.
			if (i == 0 && j == 0) || (i == 0 && j == last) || (i == last && j == 0) {
				continue
			}
			m.SetRegion(cx-2, cy-2, 5, 5)
		}
	}

	m.SetRegion(6, 9, 1, dim-17)
	m.SetRegion(9, 6, dim-17, 1)

	if v.Number >= 7 {
		m.SetRegion(dim-11, 0, 3, 6)
		m.SetRegion(0, dim-11, 6, 3)
	}
	return m
}

// VersionForNumber returns version number (1..40).
func VersionForNumber(number int) (*Version, error) {
	if number < 1 || number > 40 {
		return nil, fmt.Errorf("decoder: invalid version %d", number)
	}
	return &versions[number-1], nil
}

// VersionForDimension returns the version whose symbol is dim modules wide.
func VersionForDimension(dim int) (*Version, error) {
	if dim < 21 || dim > 177 || dim%4 != 1 {
		return nil, fmt.Errorf("%w: %d modules", qrsnap.ErrMatrixTooSmall, dim)
	}
	return &versions[(dim-17)/4-1], nil
}

// VersionBits returns the 18-bit version codeword for versions 7..40.
func VersionBits(number int) int {
	rem := number
	for i := 0; i < 12; i++ {
		rem = (rem << 1) ^ ((rem >> 11) * versionGenerator)
	}
	return number<<12 | rem
}

// DecodeVersionBits returns the version whose codeword is nearest to raw,
// and its distance, when within correction range.
func DecodeVersionBits(raw int) (number, distance int, ok bool) {
	distance = 32
	for n := 7; n <= 40; n++ {
		if d := bits.OnesCount(uint(raw ^ VersionBits(n))); d < distance {
			number, distance = n, d
		}
	}
	return number, distance, distance <= maxVersionDistance
}

// readVersionBlocks reads the top-right (6x3) and bottom-left (3x6) version
// blocks, most significant bit first.
func readVersionBlocks(m *bitutil.BitMatrix) (topRight, bottomLeft int) {
	dim := m.Height()
	for y := 5; y >= 0; y-- {
		for x := dim - 9; x >= dim-11; x-- {
			topRight <<= 1
			if m.Get(x, y) {
				topRight |= 1
			}
		}
	}
	for x := 5; x >= 0; x-- {
		for y := dim - 9; y >= dim-11; y-- {
			bottomLeft <<= 1
			if m.Get(x, y) {
				bottomLeft |= 1
			}
		}
	}
	return topRight, bottomLeft
}

// alignmentCenters returns the row/column coordinates shared by the
// alignment patterns of a version.
func alignmentCenters(number int) []int {
	if number == 1 {
		return nil
	}
	count := number/7 + 2
	step := 26
	if number != 32 {
		step = (number*4 + count*2 + 1) / (count*2 - 2) * 2
	}
	centers := make([]int, count)
	centers[0] = 6
	pos := 17 + 4*number - 7
	for i := count - 1; i >= 1; i-- {
		centers[i] = pos
		pos -= step
	}
	return centers
}

var versions = func() [40]Version {
	var vs [40]Version
	for i, row := range ecTable {
		v := Version{Number: i + 1, AlignmentCenters: alignmentCenters(i + 1)}
		for level, spec := range row {
			blocks := ECBlocks{
				ECCodewordsPerBlock: spec[0],
				Groups:              []BlockGroup{{Count: spec[1], DataCodewords: spec[2]}},
			}
			if spec[3] > 0 {
				blocks.Groups = append(blocks.Groups, BlockGroup{Count: spec[3], DataCodewords: spec[4]})
			}
			v.ecBlocks[level] = blocks
		}
		l := v.ecBlocks[ECLevelL]
		v.TotalCodewords = l.DataCodewords() + l.NumBlocks()*l.ECCodewordsPerBlock
		vs[i] = v
	}
	return vs
}()

// ecTable lists per version, for levels L, M, Q and H: EC codewords per
// block, then count and data codewords of the short blocks, then count and
// data codewords of the long blocks.
var ecTable = [40][4][5]int{
	{{7, 1, 19, 0, 0}, {10, 1, 16, 0, 0}, {13, 1, 13, 0, 0}, {17, 1, 9, 0, 0}}, // 1
	{{10, 1, 34, 0, 0}, {16, 1, 28, 0, 0}, {22, 1, 22, 0, 0}, {28, 1, 16, 0, 0}}, // 2
	{{15, 1, 55, 0, 0}, {26, 1, 44, 0, 0}, {18, 2, 17, 0, 0}, {22, 2, 13, 0, 0}}, // 3
	{{20, 1, 80, 0, 0}, {18, 2, 32, 0, 0}, {26, 2, 24, 0, 0}, {16, 4, 9, 0, 0}}, // 4
	{{26, 1, 108, 0, 0}, {24, 2, 43, 0, 0}, {18, 2, 15, 2, 16}, {22, 2, 11, 2, 12}}, // 5
	{{18, 2, 68, 0, 0}, {16, 4, 27, 0, 0}, {24, 4, 19, 0, 0}, {28, 4, 15, 0, 0}}, // 6
	{{20, 2, 78, 0, 0}, {18, 4, 31, 0, 0}, {18, 2, 14, 4, 15}, {26, 4, 13, 1, 14}}, // 7
	{{24, 2, 97, 0, 0}, {22, 2, 38, 2, 39}, {22, 4, 18, 2, 19}, {26, 4, 14, 2, 15}}, // 8
	{{30, 2, 116, 0, 0}, {22, 3, 36, 2, 37}, {20, 4, 16, 4, 17}, {24, 4, 12, 4, 13}}, // 9
	{{18, 2, 68, 2, 69}, {26, 4, 43, 1, 44}, {24, 6, 19, 2, 20}, {28, 6, 15, 2, 16}}, // 10
	{{20, 4, 81, 0, 0}, {30, 1, 50, 4, 51}, {28, 4, 22, 4, 23}, {24, 3, 12, 8, 13}}, // 11
	{{24, 2, 92, 2, 93}, {22, 6, 36, 2, 37}, {26, 4, 20, 6, 21}, {28, 7, 14, 4, 15}}, // 12
	{{26, 4, 107, 0, 0}, {22, 8, 37, 1, 38}, {24, 8, 20, 4, 21}, {22, 12, 11, 4, 12}}, // 13
	{{30, 3, 115, 1, 116}, {24, 4, 40, 5, 41}, {20, 11, 16, 5, 17}, {24, 11, 12, 5, 13}}, // 14
	{{22, 5, 87, 1, 88}, {24, 5, 41, 5, 42}, {30, 5, 24, 7, 25}, {24, 11, 12, 7, 13}}, // 15
	{{24, 5, 98, 1, 99}, {28, 7, 45, 3, 46}, {24, 15, 19, 2, 20}, {30, 3, 15, 13, 16}}, // 16
	{{28, 1, 107, 5, 108}, {28, 10, 46, 1, 47}, {28, 1, 22, 15, 23}, {28, 2, 14, 17, 15}}, // 17
	{{30, 5, 120, 1, 121}, {26, 9, 43, 4, 44}, {28, 17, 22, 1, 23}, {28, 2, 14, 19, 15}}, // 18
	{{28, 3, 113, 4, 114}, {26, 3, 44, 11, 45}, {26, 17, 21, 4, 22}, {26, 9, 13, 16, 14}}, // 19
	{{28, 3, 107, 5, 108}, {26, 3, 41, 13, 42}, {30, 15, 24, 5, 25}, {28, 15, 15, 10, 16}}, // 20
	{{28, 4, 116, 4, 117}, {26, 17, 42, 0, 0}, {28, 17, 22, 6, 23}, {30, 19, 16, 6, 17}}, // 21
	{{28, 2, 111, 7, 112}, {28, 17, 46, 0, 0}, {30, 7, 24, 16, 25}, {24, 34, 13, 0, 0}}, // 22
	{{30, 4, 121, 5, 122}, {28, 4, 47, 14, 48}, {30, 11, 24, 14, 25}, {30, 16, 15, 14, 16}}, // 23
	{{30, 6, 117, 4, 118}, {28, 6, 45, 14, 46}, {30, 11, 24, 16, 25}, {30, 30, 16, 2, 17}}, // 24
	{{26, 8, 106, 4, 107}, {28, 8, 47, 13, 48}, {30, 7, 24, 22, 25}, {30, 22, 15, 13, 16}}, // 25
	{{28, 10, 114, 2, 115}, {28, 19, 46, 4, 47}, {28, 28, 22, 6, 23}, {30, 33, 16, 4, 17}}, // 26
	{{30, 8, 122, 4, 123}, {28, 22, 45, 3, 46}, {30, 8, 23, 26, 24}, {30, 12, 15, 28, 16}}, // 27
	{{30, 3, 117, 10, 118}, {28, 3, 45, 23, 46}, {30, 4, 24, 31, 25}, {30, 11, 15, 31, 16}}, // 28
	{{30, 7, 116, 7, 117}, {28, 21, 45, 7, 46}, {30, 1, 23, 37, 24}, {30, 19, 15, 26, 16}}, // 29
	{{30, 5, 115, 10, 116}, {28, 19, 47, 10, 48}, {30, 15, 24, 25, 25}, {30, 23, 15, 25, 16}}, // 30
	{{30, 13, 115, 3, 116}, {28, 2, 46, 29, 47}, {30, 42, 24, 1, 25}, {30, 23, 15, 28, 16}}, // 31
	{{30, 17, 115, 0, 0}, {28, 10, 46, 23, 47}, {30, 10, 24, 35, 25}, {30, 19, 15, 35, 16}}, // 32
	{{30, 17, 115, 1, 116}, {28, 14, 46, 21, 47}, {30, 29, 24, 19, 25}, {30, 11, 15, 46, 16}}, // 33
	{{30, 13, 115, 6, 116}, {28, 14, 46, 23, 47}, {30, 44, 24, 7, 25}, {30, 59, 16, 1, 17}}, // 34
	{{30, 12, 121, 7, 122}, {28, 12, 47, 26, 48}, {30, 39, 24, 14, 25}, {30, 22, 15, 41, 16}}, // 35
	{{30, 6, 121, 14, 122}, {28, 6, 47, 34, 48}, {30, 46, 24, 10, 25}, {30, 2, 15, 64, 16}}, // 36
	{{30, 17, 122, 4, 123}, {28, 29, 46, 14, 47}, {30, 49, 24, 10, 25}, {30, 24, 15, 46, 16}}, // 37
	{{30, 4, 122, 18, 123}, {28, 13, 46, 32, 47}, {30, 48, 24, 14, 25}, {30, 42, 15, 32, 16}}, // 38
	{{30, 20, 117, 4, 118}, {28, 40, 47, 7, 48}, {30, 43, 24, 22, 25}, {30, 10, 15, 67, 16}}, // 39
	{{30, 19, 118, 6, 119}, {28, 18, 47, 31, 48}, {30, 34, 24, 34, 25}, {30, 20, 15, 61, 16}}, // 40
}
