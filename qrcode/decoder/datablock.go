package decoder

import (
	"fmt"

	"github.com/qrsnap/qrsnap"
)

// DataBlock is one Reed-Solomon block: data codewords followed by EC codewords.
type DataBlock struct {
	NumDataCodewords int
	Codewords        []byte
}

// SplitBlocks de-interleaves raw codewords into their blocks. Data
// codewords are dealt round-robin over all blocks, the long blocks taking
// one extra at the end, then EC codewords round-robin.
func SplitBlocks(raw []byte, version *Version, level ECLevel) ([]DataBlock, error) {
	ec := version.ECBlocks(level)
	var blocks []DataBlock
	for _, g := range ec.Groups {
		for i := 0; i < g.Count; i++ {
			blocks = append(blocks, DataBlock{
				NumDataCodewords: g.DataCodewords,
				Codewords:        make([]byte, g.DataCodewords+ec.ECCodewordsPerBlock),
			})
		}
	}
	if want := ec.DataCodewords() + len(blocks)*ec.ECCodewordsPerBlock; len(raw) != want {
		return nil, fmt.Errorf("%w: %d codewords, want %d", qrsnap.ErrCorruptLayout, len(raw), want)
	}

	shortData := blocks[0].NumDataCodewords
	pos := 0
	for i := 0; i < shortData; i++ {
		for b := range blocks {
			blocks[b].Codewords[i] = raw[pos]
			pos++
		}
	}
	for b := range blocks {
		if blocks[b].NumDataCodewords > shortData {
			blocks[b].Codewords[shortData] = raw[pos]
			pos++
		}
	}
	for i := 0; i < ec.ECCodewordsPerBlock; i++ {
		for b := range blocks {
			blocks[b].Codewords[blocks[b].NumDataCodewords+i] = raw[pos]
			pos++
		}
	}
	return blocks, nil
}
