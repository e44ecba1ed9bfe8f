package cpu

import (
	"encoding/binary"
	"iter"
)

// Program is an assembled LC-3 object: a load origin and the words that
// load there.
type Program struct {
	Origin  uint16
	Words   []uint16
	Symbols map[string]uint16 // Label addresses.
}

// Binary emits the big-endian object image: the origin word followed by
// the program words.
func (prog *Program) Binary() (bins []byte) {
	bins = binary.BigEndian.AppendUint16(bins, prog.Origin)
	for _, word := range prog.Words {
		bins = binary.BigEndian.AppendUint16(bins, word)
	}

	return
}

// Cells iterates over the program words with their load addresses.
func (prog *Program) Cells() iter.Seq2[uint16, uint16] {
	return func(yield func(addr uint16, word uint16) bool) {
		for n, word := range prog.Words {
			if !yield(prog.Origin+uint16(n), word) {
				return
			}
		}
	}
}
