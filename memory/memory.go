// Package memory models the LC-3 memory: 65536 16-bit words addressed by a
// 16-bit unsigned address. Reads and writes are total over the address
// domain; there is no out-of-range failure mode.
//
// Four addresses at the top of the address space are reserved by convention
// for memory-mapped devices. The memory implements only the keyboard
// handshake: a published key raises the status bit, and reading the data
// register retracts it. The display pair is plain RAM.
package memory

import (
	"fmt"
	"iter"
	"maps"
)

// Memory-mapped device registers.
const (
	KBSR = uint16(0xFE00) // Keyboard status; bit 15 set while a key is pending.
	KBDR = uint16(0xFE02) // Keyboard data; the pending character.
	DSR  = uint16(0xFE04) // Display status; plain RAM in this emulator.
	DDR  = uint16(0xFE06) // Display data; plain RAM in this emulator.
)

// Size is the number of addressable cells.
const Size = 1 << 16

// StatusReady is the device-ready bit of a status register.
const StatusReady = uint16(1 << 15)

var _memory_defines = map[string]string{
	"KBSR": fmt.Sprintf("%#04x", KBSR),
	"KBDR": fmt.Sprintf("%#04x", KBDR),
	"DSR":  fmt.Sprintf("%#04x", DSR),
	"DDR":  fmt.Sprintf("%#04x", DDR),
}

// Memory is the flat memory of a single machine.
type Memory struct {
	cell [Size]uint16
}

// Defines for the memory map.
func (m *Memory) Defines() iter.Seq2[string, string] {
	return maps.All(_memory_defines)
}

// Reset zeroes every cell.
func (m *Memory) Reset() {
	clear(m.cell[:])
}

// Read returns the word at addr. Reading the keyboard data register
// retracts the status bit, completing the device handshake.
func (m *Memory) Read(addr uint16) (word uint16) {
	word = m.cell[addr]
	if addr == KBDR {
		m.ClearKey()
	}

	return
}

// Write stores word at addr.
func (m *Memory) Write(addr uint16, word uint16) {
	m.cell[addr] = word
}

// LoadWords copies words into consecutive cells starting at origin.
// The copy wraps around the top of the address space like every other
// address computation.
func (m *Memory) LoadWords(origin uint16, words []uint16) {
	addr := origin
	for _, word := range words {
		m.cell[addr] = word
		addr++
	}
}

// PressKey publishes a pending character through the keyboard device pair.
// The data register is written before the status bit is raised, so a
// program that polls KBSR never observes a stale KBDR.
func (m *Memory) PressKey(key byte) {
	m.cell[KBDR] = uint16(key)
	m.cell[KBSR] = StatusReady
}

// ClearKey retracts the keyboard status bit after the program has
// consumed the pending character.
func (m *Memory) ClearKey() {
	m.cell[KBSR] = 0
}

// KeyPending reports whether a published key has not yet been retracted.
func (m *Memory) KeyPending() bool {
	return m.cell[KBSR]&StatusReady != 0
}
