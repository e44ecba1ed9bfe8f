// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator composes the LC-3 machine: processor, memory, and
// I/O channels, plus the object-image loader and the run loop.
package emulator

import (
	"encoding/binary"
	"iter"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/internal"
	"github.com/ezrec/lc3/io"
	"github.com/ezrec/lc3/memory"
)

// Emulator state. CPU + memory + IO channels. Exactly one machine per
// run; emulators never share state, so tests can run them side by side.
type Emulator struct {
	Verbose  bool // If set, enables verbose logging.
	*cpu.CPU      // Reference to the CPU simulation.

	Terminal io.Terminal // Console channel for the trap routines.
	Keyboard io.Keyboard // Optional key source for the KBSR/KBDR pair.
}

// NewEmulator creates a new emulator with its memory zeroed and the
// processor reset.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		CPU: &cpu.CPU{Mem: &memory.Memory{}},
	}
	emu.CPU.Console = &emu.Terminal
	emu.CPU.Reset()

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(
		emu.CPU.Defines(),
		emu.Mem.Defines(),
	)
}

// Load places an object image into memory: word 0 is the origin
// address, words 1..N fill consecutive cells from there. The image is
// validated in full before any cell is written, so a load error leaves
// no partial state.
func (emu *Emulator) Load(image []byte) (err error) {
	fail := func(cause error) error {
		return &ErrImage{Size: len(image), Err: cause}
	}

	if len(image) == 0 {
		return fail(ErrImageEmpty)
	}
	if len(image)%2 != 0 {
		return fail(ErrImageOdd)
	}

	origin := binary.BigEndian.Uint16(image)

	words := make([]uint16, 0, len(image)/2-1)
	for at := 2; at < len(image); at += 2 {
		words = append(words, binary.BigEndian.Uint16(image[at:]))
	}

	if int(origin)+len(words) > memory.Size {
		return fail(ErrImageOverflow)
	}

	emu.Mem.LoadWords(origin, words)
	emu.CPU.Reset()
	emu.PC = origin

	return
}

// LoadProgram places an assembled program into memory.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	return emu.Load(prog.Binary())
}

// Step runs a single fetch-decode-execute cycle, refreshing the
// keyboard device pair first. done reports that the machine has halted.
func (emu *Emulator) Step() (done bool, err error) {
	emu.CPU.Verbose = emu.Verbose

	if emu.Keyboard != nil && !emu.Mem.KeyPending() {
		if key, ok := emu.Keyboard.Poll(); ok {
			emu.Mem.PressKey(key)
		}
	}

	at := emu.PC
	if err = emu.CPU.Step(); err != nil {
		err = &ErrRuntime{PC: at, Err: err}
		return
	}

	done = emu.Halted

	return
}

// Run steps the machine until it halts or an instruction fails. A nil
// error means the program reached HALT.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Step()
		if err != nil {
			return
		}
	}

	return
}
