// Package io provides the console channels for the LC-3 emulator. The trap
// routines consume a blocking byte channel (Console); the memory-mapped
// keyboard registers are fed by a non-blocking poller (Keyboard). Wiring
// either one to a concrete terminal or file is the caller's responsibility.
package io

// Console is the abstract byte channel consumed by the trap routines.
type Console interface {
	// ReadByte blocks until a byte of input is available, returning
	// io.EOF once the input source is exhausted.
	ReadByte() (byte, error)
	// WriteByte writes a single byte of output.
	WriteByte(value byte) error
}

// Keyboard is the input poller behind the memory-mapped keyboard
// status/data registers.
type Keyboard interface {
	// Poll reports a pending input byte, if any, without blocking.
	Poll() (value byte, ok bool)
}
