package io

import (
	"io"
)

// Terminal adapts an io.Reader/io.Writer pair into a Console. Input is
// consumed one byte at a time; output is written through immediately so
// that prompts appear before the next blocking read.
type Terminal struct {
	Input  io.Reader
	Output io.Writer
}

var _ Console = (*Terminal)(nil)

// ReadByte blocks until the underlying reader delivers a byte. A nil
// or exhausted reader reports io.EOF.
func (tm *Terminal) ReadByte() (value byte, err error) {
	if tm.Input == nil {
		err = io.EOF
		return
	}

	var one [1]byte
	for {
		var n int
		n, err = tm.Input.Read(one[:])
		if n > 0 {
			value = one[0]
			err = nil
			return
		}
		if err != nil {
			return
		}
	}
}

// WriteByte writes a single byte to the underlying writer.
func (tm *Terminal) WriteByte(value byte) (err error) {
	if tm.Output == nil {
		return ErrNoOutput
	}

	_, err = tm.Output.Write([]byte{value})
	return
}
