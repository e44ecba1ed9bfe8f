package emulator

import (
	"errors"

	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	ErrImageEmpty    = errors.New(f("object image is empty"))
	ErrImageOdd      = errors.New(f("object image has an odd byte count"))
	ErrImageOverflow = errors.New(f("object image overflows memory"))
)

// ErrImage reports a malformed object image.
type ErrImage struct {
	Size int // Image length in bytes.
	Err  error
}

func (err *ErrImage) Error() string {
	return f("object image (%d bytes): %v", err.Size, err.Err)
}

func (err *ErrImage) Unwrap() error {
	return err.Err
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	PC  uint16
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("pc %04x %v", err.PC, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
