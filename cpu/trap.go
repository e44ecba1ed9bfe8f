package cpu

import (
	"errors"
	"io"
)

// trap dispatches one OS service call. R7 already holds the return
// address; the PC is unchanged unless the routine halts the machine.
func (cpu *CPU) trap(vector TrapVector) (err error) {
	switch vector {
	case TRAP_GETC:
		err = cpu.readKey(false)
	case TRAP_IN:
		err = cpu.readKey(true)
	case TRAP_OUT:
		err = cpu.Console.WriteByte(byte(cpu.R[0]))
	case TRAP_PUTS:
		err = cpu.puts()
	case TRAP_PUTSP:
		err = cpu.putsp()
	case TRAP_HALT:
		cpu.Halted = true
	default:
		err = &TrapError{Vector: vector}
	}

	return
}

// readKey blocks for one character of input and stores it in the low
// byte of r0, clearing the high byte. IN prompts and echoes; GETC does
// neither.
func (cpu *CPU) readKey(echo bool) (err error) {
	if echo {
		if err = cpu.write("Input: "); err != nil {
			return
		}
	}

	value, err := cpu.Console.ReadByte()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return
		}
		// End of input is reported as a zero character; programs
		// commonly loop on input and halt through their own logic.
		value, err = 0, nil
	} else if echo {
		if err = cpu.Console.WriteByte(value); err != nil {
			return
		}
	}

	cpu.R[0] = uint16(value)

	return
}

// puts writes the string at the address in r0, one character per word,
// up to a zero word.
func (cpu *CPU) puts() (err error) {
	for addr := cpu.R[0]; ; addr++ {
		word := cpu.Mem.Read(addr)
		if word == 0 {
			return
		}
		if err = cpu.Console.WriteByte(byte(word)); err != nil {
			return
		}
	}
}

// putsp writes the packed string at the address in r0: two characters
// per word, low byte first, high byte only when nonzero, up to a zero
// word.
func (cpu *CPU) putsp() (err error) {
	for addr := cpu.R[0]; ; addr++ {
		word := cpu.Mem.Read(addr)
		if word == 0 {
			return
		}
		if err = cpu.Console.WriteByte(byte(word)); err != nil {
			return
		}
		if high := byte(word >> 8); high != 0 {
			if err = cpu.Console.WriteByte(high); err != nil {
				return
			}
		}
	}
}

func (cpu *CPU) write(text string) (err error) {
	for _, value := range []byte(text) {
		if err = cpu.Console.WriteByte(value); err != nil {
			return
		}
	}

	return
}
