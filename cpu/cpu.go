package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/lc3/io"
	"github.com/ezrec/lc3/memory"
)

// Console is the trap-routine I/O channel interface.
type Console io.Console

// PC_START is the address where user programs conventionally load and
// where a reset machine begins execution.
const PC_START = uint16(0x3000)

var _cpu_defines = map[string]string{
	"PC_START": fmt.Sprintf("%#04x", PC_START),
	"GETC":     fmt.Sprintf("%#02x", uint16(TRAP_GETC)),
	"OUT":      fmt.Sprintf("%#02x", uint16(TRAP_OUT)),
	"PUTS":     fmt.Sprintf("%#02x", uint16(TRAP_PUTS)),
	"IN":       fmt.Sprintf("%#02x", uint16(TRAP_IN)),
	"PUTSP":    fmt.Sprintf("%#02x", uint16(TRAP_PUTSP)),
	"HALT":     fmt.Sprintf("%#02x", uint16(TRAP_HALT)),
}

// CPU is the LC-3 processor state: eight general-purpose registers, the
// program counter, and the condition flags. It executes instructions
// against an attached memory and console; exactly one CPU owns its
// memory for the duration of a run.
type CPU struct {
	Verbose bool // Set to enable verbose logging.

	Mem     *memory.Memory // Attached memory.
	Console Console        // Trap-routine I/O channel.

	R      [8]uint16 // Register bank r0-r7.
	PC     uint16    // Program counter.
	Cond   CondFlag  // Condition flags; exactly one bit set.
	Halted bool      // Raised by the HALT service routine.
}

// Defines for the cpu
func (cpu *CPU) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset clears the register bank and restarts execution at PC_START.
func (cpu *CPU) Reset() {
	clear(cpu.R[:])
	cpu.PC = PC_START
	cpu.Cond = FLAG_Z
	cpu.Halted = false
}

// String returns the current CPU state as a string.
func (cpu *CPU) String() (text string) {
	for n, val := range cpu.R {
		text += fmt.Sprintf("r%d: %04x\n", n, val)
	}
	text += fmt.Sprintf("pc: %04x\n", cpu.PC)
	text += fmt.Sprintf("cc: %v\n", cpu.Cond)

	return
}

// Step executes a single fetch-decode-execute cycle. The PC is advanced
// past the instruction before its effect is computed, so relative
// offsets are measured from the address of the next instruction.
func (cpu *CPU) Step() (err error) {
	word := cpu.Mem.Read(cpu.PC)

	if cpu.Verbose {
		log.Printf("%04x: %04x  %v", cpu.PC, word, cpu.String())
	}

	cpu.PC++

	inst, err := Decode(word)
	if err != nil {
		return
	}

	return cpu.Execute(inst)
}

// Execute applies one decoded instruction to the registers and memory.
// Side effects are confined to the cells and registers the instruction
// names.
func (cpu *CPU) Execute(inst Instruction) (err error) {
	switch inst.Op {
	case OP_ADD:
		cpu.R[inst.DR] = cpu.R[inst.SR1] + cpu.operand(inst)
		cpu.setFlags(cpu.R[inst.DR])
	case OP_AND:
		cpu.R[inst.DR] = cpu.R[inst.SR1] & cpu.operand(inst)
		cpu.setFlags(cpu.R[inst.DR])
	case OP_NOT:
		cpu.R[inst.DR] = ^cpu.R[inst.SR1]
		cpu.setFlags(cpu.R[inst.DR])
	case OP_BR:
		// A zero condition field never branches.
		if inst.Cond&cpu.Cond != 0 {
			cpu.PC += inst.Offset
		}
	case OP_JMP:
		cpu.PC = cpu.R[inst.SR1]
	case OP_JSR:
		ret := cpu.PC
		if inst.Long {
			cpu.PC += inst.Offset
		} else {
			cpu.PC = cpu.R[inst.SR1]
		}
		cpu.R[7] = ret
	case OP_LD:
		cpu.R[inst.DR] = cpu.Mem.Read(cpu.PC + inst.Offset)
		cpu.setFlags(cpu.R[inst.DR])
	case OP_LDI:
		cpu.R[inst.DR] = cpu.Mem.Read(cpu.Mem.Read(cpu.PC + inst.Offset))
		cpu.setFlags(cpu.R[inst.DR])
	case OP_LDR:
		cpu.R[inst.DR] = cpu.Mem.Read(cpu.R[inst.SR1] + inst.Offset)
		cpu.setFlags(cpu.R[inst.DR])
	case OP_LEA:
		cpu.R[inst.DR] = cpu.PC + inst.Offset
		cpu.setFlags(cpu.R[inst.DR])
	case OP_ST:
		cpu.Mem.Write(cpu.PC+inst.Offset, cpu.R[inst.DR])
	case OP_STI:
		cpu.Mem.Write(cpu.Mem.Read(cpu.PC+inst.Offset), cpu.R[inst.DR])
	case OP_STR:
		cpu.Mem.Write(cpu.R[inst.SR1]+inst.Offset, cpu.R[inst.DR])
	case OP_TRAP:
		cpu.R[7] = cpu.PC
		err = cpu.trap(inst.Vector)
	default:
		// Decode rejects RTI and the reserved opcode before they
		// reach the executor.
		err = &OpcodeError{Word: inst.Word, Err: ErrOpcodeUnimplemented}
	}

	return
}

// operand returns the second ALU input: a register, or the
// sign-extended imm5 field.
func (cpu *CPU) operand(inst Instruction) uint16 {
	if inst.Imm {
		return inst.Imm5
	}

	return cpu.R[inst.SR2]
}

// setFlags records the sign of result in the condition flags.
func (cpu *CPU) setFlags(result uint16) {
	switch {
	case result == 0:
		cpu.Cond = FLAG_Z
	case result>>15 == 1:
		cpu.Cond = FLAG_N
	default:
		cpu.Cond = FLAG_P
	}
}
