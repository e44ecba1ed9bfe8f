package cpu

// Opcode is the top 4 bits of an instruction word.
type Opcode uint16

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_BR   = Opcode(0b0000) // br
	OP_ADD  = Opcode(0b0001) // add
	OP_LD   = Opcode(0b0010) // ld
	OP_ST   = Opcode(0b0011) // st
	OP_JSR  = Opcode(0b0100) // jsr
	OP_AND  = Opcode(0b0101) // and
	OP_LDR  = Opcode(0b0110) // ldr
	OP_STR  = Opcode(0b0111) // str
	OP_RTI  = Opcode(0b1000) // rti
	OP_NOT  = Opcode(0b1001) // not
	OP_LDI  = Opcode(0b1010) // ldi
	OP_STI  = Opcode(0b1011) // sti
	OP_JMP  = Opcode(0b1100) // jmp
	OP_RES  = Opcode(0b1101) // reserved
	OP_LEA  = Opcode(0b1110) // lea
	OP_TRAP = Opcode(0b1111) // trap
)

// CondFlag is a condition-flag bit set. After any flag-setting
// instruction exactly one bit is set; the BR condition field may
// combine them.
type CondFlag uint16

//go:generate go tool stringer -linecomment -type=CondFlag
const (
	FLAG_P = CondFlag(1 << 0) // p
	FLAG_Z = CondFlag(1 << 1) // z
	FLAG_N = CondFlag(1 << 2) // n
)

// TrapVector selects one of the OS service routines.
type TrapVector uint16

//go:generate go tool stringer -linecomment -type=TrapVector
const (
	TRAP_GETC  = TrapVector(0x20) // getc
	TRAP_OUT   = TrapVector(0x21) // out
	TRAP_PUTS  = TrapVector(0x22) // puts
	TRAP_IN    = TrapVector(0x23) // in
	TRAP_PUTSP = TrapVector(0x24) // putsp
	TRAP_HALT  = TrapVector(0x25) // halt
)
