package cpu

import (
	"fmt"
	"strings"
)

// Instruction is one decoded instruction word. The operand fields are
// populated according to the opcode; offsets and immediates are already
// sign extended to 16 bits.
type Instruction struct {
	Word uint16 // Raw instruction word.
	Op   Opcode

	DR     uint16     // Destination register; source register for ST/STI/STR.
	SR1    uint16     // First source register, or base register.
	SR2    uint16     // Second source register, when Imm is clear.
	Imm    bool       // ADD/AND take the imm5 field instead of SR2.
	Imm5   uint16     // Sign-extended imm5.
	Offset uint16     // Sign-extended PCoffset9, PCoffset11, or offset6.
	Long   bool       // JSR takes PCoffset11 instead of a base register.
	Cond   CondFlag   // BR condition bits.
	Vector TrapVector // TRAP vector.
}

// SignExtend extends an n-bit two's-complement field to 16 bits by
// replicating its sign bit.
func SignExtend(value uint16, bits uint) uint16 {
	if (value>>(bits-1))&0x1 == 1 {
		value |= 0xffff << bits
	}

	return value
}

// Decode maps a raw instruction word to its decoded form. Decoding is
// pure and total over the implemented instruction set; the reserved
// opcode and RTI report an OpcodeError instead of decoding.
func Decode(word uint16) (inst Instruction, err error) {
	inst.Word = word
	inst.Op = Opcode(word >> 12)

	switch inst.Op {
	case OP_ADD, OP_AND:
		inst.DR = (word >> 9) & 0x7
		inst.SR1 = (word >> 6) & 0x7
		inst.Imm = (word>>5)&0x1 == 1
		if inst.Imm {
			inst.Imm5 = SignExtend(word&0x1f, 5)
		} else {
			inst.SR2 = word & 0x7
		}
	case OP_NOT:
		inst.DR = (word >> 9) & 0x7
		inst.SR1 = (word >> 6) & 0x7
	case OP_BR:
		inst.Cond = CondFlag((word >> 9) & 0x7)
		inst.Offset = SignExtend(word&0x1ff, 9)
	case OP_JMP:
		inst.SR1 = (word >> 6) & 0x7
	case OP_JSR:
		inst.Long = (word>>11)&0x1 == 1
		if inst.Long {
			inst.Offset = SignExtend(word&0x7ff, 11)
		} else {
			inst.SR1 = (word >> 6) & 0x7
		}
	case OP_LD, OP_LDI, OP_LEA, OP_ST, OP_STI:
		inst.DR = (word >> 9) & 0x7
		inst.Offset = SignExtend(word&0x1ff, 9)
	case OP_LDR, OP_STR:
		inst.DR = (word >> 9) & 0x7
		inst.SR1 = (word >> 6) & 0x7
		inst.Offset = SignExtend(word&0x3f, 6)
	case OP_TRAP:
		inst.Vector = TrapVector(word & 0xff)
	case OP_RES:
		err = &OpcodeError{Word: word, Err: ErrOpcodeReserved}
	case OP_RTI:
		// Single privilege level; restore-from-interrupt has nothing
		// to restore.
		err = &OpcodeError{Word: word, Err: ErrOpcodeUnimplemented}
	}

	return
}

// String renders the instruction as assembler text.
func (inst Instruction) String() string {
	switch inst.Op {
	case OP_ADD, OP_AND:
		if inst.Imm {
			return fmt.Sprintf("%v r%d, r%d, #%d", inst.Op, inst.DR, inst.SR1, int16(inst.Imm5))
		}
		return fmt.Sprintf("%v r%d, r%d, r%d", inst.Op, inst.DR, inst.SR1, inst.SR2)
	case OP_NOT:
		return fmt.Sprintf("not r%d, r%d", inst.DR, inst.SR1)
	case OP_BR:
		letters := strings.Builder{}
		for _, flag := range []CondFlag{FLAG_N, FLAG_Z, FLAG_P} {
			if inst.Cond&flag != 0 {
				letters.WriteString(flag.String())
			}
		}
		return fmt.Sprintf("br%s #%d", letters.String(), int16(inst.Offset))
	case OP_JMP:
		if inst.SR1 == 7 {
			return "ret"
		}
		return fmt.Sprintf("jmp r%d", inst.SR1)
	case OP_JSR:
		if inst.Long {
			return fmt.Sprintf("jsr #%d", int16(inst.Offset))
		}
		return fmt.Sprintf("jsrr r%d", inst.SR1)
	case OP_LD, OP_LDI, OP_LEA, OP_ST, OP_STI:
		return fmt.Sprintf("%v r%d, #%d", inst.Op, inst.DR, int16(inst.Offset))
	case OP_LDR, OP_STR:
		return fmt.Sprintf("%v r%d, r%d, #%d", inst.Op, inst.DR, inst.SR1, int16(inst.Offset))
	case OP_TRAP:
		return fmt.Sprintf("trap %v", inst.Vector)
	default:
		return inst.Op.String()
	}
}
