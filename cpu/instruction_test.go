package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignExtend(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		value uint16
		bits  uint
		want  int16
	}){
		{"imm5_neg", 0b10101, 5, -11},
		{"imm5_min", 0b10000, 5, -16},
		{"imm5_pos", 0b01111, 5, 15},
		{"off6_neg", 0b111111, 6, -1},
		{"off6_pos", 0b011111, 6, 31},
		{"off9_neg", 0b100000000, 9, -256},
		{"off9_pos", 0b011111111, 9, 255},
		{"off11_neg", 0b10000000000, 11, -1024},
		{"off11_pos", 0b01111111111, 11, 1023},
		{"zero", 0, 9, 0},
	}

	for _, entry := range table {
		got := SignExtend(entry.value, entry.bits)
		assert.Equal(entry.want, int16(got), entry.name)
	}
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		word uint16
		want Instruction
	}){
		{
			"add_reg", 0b0001_010_000_0_00_001,
			Instruction{Op: OP_ADD, DR: 2, SR1: 0, SR2: 1},
		},
		{
			"add_imm", 0b0001_011_010_1_01110,
			Instruction{Op: OP_ADD, DR: 3, SR1: 2, Imm: true, Imm5: 14},
		},
		{
			"and_imm_neg", 0b0101_010_000_1_10101,
			Instruction{Op: OP_AND, DR: 2, SR1: 0, Imm: true, Imm5: 0xfff5},
		},
		{
			"not", 0b1001_001_000_111111,
			Instruction{Op: OP_NOT, DR: 1, SR1: 0},
		},
		{
			"br_nzp", 0b0000_111_000000011,
			Instruction{Op: OP_BR, Cond: FLAG_N | FLAG_Z | FLAG_P, Offset: 3},
		},
		{
			"br_never", 0b0000_000_111111111,
			Instruction{Op: OP_BR, Cond: 0, Offset: 0xffff},
		},
		{
			"jmp", 0b1100_000_011_000000,
			Instruction{Op: OP_JMP, SR1: 3},
		},
		{
			"ret", 0b1100_000_111_000000,
			Instruction{Op: OP_JMP, SR1: 7},
		},
		{
			"jsr", 0b0100_1_00000000010,
			Instruction{Op: OP_JSR, Long: true, Offset: 2},
		},
		{
			"jsrr", 0b0100_0_00_011_000000,
			Instruction{Op: OP_JSR, SR1: 3},
		},
		{
			"ldr", 0b0110_000_001_000100,
			Instruction{Op: OP_LDR, DR: 0, SR1: 1, Offset: 4},
		},
		{
			"str_neg", 0b0111_000_001_111111,
			Instruction{Op: OP_STR, DR: 0, SR1: 1, Offset: 0xffff},
		},
		{
			"lea", 0b1110_000_000000010,
			Instruction{Op: OP_LEA, DR: 0, Offset: 2},
		},
		{
			"trap_puts", 0xf022,
			Instruction{Op: OP_TRAP, Vector: TRAP_PUTS},
		},
	}

	for _, entry := range table {
		entry.want.Word = entry.word
		got, err := Decode(entry.word)
		assert.NoError(err, entry.name)
		assert.Equal(entry.want, got, entry.name)
	}
}

func TestDecodeUnimplemented(t *testing.T) {
	assert := assert.New(t)

	// Reserved opcode, across operand-bit patterns.
	for _, operand := range []uint16{0x000, 0x001, 0x555, 0xaaa, 0xfff} {
		word := uint16(OP_RES)<<12 | operand
		_, err := Decode(word)
		assert.ErrorIs(err, ErrOpcodeReserved, "operand %03x", operand)

		var oe *OpcodeError
		assert.ErrorAs(err, &oe)
		assert.Equal(word, oe.Word)
	}

	// RTI is out of scope at a single privilege level.
	_, err := Decode(uint16(OP_RTI) << 12)
	assert.ErrorIs(err, ErrOpcodeUnimplemented)
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		word uint16
		want string
	}){
		{0b0001_010_000_0_00_001, "add r2, r0, r1"},
		{0b0001_011_010_1_11110, "add r3, r2, #-2"},
		{0b0101_010_000_0_00_001, "and r2, r0, r1"},
		{0b1001_001_000_111111, "not r1, r0"},
		{0b0000_111_000000011, "brnzp #3"},
		{0b1100_000_111_000000, "ret"},
		{0b1100_000_011_000000, "jmp r3"},
		{0b0100_1_00000000010, "jsr #2"},
		{0b0110_000_001_000100, "ldr r0, r1, #4"},
		{0xf025, "trap halt"},
	}

	for _, entry := range table {
		inst, err := Decode(entry.word)
		assert.NoError(err)
		assert.Equal(entry.want, inst.String(), entry.want)
	}
}

func FuzzDecode(f *testing.F) {
	f.Add(uint16(0))
	f.Add(uint16(0xffff))
	f.Add(uint16(OP_RES) << 12)
	f.Add(uint16(OP_TRAP)<<12 | 0x25)

	f.Fuzz(func(t *testing.T, word uint16) {
		assert := assert.New(t)

		inst, err := Decode(word)
		op := Opcode(word >> 12)

		switch op {
		case OP_RES, OP_RTI:
			// Never decodes, never silently a no-op.
			assert.Error(err)
		default:
			assert.NoError(err)
			assert.Equal(op, inst.Op)
			assert.Equal(word, inst.Word)
		}
	})
}
