package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lc3/io"
	"github.com/ezrec/lc3/memory"
)

// testCPU builds a reset CPU with its own memory and a console over
// the given input, capturing output.
func testCPU(input string) (cpu *CPU, output *bytes.Buffer) {
	output = &bytes.Buffer{}
	cpu = &CPU{
		Mem: &memory.Memory{},
		Console: &io.Terminal{
			Input:  strings.NewReader(input),
			Output: output,
		},
	}
	cpu.Reset()

	return
}

// run loads words at PC_START and steps until halt, an error, or the
// step limit. Registers and flags are left as the caller set them.
func run(cpu *CPU, words ...uint16) (err error) {
	cpu.Mem.LoadWords(PC_START, words)
	cpu.PC = PC_START

	for range 10000 {
		if err = cpu.Step(); err != nil || cpu.Halted {
			return
		}
	}

	return
}

func TestAdd(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		r0   uint16
		r1   uint16
		word uint16
		want uint16
		cond CondFlag
	}){
		{"reg", 22, 128, 0b0001_010_000_0_00_001, 150, FLAG_P},
		{"imm_pos", 150, 0, 0b0001_010_000_1_01110, 164, FLAG_P},
		{"imm_neg", 5, 0, 0b0001_010_000_1_11011, 0, FLAG_Z},
		{"overflow", 0x7fff, 1, 0b0001_010_000_0_00_001, 0x8000, FLAG_N},
		{"wraps", 0xffff, 2, 0b0001_010_000_0_00_001, 1, FLAG_P},
	}

	for _, entry := range table {
		cpu, _ := testCPU("")
		cpu.R[0] = entry.r0
		cpu.R[1] = entry.r1

		assert.NoError(run(cpu, entry.word, 0xf025), entry.name)
		assert.Equal(entry.want, cpu.R[2], entry.name)
		assert.Equal(entry.cond, cpu.Cond, entry.name)
	}
}

func TestAnd(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		r0   uint16
		r1   uint16
		word uint16
		want uint16
		cond CondFlag
	}){
		{"reg", 0b1101_1001_0111_0101, 0b0100_1010_0010_1001, 0b0101_010_000_0_00_001, 0b0100_1000_0010_0001, FLAG_P},
		{"imm_neg", 0b1101_1001_0111_0101, 0, 0b0101_010_000_1_10101, 0b1101_1001_0111_0101, FLAG_N},
		{"zero", 0xaaaa, 0x5555, 0b0101_010_000_0_00_001, 0, FLAG_Z},
	}

	for _, entry := range table {
		cpu, _ := testCPU("")
		cpu.R[0] = entry.r0
		cpu.R[1] = entry.r1

		assert.NoError(run(cpu, entry.word, 0xf025), entry.name)
		assert.Equal(entry.want, cpu.R[2], entry.name)
		assert.Equal(entry.cond, cpu.Cond, entry.name)
	}
}

func TestNot(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCPU("")
	cpu.R[0] = 0x7fff

	assert.NoError(run(cpu, 0b1001_001_000_111111, 0xf025))
	assert.Equal(uint16(0x8000), cpu.R[1])
	assert.Equal(FLAG_N, cpu.Cond)
}

func TestBranch(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		cond  CondFlag // current flag state
		bits  uint16   // n/z/p field of the instruction
		taken bool
	}){
		{"never_p", FLAG_P, 0b000, false},
		{"never_z", FLAG_Z, 0b000, false},
		{"never_n", FLAG_N, 0b000, false},
		{"always_p", FLAG_P, 0b111, true},
		{"always_z", FLAG_Z, 0b111, true},
		{"always_n", FLAG_N, 0b111, true},
		{"z_on_z", FLAG_Z, 0b010, true},
		{"z_on_p", FLAG_P, 0b010, false},
		{"np_on_n", FLAG_N, 0b101, true},
		{"np_on_z", FLAG_Z, 0b101, false},
	}

	for _, entry := range table {
		cpu, _ := testCPU("")
		cpu.Cond = entry.cond

		// Branch over a word that loads r2 with 1.
		branch := uint16(OP_BR)<<12 | entry.bits<<9 | 1
		setR2 := uint16(0b0001_010_010_1_00001) // add r2, r2, #1

		assert.NoError(run(cpu, branch, setR2, 0xf025), entry.name)

		if entry.taken {
			assert.Equal(uint16(0), cpu.R[2], entry.name)
		} else {
			assert.Equal(uint16(1), cpu.R[2], entry.name)
		}
	}
}

func TestBranchBackward(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCPU("")

	// Count r2 down from 3 to 0, then fall through to halt.
	// 3000: add r2, r2, #3
	// 3001: add r2, r2, #-1
	// 3002: brp #-2
	// 3003: halt
	assert.NoError(run(cpu,
		0b0001_010_010_1_00011,
		0b0001_010_010_1_11111,
		uint16(OP_BR)<<12|uint16(FLAG_P)<<9|0x1fe,
		0xf025,
	))
	assert.Equal(uint16(0), cpu.R[2])
	assert.Equal(FLAG_Z, cpu.Cond)
}

func TestJumpAndReturn(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCPU("")

	// The subroutine copies r7 aside; halt overwrites it on the way out.
	// 3000: jsr #2      -> 3003, r7 = 3001
	// 3001: add r2, r2, #1
	// 3002: halt
	// 3003: add r4, r7, #0
	// 3004: add r3, r3, #5
	// 3005: ret         -> 3001
	assert.NoError(run(cpu,
		0b0100_1_00000000010,
		0b0001_010_010_1_00001,
		0xf025,
		0b0001_100_111_1_00000,
		0b0001_011_011_1_00101,
		0b1100_000_111_000000,
	))
	assert.Equal(uint16(5), cpu.R[3])
	assert.Equal(uint16(1), cpu.R[2])
	assert.Equal(PC_START+1, cpu.R[4])
}

func TestJSRR(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCPU("")
	cpu.R[3] = PC_START + 3

	// 3000: jsrr r3     -> 3003, r7 = 3001
	// 3001: halt
	// 3002: (skipped)
	// 3003: add r4, r7, #0
	// 3004: add r2, r2, #7
	// 3005: ret
	assert.NoError(run(cpu,
		0b0100_0_00_011_000000,
		0xf025,
		0,
		0b0001_100_111_1_00000,
		0b0001_010_010_1_00111,
		0b1100_000_111_000000,
	))
	assert.Equal(uint16(7), cpu.R[2])
	assert.Equal(PC_START+1, cpu.R[4])
}

func TestJSRRThroughR7(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCPU("")
	cpu.R[7] = PC_START + 2

	// The base register is read before r7 takes the return address.
	assert.NoError(run(cpu,
		0b0100_0_00_111_000000, // jsrr r7 -> 3002
		0,
		0b0001_100_111_1_00000, // add r4, r7, #0
		0xf025,
	))
	assert.Equal(PC_START+1, cpu.R[4])
}

func TestLoads(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCPU("")
	cpu.Mem.Write(0x2ffe, 0x1234) // ld target (pc-relative, negative)
	cpu.Mem.Write(0x3100, 0x3200) // ldi pointer
	cpu.Mem.Write(0x3200, 0x5678) // ldi target
	cpu.R[6] = 0x3200

	// 3000: ld r0, #-3   <- mem[0x2ffe]
	// 3001: ldi r1, #xfe <- mem[mem[0x3100]]
	// 3002: ldr r2, r6, #0
	// 3003: lea r3, #1   <- 0x3005
	// 3004: halt
	assert.NoError(run(cpu,
		0b0010_000_111111101,
		0b1010_001_011111110,
		0b0110_010_110_000000,
		0b1110_011_000000001,
		0xf025,
	))
	assert.Equal(uint16(0x1234), cpu.R[0])
	assert.Equal(uint16(0x5678), cpu.R[1])
	assert.Equal(uint16(0x5678), cpu.R[2])
	assert.Equal(uint16(0x3005), cpu.R[3])
	assert.Equal(FLAG_P, cpu.Cond)
}

func TestStores(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCPU("")
	cpu.R[0] = 0xabcd
	cpu.R[6] = 0x4000
	cpu.Mem.Write(0x3100, 0x3200) // sti pointer

	// 3000: st r0, #x10   -> mem[0x3011]
	// 3001: sti r0, #xfe  -> mem[mem[0x3100]]
	// 3002: str r0, r6, #4
	// 3003: halt
	assert.NoError(run(cpu,
		0b0011_000_000010000,
		0b1011_000_011111110,
		0b0111_000_110_000100,
		0xf025,
	))
	assert.Equal(uint16(0xabcd), cpu.Mem.Read(0x3011))
	assert.Equal(uint16(0xabcd), cpu.Mem.Read(0x3200))
	assert.Equal(uint16(0xabcd), cpu.Mem.Read(0x4004))
}

func TestIndirectIsDoubleDereference(t *testing.T) {
	assert := assert.New(t)

	// A pointer-to-pointer fixture: LD of the cell yields the pointer
	// value, LDI of the same cell yields what it points at.
	cpu, _ := testCPU("")
	cpu.Mem.Write(0x3100, 0x3200)
	cpu.Mem.Write(0x3200, 0x0042)

	assert.NoError(run(cpu,
		0b0010_000_011111111, // ld r0, #xff  <- mem[0x3100]
		0b1010_001_011111110, // ldi r1, #xfe <- mem[mem[0x3100]]
		0xf025,
	))
	assert.Equal(uint16(0x3200), cpu.R[0])
	assert.Equal(uint16(0x0042), cpu.R[1])
}

func TestUnimplementedStopsRun(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCPU("")

	err := run(cpu,
		uint16(OP_RES)<<12|0x123,
		0xf025,
	)
	assert.ErrorIs(err, ErrOpcodeReserved)
	assert.False(cpu.Halted)
	// The PC has already advanced past the faulting word.
	assert.Equal(PC_START+1, cpu.PC)
}

func TestHaltStopsAfterCurrentStep(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCPU("")

	assert.NoError(run(cpu,
		0xf025,
		0b0001_010_010_1_00001, // never reached
	))
	assert.True(cpu.Halted)
	assert.Equal(uint16(0), cpu.R[2])
	assert.Equal(PC_START+1, cpu.PC)
}
