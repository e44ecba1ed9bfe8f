// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a two-pass assembler for the LC-3 assembly language:
// labels, .ORIG/.FILL/.BLKW/.STRINGZ/.END directives, .equ equates,
// character literals, and compile-time $(...) expressions.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Equate    map[string]string // Map of equates.
	Label     map[string]uint16 // Map of labels to load addresses.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register numbers.
var regMap = map[string]uint16{
	"r0": 0, "r1": 1, "r2": 2, "r3": 3,
	"r4": 4, "r5": 5, "r6": 6, "r7": 7,
}

// opcodeMap is the map of non-branch mnemonics.
var opcodeMap = map[string]Opcode{
	"add":  OP_ADD,
	"and":  OP_AND,
	"not":  OP_NOT,
	"jmp":  OP_JMP,
	"jsr":  OP_JSR,
	"jsrr": OP_JSR,
	"ld":   OP_LD,
	"ldi":  OP_LDI,
	"ldr":  OP_LDR,
	"lea":  OP_LEA,
	"st":   OP_ST,
	"sti":  OP_STI,
	"str":  OP_STR,
	"trap": OP_TRAP,
	"rti":  OP_RTI,
	"ret":  OP_JMP,
}

// trapMap is the map of trap-routine aliases.
var trapMap = map[string]TrapVector{
	"getc":  TRAP_GETC,
	"out":   TRAP_OUT,
	"puts":  TRAP_PUTS,
	"in":    TRAP_IN,
	"putsp": TRAP_PUTSP,
	"halt":  TRAP_HALT,
}

// valueOf returns the value of a simple numeric word: #10 decimal,
// x3000 hex, or any strconv base-0 literal, optionally preceded by ~.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}

	text := word
	base := 0
	switch {
	case text[0] == '#':
		text = text[1:]
		base = 10
	case (text[0] == 'x' || text[0] == 'X') && len(text) > 1:
		text = "0x" + text[1:]
	}

	v64, err := strconv.ParseInt(text, base, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 > 0xffff || v64 < -0x8000 {
		err = ErrParseNumber(word)
		return
	}
	value = uint16(v64)

	if invert {
		value = ^value
	}

	return
}

// resolve returns the value of an operand word: an equate, a label, or
// a numeric literal. Equates are matched case-insensitively since the
// tokenizer folds source lines to lower case.
func (asm *Assembler) resolve(word string) (value uint16, err error) {
	if equ, ok := asm.Equate[word]; ok {
		return asm.resolve(strings.ToLower(equ))
	}
	if equ, ok := asm.Equate[strings.ToUpper(word)]; ok {
		return asm.resolve(strings.ToLower(equ))
	}
	if addr, ok := asm.Label[word]; ok {
		return addr, nil
	}

	value, err = asm.valueOf(word)
	if err != nil {
		err = ErrLabelMissing(word)
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value16 uint16
		value16, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value16))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

// statement is one source line that contributes words to the program.
type statement struct {
	lineNo int
	line   string
	addr   uint16
	words  []string
	str    string // .stringz payload
}

// parseLine splits one source line into lowercased tokens, expanding
// character literals and $() expressions first. A .stringz payload is
// kept verbatim.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, str string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Split off any string literal before comment stripping; a ';'
	// inside quotes is string content.
	if quote := strings.IndexByte(line, '"'); quote >= 0 {
		literal := regexp.MustCompile(`"(?:[^"\\]|\\.)*"`).FindString(line)
		if literal == "" {
			err = ErrStringInvalid
			return
		}
		str, err = strconv.Unquote(literal)
		if err != nil {
			err = ErrStringInvalid
			return
		}
		line = strings.Replace(line, literal, "", 1)
	}

	if comment := strings.IndexByte(line, ';'); comment >= 0 {
		line = line[:comment]
	}

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		text := word[1 : len(word)-1]
		if text[0] == '\\' {
			switch text[1:] {
			case "\\":
				text = "\\"
			case "n":
				text = "\n"
			case "r":
				text = "\r"
			case "0":
				text = "\x00"
			default:
				return word
			}
		}
		return fmt.Sprintf("%v", text[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(text string) string {
		value, _err := asm.parenEval(text[2 : len(text)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	line = strings.ToLower(strings.ReplaceAll(line, ",", " "))
	words = strings.Fields(line)

	return
}

// Parse assembles the source text into a Program.
func (asm *Assembler) Parse(reader io.Reader) (prog *Program, err error) {
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)
	asm.Label = map[string]uint16{}

	prog = &Program{}

	statements, err := asm.collect(reader, prog)
	if err != nil {
		return nil, err
	}

	for _, st := range statements {
		var words []uint16
		words, err = asm.encode(st)
		if err != nil {
			return nil, ErrSyntax{LineNo: st.lineNo, Line: st.line, Err: err}
		}
		prog.Words = append(prog.Words, words...)
	}

	prog.Symbols = maps.Clone(asm.Label)

	if len(prog.Words) > int(memoryTop-prog.Origin)+1 {
		return nil, ErrProgramTooLong
	}

	return
}

const memoryTop = uint16(0xffff)

// collect is the first pass: record labels and equates, assign load
// addresses, and keep the word-producing statements for encoding.
func (asm *Assembler) collect(reader io.Reader, prog *Program) (statements []statement, err error) {
	pc := uint16(0)
	origin := false
	lineno := 0

	fail := func(line string, cause error) error {
		return ErrSyntax{LineNo: lineno, Line: line, Err: cause}
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		lineno++

		var words []string
		var str string
		words, str, err = asm.parseLine(line, lineno)
		if err != nil {
			return nil, fail(line, err)
		}
		if len(words) == 0 && str == "" {
			continue
		}
		if len(words) == 0 {
			return nil, fail(line, ErrOpcodeMissing)
		}

		// .equ CONST VALUE
		if words[0] == ".equ" {
			if len(words) != 3 {
				return nil, fail(line, ErrEquateSyntax)
			}
			if _, ok := asm.Equate[words[1]]; ok {
				return nil, fail(line, ErrEquateDuplicate)
			}
			asm.Equate[words[1]] = words[2]
			continue
		}

		// .orig ADDRESS
		if words[0] == ".orig" {
			if origin {
				return nil, fail(line, ErrOrigDuplicate)
			}
			if len(words) != 2 {
				return nil, fail(line, ErrOperandCount)
			}
			pc, err = asm.valueOf(words[1])
			if err != nil {
				return nil, fail(line, err)
			}
			prog.Origin = pc
			origin = true
			continue
		}

		if words[0] == ".end" {
			break
		}

		if !origin {
			return nil, fail(line, ErrOrigMissing)
		}

		// Leading label, possibly alone on its line.
		if len(words) > 0 && !asm.isMnemonic(words[0]) {
			label := words[0]
			if _, ok := asm.Label[label]; ok {
				return nil, fail(line, ErrLabelDuplicate)
			}
			asm.Label[label] = pc
			words = words[1:]
			if len(words) == 0 && str == "" {
				continue
			}
			if len(words) == 0 {
				return nil, fail(line, ErrOpcodeMissing)
			}
		}

		st := statement{lineNo: lineno, line: line, addr: pc, words: words, str: str}

		var size uint16
		size, err = asm.sizeOf(st)
		if err != nil {
			return nil, fail(line, err)
		}

		statements = append(statements, st)
		pc += size

		if asm.Verbose {
			log.Printf("asm: %04x: %v", st.addr, st.words)
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}

	if !origin {
		err = ErrOrigMissing
		return nil, err
	}

	return
}

// isMnemonic reports whether word starts a statement rather than
// naming a label.
func (asm *Assembler) isMnemonic(word string) bool {
	if strings.HasPrefix(word, ".") {
		return true
	}
	if _, ok := opcodeMap[word]; ok {
		return true
	}
	if _, ok := trapMap[word]; ok {
		return true
	}
	_, ok := parseCond(word)
	return ok
}

// parseCond decodes a branch mnemonic into its condition bits.
func parseCond(word string) (cond CondFlag, ok bool) {
	if !strings.HasPrefix(word, "br") {
		return
	}
	for _, letter := range word[2:] {
		switch letter {
		case 'n':
			cond |= FLAG_N
		case 'z':
			cond |= FLAG_Z
		case 'p':
			cond |= FLAG_P
		default:
			return 0, false
		}
	}
	// A bare "br" branches unconditionally.
	if cond == 0 {
		cond = FLAG_N | FLAG_Z | FLAG_P
	}
	ok = true
	return
}

// sizeOf returns the number of words a statement loads.
func (asm *Assembler) sizeOf(st statement) (size uint16, err error) {
	switch st.words[0] {
	case ".stringz":
		size = uint16(len(st.str)) + 1
	case ".blkw":
		if len(st.words) != 2 {
			err = ErrOperandCount
			return
		}
		size, err = asm.resolve(st.words[1])
	case ".fill":
		size = 1
	default:
		size = 1
	}

	return
}

// encode is the second pass: one statement to its program words, with
// every label in scope.
func (asm *Assembler) encode(st statement) (words []uint16, err error) {
	op := st.words[0]

	switch op {
	case ".fill":
		if len(st.words) != 2 {
			return nil, ErrOperandCount
		}
		var value uint16
		value, err = asm.resolve(st.words[1])
		if err != nil {
			return nil, err
		}
		return []uint16{value}, nil
	case ".blkw":
		var size uint16
		size, err = asm.resolve(st.words[1])
		if err != nil {
			return nil, err
		}
		return make([]uint16, size), nil
	case ".stringz":
		for _, char := range []byte(st.str) {
			words = append(words, uint16(char))
		}
		words = append(words, 0)
		return words, nil
	}

	// .orig, .equ, and .end are consumed by the first pass.
	if strings.HasPrefix(op, ".") {
		return nil, ErrDirectiveMisplaced
	}

	if cond, ok := parseCond(op); ok {
		if len(st.words) != 2 {
			return nil, ErrOperandCount
		}
		var offset uint16
		offset, err = asm.offsetTo(st.words[1], st.addr, 9)
		if err != nil {
			return nil, err
		}
		return []uint16{uint16(OP_BR)<<12 | uint16(cond)<<9 | offset}, nil
	}

	if vector, ok := trapMap[op]; ok {
		if len(st.words) != 1 {
			return nil, ErrOperandCount
		}
		return []uint16{uint16(OP_TRAP)<<12 | uint16(vector)}, nil
	}

	opcode, ok := opcodeMap[op]
	if !ok {
		return nil, ErrOpcodeInvalid
	}

	word := uint16(opcode) << 12

	switch op {
	case "add", "and":
		if len(st.words) != 4 {
			return nil, ErrOperandCount
		}
		var dr, sr1 uint16
		if dr, err = asm.reg(st.words[1]); err != nil {
			return nil, err
		}
		if sr1, err = asm.reg(st.words[2]); err != nil {
			return nil, err
		}
		word |= dr<<9 | sr1<<6
		if sr2, regerr := asm.reg(st.words[3]); regerr == nil {
			word |= sr2
		} else {
			var imm uint16
			imm, err = asm.fitSigned(st.words[3], 5, ErrImmediateRange)
			if err != nil {
				return nil, err
			}
			word |= 1<<5 | imm
		}
	case "not":
		if len(st.words) != 3 {
			return nil, ErrOperandCount
		}
		var dr, sr uint16
		if dr, err = asm.reg(st.words[1]); err != nil {
			return nil, err
		}
		if sr, err = asm.reg(st.words[2]); err != nil {
			return nil, err
		}
		word |= dr<<9 | sr<<6 | 0x3f
	case "jmp", "jsrr":
		if len(st.words) != 2 {
			return nil, ErrOperandCount
		}
		var base uint16
		if base, err = asm.reg(st.words[1]); err != nil {
			return nil, err
		}
		word |= base << 6
	case "ret":
		if len(st.words) != 1 {
			return nil, ErrOperandCount
		}
		word |= 7 << 6
	case "jsr":
		if len(st.words) != 2 {
			return nil, ErrOperandCount
		}
		var offset uint16
		offset, err = asm.offsetTo(st.words[1], st.addr, 11)
		if err != nil {
			return nil, err
		}
		word |= 1<<11 | offset
	case "ld", "ldi", "lea", "st", "sti":
		if len(st.words) != 3 {
			return nil, ErrOperandCount
		}
		var reg, offset uint16
		if reg, err = asm.reg(st.words[1]); err != nil {
			return nil, err
		}
		offset, err = asm.offsetTo(st.words[2], st.addr, 9)
		if err != nil {
			return nil, err
		}
		word |= reg<<9 | offset
	case "ldr", "str":
		if len(st.words) != 4 {
			return nil, ErrOperandCount
		}
		var reg, base, offset uint16
		if reg, err = asm.reg(st.words[1]); err != nil {
			return nil, err
		}
		if base, err = asm.reg(st.words[2]); err != nil {
			return nil, err
		}
		offset, err = asm.fitSigned(st.words[3], 6, ErrOffsetRange)
		if err != nil {
			return nil, err
		}
		word |= reg<<9 | base<<6 | offset
	case "trap":
		if len(st.words) != 2 {
			return nil, ErrOperandCount
		}
		var vector uint16
		if vector, err = asm.resolve(st.words[1]); err != nil {
			return nil, err
		}
		if vector > 0xff {
			return nil, ErrImmediateRange
		}
		word |= vector
	case "rti":
		if len(st.words) != 1 {
			return nil, ErrOperandCount
		}
	}

	return []uint16{word}, nil
}

// reg parses a register operand.
func (asm *Assembler) reg(word string) (reg uint16, err error) {
	reg, ok := regMap[word]
	if !ok {
		err = ErrRegisterInvalid
	}

	return
}

// offsetTo computes a PC-relative offset field. A label resolves to
// its address relative to the incremented PC; a plain number is used
// as the offset directly. Either must fit the signed field width.
func (asm *Assembler) offsetTo(word string, pc uint16, bits uint) (offset uint16, err error) {
	if addr, ok := asm.Label[word]; ok {
		diff := int(addr) - (int(pc) + 1)
		return fitRange(diff, bits)
	}

	return asm.fitSigned(word, bits, ErrOffsetRange)
}

// fitSigned resolves a numeric operand into a signed field of the
// given width.
func (asm *Assembler) fitSigned(word string, bits uint, rangeErr error) (value uint16, err error) {
	raw, err := asm.resolve(word)
	if err != nil {
		return
	}

	value, err = fitRange(int(int16(raw)), bits)
	if err != nil {
		err = rangeErr
	}

	return
}

// fitRange masks value into a signed field of the given width.
func fitRange(value int, bits uint) (field uint16, err error) {
	limit := 1 << (bits - 1)
	if value >= limit || value < -limit {
		err = ErrOffsetRange
		return
	}

	field = uint16(value) & (1<<bits - 1)

	return
}
