package cpu

import (
	"errors"

	"github.com/ezrec/lc3/translate"
)

var f = translate.From

var (
	// Decode errors
	ErrOpcodeReserved      = errors.New(f("reserved opcode"))
	ErrOpcodeUnimplemented = errors.New(f("unimplemented opcode"))
	ErrTrapUnimplemented   = errors.New(f("unimplemented trap"))

	// Assembler errors
	ErrOrigMissing        = errors.New(f(".orig missing"))
	ErrOrigDuplicate      = errors.New(f(".orig duplicated"))
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrOperandCount       = errors.New(f("wrong operand count"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrOffsetRange        = errors.New(f("offset out of range"))
	ErrImmediateRange     = errors.New(f("immediate out of range"))
	ErrStringInvalid      = errors.New(f("string literal invalid"))
	ErrProgramTooLong     = errors.New(f("program does not fit in memory"))
	ErrDirectiveMisplaced = errors.New(f("directive misplaced"))
)

// OpcodeError reports an instruction word that does not decode to an
// implemented operation.
type OpcodeError struct {
	Word uint16
	Err  error
}

func (err *OpcodeError) Error() string {
	return f("opcode %#04x: %v", err.Word, err.Err)
}

func (err *OpcodeError) Unwrap() error {
	return err.Err
}

// TrapError reports a TRAP vector outside the implemented service set.
type TrapError struct {
	Vector TrapVector
}

func (err *TrapError) Error() string {
	return f("trap vector %#02x: %v", uint16(err.Vector), ErrTrapUnimplemented)
}

func (err *TrapError) Unwrap() error {
	return ErrTrapUnimplemented
}

// ErrLabelMissing reports a reference to an undefined label.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrSyntax locates an assembler error in the source text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrParseNumber reports a token that is not a number.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression reports an invalid $(...) expression.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
