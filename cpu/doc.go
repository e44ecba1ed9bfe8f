// Package cpu implements the LC-3 processor and its assembler.
//
// The processor consists of eight 16-bit general-purpose registers, a
// program counter, and the n/z/p condition flags. Instructions are fetched
// from an attached memory, decoded into a tagged Instruction value, and
// executed one at a time; the TRAP instruction dispatches to the built-in
// OS service routines for character I/O and halt.
//
// The assembler provides the standard LC-3 assembly language with labels,
// the .ORIG/.FILL/.BLKW/.STRINGZ directives, equates, and compile-time
// expression evaluation.
package cpu
