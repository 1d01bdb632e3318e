// Package cpu implements an RV32 fetch-decode-execute interpreter and
// a small assembler for the implemented instruction subset.
//
// The CPU is a flat model: 32 general-purpose registers with x0
// hardwired to zero, a program counter, and a little-endian byte
// memory. Step decodes one instruction at pc and executes it;
// unrecognized encodings are ignored and pc advances past them.
//
// The assembler supports labels, .equ equates, and compile-time
// $( ... ) expression evaluation, and produces the instruction words
// LoadProgram consumes. The Encode helpers build the standard R, I, S,
// B, U, and J instruction formats directly.
package cpu
