// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/rvbit/internal"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// fixup is a forward label reference waiting for the label's address.
type fixup struct {
	index  int    // Index into Words of the instruction to patch.
	lineno int    // Line number of the reference, for diagnostics.
	line   string // Source text of the reference.
	label  string
	encode func(offset int32) (uint32, error)
}

// Assembler assembles the implemented RV32 subset: labels, .equ
// equates, ';' and '#' comments, and compile-time $( ... ) expression
// evaluation over the equates.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Base    uint32   // Byte address of the first instruction.
	Words   []uint32 // Assembled instruction words.

	Label  map[string]uint32 // Map of labels to byte addresses.
	Equate map[string]string // Map of equates.

	fixups []fixup
}

// currentAddr is the byte address of the next instruction to emit.
func (asm *Assembler) currentAddr() uint32 {
	return asm.Base + uint32(4*len(asm.Words))
}

// Symbols iterates all equates and labels known after a Parse, label
// addresses formatted as hex.
func (asm *Assembler) Symbols() iter.Seq2[string, string] {
	labels := func(yield func(string, string) bool) {
		for name, addr := range asm.Label {
			if !yield(name, fmt.Sprintf("%#x", addr)) {
				return
			}
		}
	}

	return internal.IterSeq2Concat(maps.All(asm.Equate), labels)
}

// valueOf returns the value of a simple numeric word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}

	return
}

// regOf returns the register index of an x0..x31 name.
func (asm *Assembler) regOf(word string) (reg uint32, err error) {
	if len(word) < 2 || word[0] != 'x' {
		err = ErrRegisterInvalid
		return
	}

	idx, perr := strconv.ParseUint(word[1:], 10, 5)
	if perr != nil {
		err = ErrRegisterInvalid
		return
	}

	reg = uint32(idx)

	return
}

// immOf returns a numeric word checked against an inclusive range.
func (asm *Assembler) immOf(word string, lo, hi int64) (imm int32, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if value < lo || value > hi {
		err = ErrImmRange(value)
		return
	}

	imm = int32(value)

	return
}

var memOperandRe = regexp.MustCompile(`^(.*)\((.*)\)$`)

// memOf splits an "imm(rs)" memory operand.
func (asm *Assembler) memOf(word string) (imm int32, rs uint32, err error) {
	m := memOperandRe.FindStringSubmatch(word)
	if m == nil {
		err = ErrOperandMissing
		return
	}

	off := m[1]
	if len(off) == 0 {
		off = "0"
	}

	imm, err = asm.immOf(off, -2048, 2047)
	if err != nil {
		return
	}

	rs, err = asm.regOf(m[2])

	return
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		value64, verr := asm.valueOf(str)
		if verr != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	stRc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	stInt, ok := stRc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = stInt.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	return
}

// parseLine expands one source line into its operand words: $()
// evaluation, .equ handling, equate substitution, and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")
	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint32, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return
}

// rTypeMap maps register-register mnemonics to their funct fields.
var rTypeMap = map[string](struct{ funct3, funct7 uint32 }){
	"add": {0x0, 0x00},
	"sub": {0x0, 0x20},
	"sll": {0x1, 0x00},
	"xor": {0x4, 0x00},
	"srl": {0x5, 0x00},
	"sra": {0x5, 0x20},
	"or":  {0x6, 0x00},
	"and": {0x7, 0x00},
}

// iTypeMap maps register-immediate mnemonics to funct3.
var iTypeMap = map[string]uint32{
	"addi": 0x0,
	"xori": 0x4,
	"ori":  0x6,
	"andi": 0x7,
}

// shiftImmMap maps immediate-shift mnemonics to their funct fields.
var shiftImmMap = map[string](struct{ funct3, funct7 uint32 }){
	"slli": {0x1, 0x00},
	"srli": {0x5, 0x00},
	"srai": {0x5, 0x20},
}

// branchMap maps branch mnemonics to funct3.
var branchMap = map[string]uint32{
	"beq": 0x0,
	"bne": 0x1,
}

// needArgs checks the operand count of an instruction.
func needArgs(args []string, count int) (err error) {
	if len(args) < count {
		err = ErrOperandMissing
	} else if len(args) > count {
		err = ErrOperandExtra
	}

	return
}

// emitTarget emits an instruction whose offset depends on a target
// word: numbers encode immediately, labels become fixups patched at
// the end of Parse.
func (asm *Assembler) emitTarget(word string, lineno int, line string,
	encode func(offset int32) (uint32, error)) (err error) {
	value, verr := asm.valueOf(word)
	if verr == nil {
		var instr uint32
		instr, err = encode(int32(value))
		if err != nil {
			return
		}
		asm.Words = append(asm.Words, instr)
		return
	}

	asm.fixups = append(asm.fixups, fixup{
		index:  len(asm.Words),
		lineno: lineno,
		line:   line,
		label:  word,
		encode: encode,
	})
	asm.Words = append(asm.Words, 0)

	return
}

// parseWords encodes the words of a line as one instruction.
func (asm *Assembler) parseWords(words []string, lineno int, line string) (err error) {
	if len(words) == 0 {
		return
	}

	mnem := words[0]
	args := words[1:]

	rFunct, isR := rTypeMap[mnem]
	iFunct3, isI := iTypeMap[mnem]
	shFunct, isShift := shiftImmMap[mnem]
	brFunct3, isBranch := branchMap[mnem]

	switch {
	case mnem == "nop":
		if err = needArgs(args, 0); err != nil {
			return
		}
		asm.Words = append(asm.Words, EncodeI(OPCODE_OP_IMM, 0, 0x0, 0, 0))
	case isR:
		if err = needArgs(args, 3); err != nil {
			return
		}
		var rd, rs1, rs2 uint32
		if rd, err = asm.regOf(args[0]); err != nil {
			return
		}
		if rs1, err = asm.regOf(args[1]); err != nil {
			return
		}
		if rs2, err = asm.regOf(args[2]); err != nil {
			return
		}
		asm.Words = append(asm.Words, EncodeR(OPCODE_OP, rd, rFunct.funct3, rs1, rs2, rFunct.funct7))
	case isI:
		if err = needArgs(args, 3); err != nil {
			return
		}
		var rd, rs1 uint32
		var imm int32
		if rd, err = asm.regOf(args[0]); err != nil {
			return
		}
		if rs1, err = asm.regOf(args[1]); err != nil {
			return
		}
		if imm, err = asm.immOf(args[2], -2048, 2047); err != nil {
			return
		}
		asm.Words = append(asm.Words, EncodeI(OPCODE_OP_IMM, rd, iFunct3, rs1, imm))
	case isShift:
		if err = needArgs(args, 3); err != nil {
			return
		}
		var rd, rs1 uint32
		var shamt int32
		if rd, err = asm.regOf(args[0]); err != nil {
			return
		}
		if rs1, err = asm.regOf(args[1]); err != nil {
			return
		}
		if shamt, err = asm.immOf(args[2], 0, 31); err != nil {
			return
		}
		imm := int32(shFunct.funct7<<5) | shamt
		asm.Words = append(asm.Words, EncodeI(OPCODE_OP_IMM, rd, shFunct.funct3, rs1, imm))
	case mnem == "lw":
		if err = needArgs(args, 2); err != nil {
			return
		}
		var rd, rs1 uint32
		var imm int32
		if rd, err = asm.regOf(args[0]); err != nil {
			return
		}
		if imm, rs1, err = asm.memOf(args[1]); err != nil {
			return
		}
		asm.Words = append(asm.Words, EncodeI(OPCODE_LOAD, rd, 0x2, rs1, imm))
	case mnem == "sw":
		if err = needArgs(args, 2); err != nil {
			return
		}
		var rs1, rs2 uint32
		var imm int32
		if rs2, err = asm.regOf(args[0]); err != nil {
			return
		}
		if imm, rs1, err = asm.memOf(args[1]); err != nil {
			return
		}
		asm.Words = append(asm.Words, EncodeS(OPCODE_STORE, 0x2, rs1, rs2, imm))
	case isBranch:
		if err = needArgs(args, 3); err != nil {
			return
		}
		var rs1, rs2 uint32
		if rs1, err = asm.regOf(args[0]); err != nil {
			return
		}
		if rs2, err = asm.regOf(args[1]); err != nil {
			return
		}
		err = asm.emitTarget(args[2], lineno, line, func(offset int32) (uint32, error) {
			if offset < -4096 || offset > 4094 || offset%2 != 0 {
				return 0, ErrImmRange(offset)
			}
			return EncodeB(OPCODE_BRANCH, brFunct3, rs1, rs2, offset), nil
		})
	case mnem == "jal":
		if err = needArgs(args, 2); err != nil {
			return
		}
		var rd uint32
		if rd, err = asm.regOf(args[0]); err != nil {
			return
		}
		err = asm.emitTarget(args[1], lineno, line, func(offset int32) (uint32, error) {
			if offset < -(1<<20) || offset > (1<<20)-2 || offset%2 != 0 {
				return 0, ErrImmRange(offset)
			}
			return EncodeJ(OPCODE_JAL, rd, offset), nil
		})
	case mnem == "jalr":
		if err = needArgs(args, 2); err != nil {
			return
		}
		var rd, rs1 uint32
		var imm int32
		if rd, err = asm.regOf(args[0]); err != nil {
			return
		}
		if imm, rs1, err = asm.memOf(args[1]); err != nil {
			return
		}
		asm.Words = append(asm.Words, EncodeI(OPCODE_JALR, rd, 0x0, rs1, imm))
	case mnem == "lui" || mnem == "auipc":
		opcode := OPCODE_LUI
		if mnem == "auipc" {
			opcode = OPCODE_AUIPC
		}
		if err = needArgs(args, 2); err != nil {
			return
		}
		var rd uint32
		var imm int32
		if rd, err = asm.regOf(args[0]); err != nil {
			return
		}
		if imm, err = asm.immOf(args[1], 0, 0xfffff); err != nil {
			return
		}
		asm.Words = append(asm.Words, EncodeU(opcode, rd, uint32(imm)))
	default:
		err = ErrInstructionInvalid
	}

	return
}

// Parse assembles an input stream into instruction words.
func (asm *Assembler) Parse(input io.Reader) (words []uint32, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Words = asm.Words[:0]
	asm.fixups = asm.fixups[:0]
	asm.Equate = maps.Clone(sysEquate)

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v", lineno, text)
		}

		if n := strings.IndexAny(text, ";#"); n >= 0 {
			text = text[:n]
		}
		line = strings.TrimSpace(text)

		var fields []string
		fields, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(fields, lineno, line)
		if err != nil {
			return
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}

	// Final linking of jump labels.
	for _, fix := range asm.fixups {
		addr, ok := asm.Label[fix.label]
		if !ok {
			lineno, line = fix.lineno, fix.line
			err = ErrLabelMissing(fix.label)
			return
		}

		pc := asm.Base + uint32(4*fix.index)
		offset := int32(addr) - int32(pc)

		var instr uint32
		instr, err = fix.encode(offset)
		if err != nil {
			lineno, line = fix.lineno, fix.line
			return
		}
		asm.Words[fix.index] = instr
	}

	words = asm.Words

	return
}
