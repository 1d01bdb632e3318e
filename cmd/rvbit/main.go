// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/rvbit/alu"
	"github.com/ezrec/rvbit/bitvec"
	"github.com/ezrec/rvbit/cpu"
	"github.com/ezrec/rvbit/f32"
	"github.com/ezrec/rvbit/mdu"
	"github.com/ezrec/rvbit/shifter"
)

func main() {
	var op string
	var aHex string
	var bHex string
	var shamt uint
	var trace bool
	var compile string
	var steps int
	var mem int
	var list bool
	var verbose bool

	flag.StringVar(&op, "op", "", "core operation: add sub sll srl sra mul div fadd fsub fmul")
	flag.StringVar(&aHex, "a", "0x0", "first operand, hex")
	flag.StringVar(&bHex, "b", "0x0", "second operand, hex")
	flag.UintVar(&shamt, "shamt", 0, "shift amount for sll/srl/sra")
	flag.BoolVar(&trace, "trace", false, "dump the operation trace")
	flag.StringVar(&compile, "c", "", ".s file to assemble and run")
	flag.IntVar(&steps, "steps", 1000, "maximum instructions to run")
	flag.IntVar(&mem, "mem", 4096, "memory size in bytes")
	flag.BoolVar(&list, "l", false, "list assembler symbols")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	switch {
	case len(op) != 0:
		evaluate(op, aHex, bHex, uint32(shamt), trace)
	case len(compile) != 0:
		run(compile, mem, steps, list, verbose)
	default:
		flag.Usage()
	}
}

// operand parses a hex operand or exits.
func operand(name, hex string) bitvec.Bits {
	bits, err := bitvec.FromHex(hex)
	if err != nil {
		log.Fatalf("-%v %v: %v", name, hex, err)
	}

	return bits
}

// dumpTrace prints an operation trace, one line per entry.
func dumpTrace(lines []string) {
	for _, line := range lines {
		fmt.Println(line)
	}
}

// evaluate runs a single operation through the arithmetic core and
// prints the result.
func evaluate(op, aHex, bHex string, shamt uint32, trace bool) {
	a := operand("a", aHex)
	b := operand("b", bHex)

	switch op {
	case "add", "sub":
		aluOp := alu.OP_ADD
		if op == "sub" {
			aluOp = alu.OP_SUB
		}
		res := alu.Execute(a, b, aluOp)
		fmt.Printf("result: %v\n", res.Result.Hex())
		fmt.Printf("flags: N=%d Z=%d C=%d V=%d\n",
			res.Flags.N, res.Flags.Z, res.Flags.C, res.Flags.V)
	case "sll", "srl", "sra":
		shOp := shifter.OP_SLL
		switch op {
		case "srl":
			shOp = shifter.OP_SRL
		case "sra":
			shOp = shifter.OP_SRA
		}
		res := shifter.Execute(a, shamt, shOp)
		fmt.Printf("result: %v\n", res.Hex())
	case "mul":
		res := mdu.Mul(mdu.MUL_OP_MUL, a, b)
		fmt.Printf("lo: %v\n", res.Lo.Hex())
		fmt.Printf("hi: %v\n", res.Hi.Hex())
		fmt.Printf("overflow: %v\n", res.Overflow)
		if trace {
			dumpTrace(res.Trace)
		}
	case "div":
		res := mdu.Div(mdu.DIV_OP_DIV, a, b)
		fmt.Printf("q: %v\n", res.Q.Hex())
		fmt.Printf("r: %v\n", res.R.Hex())
		fmt.Printf("overflow: %v\n", res.Overflow)
		if trace {
			dumpTrace(res.Trace)
		}
	case "fadd", "fsub", "fmul":
		var res f32.Result
		switch op {
		case "fadd":
			res = f32.Add(a, b)
		case "fsub":
			res = f32.Sub(a, b)
		case "fmul":
			res = f32.Mul(a, b)
		}
		fmt.Printf("result: %v\n", res.Bits.Hex())
		fmt.Printf("flags: overflow=%v underflow=%v invalid=%v\n",
			res.Flags.Overflow, res.Flags.Underflow, res.Flags.Invalid)
		if trace {
			dumpTrace(res.Trace)
		}
	default:
		log.Fatalf("-op %v: unknown operation", op)
	}
}

// run assembles a source file and executes it, then dumps the final
// register state.
func run(compile string, mem, steps int, list, verbose bool) {
	inf, err := os.Open(compile)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	words, err := asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	if list {
		for name, value := range asm.Symbols() {
			fmt.Printf("%v = %v\n", name, value)
		}
		return
	}

	s := cpu.New(mem)
	s.Verbose = verbose

	err = s.LoadProgram(words, asm.Base)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	err = s.Run(steps)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	fmt.Printf("pc: %08x\n", s.Pc)
	for i := 0; i < len(s.Regs); i += 4 {
		fmt.Printf("x%02d=%08x x%02d=%08x x%02d=%08x x%02d=%08x\n",
			i, s.Regs[i], i+1, s.Regs[i+1], i+2, s.Regs[i+2], i+3, s.Regs[i+3])
	}
}
