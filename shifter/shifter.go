// Package shifter implements the 32-bit barrel shifter: logical left,
// logical right, and arithmetic right shifts by a 5-bit amount.
package shifter

import (
	"github.com/ezrec/rvbit/bitvec"
)

// Op is a shift operation type.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_SLL = Op(0) // sll
	OP_SRL = Op(1) // srl
	OP_SRA = Op(2) // sra
)

// Execute shifts a 32-digit value. Only the low 5 bits of the shift
// amount matter, matching the ISA's shift semantics. The value is
// zero-extended to 32 digits first.
func Execute(value bitvec.Bits, shamt uint32, op Op) (out bitvec.Bits) {
	v := value.ZeroExtend(32)
	s := int(shamt & 31)

	out = make(bitvec.Bits, 32)

	switch op {
	case OP_SLL:
		for i := 0; i < 32; i++ {
			if i+s < 32 {
				out[i+s] = v[i]
			}
		}

	case OP_SRL:
		for i := 0; i < 32; i++ {
			if i+s < 32 {
				out[i] = v[i+s]
			}
		}

	case OP_SRA:
		sign := v[31]
		for i := 0; i < 32; i++ {
			if i+s < 32 {
				out[i] = v[i+s]
			} else {
				out[i] = sign
			}
		}
	}

	return
}
