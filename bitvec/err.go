package bitvec

import (
	"errors"

	"github.com/ezrec/rvbit/translate"
)

var f = translate.From

var (
	// Slice errors
	ErrSliceReversed = errors.New(f("slice low above high"))
	ErrSliceRange    = errors.New(f("slice high out of range"))
)

type ErrHexDigit byte

func (err ErrHexDigit) Error() string {
	return f("'%c' is not a hex digit", rune(err))
}
