package fixedwidth

/*
	Fixed-width blocks:

	A Block is a big-endian unsigned integer of a declared byte width.
	Index 0 is the most significant byte. Both the data being searched over
	and the nonce are Blocks, and arithmetic between two Blocks is only
	defined when their widths match.

	Two different overflow behaviours live here on purpose:
	Increment refuses to wrap and reports exhaustion instead, because the
	nonce counter must never revisit a value.
	Add wraps silently, because combining data and nonce is modular
	arithmetic over the fixed width.
*/

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrLengthMismatch = errors.New("block length mismatch")
)

// Block is a fixed-width big-endian unsigned integer.
type Block []byte

// Zero returns the all-zero block of the given width.
func Zero(width int) Block {
	return make(Block, width)
}

// LeftPad copies data into a block of the given width, filling the most
// significant side with zero bytes.
func LeftPad(data []byte, width int) (Block, error) {
	if len(data) > width {
		return nil, fmt.Errorf("%w: data is %d bytes, block width is %d", ErrLengthMismatch, len(data), width)
	}
	b := make(Block, width)
	copy(b[width-len(data):], data)
	return b, nil
}

// Clone returns a copy of b that shares no memory with it.
func (b Block) Clone() Block {
	c := make(Block, len(b))
	copy(c, b)
	return c
}

// IsMax reports whether every byte of b is 0xFF.
func (b Block) IsMax() bool {
	for _, v := range b {
		if v != 0xFF {
			return false
		}
	}
	return true
}

// Compare compares two blocks of equal width as unsigned integers.
// For equal widths the byte-wise order is the numeric order.
func Compare(a, b Block) (int, error) {
	if len(a) != len(b) {
		return 0, mismatch(len(a), len(b))
	}
	return bytes.Compare(a, b), nil
}

func mismatch(a, b int) error {
	return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, a, b)
}
