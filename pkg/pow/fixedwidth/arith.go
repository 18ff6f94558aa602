package fixedwidth

// AddWithCarry adds two bytes modulo 256 and reports whether the true sum
// reached 256.
func AddWithCarry(x, y byte) (byte, bool) {
	sum := x + y
	return sum, sum < x
}

// Increment adds one to b in place. Carries move from the last index
// toward index 0. It returns false, leaving b untouched, when b is the
// all-0xFF block or has zero width.
func Increment(b Block) bool {
	idx := len(b) - 1
	for idx >= 0 && b[idx] == 0xFF {
		idx--
	}
	if idx < 0 {
		return false
	}
	b[idx]++
	for i := idx + 1; i < len(b); i++ {
		b[i] = 0
	}
	return true
}

// Next returns b+1 as a new block, or false when b has no successor.
func Next(b Block) (Block, bool) {
	n := b.Clone()
	if !Increment(n) {
		return nil, false
	}
	return n, true
}

// AddCarry writes a+b into dst and reports the carry out of the most
// significant byte. dst may alias a or b.
func AddCarry(dst, a, b Block) (bool, error) {
	if len(a) != len(b) {
		return false, mismatch(len(a), len(b))
	}
	if len(dst) != len(a) {
		return false, mismatch(len(dst), len(a))
	}

	var carry bool
	for i := len(a) - 1; i >= 0; i-- {
		sum, c1 := AddWithCarry(a[i], b[i])
		var c2 bool
		if carry {
			sum, c2 = AddWithCarry(sum, 1)
		}
		dst[i] = sum
		carry = c1 || c2
	}
	return carry, nil
}

// Add writes a+b into dst modulo 2^(8*width). The carry out of index 0 is
// discarded.
func Add(dst, a, b Block) error {
	_, err := AddCarry(dst, a, b)
	return err
}

// AddBlocks returns a+b modulo 2^(8*width) as a new block.
func AddBlocks(a, b Block) (Block, error) {
	dst := make(Block, len(a))
	if err := Add(dst, a, b); err != nil {
		return nil, err
	}
	return dst, nil
}

// Xor writes a^b into dst. It is not interchangeable with Add: xor never
// carries between bytes.
func Xor(dst, a, b Block) error {
	if len(a) != len(b) {
		return mismatch(len(a), len(b))
	}
	if len(dst) != len(a) {
		return mismatch(len(dst), len(a))
	}
	for i := range a {
		dst[i] = a[i] ^ b[i]
	}
	return nil
}
