package difficulty

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// LeadingZeroBits counts the 0 bits from the start of b until the first 1
// bit. It stops at the first non-zero byte.
func LeadingZeroBits(b []byte) int {
	total := 0
	for _, v := range b {
		zeros := bits.LeadingZeros8(v)
		total += zeros
		if zeros != 8 {
			break
		}
	}
	return total
}

// Meets reports whether digest starts with at least difficulty zero bits.
func Meets(digest []byte, difficulty int) bool {
	return LeadingZeroBits(digest) >= difficulty
}

// Validate rejects difficulties that are negative or that no digest of
// digestSize bytes could ever satisfy.
func Validate(difficulty, digestSize int) error {
	if difficulty < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidDifficulty, difficulty)
	}
	if limit := digestSize * 8; difficulty > limit {
		return fmt.Errorf("%w: %d exceeds the %d-bit digest", ErrInvalidDifficulty, difficulty, limit)
	}
	return nil
}
