// Package render turns raw blocks and digests into text for humans.
package render

import (
	"encoding/hex"
	"strings"
)

// Byte renders b as eight binary digits, most significant bit first.
func Byte(b byte) string {
	var sb strings.Builder
	sb.Grow(8)
	for mask := byte(0x80); mask != 0; mask >>= 1 {
		if b&mask != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Bits renders every byte of bs with Byte, separated by spaces.
func Bits(bs []byte) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = Byte(b)
	}
	return strings.Join(parts, " ")
}

func Hex(bs []byte) string {
	return hex.EncodeToString(bs)
}
