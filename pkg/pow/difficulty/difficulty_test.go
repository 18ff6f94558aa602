package difficulty

import (
	"errors"
	"testing"
)

func TestLeadingZeroBits(t *testing.T) {
	t.Parallel()

	t.Run("leading zeros are counted across bytes", func(t *testing.T) {
		cases := []struct {
			in   []byte
			want int
		}{
			{[]byte{0xFF}, 0},
			{[]byte{0x7F}, 1},
			{[]byte{0x01}, 7},
			{[]byte{0x00, 0xFF}, 8},
			{[]byte{0b00000000, 0b00011110}, 11},
			{[]byte{0b10000000, 0b00000000}, 0},
			{[]byte{}, 0},
			{make([]byte, 20), 160},
		}
		for _, c := range cases {
			if got := LeadingZeroBits(c.in); got != c.want {
				t.Errorf("LeadingZeroBits(%x) = %d, want %d", c.in, got, c.want)
			}
		}
	})

	t.Run("counting stops at the first non-zero byte", func(t *testing.T) {
		n := LeadingZeroBits([]byte{0b00000001, 0x00, 0x00, 0x00})
		if n != 7 {
			t.Error("Expected 7 leading zeros, got ", n)
		}
	})
}

func TestMeets(t *testing.T) {
	t.Parallel()

	digest := []byte{0x00, 0x0F, 0xFF}
	if !Meets(digest, 12) {
		t.Error("digest with 12 leading zeros should meet difficulty 12")
	}
	if Meets(digest, 13) {
		t.Error("digest with 12 leading zeros should not meet difficulty 13")
	}
	if !Meets([]byte{0xFF}, 0) {
		t.Error("every digest should meet difficulty 0")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := Validate(160, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(0, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(161, 20); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty for 161 bits, got %v", err)
	}
	if err := Validate(-1, 20); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty for -1, got %v", err)
	}
}
