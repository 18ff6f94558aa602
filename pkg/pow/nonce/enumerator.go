package nonce

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"powsearch/pkg/pow/fixedwidth"
)

var (
	ErrInvalidRange = errors.New("invalid nonce range")
)

// State is the lifecycle state of an Enumerator.
type State int

const (
	Active State = iota
	Exhausted
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Range is a contiguous span of nonces. End is exclusive; a nil End runs
// through the all-0xFF value of the width.
type Range struct {
	Start fixedwidth.Block
	End   fixedwidth.Block
}

// Enumerator walks a Range in increasing big-endian order. Once it is
// Exhausted it stays Exhausted.
type Enumerator struct {
	current fixedwidth.Block
	end     fixedwidth.Block
	state   State
	steps   uint64
}

// NewEnumerator returns an Active enumerator over the whole nonce space of
// width bytes, starting at zero.
func NewEnumerator(width int) *Enumerator {
	return &Enumerator{current: fixedwidth.Zero(width)}
}

// NewRangeEnumerator returns an enumerator seeded at r.Start that becomes
// Exhausted when it would reach r.End.
func NewRangeEnumerator(r Range) (*Enumerator, error) {
	if r.End != nil {
		cmp, err := fixedwidth.Compare(r.Start, r.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
		if cmp >= 0 {
			return nil, fmt.Errorf("%w: start %x is not below end %x", ErrInvalidRange, r.Start, r.End)
		}
	}

	e := &Enumerator{current: r.Start.Clone()}
	if r.End != nil {
		e.end = r.End.Clone()
	}
	return e, nil
}

// Value returns the current nonce. The returned block is owned by the
// enumerator and changes on the next Advance. ok is false once exhausted.
func (e *Enumerator) Value() (fixedwidth.Block, bool) {
	if e.state == Exhausted {
		return nil, false
	}
	return e.current, true
}

// Advance moves to the next nonce and reports whether the enumerator is
// still Active.
func (e *Enumerator) Advance() bool {
	if e.state == Exhausted {
		return false
	}
	if !fixedwidth.Increment(e.current) {
		e.state = Exhausted
		return false
	}
	if e.end != nil && bytes.Equal(e.current, e.end) {
		e.state = Exhausted
		return false
	}
	e.steps++
	return true
}

func (e *Enumerator) State() State {
	return e.state
}

// Steps returns how many successful advances have been made.
func (e *Enumerator) Steps() uint64 {
	return e.steps
}

// Partition splits the nonce space of width bytes into n disjoint
// contiguous ranges in increasing order. n is capped at the number of
// nonces in the space.
func Partition(width, n int) ([]Range, error) {
	if width < 0 {
		return nil, fmt.Errorf("%w: width %d", ErrInvalidRange, width)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: %d partitions", ErrInvalidRange, n)
	}

	total := new(big.Int).Lsh(big.NewInt(1), uint(8*width))
	if big.NewInt(int64(n)).Cmp(total) > 0 {
		n = int(total.Int64())
	}

	starts := make([]fixedwidth.Block, n)
	for i := 0; i < n; i++ {
		s := new(big.Int).Mul(total, big.NewInt(int64(i)))
		s.Div(s, big.NewInt(int64(n)))
		starts[i] = s.FillBytes(make([]byte, width))
	}

	ranges := make([]Range, n)
	for i := range starts {
		ranges[i].Start = starts[i]
		if i+1 < n {
			ranges[i].End = starts[i+1]
		}
	}
	return ranges, nil
}
