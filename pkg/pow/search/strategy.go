package search

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"powsearch/pkg/pow/fixedwidth"
	"powsearch/pkg/pow/nonce"
)

func (s *Searcher) sequential(ctx context.Context, data fixedwidth.Block, target int, attempts *atomic.Uint64) (*Result, error) {
	var local uint64
	return s.scan(ctx, 0, nonce.NewEnumerator(s.cfg.Width), data, target, nil, &local, attempts)
}

// partitioned gives every worker one contiguous range. The first worker to
// find a nonce wins and the rest stop at their next attempt.
func (s *Searcher) partitioned(ctx context.Context, data fixedwidth.Block, target int, attempts *atomic.Uint64) (*Result, error) {
	ranges, err := nonce.Partition(s.cfg.Width, s.cfg.Workers)
	if err != nil {
		return nil, err
	}

	var (
		found  atomic.Bool
		winner *Result
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			e, err := nonce.NewRangeEnumerator(r)
			if err != nil {
				return err
			}
			var local uint64
			res, err := s.scan(gctx, i, e, data, target, found.Load, &local, attempts)
			if errors.Is(err, errStopped) {
				return nil
			}
			if err != nil {
				return err
			}
			if res != nil && found.CompareAndSwap(false, true) {
				winner = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return winner, nil
}

// ordered hands out chunks of 2^ChunkBits nonces lowest-first. A chunk is
// abandoned only once a nonce has been found in a lower chunk, so the
// reported nonce is the smallest one, as with a single worker.
func (s *Searcher) ordered(ctx context.Context, data fixedwidth.Block, target int, attempts *atomic.Uint64) (*Result, error) {
	d := newDispatcher(s.cfg.Width, s.cfg.ChunkBits)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		i := i
		g.Go(func() error {
			var local uint64
			for {
				r, ok := d.take()
				if !ok {
					return nil
				}
				e, err := nonce.NewRangeEnumerator(r)
				if err != nil {
					return err
				}
				res, err := s.scan(gctx, i, e, data, target, func() bool { return d.superseded(r.Start) }, &local, attempts)
				if errors.Is(err, errStopped) {
					return nil
				}
				if err != nil {
					return err
				}
				if res != nil {
					d.report(r.Start, res)
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d.best, nil
}

type dispatcher struct {
	mu    sync.Mutex
	next  fixedwidth.Block
	size  fixedwidth.Block // nil: one chunk spans the whole space
	done  bool
	found atomic.Bool

	best      *Result
	bestChunk fixedwidth.Block
}

func newDispatcher(width, chunkBits int) *dispatcher {
	d := &dispatcher{next: fixedwidth.Zero(width)}
	if chunkBits < 8*width {
		size := new(big.Int).Lsh(big.NewInt(1), uint(chunkBits))
		d.size = size.FillBytes(make([]byte, width))
	}
	return d
}

// take returns the next unsearched chunk. Chunks come out in increasing
// order, so once a nonce is found every later chunk is above it.
func (d *dispatcher) take() (nonce.Range, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done || d.best != nil {
		return nonce.Range{}, false
	}

	r := nonce.Range{Start: d.next.Clone()}
	if d.size == nil {
		d.done = true
		return r, true
	}

	end := make(fixedwidth.Block, len(d.next))
	carry, err := fixedwidth.AddCarry(end, d.next, d.size)
	if err != nil || carry {
		d.done = true
		return r, true
	}
	r.End = end
	d.next = end
	return r, true
}

func (d *dispatcher) report(chunk fixedwidth.Block, res *Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.best == nil || lessThan(res.Nonce, d.best.Nonce) {
		d.best = res
		d.bestChunk = chunk
	}
	d.found.Store(true)
}

// superseded reports whether a nonce was already found below chunk.
func (d *dispatcher) superseded(chunk fixedwidth.Block) bool {
	if !d.found.Load() {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return lessThan(d.bestChunk, chunk)
}

func lessThan(a, b fixedwidth.Block) bool {
	c, err := fixedwidth.Compare(a, b)
	return err == nil && c < 0
}
