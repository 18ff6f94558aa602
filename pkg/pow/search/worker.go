package search

import (
	"context"
	"errors"
	"sync/atomic"

	"powsearch/pkg/pow/difficulty"
	"powsearch/pkg/pow/fixedwidth"
	"powsearch/pkg/pow/nonce"
)

// errStopped means another worker made the rest of this range pointless.
var errStopped = errors.New("search stopped")

// scan walks e until a nonce meets target, stop reports true, ctx is done,
// or e is exhausted. Exhaustion returns (nil, nil).
//
// local is the calling worker's own attempt count. It carries over between
// calls so progress is reported per worker, not per range.
func (s *Searcher) scan(
	ctx context.Context,
	worker int,
	e *nonce.Enumerator,
	data fixedwidth.Block,
	target int,
	stop func() bool,
	local *uint64,
	attempts *atomic.Uint64,
) (*Result, error) {
	combined := make(fixedwidth.Block, len(data))
	start := *local
	defer func() { attempts.Add(*local - start) }()

	for {
		n, ok := e.Value()
		if !ok {
			return nil, nil
		}
		if stop != nil && stop() {
			return nil, errStopped
		}
		if (*local-start)&(pollInterval-1) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if err := s.cfg.Combine(combined, data, n); err != nil {
			return nil, err
		}
		sum := s.cfg.Digest.Sum(combined)
		*local++

		if zeros := difficulty.LeadingZeroBits(sum); zeros >= target {
			return &Result{Nonce: n.Clone(), Digest: sum, LeadingZeros: zeros}, nil
		}

		if s.cfg.Progress != nil && *local%s.cfg.ProgressInterval == 0 {
			s.cfg.Progress(Progress{Worker: worker, Attempts: *local, Nonce: n.Clone()})
		}

		e.Advance()
	}
}
