package search

/*
	Key concepts of the nonce search:

	Data and nonce:
	The data block is fixed by the caller. The nonce is a counter of the same
	width that starts at zero and only ever moves up by one. Each attempt
	combines the two (big-endian addition by default) and hashes the result.

	Difficulty:
	An attempt is accepted when its digest starts with at least the requested
	number of zero bits. Every extra bit doubles the expected work. A
	difficulty above the digest width can never be met and is rejected before
	any hashing is done.

	Exhaustion:
	The nonce never wraps. When every value of the width has been tried
	without success the search fails with ErrSearchExhausted, so a caller can
	retry with a wider nonce or an easier target.

	Workers:
	With one worker nonces are tried in increasing order and the reported
	nonce is the smallest one that works. With more workers the space is
	either cut into one contiguous range per worker (partitioned: first
	finder wins) or handed out in small chunks lowest-first (ordered: the
	smallest nonce still wins, at the cost of a little coordination).
*/

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"powsearch/pkg/pow/difficulty"
	"powsearch/pkg/pow/digest"
	"powsearch/pkg/pow/fixedwidth"
)

const (
	defaultProgressInterval = 1 << 20
	defaultChunkBits        = 16
	pollInterval            = 1024 // Attempts between context checks, power of two
)

var (
	ErrSearchExhausted   = errors.New("nonce space exhausted")
	ErrInvalidDifficulty = difficulty.ErrInvalidDifficulty
	ErrLengthMismatch    = fixedwidth.ErrLengthMismatch
	ErrInvalidConfig     = errors.New("invalid search configuration")
	ErrUnknownCombiner   = errors.New("unknown combiner")
)

// Strategy selects how the nonce space is shared between workers.
type Strategy string

const (
	Sequential  Strategy = "sequential"
	Partitioned Strategy = "partitioned"
	Ordered     Strategy = "ordered"
)

// Combiner writes the combination of data and nonce into dst.
type Combiner func(dst, data, nonce fixedwidth.Block) error

// CombinerByName returns "add" (modular addition) or "xor".
func CombinerByName(name string) (Combiner, error) {
	switch name {
	case "", "add":
		return fixedwidth.Add, nil
	case "xor":
		return fixedwidth.Xor, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCombiner, name)
	}
}

// Progress is reported periodically by every worker.
type Progress struct {
	Worker   int
	Attempts uint64
	Nonce    fixedwidth.Block
}

type Config struct {
	// Width is the byte width of both the data block and the nonce.
	Width   int
	Digest  digest.Provider
	Combine Combiner

	Workers  int
	Strategy Strategy
	// ChunkBits sets the ordered strategy's chunk size to 2^ChunkBits nonces.
	ChunkBits int

	// Progress is called every ProgressInterval attempts of each worker,
	// possibly from several goroutines at once.
	ProgressInterval uint64
	Progress         func(Progress)
}

// Result is an accepted nonce together with what it produced.
type Result struct {
	Nonce        fixedwidth.Block
	Digest       []byte
	LeadingZeros int
	Attempts     uint64
	Elapsed      time.Duration
}

// Searcher runs nonce searches for one width and digest.
type Searcher struct {
	cfg    Config
	logger *zap.Logger
}

// New validates cfg, fills in defaults and returns a Searcher.
func New(cfg Config, logger *zap.Logger) (*Searcher, error) {
	if cfg.Width < 0 {
		return nil, fmt.Errorf("%w: width %d", ErrInvalidConfig, cfg.Width)
	}
	if cfg.Digest == nil {
		p, err := digest.New(digest.Default)
		if err != nil {
			return nil, err
		}
		cfg.Digest = p
	}
	if cfg.Combine == nil {
		cfg.Combine = fixedwidth.Add
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	switch cfg.Strategy {
	case "":
		cfg.Strategy = Sequential
		if cfg.Workers > 1 {
			cfg.Strategy = Partitioned
		}
	case Sequential, Partitioned, Ordered:
	default:
		return nil, fmt.Errorf("%w: strategy %q", ErrInvalidConfig, cfg.Strategy)
	}
	if cfg.ChunkBits <= 0 {
		cfg.ChunkBits = defaultChunkBits
	}
	if cfg.ProgressInterval == 0 {
		cfg.ProgressInterval = defaultProgressInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Searcher{
		cfg:    cfg,
		logger: logger.With(zap.String("digest", cfg.Digest.Name()), zap.Int("width", cfg.Width)),
	}, nil
}

func (s *Searcher) Width() int { return s.cfg.Width }

func (s *Searcher) Digest() digest.Provider { return s.cfg.Digest }

// FindNonce searches for a nonce that, combined with data, hashes to a
// digest with at least target leading zero bits. Data shorter than the
// width is zero-padded on the most significant side.
//
// A target above the digest width fails immediately with an error that
// matches both ErrInvalidDifficulty and ErrSearchExhausted.
func (s *Searcher) FindNonce(ctx context.Context, data []byte, target int) (*Result, error) {
	if err := difficulty.Validate(target, s.cfg.Digest.Size()); err != nil {
		if target > 0 {
			return nil, fmt.Errorf("%w: %w", ErrSearchExhausted, err)
		}
		return nil, err
	}

	block, err := fixedwidth.LeftPad(data, s.cfg.Width)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.Int("difficulty", target), zap.String("strategy", string(s.cfg.Strategy)))
	log.Debug("search started", zap.Int("workers", s.cfg.Workers))

	var attempts atomic.Uint64
	start := time.Now()

	var res *Result
	switch {
	case s.cfg.Workers == 1 || s.cfg.Strategy == Sequential:
		res, err = s.sequential(ctx, block, target, &attempts)
	case s.cfg.Strategy == Partitioned:
		res, err = s.partitioned(ctx, block, target, &attempts)
	default:
		res, err = s.ordered(ctx, block, target, &attempts)
	}

	elapsed := time.Since(start)
	if err != nil {
		log.Debug("search stopped", zap.Uint64("attempts", attempts.Load()), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, err
	}
	if res == nil {
		log.Warn("nonce space exhausted", zap.Uint64("attempts", attempts.Load()), zap.Duration("elapsed", elapsed))
		return nil, fmt.Errorf("%w: no %d-byte nonce reaches %d zero bits", ErrSearchExhausted, s.cfg.Width, target)
	}

	res.Attempts = attempts.Load()
	res.Elapsed = elapsed
	log.Info("nonce found",
		zap.String("nonce", fmt.Sprintf("%x", []byte(res.Nonce))),
		zap.Int("leading_zeros", res.LeadingZeros),
		zap.Uint64("attempts", res.Attempts),
		zap.Duration("elapsed", elapsed))

	return res, nil
}

// Check combines data with nonce once and returns the digest and its
// leading zero bits.
func (s *Searcher) Check(data, nonce []byte) ([]byte, int, error) {
	block, err := fixedwidth.LeftPad(data, s.cfg.Width)
	if err != nil {
		return nil, 0, err
	}
	if len(nonce) != s.cfg.Width {
		return nil, 0, fmt.Errorf("%w: nonce is %d bytes, width is %d", ErrLengthMismatch, len(nonce), s.cfg.Width)
	}

	combined := make(fixedwidth.Block, s.cfg.Width)
	if err := s.cfg.Combine(combined, block, nonce); err != nil {
		return nil, 0, err
	}
	sum := s.cfg.Digest.Sum(combined)
	return sum, difficulty.LeadingZeroBits(sum), nil
}

// Verify reports whether nonce solves data at target.
func (s *Searcher) Verify(data, nonce []byte, target int) (bool, error) {
	if err := difficulty.Validate(target, s.cfg.Digest.Size()); err != nil {
		return false, err
	}
	_, zeros, err := s.Check(data, nonce)
	if err != nil {
		return false, err
	}
	return zeros >= target, nil
}
