package usecases

import (
	"crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"

	"go.uber.org/zap"

	"powsearch/config"
	"powsearch/internal/domain"
	"powsearch/pkg/pow/search"
)

var (
	ErrGenerateRandom  = errors.New("failed to generate random challenge")
	ErrInvalidSolution = errors.New("nonce does not meet the difficulty")
	ErrUnknownDigest   = errors.New("digest not offered by this server")
)

// PowUsecase issues challenges and checks the nonces sent back for them.
type PowUsecase interface {
	GenerateChallenge() (*domain.ProofOfWork, error)
	ValidateSolution(pow *domain.ProofOfWork, nonce []byte) (*domain.Solution, error)
}

type powUsecaseImpl struct {
	cfg       config.Pow
	searchers map[string]*search.Searcher
	logger    *zap.Logger
}

// NewPowUsecase prepares one verifier per configured digest.
func NewPowUsecase(cfg config.Pow, logger *zap.Logger) (PowUsecase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to initialize pow: %w", err)
	}
	searchers := make(map[string]*search.Searcher, len(cfg.Digests))
	for _, name := range cfg.Digests {
		s, err := newSearcher(cfg, name, cfg.Width, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", name, err)
		}
		searchers[name] = s
	}
	return &powUsecaseImpl{
		cfg:       cfg,
		searchers: searchers,
		logger:    logger,
	}, nil
}

// GenerateChallenge creates a random data block and picks one of the
// configured digests for it.
func (p *powUsecaseImpl) GenerateChallenge() (*domain.ProofOfWork, error) {
	data := make([]byte, p.cfg.Width)
	if _, err := rand.Read(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerateRandom, err)
	}
	return &domain.ProofOfWork{
		Data:       data,
		Difficulty: p.cfg.Difficulty,
		Digest:     p.cfg.Digests[mrand.Intn(len(p.cfg.Digests))],
	}, nil
}

// ValidateSolution recomputes the digest for nonce. It fails with
// ErrInvalidSolution when the digest has too few leading zero bits.
func (p *powUsecaseImpl) ValidateSolution(pow *domain.ProofOfWork, nonce []byte) (*domain.Solution, error) {
	s, ok := p.searchers[pow.Digest]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, pow.Digest)
	}
	if len(nonce) != pow.Width() {
		p.logger.Debug("nonce width mismatch", zap.Int("nonce", len(nonce)), zap.Int("width", pow.Width()))
		return nil, fmt.Errorf("%w: nonce is %d bytes, want %d", search.ErrLengthMismatch, len(nonce), pow.Width())
	}

	sum, zeros, err := s.Check(pow.Data, nonce)
	if err != nil {
		return nil, err
	}
	if zeros < pow.Difficulty {
		return nil, fmt.Errorf("%w: %d of %d zero bits", ErrInvalidSolution, zeros, pow.Difficulty)
	}
	return &domain.Solution{
		Nonce:        nonce,
		Digest:       sum,
		LeadingZeros: zeros,
	}, nil
}
