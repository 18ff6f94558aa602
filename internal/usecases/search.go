package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"powsearch/config"
	"powsearch/pkg/pow/digest"
	"powsearch/pkg/pow/search"
)

// newSearcher builds a Searcher for one digest and block width from the
// shared proof-of-work settings.
func newSearcher(cfg config.Pow, digestName string, width int, logger *zap.Logger, opts ...func(*search.Config)) (*search.Searcher, error) {
	provider, err := digest.New(digestName, cfg.DigestOptions()...)
	if err != nil {
		return nil, err
	}
	combine, err := search.CombinerByName(cfg.Combine)
	if err != nil {
		return nil, err
	}
	sc := search.Config{
		Width:     width,
		Digest:    provider,
		Combine:   combine,
		Workers:   cfg.Workers,
		Strategy:  search.Strategy(cfg.Strategy),
		ChunkBits: cfg.ChunkBits,
	}
	for _, opt := range opts {
		opt(&sc)
	}
	return search.New(sc, logger)
}

// LocalSearchUsecase runs a standalone search with the first configured
// digest, outside of any challenge exchange.
type LocalSearchUsecase interface {
	Run(ctx context.Context, data []byte) (*search.Result, error)
	Digest() string
	Difficulty() int
}

type localSearchUsecaseImpl struct {
	searcher   *search.Searcher
	difficulty int
}

func NewLocalSearchUsecase(cfg config.Pow, progressInterval uint64, progress func(search.Progress), logger *zap.Logger) (LocalSearchUsecase, error) {
	if len(cfg.Digests) == 0 {
		return nil, config.ErrNoDigests
	}
	searcher, err := newSearcher(cfg, cfg.Digests[0], cfg.Width, logger, func(sc *search.Config) {
		sc.ProgressInterval = progressInterval
		sc.Progress = progress
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search: %w", err)
	}
	return &localSearchUsecaseImpl{
		searcher:   searcher,
		difficulty: cfg.Difficulty,
	}, nil
}

func (l *localSearchUsecaseImpl) Run(ctx context.Context, data []byte) (*search.Result, error) {
	return l.searcher.FindNonce(ctx, data, l.difficulty)
}

func (l *localSearchUsecaseImpl) Digest() string { return l.searcher.Digest().Name() }

func (l *localSearchUsecaseImpl) Difficulty() int { return l.difficulty }
