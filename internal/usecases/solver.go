package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"powsearch/config"
	"powsearch/internal/domain"
	"powsearch/pkg/pow/search"
)

type SolverUsecase interface {
	FindSolution(ctx context.Context, pow *domain.ProofOfWork) (*search.Result, error)
}

type solverUsecaseImpl struct {
	cfg    config.Pow
	logger *zap.Logger
}

// NewSolverUsecase keeps the worker and combination settings; digest and
// width come from each challenge.
func NewSolverUsecase(cfg config.Pow, logger *zap.Logger) (SolverUsecase, error) {
	if _, err := search.CombinerByName(cfg.Combine); err != nil {
		return nil, fmt.Errorf("failed to initialize solver: %w", err)
	}
	return &solverUsecaseImpl{
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (s *solverUsecaseImpl) FindSolution(ctx context.Context, pow *domain.ProofOfWork) (*search.Result, error) {
	searcher, err := newSearcher(s.cfg, pow.Digest, pow.Width(), s.logger)
	if err != nil {
		return nil, err
	}
	return searcher.FindNonce(ctx, pow.Data, pow.Difficulty)
}
