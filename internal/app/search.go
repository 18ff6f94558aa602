package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"powsearch/config"
	"powsearch/internal/usecases"
	"powsearch/pkg/pow/render"
	"powsearch/pkg/pow/search"
)

// RunSearch runs one local nonce search and writes the result to out.
func RunSearch(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.LoadSearchConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level, cfg.Search.Name)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	data, err := cfg.Search.Block(cfg.Pow.Width)
	if err != nil {
		return err
	}

	progress := func(p search.Progress) {
		logger.Info("searching",
			zap.Int("worker", p.Worker),
			zap.Uint64("attempts", p.Attempts),
			zap.String("nonce", render.Hex(p.Nonce)))
	}

	local, err := usecases.NewLocalSearchUsecase(cfg.Pow, cfg.Search.ProgressInterval, progress, logger)
	if err != nil {
		return err
	}

	if cfg.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Search.Timeout)
		defer cancel()
	}

	res, err := local.Run(ctx, data)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return writeResult(out, local.Digest(), local.Difficulty(), res)
}

func writeResult(out io.Writer, digestName string, target int, res *search.Result) error {
	_, err := fmt.Fprintf(out,
		"digest:     %s\ndifficulty: %d\nnonce:      %s\nhash:       %s\nbits:       %s\nzeros:      %d\nattempts:   %d\nelapsed:    %s\n",
		digestName,
		target,
		render.Hex(res.Nonce),
		render.Hex(res.Digest),
		render.Bits(res.Digest),
		res.LeadingZeros,
		res.Attempts,
		res.Elapsed,
	)
	return err
}
