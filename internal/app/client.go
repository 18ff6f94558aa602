package app

import (
	"context"
	"fmt"

	"powsearch/config"
	"powsearch/internal/client/tcp"
	"powsearch/internal/usecases"
)

// RunClient solves cfg.Client.Sessions challenges from the server.
func RunClient(ctx context.Context, configPath string) error {
	cfg, err := config.LoadClientConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level, cfg.Client.Name)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	solverUsecase, err := usecases.NewSolverUsecase(cfg.Pow, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize pow: %w", err)
	}

	client := tcp.NewClient(
		&tcp.Config{
			ServerAddr:     cfg.Client.ServerAddr,
			ConnectTimeout: cfg.Client.ConnectTimeout,
			RequestTimeout: cfg.Client.RequestTimeout,
			SolveTimeout:   cfg.Client.SolveTimeout,
			RetryAttempts:  cfg.Client.RetryAttempts,
			RetryDelay:     cfg.Client.RetryDelay,
			MaxMessageSize: config.MaxWidth,
			BufferSize:     bufferSize,
			Sessions:       cfg.Client.Sessions,
		},
		solverUsecase,
		logger.Sugar(),
	)
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("client failed: %w", err)
	}

	return nil
}
