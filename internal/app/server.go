package app

import (
	"context"
	"errors"
	"fmt"

	"powsearch/config"
	"powsearch/internal/server/tcp"
	"powsearch/internal/usecases"
)

const bufferSize = 1024

// RunServer starts the challenge server and blocks until ctx is done.
func RunServer(ctx context.Context, configPath string) error {
	cfg, err := config.LoadServerConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level, cfg.Server.Name)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	powUsecase, err := usecases.NewPowUsecase(cfg.Pow, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize pow: %w", err)
	}
	receiptUsecase := usecases.NewReceiptUsecase()

	server := tcp.NewServer(
		&tcp.Config{
			Address:    cfg.Server.Addr,
			KeepAlive:  cfg.Server.KeepAlive,
			Deadline:   cfg.Server.Deadline,
			BufferSize: bufferSize,
			MaxWidth:   config.MaxWidth,
		},
		powUsecase,
		receiptUsecase,
		logger.Sugar(),
	)

	if err = server.Run(ctx); err != nil {
		if errors.Is(err, tcp.ErrServerShutdown) {
			logger.Info("server stopped")
			return nil
		}
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}
