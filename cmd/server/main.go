package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"powsearch/internal/app"
)

func main() {
	configPath := flag.String("c", "", "path to a YAML config file; the environment is used when empty")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := app.RunServer(ctx, *configPath); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
