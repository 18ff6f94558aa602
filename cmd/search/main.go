package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilyakaznacheev/cleanenv"

	"powsearch/config"
	"powsearch/internal/app"
)

func main() {
	fset := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fset.String("c", "", "path to a YAML config file; the environment is used when empty")
	fset.Usage = cleanenv.FUsage(fset.Output(), &config.SearchConfig{}, nil, fset.Usage)
	_ = fset.Parse(os.Args[1:])

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := app.RunSearch(ctx, *configPath, os.Stdout); err != nil {
		log.Fatalf("search failed: %v", err)
	}
}
