// Command griffinctl runs Griffin operations from the terminal and prints each
// outcome as a Result document.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/transfa/griffin-service/internal/bootstrap"
	"github.com/transfa/griffin-service/internal/config"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()

	root := newRootCmd(buildService, os.Stdout)
	root.Version = Version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildService wires the real application service from the environment.
func buildService(ctx context.Context, logger *slog.Logger) (service, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load config: %w", err)
	}
	deps, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return deps.Service, deps.Close, nil
}

// newLogger writes to stderr so stdout carries only results.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
