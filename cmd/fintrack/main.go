package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/store"

	"github.com/spf13/pflag"
)

const cleanupTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	global := pflag.NewFlagSet("fintrack", pflag.ContinueOnError)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", "", "config file (default ./fintrack.yaml or ~/.fintrack/fintrack.yaml)")
	if err := global.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		cli.Fatal(err)
		return 2
	}

	cfg, err := cli.LoadAndValidateConfig(*configPath)
	if err != nil {
		cli.Fatal(err)
		return 1
	}

	logger := cli.SetupLogger(cfg.LogLevel)
	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(err)
		return 1
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", backendCfg.Type)
		cli.Fatal(err)
		return 1
	}
	defer func() {
		// Flush with a fresh context so a cancelled run still saves.
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cleanupCancel()
		if err := res.Cleanup(cleanupCtx); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	opts := append(res.StoreOptions(), store.WithLogger(logger))
	st, err := store.Open(ctx, res.Repository, opts...)
	if err != nil {
		cli.Fatal(fmt.Errorf("load data: %w", err))
		return 1
	}

	app := &cli.App{
		Store:  st,
		Config: cfg,
		Logger: logger,
		Out:    os.Stdout,
	}
	if err := app.Run(ctx, global.Args()); err != nil {
		cli.Fatal(err)
		return 1
	}
	return 0
}
