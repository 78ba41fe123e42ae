package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/worker"

	"github.com/spf13/pflag"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	configPath := pflag.StringP("config", "c", "", "config file")
	pflag.Parse()

	cfg, err := cli.LoadAndValidateConfig(*configPath)
	if err != nil {
		cli.Fatal(err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)
	logger.Info("Starting fintrack-worker", "formats", cfg.WorkerFormats, "interval", cfg.WorkerInterval)

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	// The worker only reads snapshots: no async writes, no notifier.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	backendCfg.AsyncSave = false
	backendCfg.AMQPURL = ""
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	defer func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		if err := res.Cleanup(cleanupCtx); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	exporters, err := cli.BuildExporters(ctx, cfg, logger, cfg.WorkerFormats, cfg.ExportDir)
	if err != nil {
		logger.Error("Failed to initialize exporters", "error", err)
		os.Exit(1)
	}

	var subscribe worker.Subscriber
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		subscribe = client.Consume
	} else {
		logger.Info("AMQP disabled - exporting on the periodic interval only")
	}

	w := worker.NewExportWorker(res.Repository, exporters, logger)
	if err := w.Run(ctx, subscribe, cfg.WorkerInterval); err != nil {
		logger.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
