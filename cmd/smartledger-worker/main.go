package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"smartledger/internal/amqp"
	"smartledger/internal/backend"
	"smartledger/internal/cli"
	"smartledger/internal/config"
	"smartledger/internal/log"
	"smartledger/internal/worker"
)

const statsInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.SyncMode != string(backend.SyncAMQP) {
		logger.Error("The worker only runs with SYNC_MODE=amqp", "sync_mode", cfg.SyncMode)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := backend.NewFactory(logger)

	var cleanups backend.Cleanups
	defer func() {
		if err := cleanups.Close(); err != nil {
			logger.Error("Cleanup failed", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		}
	}()

	target, err := factory.CreateWorkerTarget(ctx, bcfg)
	if err != nil {
		return err
	}
	cleanups.Add(target.Cleanup)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	cleanups.Add(client.Close)

	w := worker.NewMirrorWorker(target.Mirror, cfg.SyncTimeout, logger)
	logger.Info("Starting smartledger-worker",
		log.FieldTarget, cfg.WorkerTarget,
		"queue", cfg.AMQPQueue)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.Consume(gctx, w.HandleMessage)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				forwarded, failed := w.Stats()
				logger.Info("Mirror worker stats", "forwarded", forwarded, "failed", failed)
			}
		}
	})
	return g.Wait()
}
