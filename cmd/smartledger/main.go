package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"smartledger/internal/advisor"
	"smartledger/internal/advisor/openai"
	"smartledger/internal/amqp"
	"smartledger/internal/backend"
	"smartledger/internal/cli"
	"smartledger/internal/config"
	"smartledger/internal/core"
	apphttp "smartledger/internal/http"
	"smartledger/internal/ledger"
	"smartledger/internal/log"
	"smartledger/internal/middleware/ratelimit"
	"smartledger/internal/services"
	"smartledger/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
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

	storeRes, err := factory.CreateStorage(ctx, bcfg)
	if err != nil {
		return err
	}
	cleanups.Add(storeRes.Cleanup)

	mirrorRes, err := factory.CreateMirror(ctx, bcfg)
	if err != nil {
		return err
	}
	cleanups.Add(mirrorRes.Cleanup)

	adapter := storage.NewAdapter(storeRes.KV, cfg.StorageKey, logger)
	store := ledger.New(ctx, adapter, mirrorRes.Mirror,
		ledger.WithMirrorTimeout(cfg.SyncTimeout),
		ledger.WithLogger(logger))

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Ledger:         store,
		Entries:        services.NewEntryService(core.NewEntryFactory(), store, logger),
		Advisor:        advisor.NewService(newGenerator(cfg, logger), advisor.WithTimeout(cfg.AdvisorTimeout), advisor.WithLogger(logger)),
		ReadyChecks:    readyChecks(storeRes.KV, mirrorRes.Mirror),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting smartledger server",
			"port", cfg.Port,
			log.FieldBackend, cfg.StorageBackend,
			"sync_mode", cfg.SyncMode,
			"advisor", cfg.AdvisorEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		waitMirrors(store, cfg.ShutdownTimeout, logger)
		return err
	})
	return g.Wait()
}

// newGenerator returns nil when no advisor key is configured; the service
// then answers with the offline message.
func newGenerator(cfg *config.Config, logger *log.Logger) advisor.Generator {
	if !cfg.AdvisorEnabled() {
		logger.Info("Advisor disabled, no API key configured")
		return nil
	}
	gen, err := openai.New(openai.Config{
		APIKey:  cfg.AdvisorAPIKey,
		BaseURL: cfg.AdvisorBaseURL,
		Model:   cfg.AdvisorModel,
	})
	if err != nil {
		logger.Warn("Advisor unavailable", log.FieldError, err)
		return nil
	}
	return gen
}

func readyChecks(deps ...any) []apphttp.ReadyCheck {
	var checks []apphttp.ReadyCheck
	for _, dep := range deps {
		if p, ok := dep.(backend.Pinger); ok {
			checks = append(checks, apphttp.ReadyCheck{Name: backendName(dep), Check: p.Ping})
		}
	}
	return checks
}

func backendName(dep any) string {
	switch dep.(type) {
	case *storage.SQLiteKV:
		return "sqlite"
	case *storage.RedisKV:
		return "redis"
	case *amqp.Client:
		return "amqp"
	default:
		return "mirror"
	}
}

// waitMirrors gives in-flight mirror calls a bounded chance to finish.
func waitMirrors(store *ledger.Store, timeout time.Duration, logger *log.Logger) {
	done := make(chan struct{})
	go func() {
		store.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("Timed out waiting for mirror calls", log.FieldOperation, log.OpShutdown)
	}
}
