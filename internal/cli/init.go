// Package cli holds the start-up steps shared by cmd/smartledger and
// cmd/smartledger-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"smartledger/internal/config"
	"smartledger/internal/log"
)

// SetupLogger builds the process logger for the given level name and
// makes it the slog default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{Level: log.ParseLevel(level), Component: log.ComponentApp})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// LoadConfig reads and validates configuration from the environment.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidateConfig exits the process when configuration is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
