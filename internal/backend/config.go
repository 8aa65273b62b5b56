package backend

import (
	"fmt"

	"smartledger/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Storage:    StorageType(appConfig.StorageBackend),
		StorageKey: appConfig.StorageKey,

		DataDir:      appConfig.DataDir,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		RedisAddr:    appConfig.RedisAddr,
		RedisPass:    appConfig.RedisPassword,
		RedisDB:      appConfig.RedisDB,

		Sync:           SyncMode(appConfig.SyncMode),
		WebhookURL:     appConfig.SyncWebhookURL,
		SyncTimeout:    appConfig.SyncTimeout,
		AMQPURL:        appConfig.AMQPURL,
		AMQPExchange:   appConfig.AMQPExchange,
		AMQPQueue:      appConfig.AMQPQueue,
		WorkerTarget:   SyncMode(appConfig.WorkerTarget),
		SpreadsheetID:  appConfig.GoogleSpreadsheetID,
		SheetName:      appConfig.GoogleSheetName,
		CredentialJSON: appConfig.GoogleServiceAccountJSON,
		CredentialFile: appConfig.GoogleServiceAccountFile,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the parts the factory depends on.
func (c Config) Validate() error {
	if !c.Storage.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", c.Storage)
	}
	if !c.Sync.IsValid() {
		return fmt.Errorf("invalid sync mode: %s", c.Sync)
	}

	switch c.Storage {
	case FileStorage:
		if c.DataDir == "" {
			return fmt.Errorf("data directory is required for file storage")
		}
	case SQLiteStorage:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite storage")
		}
	case RedisStorage:
		if c.RedisAddr == "" {
			return fmt.Errorf("Redis address is required for redis storage")
		}
	}

	switch c.Sync {
	case SyncWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("webhook URL is required for webhook sync")
		}
	case SyncSheets:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("spreadsheet ID is required for sheets sync")
		}
	case SyncAMQP:
		if c.AMQPURL == "" || c.AMQPExchange == "" || c.AMQPQueue == "" {
			return fmt.Errorf("AMQP URL, exchange and queue are required for amqp sync")
		}
	}
	return nil
}
