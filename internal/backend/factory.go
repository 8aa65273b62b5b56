package backend

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"smartledger/internal/amqp"
	"smartledger/internal/log"
	"smartledger/internal/sheets"
	gsheet "smartledger/internal/sheets/google"
	"smartledger/internal/sheets/memory"
	"smartledger/internal/sheets/webhook"
	"smartledger/internal/storage"
)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentStorage)}
}

func (f *DefaultFactory) CreateStorage(ctx context.Context, config Config) (*StorageResult, error) {
	switch config.Storage {
	case FileStorage:
		kv, err := storage.NewFileKV(config.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		f.logger.Info("Initialized file storage", "data_dir", config.DataDir)
		return &StorageResult{KV: kv, Cleanup: kv.Close}, nil

	case SQLiteStorage:
		kv, err := storage.NewSQLiteKV(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		f.logger.Info("Initialized SQLite storage", "db_path", config.SQLiteDBPath)
		return &StorageResult{KV: kv, Cleanup: kv.Close}, nil

	case RedisStorage:
		kv, err := storage.NewRedisKV(ctx, storage.RedisOptions{
			Addr:     config.RedisAddr,
			Password: config.RedisPass,
			DB:       config.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis storage: %w", err)
		}
		f.logger.Info("Initialized Redis storage", "addr", config.RedisAddr, "db", config.RedisDB)
		return &StorageResult{KV: kv, Cleanup: kv.Close}, nil

	case MemoryStorage:
		f.logger.Warn("Using memory storage, the ledger will not survive a restart")
		kv := storage.NewMemoryKV()
		return &StorageResult{KV: kv, Cleanup: kv.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", config.Storage)
	}
}

func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (*MirrorResult, error) {
	switch config.Sync {
	case SyncAMQP:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.Info("Mirroring entries through AMQP",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return &MirrorResult{Mirror: client, Cleanup: client.Close}, nil
	case SyncNone:
		f.logger.Info("Remote mirror disabled")
		return &MirrorResult{Mirror: sheets.Disabled}, nil
	default:
		return f.createDirectMirror(ctx, config, config.Sync)
	}
}

func (f *DefaultFactory) CreateWorkerTarget(ctx context.Context, config Config) (*MirrorResult, error) {
	switch config.WorkerTarget {
	case SyncWebhook, SyncSheets:
		return f.createDirectMirror(ctx, config, config.WorkerTarget)
	default:
		return nil, fmt.Errorf("unsupported worker target: %s", config.WorkerTarget)
	}
}

func (f *DefaultFactory) createDirectMirror(ctx context.Context, config Config, mode SyncMode) (*MirrorResult, error) {
	switch mode {
	case SyncWebhook:
		f.logger.Info("Mirroring entries to webhook")
		return &MirrorResult{Mirror: webhook.New(config.WebhookURL, webhook.WithLogger(f.logger))}, nil
	case SyncSheets:
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   config.SpreadsheetID,
			SheetName:       config.SheetName,
			CredentialsJSON: config.CredentialJSON,
			CredentialsFile: config.CredentialFile,
			Logger:          f.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Mirroring entries to Google Sheets", "sheet", config.SheetName)
		return &MirrorResult{Mirror: client}, nil
	case SyncMemory:
		f.logger.Info("Mirroring entries in memory")
		return &MirrorResult{Mirror: memory.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported sync mode: %s", mode)
	}
}

// Cleanups runs registered cleanup functions in reverse order.
type Cleanups []CleanupFunc

func (c *Cleanups) Add(fn CleanupFunc) {
	if fn != nil {
		*c = append(*c, fn)
	}
}

// Close runs every cleanup and returns all failures combined.
func (c Cleanups) Close() error {
	var result *multierror.Error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
