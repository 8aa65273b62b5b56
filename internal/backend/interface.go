// Package backend builds the storage and remote sync collaborators named
// by configuration.
package backend

import (
	"context"
	"time"

	"smartledger/internal/sheets"
	"smartledger/internal/storage"
)

// CleanupFunc releases a resource created by the factory.
type CleanupFunc func() error

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StorageResult struct {
	KV      storage.KV
	Cleanup CleanupFunc
}

type MirrorResult struct {
	Mirror  sheets.EntryMirror
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateStorage(ctx context.Context, config Config) (*StorageResult, error)
	// CreateMirror builds the mirror the web process dispatches to.
	CreateMirror(ctx context.Context, config Config) (*MirrorResult, error)
	// CreateWorkerTarget builds the mirror the AMQP worker forwards to.
	CreateWorkerTarget(ctx context.Context, config Config) (*MirrorResult, error)
}

type Config struct {
	Storage    StorageType
	StorageKey string

	DataDir      string
	SQLiteDBPath string
	RedisAddr    string
	RedisPass    string
	RedisDB      int

	Sync           SyncMode
	WebhookURL     string
	SyncTimeout    time.Duration
	AMQPURL        string
	AMQPExchange   string
	AMQPQueue      string
	WorkerTarget   SyncMode
	SpreadsheetID  string
	SheetName      string
	CredentialJSON string
	CredentialFile string
}

type StorageType string

const (
	FileStorage   StorageType = "file"
	SQLiteStorage StorageType = "sqlite"
	RedisStorage  StorageType = "redis"
	MemoryStorage StorageType = "memory"
)

func (t StorageType) String() string { return string(t) }

func (t StorageType) IsValid() bool {
	switch t {
	case FileStorage, SQLiteStorage, RedisStorage, MemoryStorage:
		return true
	default:
		return false
	}
}

type SyncMode string

const (
	SyncWebhook SyncMode = "webhook"
	SyncSheets  SyncMode = "sheets"
	SyncAMQP    SyncMode = "amqp"
	SyncMemory  SyncMode = "memory"
	SyncNone    SyncMode = "none"
)

func (m SyncMode) String() string { return string(m) }

func (m SyncMode) IsValid() bool {
	switch m {
	case SyncWebhook, SyncSheets, SyncAMQP, SyncMemory, SyncNone:
		return true
	default:
		return false
	}
}
