package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"smartledger/internal/config"
	"smartledger/internal/log"
	"smartledger/internal/sheets"
	"smartledger/internal/sheets/memory"
	"smartledger/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		StorageBackend: "sqlite",
		StorageKey:     "finance_ledger",
		SQLiteDBPath:   "ledger.db",
		SyncMode:       "none",
		WorkerTarget:   "webhook",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Storage != SQLiteStorage || cfg.Sync != SyncNone {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory without sync", Config{Storage: MemoryStorage, Sync: SyncNone}, false},
		{"unknown storage", Config{Storage: "postgres", Sync: SyncNone}, true},
		{"unknown sync", Config{Storage: MemoryStorage, Sync: "carrier-pigeon"}, true},
		{"file without dir", Config{Storage: FileStorage, Sync: SyncNone}, true},
		{"redis without addr", Config{Storage: RedisStorage, Sync: SyncNone}, true},
		{"webhook without url", Config{Storage: MemoryStorage, Sync: SyncWebhook}, true},
		{"sheets without id", Config{Storage: MemoryStorage, Sync: SyncSheets}, true},
		{"amqp missing queue", Config{Storage: MemoryStorage, Sync: SyncAMQP, AMQPURL: "amqp://x", AMQPExchange: "e"}, true},
		{"webhook", Config{Storage: MemoryStorage, Sync: SyncWebhook, WebhookURL: "https://example.com"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateStorage(t *testing.T) {
	f := NewFactory(log.Discard())
	ctx := context.Background()
	dir := t.TempDir()

	for _, cfg := range []Config{
		{Storage: MemoryStorage},
		{Storage: FileStorage, DataDir: dir},
		{Storage: SQLiteStorage, SQLiteDBPath: filepath.Join(dir, "ledger.db")},
	} {
		t.Run(cfg.Storage.String(), func(t *testing.T) {
			res, err := f.CreateStorage(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateStorage: %v", err)
			}
			defer res.Cleanup()

			if err := res.KV.Set(ctx, "k", []byte("v")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := res.KV.Get(ctx, "k")
			if err != nil || string(got) != "v" {
				t.Fatalf("Get = %q, %v", got, err)
			}
			if _, err := res.KV.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}

	if _, err := f.CreateStorage(ctx, Config{Storage: "postgres"}); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestCreateMirror(t *testing.T) {
	f := NewFactory(log.Discard())
	ctx := context.Background()

	res, err := f.CreateMirror(ctx, Config{Sync: SyncNone})
	if err != nil {
		t.Fatalf("CreateMirror none: %v", err)
	}
	if res.Mirror != sheets.Disabled {
		t.Fatal("expected disabled mirror")
	}

	res, err = f.CreateMirror(ctx, Config{Sync: SyncMemory})
	if err != nil {
		t.Fatalf("CreateMirror memory: %v", err)
	}
	if _, ok := res.Mirror.(*memory.Mirror); !ok {
		t.Fatalf("expected memory mirror, got %T", res.Mirror)
	}

	res, err = f.CreateMirror(ctx, Config{Sync: SyncWebhook, WebhookURL: "http://127.0.0.1:1/exec"})
	if err != nil || res.Mirror == nil {
		t.Fatalf("CreateMirror webhook: %v", err)
	}

	if _, err := f.CreateMirror(ctx, Config{Sync: SyncSheets, SpreadsheetID: "id"}); err == nil {
		t.Fatal("expected error for sheets without credentials")
	}
}

func TestCreateWorkerTarget(t *testing.T) {
	f := NewFactory(log.Discard())
	if _, err := f.CreateWorkerTarget(context.Background(), Config{WorkerTarget: SyncAMQP}); err == nil {
		t.Fatal("worker must not forward back into amqp")
	}
	res, err := f.CreateWorkerTarget(context.Background(), Config{WorkerTarget: SyncWebhook, WebhookURL: "http://127.0.0.1:1/exec"})
	if err != nil || res.Mirror == nil {
		t.Fatalf("CreateWorkerTarget: %v", err)
	}
}

func TestCleanupsClose(t *testing.T) {
	var order []int
	var c Cleanups
	c.Add(func() error { order = append(order, 1); return errors.New("first") })
	c.Add(nil)
	c.Add(func() error { order = append(order, 2); return nil })
	c.Add(func() error { order = append(order, 3); return errors.New("third") })

	err := c.Close()
	if err == nil {
		t.Fatal("expected combined error")
	}
	if len(order) != 3 || order[0] != 3 || order[2] != 1 {
		t.Fatalf("cleanups ran in wrong order: %v", order)
	}

	var empty Cleanups
	if err := empty.Close(); err != nil {
		t.Fatalf("empty Close: %v", err)
	}
}
