package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"smartledger/internal/core"
	"smartledger/internal/log"
)

// Adapter reads and writes the whole ledger as a JSON array under one key.
type Adapter struct {
	kv     KV
	key    string
	logger *log.Logger
}

func NewAdapter(kv KV, key string, logger *log.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Adapter{kv: kv, key: key, logger: logger.WithComponent(log.ComponentStorage)}
}

func (a *Adapter) Key() string { return a.key }

// Load returns the stored sequence in stored order. It never fails: a
// missing, unreadable or malformed document yields an empty ledger.
func (a *Adapter) Load(ctx context.Context) []core.Transaction {
	raw, err := a.kv.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		return []core.Transaction{}
	}
	if err != nil {
		a.logger.WarnContext(ctx, "Ledger read failed, starting empty",
			log.FieldOperation, log.OpLoad, log.FieldKey, a.key, log.FieldError, err)
		return []core.Transaction{}
	}

	txs, err := DecodeLedger(raw)
	if err != nil {
		a.logger.WarnContext(ctx, "Stored ledger is malformed, starting empty",
			log.FieldOperation, log.OpLoad, log.FieldKey, a.key, log.FieldError, err)
		return []core.Transaction{}
	}
	a.logger.DebugContext(ctx, "Ledger loaded", log.FieldKey, a.key, log.FieldCount, len(txs))
	return txs
}

// Save overwrites the stored document with the full sequence.
func (a *Adapter) Save(ctx context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	b, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := a.kv.Set(ctx, a.key, b); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// DecodeLedger parses a stored document. The top level must be an array of
// objects; missing fields decode as "" and unknown fields are ignored.
// Numeric amounts are kept as their literal text.
func DecodeLedger(raw []byte) ([]core.Transaction, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode ledger array: %w", err)
	}
	if items == nil {
		return nil, errors.New("ledger document is null")
	}

	txs := make([]core.Transaction, 0, len(items))
	for i, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, fmt.Errorf("element %d is not an object", i)
		}
		var rec storedTransaction
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, fmt.Errorf("decode element %d: %w", i, err)
		}
		txs = append(txs, rec.transaction())
	}
	return txs, nil
}

type storedTransaction struct {
	ID          flexString `json:"id"`
	Income      flexString `json:"income"`
	Expense     flexString `json:"expense"`
	Explanation flexString `json:"explanation"`
	Date        flexString `json:"date"`
	Category    flexString `json:"category"`
}

func (s storedTransaction) transaction() core.Transaction {
	return core.Transaction{
		ID:          string(s.ID),
		Income:      string(s.Income),
		Expense:     string(s.Expense),
		Explanation: string(s.Explanation),
		Date:        string(s.Date),
		Category:    string(s.Category),
	}
}

// flexString accepts a JSON string or number. null, booleans and nested
// values decode as "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*f = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = flexString(n.String())
	default:
		*f = ""
	}
	return nil
}
