// Package ledger holds the authoritative, newest-first sequence of
// transactions and keeps persistence and the remote mirror in step with it.
package ledger

import (
	"context"
	"sync"
	"time"

	"smartledger/internal/core"
	"smartledger/internal/log"
	"smartledger/internal/sheets"
)

// Persister is the storage side the store writes through.
type Persister interface {
	Load(ctx context.Context) []core.Transaction
	Save(ctx context.Context, txs []core.Transaction) error
}

const DefaultMirrorTimeout = 20 * time.Second

// Store is safe for concurrent use. Entries are only ever prepended.
type Store struct {
	mu  sync.RWMutex
	txs []core.Transaction

	persister     Persister
	mirror        sheets.EntryMirror
	mirrorTimeout time.Duration
	logger        *log.Logger
	inflight      sync.WaitGroup
}

type Option func(*Store)

func WithMirrorTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.mirrorTimeout = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentLedger) }
}

// New seeds the store from the persister. A nil mirror disables sync.
func New(ctx context.Context, persister Persister, mirror sheets.EntryMirror, opts ...Option) *Store {
	if mirror == nil {
		mirror = sheets.Disabled
	}
	s := &Store{
		persister:     persister,
		mirror:        mirror,
		mirrorTimeout: DefaultMirrorTimeout,
		logger:        log.New(log.Config{Component: log.ComponentLedger}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.txs = persister.Load(ctx)
	if s.txs == nil {
		s.txs = []core.Transaction{}
	}
	s.logger.InfoContext(ctx, "Ledger loaded", log.FieldCount, len(s.txs))
	return s
}

// Append prepends tx, saves the full sequence and dispatches the mirror in
// the background. It fails only when tx itself is invalid; persistence and
// mirror failures are logged.
func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	next := make([]core.Transaction, 0, len(s.txs)+1)
	next = append(next, tx)
	next = append(next, s.txs...)
	s.txs = next
	// the entry is acknowledged once it is in memory, so the write must
	// outlive a disconnected client
	if err := s.persister.Save(context.WithoutCancel(ctx), next); err != nil {
		s.logger.ErrorContext(ctx, "Ledger save failed, keeping entry in memory",
			log.FieldOperation, log.OpSave, log.FieldEntryID, tx.ID, log.FieldError, err)
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Entry recorded",
		log.NewFields().WithOperation(log.OpAppend).WithEntry(tx.ID, string(tx.Type()), tx.Category).ToSlice()...)

	s.dispatchMirror(ctx, tx)
	return nil
}

// dispatchMirror runs detached from the request: a client disconnect must
// not cancel the remote call, but the call is still bounded.
func (s *Store) dispatchMirror(ctx context.Context, tx core.Transaction) {
	rec := tx.SyncRecord()
	bg := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		mctx, cancel := context.WithTimeout(bg, s.mirrorTimeout)
		defer cancel()

		if err := s.mirror.Mirror(mctx, rec); err != nil {
			s.logger.WarnContext(mctx, "Remote mirror failed",
				log.FieldOperation, log.OpMirror, log.FieldEntryID, tx.ID, log.FieldError, err)
			return
		}
		s.logger.DebugContext(mctx, "Remote mirror succeeded", log.FieldEntryID, tx.ID)
	}()
}

// All returns a copy of the ledger, most recently appended first.
func (s *Store) All() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Recent returns at most n of the newest entries; n <= 0 means all.
func (s *Store) Recent(n int) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.txs) {
		n = len(s.txs)
	}
	out := make([]core.Transaction, n)
	copy(out, s.txs[:n])
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Wait blocks until every dispatched mirror call has returned.
func (s *Store) Wait() {
	s.inflight.Wait()
}
