package services

import (
	"context"
	"fmt"

	"smartledger/internal/core"
	"smartledger/internal/log"
)

// Appender is the part of the ledger store the service writes to.
type Appender interface {
	Append(ctx context.Context, tx core.Transaction) error
}

// EntryService turns form drafts into recorded transactions.
type EntryService struct {
	factory *core.EntryFactory
	ledger  Appender
	logger  *log.Logger
}

func NewEntryService(factory *core.EntryFactory, ledger Appender, logger *log.Logger) *EntryService {
	if factory == nil {
		factory = core.NewEntryFactory()
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &EntryService{
		factory: factory,
		ledger:  ledger,
		logger:  logger.WithComponent(log.ComponentLedger),
	}
}

// Submit validates the draft and appends the resulting transaction.
// Validation failures come back as *core.ValidationError and leave the
// ledger untouched.
func (s *EntryService) Submit(ctx context.Context, d core.Draft) (core.Transaction, error) {
	tx, err := s.factory.Submit(d)
	if err != nil {
		s.logger.DebugContext(ctx, "Draft rejected", log.FieldError, err)
		return core.Transaction{}, err
	}
	if err := s.ledger.Append(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("append entry: %w", err)
	}
	return tx, nil
}
