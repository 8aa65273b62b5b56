// Package memory is an in-process mirror for development and tests.
package memory

import (
	"context"
	"sync"

	"smartledger/internal/core"
	ports "smartledger/internal/sheets"
)

var _ ports.EntryMirror = (*Mirror)(nil)

// Mirror records every entry it receives unless told to fail via FailWith.
type Mirror struct {
	mu      sync.Mutex
	records []core.SyncRecord
	fail    error
	notify  chan core.SyncRecord
}

func New() *Mirror {
	return &Mirror{}
}

// FailWith makes subsequent calls return err (nil restores success).
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Notify returns a channel receiving each attempted record. It is buffered;
// sends never block the mirror.
func (m *Mirror) Notify(buffer int) <-chan core.SyncRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = make(chan core.SyncRecord, buffer)
	return m.notify
}

func (m *Mirror) Mirror(_ context.Context, rec core.SyncRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notify != nil {
		select {
		case m.notify <- rec:
		default:
		}
	}
	if m.fail != nil {
		return m.fail
	}
	m.records = append(m.records, rec)
	return nil
}

// Records returns a copy of everything mirrored so far, oldest first.
func (m *Mirror) Records() []core.SyncRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.SyncRecord(nil), m.records...)
}
