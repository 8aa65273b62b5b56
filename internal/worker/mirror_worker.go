// Package worker forwards queued mirror messages to the remote log.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"smartledger/internal/amqp"
	"smartledger/internal/log"
	"smartledger/internal/sheets"
)

// MirrorWorker makes one forwarding attempt per message.
type MirrorWorker struct {
	target  sheets.EntryMirror
	timeout time.Duration
	logger  *log.Logger

	forwarded atomic.Int64
	failed    atomic.Int64
}

func NewMirrorWorker(target sheets.EntryMirror, timeout time.Duration, logger *log.Logger) *MirrorWorker {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &MirrorWorker{
		target:  target,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage implements amqp.Handler.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.MirrorMessage) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	if err := w.target.Mirror(ctx, msg.Record); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("forward mirror record: %w", err)
	}
	w.forwarded.Add(1)

	w.logger.InfoContext(ctx, "Mirror record forwarded",
		log.FieldOperation, log.OpMirror,
		log.FieldDuration, time.Since(start).Milliseconds(),
		"queued_for_ms", time.Since(msg.Timestamp).Milliseconds())
	return nil
}

// Stats returns the number of forwarded and failed messages so far.
func (w *MirrorWorker) Stats() (forwarded, failed int64) {
	return w.forwarded.Load(), w.failed.Load()
}
