// Package sheets defines the outbound port used to mirror new ledger
// entries to a remote spreadsheet.
package sheets

import (
	"context"

	"smartledger/internal/core"
)

// Ports for outbound adapters.
type (
	// EntryMirror forwards one record to the remote log. Callers treat any
	// error as non-fatal; implementations do not retry.
	EntryMirror interface {
		Mirror(ctx context.Context, rec core.SyncRecord) error
	}

	// MirrorFunc adapts a function to EntryMirror.
	MirrorFunc func(ctx context.Context, rec core.SyncRecord) error
)

func (f MirrorFunc) Mirror(ctx context.Context, rec core.SyncRecord) error {
	return f(ctx, rec)
}

type disabled struct{}

func (disabled) Mirror(context.Context, core.SyncRecord) error { return nil }

// Disabled is the mirror used when sync is turned off.
var Disabled EntryMirror = disabled{}
