// Package google mirrors entries into a Google Sheet through the Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"smartledger/internal/core"
	"smartledger/internal/log"
	ports "smartledger/internal/sheets"
)

var _ ports.EntryMirror = (*Client)(nil)

// Client appends one row per mirrored entry:
// timestamp | income | expense | explanation.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	now           func() time.Time
	logger        *log.Logger
}

type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	Logger          *log.Logger

	// ClientOptions are appended after the credential options.
	ClientOptions []goption.ClientOption
}

// New builds a Sheets client from service-account credentials.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Ledger"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	clientOpts, err := credentialOptions(opts)
	if err != nil {
		return nil, err
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetName,
		now:           time.Now,
		logger:        logger.WithComponent(log.ComponentSync),
	}, nil
}

func credentialOptions(opts Options) ([]goption.ClientOption, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	case len(opts.ClientOptions) > 0:
		// caller supplies auth (tests, ADC)
		return nil, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

// Mirror appends the record below the last row of the sheet.
func (c *Client) Mirror(ctx context.Context, rec core.SyncRecord) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:D", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row(c.now(), rec)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", rng, err)
	}

	updated := ""
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Entry mirrored", log.FieldOperation, log.OpMirror, "range", updated)
	return nil
}

func row(ts time.Time, rec core.SyncRecord) []any {
	return []any{ts.UTC().Format(core.DateLayout), rec.Income, rec.Expense, rec.Explanation}
}
