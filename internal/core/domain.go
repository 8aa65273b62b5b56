package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

// DateLayout is the ISO-8601 form used for Transaction.Date (UTC, milliseconds).
const DateLayout = "2006-01-02T15:04:05.000Z"

const maxDescriptionLen = 200

type (
	EntryType string

	// Transaction is a single recorded entry. Exactly one of Income and
	// Expense is non-empty. Records are never edited after creation.
	Transaction struct {
		ID          string `json:"id"`
		Income      string `json:"income"`
		Expense     string `json:"expense"`
		Explanation string `json:"explanation"`
		Date        string `json:"date"`
		Category    string `json:"category"`
	}

	// Draft is the raw form input for a new entry.
	Draft struct {
		Type        EntryType `json:"type"`
		Amount      string    `json:"amount"`
		Description string    `json:"description"`
		Category    string    `json:"category"`
	}

	// SyncRecord is the reduced view mirrored to the spreadsheet.
	SyncRecord struct {
		Income      string `json:"income"`
		Expense     string `json:"expense"`
		Explanation string `json:"explanation"`
	}
)

var (
	ErrInvalidType        = errors.New("type must be income or expense")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrMissingID          = errors.New("missing id")
	ErrAmountConflict     = errors.New("exactly one of income and expense must be set")
)

// ValidationError names the input field that failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

// Type reports whether the transaction is an income or an expense.
func (t Transaction) Type() EntryType {
	if t.Income != "" {
		return Income
	}
	return Expense
}

// Amount returns whichever amount field is populated.
func (t Transaction) Amount() string {
	if t.Income != "" {
		return t.Income
	}
	return t.Expense
}

// Time parses Date. The second result is false for missing or malformed dates.
func (t Transaction) Time() (time.Time, bool) {
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t.Date))
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// SyncRecord returns the reduced view sent to the remote mirror.
func (t Transaction) SyncRecord() SyncRecord {
	return SyncRecord{
		Income:      t.Income,
		Expense:     t.Expense,
		Explanation: t.Explanation,
	}
}

// Validate checks the record invariants the ledger relies on.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return invalid("id", ErrMissingID)
	}
	if (t.Income == "") == (t.Expense == "") {
		return invalid("amount", ErrAmountConflict)
	}
	if _, err := ParseAmount(t.Amount()); err != nil {
		return invalid("amount", err)
	}
	if strings.TrimSpace(t.Explanation) == "" {
		return invalid("description", ErrEmptyDescription)
	}
	return nil
}
