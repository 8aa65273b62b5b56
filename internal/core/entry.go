package core

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// EntryFactory turns drafts into transactions. Now and NewID are
// replaceable so tests can pin ids and timestamps.
type EntryFactory struct {
	Now   func() time.Time
	NewID func() string
}

// NewEntryFactory returns a factory using the wall clock and UUIDv7 ids.
func NewEntryFactory() *EntryFactory {
	return &EntryFactory{Now: time.Now, NewID: newTimeOrderedID}
}

func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return id.String()
}

var defaultFactory = NewEntryFactory()

// SubmitEntry validates a draft with the default factory.
func SubmitEntry(d Draft) (Transaction, error) {
	return defaultFactory.Submit(d)
}

// Submit validates the draft and builds a new Transaction. Rules run in
// order: type, amount, description, category. On failure the returned
// error is a *ValidationError and the transaction is zero.
func (f *EntryFactory) Submit(d Draft) (Transaction, error) {
	if !d.Type.Valid() {
		return Transaction{}, invalid("type", ErrInvalidType)
	}

	amount := NormalizeAmount(d.Amount)
	if _, err := ParseAmount(amount); err != nil {
		return Transaction{}, invalid("amount", err)
	}

	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		return Transaction{}, invalid("description", ErrEmptyDescription)
	}
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return Transaction{}, invalid("description", ErrDescriptionTooLong)
	}

	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = DefaultCategory
	}
	if _, ok := LookupCategory(category); !ok {
		return Transaction{}, invalid("category", ErrUnknownCategory)
	}

	tx := Transaction{
		ID:          f.NewID(),
		Explanation: desc,
		Date:        f.Now().UTC().Format(DateLayout),
		Category:    category,
	}
	if d.Type == Income {
		tx.Income = amount
	} else {
		tx.Expense = amount
	}
	return tx, nil
}
