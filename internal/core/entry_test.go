package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedFactory() *EntryFactory {
	return &EntryFactory{
		Now:   func() time.Time { return time.Date(2024, 3, 5, 10, 30, 0, 123000000, time.UTC) },
		NewID: func() string { return "id-1" },
	}
}

func TestSubmit_Valid(t *testing.T) {
	f := fixedFactory()

	tx, err := f.Submit(Draft{Type: Expense, Amount: "50000", Description: "  Lunch  ", Category: "Food"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.ID != "id-1" {
		t.Errorf("id = %q", tx.ID)
	}
	if tx.Expense != "50000" || tx.Income != "" {
		t.Errorf("amounts = income %q expense %q", tx.Income, tx.Expense)
	}
	if tx.Explanation != "Lunch" {
		t.Errorf("explanation not trimmed: %q", tx.Explanation)
	}
	if tx.Date != "2024-03-05T10:30:00.123Z" {
		t.Errorf("date = %q", tx.Date)
	}
	if tx.Category != "Food" {
		t.Errorf("category = %q", tx.Category)
	}
	if err := tx.Validate(); err != nil {
		t.Errorf("created transaction fails Validate: %v", err)
	}
}

func TestSubmit_IncomeAndDefaults(t *testing.T) {
	tx, err := fixedFactory().Submit(Draft{Type: Income, Amount: "12,5", Description: "Bonus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Income != "12.5" || tx.Expense != "" {
		t.Errorf("amounts = income %q expense %q", tx.Income, tx.Expense)
	}
	if tx.Category != DefaultCategory {
		t.Errorf("empty category should default to %q, got %q", DefaultCategory, tx.Category)
	}
	if tx.Type() != Income || tx.Amount() != "12.5" {
		t.Errorf("Type/Amount = %s/%s", tx.Type(), tx.Amount())
	}
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		field string
		err   error
	}{
		{"bad type", Draft{Type: "transfer", Amount: "1", Description: "x"}, "type", ErrInvalidType},
		{"empty amount", Draft{Type: Expense, Amount: "", Description: "x"}, "amount", ErrInvalidAmount},
		{"zero amount", Draft{Type: Expense, Amount: "0", Description: "x"}, "amount", ErrInvalidAmount},
		{"negative amount", Draft{Type: Expense, Amount: "-5", Description: "x"}, "amount", ErrInvalidAmount},
		{"signed amount", Draft{Type: Expense, Amount: "+5", Description: "x"}, "amount", ErrInvalidAmount},
		{"text amount", Draft{Type: Expense, Amount: "abc", Description: "x"}, "amount", ErrInvalidAmount},
		{"exponent amount", Draft{Type: Expense, Amount: "1e-999999999", Description: "x"}, "amount", ErrInvalidAmount},
		{"too many digits", Draft{Type: Expense, Amount: strings.Repeat("9", 19), Description: "x"}, "amount", ErrInvalidAmount},
		{"blank description", Draft{Type: Expense, Amount: "5", Description: "   "}, "description", ErrEmptyDescription},
		{"long description", Draft{Type: Expense, Amount: "5", Description: strings.Repeat("a", 201)}, "description", ErrDescriptionTooLong},
		{"unknown category", Draft{Type: Expense, Amount: "5", Description: "x", Category: "food"}, "category", ErrUnknownCategory},
		// type is checked before amount
		{"order", Draft{Type: "", Amount: "", Description: ""}, "type", ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := fixedFactory().Submit(tt.draft)
			if err == nil {
				t.Fatalf("expected error, got %+v", tx)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
			if tx != (Transaction{}) {
				t.Errorf("expected zero transaction, got %+v", tx)
			}
		})
	}
}

func TestSubmit_DescriptionAtLimit(t *testing.T) {
	desc := strings.Repeat("é", maxDescriptionLen)
	if _, err := fixedFactory().Submit(Draft{Type: Expense, Amount: "1", Description: desc}); err != nil {
		t.Fatalf("200 runes should be accepted: %v", err)
	}
}

func TestNewEntryFactory_UniqueIDs(t *testing.T) {
	f := NewEntryFactory()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tx, err := f.Submit(Draft{Type: Income, Amount: "1", Description: "x"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[tx.ID] {
			t.Fatalf("duplicate id %s", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{ID: "a", Expense: "10", Explanation: "x"}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	both := good
	both.Income = "5"
	if !errors.Is(both.Validate(), ErrAmountConflict) {
		t.Errorf("both amounts set should conflict")
	}

	noID := good
	noID.ID = ""
	if !errors.Is(noID.Validate(), ErrMissingID) {
		t.Errorf("missing id should fail")
	}
}

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]string{"10": "10", " 1,5 ": "1.5", "0.01": "0.01", ".5": "0.5"} {
		d, err := ParseAmount(in)
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", in, err)
			continue
		}
		if d.String() != want {
			t.Errorf("ParseAmount(%q) = %s, want %s", in, d, want)
		}
	}
	for _, in := range []string{
		"1,000.5", "1,2,3", "NaN", "0,00",
		"1e3", "1E-999999999", "5.", "1 000", "0x10",
		strings.Repeat("1", maxAmountDigits+1),
		"1." + strings.Repeat("1", maxAmountDigits+1),
	} {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) should fail", in)
		}
	}
}

func TestSubmitEntry_DefaultFactory(t *testing.T) {
	tx, err := SubmitEntry(Draft{Type: Expense, Amount: "12,5", Description: "Bus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Expense != "12.5" || tx.Category != DefaultCategory {
		t.Errorf("tx = %+v", tx)
	}
	if _, ok := tx.Time(); !ok {
		t.Errorf("date %q does not parse", tx.Date)
	}
	if _, err := SubmitEntry(Draft{Type: Expense, Amount: "", Description: "Bus"}); err == nil {
		t.Error("expected error for empty amount")
	}
}
