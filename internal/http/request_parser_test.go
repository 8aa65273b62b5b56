package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"smartledger/internal/core"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 5},
		{"limit=10", 10},
		{"limit=0", 0},
		{"limit=-3", 5},
		{"limit=abc", 5},
		{"limit=100000", maxListLimit},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := ParseLimit(q, 5); got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestParseMonths(t *testing.T) {
	q, _ := url.ParseQuery("months=3")
	if got := ParseMonths(q, 6); got != 3 {
		t.Errorf("ParseMonths = %d, want 3", got)
	}
	q, _ = url.ParseQuery("months=0")
	if got := ParseMonths(q, 6); got != 6 {
		t.Errorf("ParseMonths(0) = %d, want default", got)
	}
}

func TestParseDraft(t *testing.T) {
	want := core.Draft{Type: core.Expense, Amount: "12,50", Description: "Lunch", Category: "Food"}

	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"form", "type=expense&amount=12%2C50&description=+Lunch+&category=Food", "application/x-www-form-urlencoded"},
		{"json", `{"type":"expense","amount":"12,50","description":" Lunch ","category":"Food"}`, "application/json"},
		{"json upper type", `{"type":"EXPENSE","amount":"12,50","description":"Lunch","category":"Food"}`, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.contentType)

			got, err := ParseDraft(r)
			if err != nil {
				t.Fatalf("ParseDraft: %v", err)
			}
			if got != want {
				t.Errorf("ParseDraft = %+v, want %+v", got, want)
			}
		})
	}
}

func TestParseDraft_NumericAmount(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(`{"type":"income","amount":1500000,"description":"Pay"}`))
	got, err := ParseDraft(r)
	if err != nil {
		t.Fatalf("ParseDraft: %v", err)
	}
	if got.Amount != "1500000" {
		t.Errorf("Amount = %q, want 1500000", got.Amount)
	}
}

func TestParseDraft_Errors(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(`{"type":`))
	if _, err := ParseDraft(r); err == nil {
		t.Error("expected error for malformed JSON")
	}

	big := strings.Repeat("a", maxBodyBytes+10)
	r = httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader("description="+big))
	if _, err := ParseDraft(r); err == nil {
		t.Error("expected error for oversized body")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hi\x00there\x07 "); got != "hithere" {
		t.Errorf("sanitizeInput = %q", got)
	}
	if got := sanitizeInput("a\tb"); got != "a\tb" {
		t.Errorf("tab should be kept, got %q", got)
	}
}
