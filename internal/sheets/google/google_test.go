package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goption "google.golang.org/api/option"

	"smartledger/internal/core"
	"smartledger/internal/log"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "abc"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "abc", CredentialsFile: "/nonexistent/sa.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMirror_AppendsRow(t *testing.T) {
	var gotPath, gotQuery string
	var gotBody struct {
		Values [][]any `json:"values"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRange":"Ledger!A2:D2","updatedRows":1}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		Logger:        log.Discard(),
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithHTTPClient(srv.Client()),
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }

	if err := c.Mirror(context.Background(), core.SyncRecord{Expense: "50000", Explanation: "Lunch"}); err != nil {
		t.Fatalf("mirror: %v", err)
	}

	if !strings.Contains(gotPath, "/spreadsheets/sheet-1/values/Ledger!A:D:append") {
		t.Errorf("path = %s", gotPath)
	}
	if !strings.Contains(gotQuery, "valueInputOption=USER_ENTERED") || !strings.Contains(gotQuery, "insertDataOption=INSERT_ROWS") {
		t.Errorf("query = %s", gotQuery)
	}
	if len(gotBody.Values) != 1 {
		t.Fatalf("values = %v", gotBody.Values)
	}
	want := []any{"2024-03-05T09:00:00.000Z", "", "50000", "Lunch"}
	for i, v := range want {
		if gotBody.Values[0][i] != v {
			t.Errorf("col %d = %v, want %v", i, gotBody.Values[0][i], v)
		}
	}
}

func TestMirror_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		Logger:        log.Discard(),
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithHTTPClient(srv.Client()),
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := c.Mirror(context.Background(), core.SyncRecord{Income: "1", Explanation: "x"}); err == nil {
		t.Fatal("expected error")
	}
}
