package memory

import (
	"context"
	"errors"
	"testing"

	"smartledger/internal/core"
)

func TestMirrorRecords(t *testing.T) {
	m := New()
	ctx := context.Background()

	if err := m.Mirror(ctx, core.SyncRecord{Income: "10", Explanation: "a"}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := m.Mirror(ctx, core.SyncRecord{Expense: "3", Explanation: "b"}); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	got := m.Records()
	if len(got) != 2 || got[0].Explanation != "a" || got[1].Explanation != "b" {
		t.Fatalf("records = %+v", got)
	}
}

func TestMirrorFailWith(t *testing.T) {
	m := New()
	boom := errors.New("HTTP 500")
	m.FailWith(boom)
	ch := m.Notify(1)

	err := m.Mirror(context.Background(), core.SyncRecord{Income: "1"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(m.Records()) != 0 {
		t.Fatal("failed call should not be recorded")
	}
	if rec := <-ch; rec.Income != "1" {
		t.Fatalf("notify = %+v", rec)
	}
}
