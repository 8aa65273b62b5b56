package core

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)
	if !s.TotalIncome.IsZero() || !s.TotalExpense.IsZero() || !s.Balance.IsZero() {
		t.Fatalf("expected zero stats, got %+v", s)
	}
}

func TestComputeStats_SingleExpense(t *testing.T) {
	txs := []Transaction{{ID: "1", Expense: "50000", Explanation: "Lunch", Category: "Food"}}

	s := ComputeStats(txs)
	if !s.TotalIncome.IsZero() {
		t.Errorf("income = %s", s.TotalIncome)
	}
	if !s.TotalExpense.Equal(dec("50000")) {
		t.Errorf("expense = %s", s.TotalExpense)
	}
	if !s.Balance.Equal(dec("-50000")) {
		t.Errorf("balance = %s", s.Balance)
	}

	b := ComputeCategoryBreakdown(txs, Categories())
	if len(b) != 1 || b[0].Name != "Food" || !b[0].Value.Equal(dec("50000")) || b[0].Color != "#ef4444" {
		t.Fatalf("breakdown = %+v", b)
	}
}

func TestComputeStats_IncomeThenExpense(t *testing.T) {
	txs := []Transaction{
		{ID: "2", Expense: "300000", Explanation: "Rent", Category: "Rent"},
		{ID: "1", Income: "1000000", Explanation: "Salary", Category: "Salary"},
	}
	s := ComputeStats(txs)
	if !s.TotalIncome.Equal(dec("1000000")) || !s.TotalExpense.Equal(dec("300000")) || !s.Balance.Equal(dec("700000")) {
		t.Fatalf("stats = %+v", s)
	}
}

func TestComputeStats_LenientAmounts(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Income: "abc"},
		{ID: "2", Expense: ""},
		{ID: "3", Income: "2.5"},
	}
	s := ComputeStats(txs)
	if !s.TotalIncome.Equal(dec("2.5")) || !s.TotalExpense.IsZero() {
		t.Fatalf("stats = %+v", s)
	}
}

func TestComputeStats_OutOfRangeAmounts(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Expense: "1e-999999999", Date: "2024-03-01T10:00:00.000Z", Category: "Food"},
		{ID: "2", Income: "1e999999999"},
		{ID: "3", Income: "10"},
	}
	s := ComputeStats(txs)
	if !s.TotalIncome.Equal(dec("10")) || !s.TotalExpense.IsZero() || !s.Balance.Equal(dec("10")) {
		t.Fatalf("stats = %+v", s)
	}
	if got := ComputeCategoryBreakdown(txs, Categories()); len(got) != 0 {
		t.Errorf("breakdown = %+v, want empty", got)
	}
	if got := amountOrZero("1e3"); !got.Equal(dec("1000")) {
		t.Errorf("amountOrZero(1e3) = %s", got)
	}
}

func TestComputeStats_Idempotent(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Income: "10"},
		{ID: "2", Expense: "3"},
	}
	if !reflect.DeepEqual(ComputeStats(txs), ComputeStats(txs)) {
		t.Fatal("stats differ between calls")
	}
}

func TestComputeCategoryBreakdown(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Expense: "10", Category: "Transport"},
		{ID: "2", Expense: "5", Category: "Food"},
		{ID: "3", Expense: "7", Category: "Food"},
		{ID: "4", Income: "100", Category: "Salary"},
		{ID: "5", Expense: "9", Category: "Travel"},
		{ID: "6", Expense: "9", Category: "food"},
	}

	got := ComputeCategoryBreakdown(txs, Categories())
	if len(got) != 2 {
		t.Fatalf("breakdown = %+v", got)
	}
	// declared order: Food before Transport
	if got[0].Name != "Food" || !got[0].Value.Equal(dec("12")) {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Name != "Transport" || !got[1].Value.Equal(dec("10")) {
		t.Errorf("second = %+v", got[1])
	}
}

func TestComputeCategoryBreakdown_Empty(t *testing.T) {
	if got := ComputeCategoryBreakdown(nil, Categories()); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}

func TestMonthlyTrend(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Income: "100", Date: "2024-03-02T00:00:00.000Z"},
		{ID: "2", Expense: "40", Date: "2024-03-20T00:00:00.000Z"},
		{ID: "3", Expense: "5", Date: "2024-01-10T00:00:00.000Z"},
		{ID: "4", Expense: "1", Date: "not a date"},
		{ID: "5", Income: "7", Date: "2023-12-31T23:59:59.000Z"},
	}

	got := MonthlyTrend(txs, 0)
	months := make([]string, len(got))
	for i, p := range got {
		months[i] = p.Month
	}
	if !reflect.DeepEqual(months, []string{"2023-12", "2024-01", "2024-03"}) {
		t.Fatalf("months = %v", months)
	}
	if !got[2].Income.Equal(dec("100")) || !got[2].Expense.Equal(dec("40")) {
		t.Errorf("march = %+v", got[2])
	}

	last := MonthlyTrend(txs, 2)
	if len(last) != 2 || last[0].Month != "2024-01" {
		t.Errorf("last two = %+v", last)
	}
}

func TestSortNewestFirst(t *testing.T) {
	txs := []Transaction{
		{ID: "old", Date: "2024-01-01T00:00:00.000Z"},
		{ID: "bad", Date: ""},
		{ID: "new", Date: "2024-05-01T00:00:00.000Z"},
		{ID: "mid", Date: "2024-03-01T00:00:00.000Z"},
	}
	got := SortNewestFirst(txs)
	ids := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	if !reflect.DeepEqual(ids, []string{"new", "mid", "old", "bad"}) {
		t.Fatalf("order = %v", ids)
	}
	if txs[0].ID != "old" {
		t.Fatal("input slice was modified")
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	c := Categories()
	c[0].Name = "changed"
	if Categories()[0].Name != "Salary" {
		t.Fatal("Categories leaked internal slice")
	}
	if _, ok := LookupCategory("Other"); !ok {
		t.Fatal("Other should be known")
	}
}
