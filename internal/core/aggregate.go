package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FinancialStats is derived from the ledger on every read.
type FinancialStats struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

// CategoryData is the expense total of one known category.
type CategoryData struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color"`
}

// MonthlyPoint holds income and expense totals for one calendar month.
type MonthlyPoint struct {
	Month   string          `json:"month"` // YYYY-MM
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// ComputeStats folds the sequence left to right. Empty or non-numeric
// amounts count as zero.
func ComputeStats(txs []Transaction) FinancialStats {
	stats := FinancialStats{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Balance:      decimal.Zero,
	}
	for _, tx := range txs {
		inc := amountOrZero(tx.Income)
		exp := amountOrZero(tx.Expense)
		stats.TotalIncome = stats.TotalIncome.Add(inc)
		stats.TotalExpense = stats.TotalExpense.Add(exp)
		stats.Balance = stats.Balance.Add(inc.Sub(exp))
	}
	return stats
}

// ComputeCategoryBreakdown sums expense amounts per known category.
// Result order follows cats; categories with a zero total are omitted and
// transactions in unknown categories are ignored.
func ComputeCategoryBreakdown(txs []Transaction, cats []Category) []CategoryData {
	out := make([]CategoryData, 0, len(cats))
	for _, cat := range cats {
		sum := decimal.Zero
		for _, tx := range txs {
			if tx.Category != cat.Name || tx.Expense == "" {
				continue
			}
			sum = sum.Add(amountOrZero(tx.Expense))
		}
		if sum.IsZero() {
			continue
		}
		out = append(out, CategoryData{Name: cat.Name, Value: sum, Color: cat.Color})
	}
	return out
}

// MonthlyTrend groups transactions by calendar month (UTC) in ascending
// order and keeps the last n months; n <= 0 keeps all of them.
// Transactions with an unparseable date are skipped.
func MonthlyTrend(txs []Transaction, n int) []MonthlyPoint {
	byMonth := map[string]*MonthlyPoint{}
	for _, tx := range txs {
		ts, ok := tx.Time()
		if !ok {
			continue
		}
		key := ts.UTC().Format("2006-01")
		p, found := byMonth[key]
		if !found {
			p = &MonthlyPoint{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[key] = p
		}
		p.Income = p.Income.Add(amountOrZero(tx.Income))
		p.Expense = p.Expense.Add(amountOrZero(tx.Expense))
	}

	out := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// SortNewestFirst returns a copy ordered by date, newest first. Ties keep
// their input order; entries without a parseable date go last.
func SortNewestFirst(txs []Transaction) []Transaction {
	out := append([]Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, okI := out[i].Time()
		tj, okJ := out[j].Time()
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})
	return out
}
