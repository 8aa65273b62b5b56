package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"smartledger/internal/core"
	"smartledger/internal/log"
	appweb "smartledger/web"
)

const currencySymbol = "₫"

func parseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"money": formatMoney,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// formatMoney renders an amount with thousands separators, e.g.
// "1,250,000 ₫" or "-12.5 ₫".
func formatMoney(d decimal.Decimal) string {
	return humanize.CommafWithDigits(d.InexactFloat64(), 2) + " " + currencySymbol
}

// formatAmount formats a stored amount string, falling back to the raw
// text when it does not parse.
func formatAmount(s string) string {
	d, ok := core.ParseStoredAmount(s)
	if !ok {
		return s + " " + currencySymbol
	}
	return formatMoney(d)
}

func formatDate(s string) string {
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return s
		}
	}
	return t.Format("Jan 2, 2006")
}

// percentOf returns v as a whole percentage of max, at least 2 for any
// non-zero value so small bars stay visible.
func percentOf(v, max decimal.Decimal) int {
	if max.Sign() <= 0 || v.Sign() <= 0 {
		return 0
	}
	p := int(v.Mul(decimal.NewFromInt(100)).Div(max).Round(0).IntPart())
	if p < 2 {
		return 2
	}
	if p > 100 {
		return 100
	}
	return p
}

type txRow struct {
	ID          string
	Explanation string
	Category    string
	Color       string
	Date        string
	Amount      string
	Income      bool
}

func transactionRows(txs []core.Transaction) []txRow {
	rows := make([]txRow, 0, len(txs))
	for _, tx := range txs {
		row := txRow{
			ID:          tx.ID,
			Explanation: tx.Explanation,
			Category:    tx.Category,
			Color:       "#94a3b8",
			Date:        formatDate(tx.Date),
			Income:      tx.Income != "",
		}
		if c, ok := core.LookupCategory(tx.Category); ok {
			row.Color = c.Color
		}
		if row.Income {
			row.Amount = "+" + formatAmount(tx.Income)
		} else {
			row.Amount = "-" + formatAmount(tx.Expense)
		}
		rows = append(rows, row)
	}
	return rows
}

type breakdownRow struct {
	Name    string
	Color   string
	Amount  string
	Percent int
}

func breakdownRows(data []core.CategoryData) []breakdownRow {
	total := decimal.Zero
	for _, d := range data {
		total = total.Add(d.Value)
	}
	rows := make([]breakdownRow, 0, len(data))
	for _, d := range data {
		rows = append(rows, breakdownRow{
			Name:    d.Name,
			Color:   d.Color,
			Amount:  formatMoney(d.Value),
			Percent: percentOf(d.Value, total),
		})
	}
	return rows
}

type trendRow struct {
	Month        string
	Income       string
	Expense      string
	IncomeWidth  int
	ExpenseWidth int
}

func trendRows(points []core.MonthlyPoint) []trendRow {
	peak := decimal.Zero
	for _, p := range points {
		peak = decimal.Max(peak, p.Income, p.Expense)
	}
	rows := make([]trendRow, 0, len(points))
	for _, p := range points {
		label := p.Month
		if t, err := time.Parse("2006-01", p.Month); err == nil {
			label = t.Format("Jan 2006")
		}
		rows = append(rows, trendRow{
			Month:        label,
			Income:       formatMoney(p.Income),
			Expense:      formatMoney(p.Expense),
			IncomeWidth:  percentOf(p.Income, peak),
			ExpenseWidth: percentOf(p.Expense, peak),
		})
	}
	return rows
}

// render executes a template into a buffer first so a failing template
// never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldOperation, log.OpRender,
			"template", name,
			log.FieldError, err)
		InternalServerError("Rendering failed").Write(w)
		return
	}
	NewHTMXResponse().Status(status).BodyHTML(buf.Bytes()).Write(w)
}
