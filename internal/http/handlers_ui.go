package http

import (
	"errors"
	"html/template"
	"net/http"

	"smartledger/internal/advisor"
	"smartledger/internal/core"
	"smartledger/internal/log"
)

const (
	viewDashboard    = "dashboard"
	viewTransactions = "transactions"
	defaultTrendSpan = 6
)

type indexData struct {
	View        string
	Categories  []core.Category
	DefaultType core.EntryType
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view != viewTransactions {
		view = viewDashboard
	}
	s.render(w, r, http.StatusOK, "index.html", indexData{
		View:        view,
		Categories:  core.Categories(),
		DefaultType: core.Expense,
	})
}

// newestFirst returns the ledger ordered by date, limited to n (0 = all).
func (s *Server) newestFirst(n int) []core.Transaction {
	txs := core.SortNewestFirst(s.ledger.All())
	if n > 0 && len(txs) > n {
		txs = txs[:n]
	}
	return txs
}

func (s *Server) handleStatsPartial(w http.ResponseWriter, r *http.Request) {
	stats := core.ComputeStats(s.ledger.All())
	s.render(w, r, http.StatusOK, "stats.html", struct {
		Balance, Income, Expense string
		Negative                 bool
	}{
		Balance:  formatMoney(stats.Balance),
		Income:   formatMoney(stats.TotalIncome),
		Expense:  formatMoney(stats.TotalExpense),
		Negative: stats.Balance.IsNegative(),
	})
}

func (s *Server) handleBreakdownPartial(w http.ResponseWriter, r *http.Request) {
	data := core.ComputeCategoryBreakdown(s.ledger.All(), core.Categories())
	s.render(w, r, http.StatusOK, "breakdown.html", struct{ Rows []breakdownRow }{breakdownRows(data)})
}

func (s *Server) handleTrendPartial(w http.ResponseWriter, r *http.Request) {
	points := core.MonthlyTrend(s.ledger.All(), ParseMonths(r.URL.Query(), defaultTrendSpan))
	s.render(w, r, http.StatusOK, "trend.html", struct{ Rows []trendRow }{trendRows(points)})
}

func (s *Server) handleTransactionsPartial(w http.ResponseWriter, r *http.Request) {
	limit := ParseLimit(r.URL.Query(), defaultRecentLimit)
	txs := s.newestFirst(limit)
	s.render(w, r, http.StatusOK, "transactions.html", struct {
		Rows  []txRow
		Total int
		Limit int
	}{transactionRows(txs), s.ledger.Len(), limit})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	draft, err := ParseDraft(r)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error", log.FieldError, err, log.FieldPath, r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	tx, err := s.entries.Submit(r.Context(), draft)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			FieldError(verr.Field, verr.Error()).Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Entry submission failed",
			log.NewFields().WithOperation(log.OpAppend).WithError(err).ToSlice()...)
		InternalServerError("Could not record the entry").Write(w)
		return
	}

	row := transactionRows([]core.Transaction{tx})[0]
	NewHTMXResponse().
		TriggerTransactionCreated(tx.ID, string(draft.Type)).
		TriggerFormReset().
		TriggerNotification(NotificationSuccess, "Entry recorded", 3000).
		BodyHTML([]byte(`<div class="success">Recorded ` + template.HTMLEscapeString(row.Explanation) +
			`: ` + template.HTMLEscapeString(row.Amount) + `</div>`)).
		Write(w)
}

func (s *Server) handleAdvicePartial(w http.ResponseWriter, r *http.Request) {
	advice := s.advisor.RequestAdvice(r.Context(), s.ledger.All())
	if advice.Stale {
		// A newer request already answered; keep what the panel shows.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.render(w, r, http.StatusOK, "advice.html", struct {
		Text      string
		Fallback  bool
		CreatedAt string
	}{
		Text:      advice.Text,
		Fallback:  advice.Source != advisor.SourceModel,
		CreatedAt: advice.CreatedAt.Format("15:04"),
	})
}
