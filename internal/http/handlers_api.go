package http

import (
	"errors"
	"net/http"

	"smartledger/internal/core"
	"smartledger/internal/log"
)

func (s *Server) apiListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.newestFirst(ParseLimit(r.URL.Query(), 0))
	if txs == nil {
		txs = []core.Transaction{}
	}
	JSON(w, http.StatusOK, txs)
}

func (s *Server) apiCreateTransaction(w http.ResponseWriter, r *http.Request) {
	draft, err := ParseDraft(r)
	if err != nil {
		JSON(w, http.StatusBadRequest, APIError{Error: "invalid request body"})
		return
	}

	tx, err := s.entries.Submit(r.Context(), draft)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			JSON(w, http.StatusUnprocessableEntity, APIError{Error: verr.Err.Error(), Field: verr.Field})
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Entry submission failed",
			log.NewFields().WithOperation(log.OpAppend).WithError(err).ToSlice()...)
		JSON(w, http.StatusInternalServerError, APIError{Error: "could not record the entry"})
		return
	}
	JSON(w, http.StatusCreated, tx)
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, core.ComputeStats(s.ledger.All()))
}

func (s *Server) apiBreakdown(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, core.ComputeCategoryBreakdown(s.ledger.All(), core.Categories()))
}

func (s *Server) apiTrend(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, core.MonthlyTrend(s.ledger.All(), ParseMonths(r.URL.Query(), defaultTrendSpan)))
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, core.Categories())
}

// apiAdvice always answers 200; clients use the stale flag to decide
// whether to replace what they show.
func (s *Server) apiAdvice(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.advisor.RequestAdvice(r.Context(), s.ledger.All()))
}
