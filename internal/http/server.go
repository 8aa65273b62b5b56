// Package http serves the ledger UI (server-rendered with htmx partials)
// and a JSON API over the same operations.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"smartledger/internal/advisor"
	"smartledger/internal/core"
	"smartledger/internal/log"
	"smartledger/internal/middleware/ratelimit"
	"smartledger/internal/middleware/security"
	appweb "smartledger/web"
)

// LedgerReader is the read side of the ledger store.
type LedgerReader interface {
	All() []core.Transaction
	Len() int
}

// EntrySubmitter validates and records a draft.
type EntrySubmitter interface {
	Submit(ctx context.Context, d core.Draft) (core.Transaction, error)
}

// AdviceRequester produces advice for a ledger snapshot.
type AdviceRequester interface {
	RequestAdvice(ctx context.Context, txs []core.Transaction) advisor.Advice
}

// ReadyCheck is one dependency probed by /readyz.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Options struct {
	Addr           string
	Ledger         LedgerReader
	Entries        EntrySubmitter
	Advisor        AdviceRequester
	ReadyChecks    []ReadyCheck
	Logger         *log.Logger
	AllowedOrigins []string
	RateLimit      ratelimit.Config
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    LedgerReader
	entries   EntrySubmitter
	advisor   AdviceRequester
	ready     []ReadyCheck
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	logger    *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		templates: t,
		ledger:    opts.Ledger,
		entries:   opts.Entries,
		advisor:   opts.Advisor,
		ready:     opts.ReadyChecks,
		limiter:   ratelimit.New(opts.RateLimit),
		detector:  security.NewDetector(),
		logger:    logger,
	}
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(opts.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(log.RequestLogger(s.logger))
	r.Use(s.detector.Middleware(s.logger))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.limiter.Middleware(s.detector.ClientIP, s.logger, http.MethodPost))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Handle("/static/*", security.StaticCache(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Post("/transactions", s.handleCreateTransaction)
	r.Route("/ui", func(r chi.Router) {
		r.Get("/stats", s.handleStatsPartial)
		r.Get("/breakdown", s.handleBreakdownPartial)
		r.Get("/trend", s.handleTrendPartial)
		r.Get("/transactions", s.handleTransactionsPartial)
		r.Post("/advice", s.handleAdvicePartial)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
		r.Get("/transactions", s.apiListTransactions)
		r.Post("/transactions", s.apiCreateTransaction)
		r.Get("/stats", s.apiStats)
		r.Get("/breakdown", s.apiBreakdown)
		r.Get("/trend", s.apiTrend)
		r.Get("/categories", s.apiCategories)
		r.Post("/advice", s.apiAdvice)
	})

	return r
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleReady probes every configured dependency with a short timeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failed := map[string]string{}
	for _, rc := range s.ready {
		if err := rc.Check(ctx); err != nil {
			failed[rc.Name] = err.Error()
			s.logger.WarnContext(ctx, "Readiness check failed", "check", rc.Name, log.FieldError, err)
		}
	}
	if len(failed) > 0 {
		JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	JSON(w, http.StatusOK, map[string]any{"status": "ready", "entries": s.ledger.Len()})
}
