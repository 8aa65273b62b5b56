// Package advisor asks a language model for budgeting advice about the
// ledger and always hands back something displayable.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"smartledger/internal/core"
	"smartledger/internal/log"
)

const (
	MessageEmptyLedger = "Record some transactions first so I can analyze your spending!"
	MessageNoOutput    = "I couldn't generate advice at this time. Try adding more transactions!"
	MessageOffline     = "The AI financial advisor is currently offline. Please check your budget manually."

	SystemInstruction = "You are a professional financial advisor specializing in personal budgeting and saving strategies."
	Temperature       = float32(0.7)

	DefaultTimeout = 20 * time.Second

	// concurrent generator calls; extra requests wait their turn
	maxInflight = 3
)

// ErrUnavailable is returned by the generator used when no endpoint is
// configured.
var ErrUnavailable = errors.New("advisor: no generator configured")

type Request struct {
	System      string
	Prompt      string
	Temperature float32
}

// Generator produces free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Unavailable always fails, so callers get the offline message.
var Unavailable Generator = GeneratorFunc(func(context.Context, Request) (string, error) {
	return "", ErrUnavailable
})

type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
	SourceStatic   Source = "static"
)

// Advice is the outcome of one request. Stale is set when a request issued
// later had already completed by the time this one finished.
type Advice struct {
	Text       string    `json:"text"`
	Source     Source    `json:"source"`
	Generation uint64    `json:"generation"`
	Stale      bool      `json:"stale"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Summary is the reduced view of a transaction sent in the prompt.
type Summary struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Desc   string `json:"desc"`
	Date   string `json:"date"`
}

type Service struct {
	gen     Generator
	timeout time.Duration
	logger  *log.Logger
	now     func() time.Time
	sem     chan struct{}

	issued atomic.Uint64

	mu         sync.Mutex
	newestDone uint64
	latest     Advice
	hasLatest  bool
}

type Option func(*Service)

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l.WithComponent(log.ComponentAdvisor) }
}

// NewService wraps gen; a nil gen behaves like Unavailable.
func NewService(gen Generator, opts ...Option) *Service {
	if gen == nil {
		gen = Unavailable
	}
	s := &Service{
		gen:     gen,
		timeout: DefaultTimeout,
		logger:  log.New(log.Config{Component: log.ComponentAdvisor}),
		now:     time.Now,
		sem:     make(chan struct{}, maxInflight),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestAdvice never fails. An empty ledger short-circuits without calling
// the generator; errors, timeouts and empty output map to fixed messages.
func (s *Service) RequestAdvice(ctx context.Context, txs []core.Transaction) Advice {
	gen := s.issued.Add(1)

	if len(txs) == 0 {
		return s.complete(gen, MessageEmptyLedger, SourceStatic)
	}

	prompt, err := BuildPrompt(txs)
	if err != nil {
		s.logger.ErrorContext(ctx, "Building advice prompt failed", log.FieldError, err)
		return s.complete(gen, MessageOffline, SourceFallback)
	}

	text, err := s.generate(ctx, Request{System: SystemInstruction, Prompt: prompt, Temperature: Temperature})
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "Advice generation failed",
			log.FieldOperation, log.OpAdvise, log.FieldGeneration, gen, log.FieldError, err)
		return s.complete(gen, MessageOffline, SourceFallback)
	case strings.TrimSpace(text) == "":
		return s.complete(gen, MessageNoOutput, SourceFallback)
	default:
		return s.complete(gen, strings.TrimSpace(text), SourceModel)
	}
}

func (s *Service) generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	start := time.Now()
	text, err := s.gen.Generate(ctx, req)
	if err == nil {
		// a generator that ignores ctx still counts as timed out
		err = ctx.Err()
	}
	s.logger.DebugContext(ctx, "Generator returned", log.FieldDuration, time.Since(start).Milliseconds())
	return text, err
}

func (s *Service) complete(gen uint64, text string, src Source) Advice {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := Advice{Text: text, Source: src, Generation: gen, CreatedAt: s.now()}
	if gen < s.newestDone {
		a.Stale = true
		s.logger.Debug("Discarding stale advice", log.FieldGeneration, gen)
		return a
	}
	s.newestDone = gen
	s.latest = a
	s.hasLatest = true
	return a
}

// Latest returns the newest non-stale advice, if any was produced.
func (s *Service) Latest() (Advice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

// Summarize maps transactions to the prompt view, keeping their order.
func Summarize(txs []core.Transaction) []Summary {
	out := make([]Summary, 0, len(txs))
	for _, tx := range txs {
		kind := "Expense"
		if tx.Type() == core.Income {
			kind = "Income"
		}
		out = append(out, Summary{Type: kind, Amount: tx.Amount(), Desc: tx.Explanation, Date: tx.Date})
	}
	return out
}

// BuildPrompt renders the user prompt with the transactions as indented JSON.
func BuildPrompt(txs []core.Transaction) (string, error) {
	b, err := json.MarshalIndent(Summarize(txs), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("Based on the following personal financial transactions, provide 3 actionable pieces of advice to improve financial health.\n")
	sb.WriteString("Analyze spending trends and identify potential savings. Keep it professional but encouraging.\n\n")
	sb.WriteString("Transactions:\n")
	sb.Write(b)
	sb.WriteString("\n")
	return sb.String(), nil
}
