// Package ratelimit throttles requests per client with token buckets.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"smartledger/internal/log"
)

// Config holds rate limiter configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate for one client.
	RequestsPerSecond float64
	Burst             int
	// IdleTTL is how long an unused client bucket is kept.
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		Burst:             20,
		IdleTTL:           10 * time.Minute,
		CleanupInterval:   time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New starts a limiter and its cleanup loop. Call Stop to end the loop.
func New(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	l := &Limiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		idleTTL:  cfg.IdleTTL,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(cfg.CleanupInterval)
	return l
}

// Allow reports whether the client identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	l.mu.Unlock()

	return v.limiter.Allow()
}

// ActiveClients returns the number of tracked clients.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) evictIdle() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

// Stop ends the cleanup loop. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Middleware rejects requests over the limit with 429. Only methods listed
// in methods are limited; an empty list limits every request.
func (l *Limiter) Middleware(keyFn func(*http.Request) string, logger *log.Logger, methods ...string) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentRateLimit)
	limited := make(map[string]bool, len(methods))
	for _, m := range methods {
		limited[m] = true
	}

	retryAfter := strconv.Itoa(int(max(1, 1/float64(l.limit))))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(limited) > 0 && !limited[r.Method] {
				next.ServeHTTP(w, r)
				return
			}
			key := keyFn(r)
			if !l.Allow(key) {
				logger.WarnContext(r.Context(), "Rate limit exceeded",
					log.FieldClientIP, key,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
