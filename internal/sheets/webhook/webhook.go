// Package webhook mirrors entries by POSTing them to a spreadsheet web app.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"smartledger/internal/core"
	"smartledger/internal/log"
	ports "smartledger/internal/sheets"
)

// maxResponseBytes bounds how much of the reply is read.
const maxResponseBytes = 1 << 20

var _ ports.EntryMirror = (*Client)(nil)

// StatusError reports a non-2xx reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned HTTP %d: %s", e.Code, e.Body)
}

type Client struct {
	url    string
	http   *http.Client
	logger *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentSync) }
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		http:   newHTTPClient(),
		logger: log.New(log.Config{Component: log.ComponentSync}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClient has no overall timeout; callers bound each call with ctx.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}

// Mirror POSTs the record as JSON with Content-Type text/plain, which Apps
// Script accepts without a CORS preflight. It succeeds on any 2xx reply
// whose body is valid JSON. Redirects are followed by the client.
func (c *Client) Mirror(ctx context.Context, rec core.SyncRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode sync record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: truncate(string(reply), 200)}
	}

	var decoded any
	if err := json.Unmarshal(reply, &decoded); err != nil {
		return fmt.Errorf("decode webhook response: %w", err)
	}

	c.logger.DebugContext(ctx, "Entry mirrored",
		log.FieldOperation, log.OpMirror,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
