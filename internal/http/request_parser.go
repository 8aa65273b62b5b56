package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"smartledger/internal/core"
)

// maxBodyBytes caps form and JSON bodies.
const maxBodyBytes = 64 << 10

const (
	defaultRecentLimit = 10
	maxListLimit       = 500
)

var errBodyTooLarge = errors.New("request body too large")

// ParseLimit reads ?limit=N. Missing or invalid values give def; values
// above maxListLimit are clamped. Zero means no limit.
func ParseLimit(query url.Values, def int) int {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

// ParseMonths reads ?months=N for the trend series.
func ParseMonths(query url.Values, def int) int {
	v := strings.TrimSpace(query.Get("months"))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 120 {
		return def
	}
	return n
}

// RequestBodyParser reads a JSON object or a form-encoded body once and
// exposes its fields as strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	switch {
	case err != nil:
		p.err = err
	case len(body) > maxBodyBytes:
		p.err = errBodyTooLarge
	default:
		p.body = body
	}
	return p
}

// Parse decodes the body. Bodies starting with '{' are JSON objects;
// anything else is parsed as a form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal([]byte(trimmed), &p.jsonData)
		return p.err
	}
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a sanitized field value, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if v, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(v))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Draft maps the parsed fields onto a core.Draft.
func (p *RequestBodyParser) Draft() core.Draft {
	return core.Draft{
		Type:        core.EntryType(strings.ToLower(p.Get("type"))),
		Amount:      p.Get("amount"),
		Description: p.Get("description"),
		Category:    p.Get("category"),
	}
}

// ParseDraft reads a draft from a JSON or form body.
func ParseDraft(r *http.Request) (core.Draft, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.Draft{}, err
	}
	return p.Draft(), nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
