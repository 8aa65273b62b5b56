package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HX-Trigger event names the page listens for.
const (
	EventTransactionCreated = "transaction:created"
	EventFormReset          = "form:reset"
	EventNotification       = "show-notification"
)

// HTMXResponseBuilder assembles an htmx response: status, headers,
// HX-Trigger events and an HTML body.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse starts a 200 response.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds an event to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerTransactionCreated tells listening partials to reload.
func (b *HTMXResponseBuilder) TriggerTransactionCreated(id, entryType string) *HTMXResponseBuilder {
	return b.Trigger(EventTransactionCreated, map[string]string{"id": id, "type": entryType})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, struct{}{})
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
)

func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(EventNotification, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyHTML sets an HTML body. The caller is responsible for escaping.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// Write sends the response. Headers must be complete before this call.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if raw, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(raw))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders an escaped inline error block.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML([]byte(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`))
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// FieldError is the inline 422 block shown under the entry form.
func FieldError(field, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusUnprocessableEntity).
		BodyHTML([]byte(`<div class="error" data-field="` + template.HTMLEscapeString(field) + `">` +
			template.HTMLEscapeString(message) + `</div>`))
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// APIError is the JSON error body. Field is set for validation failures.
type APIError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
