package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldBytes      = "bytes"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldBackend    = "backend"
	FieldKey        = "key"
	FieldEntryID    = "entry_id"
	FieldEntryType  = "entry_type"
	FieldCategory   = "category"
	FieldCount      = "count"
	FieldGeneration = "generation"
	FieldTarget     = "target"
)

// Component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentSync      = "sync"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentAdvisor   = "advisor"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
)

// Operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpAppend   = "append"
	OpMirror   = "mirror"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpAdvise   = "advise"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields builds a set of slog attributes.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error text; nil errors are skipped.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithEntry adds the identifying fields of a ledger entry.
func (f LogFields) WithEntry(id, entryType, category string) LogFields {
	f[FieldEntryID] = id
	f[FieldEntryType] = entryType
	f[FieldCategory] = category
	return f
}

func (f LogFields) WithHTTP(method, path string, status int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = status
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to key/value pairs for slog.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
