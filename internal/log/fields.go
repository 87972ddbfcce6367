package log

import (
	"context"
	"errors"

	"budget/internal/core"
	"budget/internal/ports"
)

// Common field names for structured logging
const (
	FieldComponent       = "component"
	FieldRequestID       = "request_id"
	FieldClientIP        = "client_ip"
	FieldMethod          = "method"
	FieldPath            = "path"
	FieldQuery           = "query"
	FieldStatusCode      = "status_code"
	FieldDuration        = "duration_ms"
	FieldDurationHuman   = "duration_human"
	FieldUserAgent       = "user_agent"
	FieldReferer         = "referer"
	FieldSuccess         = "success"
	FieldError           = "error"
	FieldErrorType       = "error_type"
	FieldOperation       = "operation"
	FieldBackend         = "backend"
	FieldCategoryID      = "category_id"
	FieldCategoryName    = "category_name"
	FieldColor           = "color"
	FieldTransactionID   = "transaction_id"
	FieldTransactionType = "transaction_type"
	FieldAmount          = "amount"
	FieldCurrency        = "currency"
	FieldEventType       = "event_type"
	FieldCount           = "count"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentCategory    = "category"
	ComponentTransaction = "transaction"
	ComponentStorage     = "storage"
	ComponentMemory      = "memory"
	ComponentAMQP        = "amqp"
	ComponentCache       = "cache"
	ComponentSecurity    = "security"
	ComponentRateLimit   = "rate_limit"
	ComponentTrace       = "trace"
	ComponentBackend     = "backend"
	ComponentCLI         = "cli"
	ComponentWorker      = "worker"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpRead       = "read"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpSoftDelete = "soft_delete"
	OpList       = "list"
	OpSummary    = "summary"
	OpValidate   = "validate"
	OpParse      = "parse"
	OpPublish    = "publish"
	OpConsume    = "consume"
	OpMigrate    = "migrate"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeForeignKey    = "foreign_key_error"
	ErrorTypeConstraint    = "constraint_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeTimeout       = "timeout_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// ErrorTypeOf maps an error onto one of the ErrorType categories.
func ErrorTypeOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrInvalidDate):
		return ErrorTypeValidation
	case errors.Is(err, ports.ErrNotFound):
		return ErrorTypeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, ports.ErrForeignKey):
		return ErrorTypeForeignKey
	case errors.Is(err, ports.ErrConstraint):
		return ErrorTypeConstraint
	case errors.Is(err, ports.ErrConnection):
		return ErrorTypeNetwork
	}
	var be *ports.BackendError
	if errors.As(err, &be) {
		return ErrorTypeDatabase
	}
	return ErrorTypeInternal
}

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message and its category
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = ErrorTypeOf(err)
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithCategory adds category fields
func (f LogFields) WithCategory(c core.Category) LogFields {
	f[FieldCategoryID] = c.ID
	f[FieldCategoryName] = c.Name
	f[FieldColor] = c.Color
	return f
}

// WithTransaction adds transaction fields. The name and note are left
// out; they are free text entered by the user.
func (f LogFields) WithTransaction(t core.Transaction) LogFields {
	f[FieldTransactionID] = t.ID
	f[FieldTransactionType] = string(t.Type)
	f[FieldAmount] = t.Amount.StringFixed(2)
	f[FieldCurrency] = string(t.Currency)
	f[FieldCategoryID] = t.CategoryID
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	if referer != "" {
		f[FieldReferer] = referer
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
