package http

import (
	"errors"
	"net/http"
	"strings"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/ports"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// errorMessages holds the user-facing text for one route's failures.
type errorMessages struct {
	notFound string
	failed   string
}

var (
	categoryErrors    = errorMessages{notFound: "Category not found", failed: "Failed to fetch category"}
	transactionErrors = errorMessages{notFound: "Transaction not found", failed: "Failed to fetch transaction"}
)

func (m errorMessages) withFailure(failed string) errorMessages {
	m.failed = failed
	return m
}

// writeServiceError maps a service error to a response. Validation
// failures carry their own message; everything unexpected is logged and
// answered with the generic failure text.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string, msgs errorMessages) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		BadRequestError(verr.Message()).Write(w)
	case errors.Is(err, ports.ErrNotFound):
		NotFoundError(msgs.notFound).Write(w)
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), msgs.failed, err, op,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")))
		InternalServerError(msgs.failed).Write(w)
	}
}

// parseBody parses the request body and answers 400 when it is malformed.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Malformed request body",
			log.FieldPath, r.URL.Path, log.FieldError, err.Error())
		BadRequestError("Invalid request body").Write(w)
		return nil, false
	}
	return p, true
}

// cloneList copies a listing so callers never share the cached backing
// array. The result is never nil, so an empty list encodes as [].
func cloneList[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
