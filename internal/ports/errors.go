package ports

import (
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrForeignKey = errors.New("foreign key violation")
	ErrConstraint = errors.New("constraint violation")
	ErrConnection = errors.New("backend connection failed")
)

// Kind classifies a backend failure.
type Kind string

const (
	KindConnection Kind = "connection"
	KindForeignKey Kind = "foreign_key"
	KindConstraint Kind = "constraint"
	KindQuery      Kind = "query"
)

// BackendError wraps a driver error with the operation and table that
// produced it. The driver error is kept intact.
type BackendError struct {
	Op    string
	Table string
	Kind  Kind
	Err   error
}

func (e *BackendError) Error() string {
	parts := []string{"backend: " + e.Op}
	if e.Table != "" {
		parts = append(parts, "table="+e.Table)
	}
	parts = append(parts, "kind="+string(e.Kind))
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrForeignKey:
		return e.Kind == KindForeignKey
	case ErrConstraint:
		return e.Kind == KindConstraint || e.Kind == KindForeignKey
	case ErrConnection:
		return e.Kind == KindConnection
	}
	return false
}

// NewBackendError builds a BackendError. A nil err yields nil.
func NewBackendError(op, table string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Table: table, Kind: kind, Err: err}
}

// ClassifyMessage is the fallback classification for drivers that only
// expose an error string.
func ClassifyMessage(err error) Kind {
	if err == nil {
		return KindQuery
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "foreign key"):
		return KindForeignKey
	case strings.Contains(msg, "constraint"),
		strings.Contains(msg, "violates"),
		strings.Contains(msg, "unique"):
		return KindConstraint
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "database is closed"),
		strings.Contains(msg, "bad connection"),
		strings.Contains(msg, "no such host"):
		return KindConnection
	}
	return KindQuery
}

// IsForeignKey reports whether err is a foreign key violation.
func IsForeignKey(err error) bool {
	return errors.Is(err, ErrForeignKey)
}
