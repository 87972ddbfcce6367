package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"budget/internal/core"
	"budget/internal/ports"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}).WithComponent(ComponentCategory)

	logger.Info("Category created", FieldCategoryID, "c1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentCategory {
		t.Errorf("component = %v, want %s", rec[FieldComponent], ComponentCategory)
	}
	if rec[FieldCategoryID] != "c1" {
		t.Errorf("category_id = %v", rec[FieldCategoryID])
	}
	if strings.Count(buf.String(), `"component"`) != 1 {
		t.Errorf("component logged more than once: %s", buf.String())
	}
}

func TestErrorTypeOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&core.ValidationError{Entity: core.EntityCategory, Field: "name", Kind: core.MissingField}, ErrorTypeValidation},
		{fmt.Errorf("get: %w", ports.ErrNotFound), ErrorTypeNotFound},
		{ports.NewBackendError("insert", "transactions", ports.KindForeignKey, errors.New("fk")), ErrorTypeForeignKey},
		{ports.NewBackendError("insert", "categories", ports.KindConstraint, errors.New("unique")), ErrorTypeConstraint},
		{ports.NewBackendError("acquire", "", ports.KindConnection, errors.New("refused")), ErrorTypeNetwork},
		{ports.NewBackendError("list", "categories", ports.KindQuery, errors.New("syntax")), ErrorTypeDatabase},
		{context.DeadlineExceeded, ErrorTypeTimeout},
		{errors.New("boom"), ErrorTypeInternal},
	}
	for _, tt := range tests {
		if got := ErrorTypeOf(tt.err); got != tt.want {
			t.Errorf("ErrorTypeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMiddlewareCarriesLogger(t *testing.T) {
	logger := Discard().WithComponent(ComponentHTTP)
	var got *Logger
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("logger not propagated: %+v", got)
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("expected fallback logger outside a request")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{500, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}))
		r := httptest.NewRequest(http.MethodGet, "/categories", nil)
		sl.LogHTTPEnd(context.Background(), r, tt.status, 3, "req_1", "127.0.0.1")

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("status %d: %v", tt.status, err)
		}
		if rec["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, rec["level"], tt.level)
		}
	}
}
