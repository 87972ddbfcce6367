// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request bodies into domain
// inputs. JSON and form-encoded bodies are both accepted.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

const maxBodyBytes = 1 << 20

// ErrMalformedBody is returned when the body is neither valid JSON nor a
// form encoding.
var ErrMalformedBody = errors.New("malformed request body")

// RequestBodyParser reads the body once and serves field lookups from it.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = errors.Join(ErrMalformedBody, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = errors.Join(ErrMalformedBody, p.err)
	}
	return p.err
}

func (p *RequestBodyParser) lookup(key string) (any, bool) {
	if p.jsonData != nil {
		v, ok := p.jsonData[key]
		return v, ok && v != nil
	}
	if p.formData != nil && p.formData.Has(key) {
		return p.formData.Get(key), true
	}
	return nil, false
}

// Get returns the first present key as a sanitized string.
func (p *RequestBodyParser) Get(keys ...string) string {
	for _, key := range keys {
		if v, ok := p.lookup(key); ok {
			return sanitizeInput(stringValue(v))
		}
	}
	return ""
}

// Decimal returns the key as a decimal, or nil when it is absent or not a
// number.
func (p *RequestBodyParser) Decimal(key string) *decimal.Decimal {
	v, ok := p.lookup(key)
	if !ok {
		return nil
	}
	var raw string
	switch val := v.(type) {
	case json.Number:
		raw = val.String()
	case string:
		raw = strings.TrimSpace(val)
	default:
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded value to string. Objects and arrays
// become empty.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseCategoryName reads the name of a category create or update.
func ParseCategoryName(p *RequestBodyParser) string {
	return p.Get("name")
}

// ParseTransactionInput maps the body onto a TransactionInput. The
// category may be given as category_id or categoryId.
func ParseTransactionInput(p *RequestBodyParser) core.TransactionInput {
	return core.TransactionInput{
		Name:       p.Get("name"),
		Amount:     p.Decimal("amount"),
		Currency:   p.Get("currency"),
		Date:       p.Get("date"),
		Note:       p.Get("note"),
		Type:       p.Get("type"),
		CategoryID: p.Get("category_id", "categoryId"),
	}
}
