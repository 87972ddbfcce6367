package core

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
)

const (
	Expense  TransactionType = "expense"
	Income   TransactionType = "income"
	Transfer TransactionType = "transfer"
)

// DateLayout is the wire and storage format of a transaction date.
const DateLayout = "2006-01-02"

type (
	Currency        string
	TransactionType string

	// Date is a calendar date without time-of-day semantics.
	Date struct {
		time.Time
	}

	Category struct {
		ID        string     `json:"id" db:"id"`
		Name      string     `json:"name" db:"name"`
		Color     string     `json:"color" db:"color"`
		DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
		CreatedAt time.Time  `json:"created_at" db:"created_at"`
		UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	}

	Transaction struct {
		ID         string          `json:"id" db:"id"`
		Name       string          `json:"name" db:"name"`
		Amount     decimal.Decimal `json:"amount" db:"amount"`
		Currency   Currency        `json:"currency" db:"currency"`
		Date       Date            `json:"date" db:"date"`
		Note       string          `json:"note" db:"note"`
		Type       TransactionType `json:"type" db:"type"`
		CategoryID string          `json:"category_id" db:"category_id"`
		CreatedAt  time.Time       `json:"created_at" db:"created_at"`
		UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
	}

	// TransactionFields holds the mutable fields of a transaction after
	// validation and conversion. Updates replace all of them.
	TransactionFields struct {
		Name       string
		Amount     decimal.Decimal
		Currency   Currency
		Date       Date
		Note       string
		Type       TransactionType
		CategoryID string
	}
)

var ErrInvalidDate = errors.New("invalid date")

// Currencies lists the supported currency codes.
func Currencies() []Currency { return []Currency{EUR, USD} }

// TransactionTypes lists the supported transaction types.
func TransactionTypes() []TransactionType { return []TransactionType{Expense, Income, Transfer} }

func (c Currency) IsValid() bool {
	switch c {
	case EUR, USD:
		return true
	default:
		return false
	}
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Expense, Income, Transfer:
		return true
	default:
		return false
	}
}

// IsActive reports whether the category has not been soft-deleted.
func (c Category) IsActive() bool {
	return c.DeletedAt == nil
}

// Fields returns the mutable part of the transaction.
func (t Transaction) Fields() TransactionFields {
	return TransactionFields{
		Name:       t.Name,
		Amount:     t.Amount,
		Currency:   t.Currency,
		Date:       t.Date,
		Note:       t.Note,
		Type:       t.Type,
		CategoryID: t.CategoryID,
	}
}

// Apply replaces every mutable field of t with f.
func (t *Transaction) Apply(f TransactionFields) {
	t.Name = f.Name
	t.Amount = f.Amount
	t.Currency = f.Currency
	t.Date = f.Date
	t.Note = f.Note
	t.Type = f.Type
	t.CategoryID = f.CategoryID
}

// NewDate returns the calendar day at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp and keeps the
// calendar day as written.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewDate(t.Date()), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as YYYY-MM-DD text, which both SQLite and
// PostgreSQL accept for a DATE column.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Date())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			*d = Date{Time: t}
			return nil
		}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
