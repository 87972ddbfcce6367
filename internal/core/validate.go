package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type FieldErrorKind string

const (
	MissingField FieldErrorKind = "missing"
	InvalidField FieldErrorKind = "invalid"
)

const (
	EntityCategory    = "category"
	EntityTransaction = "transaction"
)

var ErrValidation = errors.New("validation failed")

// ValidationError describes the first field that failed validation. Err
// is the parse failure behind an invalid field, if any.
type ValidationError struct {
	Entity string
	Field  string
	Kind   FieldErrorKind
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s field %q", e.Entity, e.Kind, e.Field)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Message is the user-facing text for the failure.
func (e *ValidationError) Message() string {
	if e.Entity == EntityCategory {
		return "Category name is required"
	}
	switch e.Field {
	case "name":
		return "Transaction name is required"
	case "amount":
		return "Valid amount is required"
	case "currency":
		return "Valid currency is required"
	case "date":
		if e.Kind == InvalidField {
			return "Valid date is required"
		}
		return "Date is required"
	case "type":
		return "Valid transaction type is required"
	case "categoryId":
		return "Category is required"
	default:
		return "Invalid request"
	}
}

// TransactionInput is an unvalidated create or update request. A nil
// Amount means the field was absent or not a number.
type TransactionInput struct {
	Name       string
	Amount     *decimal.Decimal
	Currency   string
	Date       string
	Note       string
	Type       string
	CategoryID string
}

// ValidateCategoryName checks a category create or update request.
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Entity: EntityCategory, Field: "name", Kind: MissingField}
	}
	return nil
}

// ValidateTransactionInput checks fields in order and reports only the
// first failure.
func ValidateTransactionInput(in TransactionInput) error {
	fail := func(field string, kind FieldErrorKind) error {
		return &ValidationError{Entity: EntityTransaction, Field: field, Kind: kind}
	}
	if strings.TrimSpace(in.Name) == "" {
		return fail("name", MissingField)
	}
	if in.Amount == nil || !in.Amount.Round(2).IsPositive() {
		return fail("amount", InvalidField)
	}
	if !Currency(in.Currency).IsValid() {
		return fail("currency", InvalidField)
	}
	if strings.TrimSpace(in.Date) == "" {
		return fail("date", MissingField)
	}
	if !TransactionType(in.Type).IsValid() {
		return fail("type", InvalidField)
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return fail("categoryId", MissingField)
	}
	return nil
}

// Fields validates the input and converts it. A date that is present but
// not a calendar date is an invalid date field wrapping ErrInvalidDate.
// Amounts are rounded to cents so every backend stores the same value.
func (in TransactionInput) Fields() (TransactionFields, error) {
	if err := ValidateTransactionInput(in); err != nil {
		return TransactionFields{}, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return TransactionFields{}, &ValidationError{Entity: EntityTransaction, Field: "date", Kind: InvalidField, Err: err}
	}
	return TransactionFields{
		Name:       strings.TrimSpace(in.Name),
		Amount:     in.Amount.Round(2),
		Currency:   Currency(in.Currency),
		Date:       date,
		Note:       in.Note,
		Type:       TransactionType(in.Type),
		CategoryID: strings.TrimSpace(in.CategoryID),
	}, nil
}
