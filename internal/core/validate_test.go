package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func amountPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validInput() TransactionInput {
	return TransactionInput{
		Name:       "Lunch at Restaurant",
		Amount:     amountPtr("25.50"),
		Currency:   "EUR",
		Date:       "2024-09-02",
		Note:       "Business lunch with client",
		Type:       "expense",
		CategoryID: "c1",
	}
}

func TestValidateTransactionInput(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*TransactionInput)
		field   string
		kind    FieldErrorKind
		message string
	}{
		{"blank name", func(in *TransactionInput) { in.Name = "   " }, "name", MissingField, "Transaction name is required"},
		{"missing amount", func(in *TransactionInput) { in.Amount = nil }, "amount", InvalidField, "Valid amount is required"},
		{"zero amount", func(in *TransactionInput) { in.Amount = amountPtr("0") }, "amount", InvalidField, "Valid amount is required"},
		{"negative amount", func(in *TransactionInput) { in.Amount = amountPtr("-1") }, "amount", InvalidField, "Valid amount is required"},
		{"sub-cent amount", func(in *TransactionInput) { in.Amount = amountPtr("0.004") }, "amount", InvalidField, "Valid amount is required"},
		{"unknown currency", func(in *TransactionInput) { in.Currency = "GBP" }, "currency", InvalidField, "Valid currency is required"},
		{"empty currency", func(in *TransactionInput) { in.Currency = "" }, "currency", InvalidField, "Valid currency is required"},
		{"empty date", func(in *TransactionInput) { in.Date = "" }, "date", MissingField, "Date is required"},
		{"bad type", func(in *TransactionInput) { in.Type = "gift" }, "type", InvalidField, "Valid transaction type is required"},
		{"no category", func(in *TransactionInput) { in.CategoryID = "" }, "categoryId", MissingField, "Category is required"},
		// fail-fast: only the first failing field is reported
		{"name before amount", func(in *TransactionInput) { in.Name = ""; in.Amount = nil }, "name", MissingField, "Transaction name is required"},
		{"currency before type", func(in *TransactionInput) { in.Currency = "X"; in.Type = "X"; in.CategoryID = "" }, "currency", InvalidField, "Valid currency is required"},
		{"date before category", func(in *TransactionInput) { in.Date = " "; in.CategoryID = "" }, "date", MissingField, "Date is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			err := ValidateTransactionInput(in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field || ve.Kind != tc.kind {
				t.Fatalf("got %s/%s, want %s/%s", ve.Field, ve.Kind, tc.field, tc.kind)
			}
			if ve.Message() != tc.message {
				t.Fatalf("message %q, want %q", ve.Message(), tc.message)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected errors.Is ErrValidation")
			}
		})
	}

	if err := ValidateTransactionInput(validInput()); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestValidateCategoryName(t *testing.T) {
	for _, name := range []string{"", "  ", "\t\n"} {
		err := ValidateCategoryName(name)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Message() != "Category name is required" {
			t.Fatalf("%q: expected category name error, got %v", name, err)
		}
	}
	if err := ValidateCategoryName("Food & Dining"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionInputFields(t *testing.T) {
	in := validInput()
	in.Name = "  Lunch  "
	f, err := in.Fields()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != "Lunch" || f.Date.String() != "2024-09-02" || f.Type != Expense || f.Currency != EUR {
		t.Fatalf("unexpected fields %+v", f)
	}
	if !f.Amount.Equal(decimal.RequireFromString("25.5")) {
		t.Fatalf("unexpected amount %s", f.Amount)
	}

	for _, date := range []string{"not-a-date", "2024-02-30", "2023-13-01"} {
		in = validInput()
		in.Date = date
		_, err := in.Fields()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "date" || ve.Kind != InvalidField {
			t.Fatalf("%q: expected invalid date field, got %v", date, err)
		}
		if !errors.Is(err, ErrValidation) || !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: %v should match ErrValidation and ErrInvalidDate", date, err)
		}
		if ve.Message() != "Valid date is required" {
			t.Fatalf("%q: unexpected message %q", date, ve.Message())
		}
	}
}

func TestTransactionInputFieldsRoundsAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12.345", "12.35"},
		{"12.344", "12.34"},
		{"-12.345", "-12.35"},
		{"0.005", "0.01"},
		{"100", "100"},
	}
	for _, tc := range cases {
		in := validInput()
		amount := decimal.RequireFromString(tc.in)
		in.Amount = &amount
		f, err := in.Fields()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.in, err)
		}
		if !f.Amount.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("%s: amount = %s, want %s", tc.in, f.Amount, tc.want)
		}
	}
}
