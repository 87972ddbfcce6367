package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-09-02", "2024-09-02", true},
		{" 2024-09-02 ", "2024-09-02", true},
		{"2024-01-15T10:30:00.000Z", "2024-01-15", true},
		{"2024-07-04T23:30:00-05:00", "2024-07-04", true}, // calendar day as written
		{"", "", false},
		{"2024-02-30", "", false},
		{"yesterday", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateScan(t *testing.T) {
	cases := []struct {
		src  any
		want string
	}{
		{time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "2024-03-09"},
		{"2024-03-09", "2024-03-09"},
		{[]byte("2024-03-09"), "2024-03-09"},
		{"2024-03-09T00:00:00Z", "2024-03-09"},
		{nil, ""},
	}
	for _, tc := range cases {
		var d Date
		if err := d.Scan(tc.src); err != nil {
			t.Fatalf("scan %v: %v", tc.src, err)
		}
		if d.String() != tc.want {
			t.Fatalf("scan %v: got %q want %q", tc.src, d.String(), tc.want)
		}
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error for int source")
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 9, 2))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-09-02"` {
		t.Fatalf("unexpected json %s", b)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"bogus"`), &d); err == nil {
		t.Fatalf("expected error for bogus date")
	}
}

func TestEnumValidity(t *testing.T) {
	for _, c := range Currencies() {
		if !c.IsValid() {
			t.Fatalf("%s should be valid", c)
		}
	}
	for _, ty := range TransactionTypes() {
		if !ty.IsValid() {
			t.Fatalf("%s should be valid", ty)
		}
	}
	if Currency("GBP").IsValid() || Currency("eur").IsValid() {
		t.Fatalf("unexpected currency accepted")
	}
	if TransactionType("refund").IsValid() {
		t.Fatalf("unexpected type accepted")
	}
}

func TestTransactionApplyReplacesAllFields(t *testing.T) {
	tx := Transaction{ID: "t1", Name: "old", Note: "keep?", Type: Expense, Currency: EUR, CategoryID: "c1"}
	f := TransactionFields{Name: "new", Currency: USD, Date: NewDate(2024, 1, 1), Type: Income, CategoryID: "c2"}
	tx.Apply(f)
	if tx.ID != "t1" {
		t.Fatalf("id must not change")
	}
	if tx.Fields() != f {
		t.Fatalf("fields not replaced: %+v", tx.Fields())
	}
	if tx.Note != "" {
		t.Fatalf("note should be cleared by a full replace, got %q", tx.Note)
	}
}
