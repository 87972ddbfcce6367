// Package core provides money formatting utilities.
//
// Amounts are rendered as the currency symbol followed by the value with
// exactly two decimals, e.g. "€12.34" or "$-3.50".
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[Currency]string{
	EUR: "€",
	USD: "$",
}

// EmptyAmountError is returned when a string amount is empty or blank.
type EmptyAmountError struct{}

func (e *EmptyAmountError) Error() string { return "Amount cannot be empty" }

// Symbol returns the display symbol for a currency code. An empty code
// means EUR and an unknown code is shown as is.
func Symbol(code string) string {
	if code == "" {
		return currencySymbols[EUR]
	}
	if s, ok := currencySymbols[Currency(code)]; ok {
		return s
	}
	return code
}

// FormatCurrency renders amount with two decimals, rounding half away
// from zero.
//
//	FormatCurrency(100, "")       -> "€100.00"
//	FormatCurrency(100, "USD")    -> "$100.00"
//	FormatCurrency(123.456, "")   -> "€123.46"
func FormatCurrency(amount float64, code string) string {
	symbol := Symbol(code)
	switch {
	case math.IsNaN(amount):
		return symbol + "NaN"
	case math.IsInf(amount, 1):
		return symbol + "Infinity"
	case math.IsInf(amount, -1):
		return symbol + "-Infinity"
	}
	return symbol + decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatCurrencyString formats the leading number of amount, so "12.5px"
// renders as 12.50. Blank input is an error; input with no leading number
// renders as NaN and a value beyond float64 range as Infinity.
func FormatCurrencyString(amount, code string) (string, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return "", &EmptyAmountError{}
	}
	num, ok := numericPrefix(trimmed)
	if !ok {
		return Symbol(code) + "NaN", nil
	}
	// Only overflow can fail here; underflow parses as zero.
	f, _ := strconv.ParseFloat(num, 64)
	if math.IsInf(f, 0) {
		return FormatCurrency(f, code), nil
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return FormatCurrency(f, code), nil
	}
	return Symbol(code) + d.StringFixed(2), nil
}

// numericPrefix returns the longest leading decimal literal of s in a form
// both strconv and decimal accept: an optional sign, digits with at most one
// point, and an exponent only when it has digits. A leading "Infinity" is
// matched case-sensitively.
func numericPrefix(s string) (string, bool) {
	var b strings.Builder
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			b.WriteByte('-')
		}
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		b.WriteString("Inf")
		return b.String(), true
	}

	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intPart := s[intStart:i]
	var fracPart string
	if i < len(s) && s[i] == '.' {
		fracStart := i + 1
		j := fracStart
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		fracPart = s[fracStart:j]
		if intPart != "" || fracPart != "" {
			i = j
		}
	}
	if intPart == "" && fracPart == "" {
		return "", false
	}
	if intPart == "" {
		intPart = "0"
	}
	b.WriteString(intPart)
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		expSign := ""
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			expSign = s[j : j+1]
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			b.WriteByte('e')
			b.WriteString(expSign)
			b.WriteString(s[expStart:j])
		}
	}
	return b.String(), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// FormatDecimal renders an exact amount.
func FormatDecimal(amount decimal.Decimal, code Currency) string {
	return Symbol(string(code)) + amount.StringFixed(2)
}
