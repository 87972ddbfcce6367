package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CurrencySummary aggregates transactions of a single currency.
type CurrencySummary struct {
	Currency  Currency        `json:"currency"`
	Income    decimal.Decimal `json:"income"`
	Expenses  decimal.Decimal `json:"expenses"`
	Transfers decimal.Decimal `json:"transfers"`
	Count     int             `json:"count"`
}

// Balance is income minus expenses. Transfers move money between accounts
// and do not change it.
func (s CurrencySummary) Balance() decimal.Decimal {
	return s.Income.Sub(s.Expenses)
}

// Summarize groups transactions by currency, in currency code order.
// Amounts are never converted between currencies.
func Summarize(txs []Transaction) []CurrencySummary {
	byCurrency := make(map[Currency]*CurrencySummary)
	for _, tx := range txs {
		s, ok := byCurrency[tx.Currency]
		if !ok {
			s = &CurrencySummary{Currency: tx.Currency}
			byCurrency[tx.Currency] = s
		}
		s.Count++
		switch tx.Type {
		case Income:
			s.Income = s.Income.Add(tx.Amount)
		case Expense:
			s.Expenses = s.Expenses.Add(tx.Amount)
		case Transfer:
			s.Transfers = s.Transfers.Add(tx.Amount)
		}
	}

	out := make([]CurrencySummary, 0, len(byCurrency))
	for _, s := range byCurrency {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
