package models

import "github.com/shopspring/decimal"

// CategoryTotals holds the aggregated credit sum, debit sum and transaction
// count for one category. It is derived state: it must always equal the exact
// sum over the transactions currently assigned to the category.
type CategoryTotals struct {
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
	Count  int64           `json:"count"`
}

// Net returns credit plus debit (debits are negative)
func (t CategoryTotals) Net() decimal.Decimal {
	return t.Credit.Add(t.Debit)
}

// IsZero reports whether the totals carry no transactions
func (t CategoryTotals) IsZero() bool {
	return t.Count == 0 && t.Credit.IsZero() && t.Debit.IsZero()
}

// Add returns the totals with one signed amount applied
func (t CategoryTotals) Add(amount decimal.Decimal) CategoryTotals {
	if amount.Sign() >= 0 {
		t.Credit = t.Credit.Add(amount)
	} else {
		t.Debit = t.Debit.Add(amount)
	}
	t.Count++
	return t
}

// Sub returns the totals with one signed amount removed
func (t CategoryTotals) Sub(amount decimal.Decimal) CategoryTotals {
	if amount.Sign() >= 0 {
		t.Credit = t.Credit.Sub(amount)
	} else {
		t.Debit = t.Debit.Sub(amount)
	}
	t.Count--
	return t
}
