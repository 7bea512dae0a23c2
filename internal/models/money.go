package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed amount in one currency. Expenses are negative.
type Money struct {
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`
	Currency string          `json:"currency" yaml:"currency"`
}

// NewMoney pairs amount with currency.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}

// CurrencyTotal is the income and expense sum of one currency.
type CurrencyTotal struct {
	Currency string
	Income   decimal.Decimal
	Expense  decimal.Decimal
}

// Balance is income plus the (negative) expenses.
func (c CurrencyTotal) Balance() Money {
	return NewMoney(c.Income.Add(c.Expense), c.Currency)
}

func (c CurrencyTotal) String() string {
	return fmt.Sprintf("%s: income %s, expenses %s, balance %s",
		c.Currency, c.Income.StringFixed(2), c.Expense.StringFixed(2), c.Balance().Amount.StringFixed(2))
}

// Totals sums amounts per currency. Amounts in different currencies are
// never added together.
type Totals map[string]CurrencyTotal

// Add books m as income when positive and as an expense when negative.
func (t Totals) Add(m Money) {
	cur := strings.ToUpper(m.Currency)
	if cur == "" {
		cur = DefaultCurrency
	}
	total, ok := t[cur]
	if !ok {
		total = CurrencyTotal{Currency: cur}
	}
	if m.Amount.IsNegative() {
		total.Expense = total.Expense.Add(m.Amount)
	} else {
		total.Income = total.Income.Add(m.Amount)
	}
	t[cur] = total
}

// Sorted returns the totals ordered by currency code.
func (t Totals) Sorted() []CurrencyTotal {
	out := make([]CurrencyTotal, 0, len(t))
	for _, total := range t {
		out = append(out, total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// SumTransactions totals txs per currency.
func SumTransactions(txs []Transaction) Totals {
	totals := Totals{}
	for _, tx := range txs {
		totals.Add(tx.Money())
	}
	return totals
}
