package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrRecurrenceRequired is returned when a recurring transaction has no pattern.
var ErrRecurrenceRequired = errors.New("recurring transaction requires a recurrence pattern")

// Transaction is the client projection of a server-side transaction.
// Amount is signed: income is positive, expenses are negative.
type Transaction struct {
	ID                string            `json:"id,omitempty" yaml:"id"`
	Amount            decimal.Decimal   `json:"amount" yaml:"amount"`
	Currency          string            `json:"currency" yaml:"currency"`
	Vendor            string            `json:"vendor" yaml:"vendor"`
	Description       string            `json:"description" yaml:"description"`
	TransactionDate   string            `json:"transactionDate" yaml:"transaction_date"`
	Recurring         bool              `json:"recurring" yaml:"recurring"`
	RecurrencePattern RecurrencePattern `json:"recurrencePattern,omitempty" yaml:"recurrence_pattern,omitempty"`
	CategoryID        string            `json:"categoryId,omitempty" yaml:"category_id,omitempty"`
	CategoryName      string            `json:"categoryName,omitempty" yaml:"category_name,omitempty"`
	Status            string            `json:"status,omitempty" yaml:"status,omitempty"`
}

// Key implements the store record contract.
func (t Transaction) Key() string { return t.ID }

// Money returns the signed amount with its currency.
func (t Transaction) Money() Money {
	return NewMoney(t.Amount, t.Currency)
}

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool { return t.Amount.IsPositive() }

// IsExpense reports whether the transaction subtracts from the balance.
func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }

// Date returns the calendar part of TransactionDate. The server sends either
// a date or a local date-time.
func (t Transaction) Date() string {
	if len(t.TransactionDate) >= len(DateLayout) {
		return t.TransactionDate[:len(DateLayout)]
	}
	return t.TransactionDate
}

// Validate checks the model invariants that do not depend on form input.
func (t Transaction) Validate() error {
	if t.Recurring && t.RecurrencePattern == "" {
		return ErrRecurrenceRequired
	}
	if t.RecurrencePattern != "" && !t.RecurrencePattern.Valid() {
		return errors.New("unknown recurrence pattern " + string(t.RecurrencePattern))
	}
	return nil
}
