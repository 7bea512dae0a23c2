package models

import "github.com/shopspring/decimal"

// DashboardSummary is the server-computed aggregate for a date range. The
// client never edits it; each fetch replaces it wholesale.
type DashboardSummary struct {
	TotalTransactions      int                 `json:"totalTransactions" yaml:"total_transactions"`
	TotalIncome            decimal.Decimal     `json:"totalIncome" yaml:"total_income"`
	TotalExpense           decimal.Decimal     `json:"totalExpense" yaml:"total_expense"`
	Balance                decimal.Decimal     `json:"balance" yaml:"balance"`
	TransactionsByCategory []CategoryTotal     `json:"transactionsByCategory" yaml:"transactions_by_category"`
	TransactionsByMonth    []MonthTotal        `json:"transactionsByMonth" yaml:"transactions_by_month"`
	RecentTransactions     []RecentTransaction `json:"recentTransactions" yaml:"recent_transactions"`
	RecurringPayments      []RecurringPayment  `json:"recurringPayments" yaml:"recurring_payments"`
}

// CategoryTotal is one slice of the per-category breakdown.
type CategoryTotal struct {
	CategoryName string          `json:"categoryName" yaml:"category_name"`
	Amount       decimal.Decimal `json:"amount" yaml:"amount"`
	Color        string          `json:"color,omitempty" yaml:"color,omitempty"`
}

// MonthTotal is one bar of the per-month breakdown.
type MonthTotal struct {
	Month   string          `json:"month" yaml:"month"`
	Income  decimal.Decimal `json:"income" yaml:"income"`
	Expense decimal.Decimal `json:"expense" yaml:"expense"`
}

// RecentTransaction is the trimmed transaction shown on the dashboard.
type RecentTransaction struct {
	ID              string          `json:"id" yaml:"id"`
	Amount          decimal.Decimal `json:"amount" yaml:"amount"`
	Vendor          string          `json:"vendor" yaml:"vendor"`
	Description     string          `json:"description" yaml:"description"`
	TransactionDate string          `json:"transactionDate" yaml:"transaction_date"`
	CategoryName    string          `json:"categoryName,omitempty" yaml:"category_name,omitempty"`
}

// RecurringPayment is a detected repeating charge.
type RecurringPayment struct {
	ID                string            `json:"id" yaml:"id"`
	Amount            decimal.Decimal   `json:"amount" yaml:"amount"`
	Vendor            string            `json:"vendor" yaml:"vendor"`
	RecurrencePattern RecurrencePattern `json:"recurrencePattern" yaml:"recurrence_pattern"`
	NextDueDate       string            `json:"nextDueDate,omitempty" yaml:"next_due_date,omitempty"`
}
