// Package view holds the purely local presentation logic: search,
// filtering, pagination, the category tree, and output rendering.
package view

import (
	"strings"

	"financemonkey/fm-cli/internal/models"
)

// TypeFilter selects transactions by sign.
type TypeFilter string

const (
	AllTypes    TypeFilter = "all"
	IncomeOnly  TypeFilter = "income"
	ExpenseOnly TypeFilter = "expense"
)

// ParseTypeFilter accepts all, income or expense; empty means all.
func ParseTypeFilter(s string) (TypeFilter, bool) {
	switch TypeFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", AllTypes:
		return AllTypes, true
	case IncomeOnly:
		return IncomeOnly, true
	case ExpenseOnly:
		return ExpenseOnly, true
	}
	return "", false
}

func matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// FilterTransactions searches vendor, description and category name, then
// applies the type filter. The input is not modified.
func FilterTransactions(items []models.Transaction, query string, kind TypeFilter) []models.Transaction {
	q := normalize(query)
	out := make([]models.Transaction, 0, len(items))
	for _, t := range items {
		if !matches(q, t.Vendor, t.Description, t.CategoryName) {
			continue
		}
		switch kind {
		case IncomeOnly:
			if !t.IsIncome() {
				continue
			}
		case ExpenseOnly:
			if !t.IsExpense() {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// FilterCategories searches name and description.
func FilterCategories(items []models.Category, query string) []models.Category {
	q := normalize(query)
	out := make([]models.Category, 0, len(items))
	for _, c := range items {
		if matches(q, c.Name, c.Description) {
			out = append(out, c)
		}
	}
	return out
}

// FilterEmailAccounts searches address, provider and description.
func FilterEmailAccounts(items []models.EmailAccount, query string) []models.EmailAccount {
	q := normalize(query)
	out := make([]models.EmailAccount, 0, len(items))
	for _, a := range items {
		if matches(q, a.Email, string(a.Provider), a.Description) {
			out = append(out, a)
		}
	}
	return out
}
