package view

import (
	"strings"
	"time"

	"financemonkey/fm-cli/internal/models"
)

// TransactionRow is the flat CSV and table shape of a transaction.
type TransactionRow struct {
	ID                string `csv:"ID"`
	Date              string `csv:"Date"`
	Vendor            string `csv:"Vendor"`
	Description       string `csv:"Description"`
	Amount            string `csv:"Amount"`
	Currency          string `csv:"Currency"`
	Type              string `csv:"Type"`
	Category          string `csv:"Category"`
	Recurring         bool   `csv:"Recurring"`
	RecurrencePattern string `csv:"RecurrencePattern"`
}

// NewTransactionRows flattens transactions. Amounts keep two decimals.
func NewTransactionRows(items []models.Transaction) []TransactionRow {
	rows := make([]TransactionRow, 0, len(items))
	for _, t := range items {
		kind := string(ExpenseOnly)
		if t.IsIncome() {
			kind = string(IncomeOnly)
		}
		rows = append(rows, TransactionRow{
			ID:                t.ID,
			Date:              t.Date(),
			Vendor:            t.Vendor,
			Description:       t.Description,
			Amount:            t.Amount.StringFixed(2),
			Currency:          t.Currency,
			Type:              kind,
			Category:          t.CategoryName,
			Recurring:         t.Recurring,
			RecurrencePattern: string(t.RecurrencePattern),
		})
	}
	return rows
}

// CategoryRow is the flat shape of a category node.
type CategoryRow struct {
	ID          string `csv:"ID"`
	Name        string `csv:"Name"`
	Parent      string `csv:"Parent"`
	Description string `csv:"Description"`
	Color       string `csv:"Color"`
	Depth       int    `csv:"Depth"`
}

func NewCategoryRows(nodes []CategoryNode) []CategoryRow {
	rows := make([]CategoryRow, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, CategoryRow{
			ID:          n.ID,
			Name:        n.Name,
			Parent:      n.ParentName,
			Description: n.Description,
			Color:       n.Color,
			Depth:       n.Depth,
		})
	}
	return rows
}

// IndentedName prefixes the name by depth for the table view.
func (r CategoryRow) IndentedName() string {
	if r.Depth == 0 {
		return r.Name
	}
	return strings.Repeat("  ", r.Depth-1) + "└ " + r.Name
}

// EmailAccountRow is the flat shape of an email account.
type EmailAccountRow struct {
	ID          string `csv:"ID"`
	Email       string `csv:"Email"`
	Provider    string `csv:"Provider"`
	Status      string `csv:"Status"`
	LastSynced  string `csv:"LastSynced"`
	Description string `csv:"Description"`
}

func NewEmailAccountRows(items []models.EmailAccount) []EmailAccountRow {
	rows := make([]EmailAccountRow, 0, len(items))
	for _, a := range items {
		status := "Disconnected"
		if a.Connected {
			status = "Connected"
		}
		last := "Never"
		if a.LastSynced != nil {
			last = a.LastSynced.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, EmailAccountRow{
			ID:          a.ID,
			Email:       a.Email,
			Provider:    string(a.Provider),
			Status:      status,
			LastSynced:  last,
			Description: a.Description,
		})
	}
	return rows
}

// DriveFileRow is the flat shape of a Drive listing entry.
type DriveFileRow struct {
	ID       string `csv:"ID"`
	Name     string `csv:"Name"`
	Kind     string `csv:"Kind"`
	Modified string `csv:"Modified"`
}

func NewDriveFileRows(files []models.DriveFile) []DriveFileRow {
	rows := make([]DriveFileRow, 0, len(files))
	for _, f := range files {
		kind := f.MimeType
		if f.IsFolder() {
			kind = "folder"
		}
		modified := f.ModifiedTime
		if ts, err := models.ParseTimestamp(f.ModifiedTime); err == nil {
			modified = ts.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, DriveFileRow{ID: f.ID, Name: f.Name, Kind: kind, Modified: modified})
	}
	return rows
}

// KeyValueRow renders a single object as a two-column list.
type KeyValueRow struct {
	Key   string `csv:"Key"`
	Value string `csv:"Value"`
}

// FormatTime renders an optional time for display.
func FormatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.RFC1123)
}
