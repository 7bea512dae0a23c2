// Package models provides the data structures exchanged with the Finance Monkey API
// and held in the client state tree.
package models

import "github.com/shopspring/decimal"

func init() {
	// The API reads and writes amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// File permissions
const (
	PermissionSecretFile = 0600
	PermissionDirectory  = 0750
)

// Default currency used by the transaction form when none is given.
const DefaultCurrency = "USD"
