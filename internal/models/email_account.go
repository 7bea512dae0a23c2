package models

import (
	"fmt"
	"strings"
)

// Provider identifies the mail service behind an EmailAccount.
type Provider string

const (
	ProviderGmail   Provider = "GMAIL"
	ProviderOutlook Provider = "OUTLOOK"
	ProviderYahoo   Provider = "YAHOO"
	ProviderOther   Provider = "OTHER"
)

// Providers lists the supported providers.
var Providers = []Provider{ProviderGmail, ProviderOutlook, ProviderYahoo, ProviderOther}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// ParseProvider is case-insensitive.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown email provider %q", s)
	}
	return p, nil
}

// EmailAccount is a mailbox the server scans for receipts. Disconnecting an
// account keeps the record and flips Connected.
type EmailAccount struct {
	ID          string     `json:"id,omitempty" yaml:"id"`
	Email       string     `json:"email" yaml:"email"`
	Provider    Provider   `json:"provider" yaml:"provider"`
	Connected   bool       `json:"connected" yaml:"connected"`
	LastSynced  *Timestamp `json:"lastFetched" yaml:"last_fetched"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// Key implements the store record contract.
func (a EmailAccount) Key() string { return a.ID }

// EmailAccountInput is the body of POST /emails/connect.
type EmailAccountInput struct {
	Email       string   `json:"email"`
	Provider    Provider `json:"provider"`
	Description string   `json:"description,omitempty"`
}
