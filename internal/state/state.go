// Package state holds the application state tree: one immutable State
// value, replaced as a whole by every dispatched action.
package state

import "financemonkey/fm-cli/internal/models"

// ConnectionStatus tracks the connect-mailbox flow.
type ConnectionStatus string

const (
	ConnectionIdle       ConnectionStatus = "idle"
	ConnectionConnecting ConnectionStatus = "connecting"
	ConnectionSuccess    ConnectionStatus = "success"
	ConnectionFailed     ConnectionStatus = "failed"
)

// AuthState mirrors the session service. It never holds the token.
type AuthState struct {
	Ops
	Authenticated bool         `json:"isAuthenticated" yaml:"is_authenticated"`
	User          *models.User `json:"user,omitempty" yaml:"user,omitempty"`
	// Registered is set after a successful sign-up, which does not log in.
	Registered bool `json:"registered,omitempty" yaml:"registered,omitempty"`
}

// DashboardState is the summary for the selected date range.
// SummaryRange is the range Summary was fetched for; it lags DateRange
// until the next fetch completes.
type DashboardState struct {
	Ops
	Summary      *models.DashboardSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	DateRange    models.DateRange         `json:"dateRange" yaml:"date_range"`
	SummaryRange models.DateRange         `json:"summaryRange" yaml:"summary_range"`
	FromSnapshot bool                     `json:"fromSnapshot,omitempty" yaml:"from_snapshot,omitempty"`

	summarySeq uint64
}

// SetSummary applies a summary fetched for r at seq and reports whether
// it was newer than the one already shown.
func (d DashboardState) SetSummary(summary models.DashboardSummary, r models.DateRange, seq uint64) (DashboardState, bool) {
	if seq < d.summarySeq {
		return d, false
	}
	d.Summary = &summary
	d.SummaryRange = r
	d.summarySeq = seq
	d.FromSnapshot = false
	return d, true
}

// HasSummaryFor reports whether the held summary covers r.
func (d DashboardState) HasSummaryFor(r models.DateRange) bool {
	return d.Summary != nil && d.SummaryRange == r
}

// State is the whole client state. It is passed and stored by value.
type State struct {
	Version uint64 `json:"version" yaml:"version"`

	Auth            AuthState                     `json:"auth" yaml:"auth"`
	Transactions    Resource[models.Transaction]  `json:"transactions" yaml:"transactions"`
	EmailAccounts   Resource[models.EmailAccount] `json:"emailAccounts" yaml:"email_accounts"`
	EmailConnection ConnectionStatus              `json:"connectionStatus" yaml:"connection_status"`
	Categories      Resource[models.Category]     `json:"categories" yaml:"categories"`
	Dashboard       DashboardState                `json:"dashboard" yaml:"dashboard"`
}

// Initial returns the empty state with the dashboard range set for now.
func Initial(dateRange models.DateRange) State {
	return State{
		EmailConnection: ConnectionIdle,
		Dashboard:       DashboardState{DateRange: dateRange},
	}
}

// Slot addresses one resource collection inside State.
type Slot[T models.Record] struct {
	Name string
	Get  func(State) Resource[T]
	Set  func(State, Resource[T]) State
}

var (
	TransactionsSlot = Slot[models.Transaction]{
		Name: "transactions",
		Get:  func(s State) Resource[models.Transaction] { return s.Transactions },
		Set: func(s State, r Resource[models.Transaction]) State {
			s.Transactions = r
			return s
		},
	}
	CategoriesSlot = Slot[models.Category]{
		Name: "categories",
		Get:  func(s State) Resource[models.Category] { return s.Categories },
		Set: func(s State, r Resource[models.Category]) State {
			s.Categories = r
			return s
		},
	}
	EmailAccountsSlot = Slot[models.EmailAccount]{
		Name: "emailAccounts",
		Get:  func(s State) Resource[models.EmailAccount] { return s.EmailAccounts },
		Set: func(s State, r Resource[models.EmailAccount]) State {
			s.EmailAccounts = r
			return s
		},
	}
)
