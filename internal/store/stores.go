package store

import (
	"time"

	"financemonkey/fm-cli/internal/api"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/state"
)

// Stores groups every resource store over one tree.
type Stores struct {
	Tree          *state.Tree
	Auth          *Auth
	Transactions  *Transactions
	Categories    *Categories
	EmailAccounts *EmailAccounts
	Dashboard     *Dashboard
}

// New wires all stores to client.
func New(tree *state.Tree, client *api.Client, sess Session, now func() time.Time, logger logging.Logger) *Stores {
	return &Stores{
		Tree:          tree,
		Auth:          NewAuth(tree, client, sess, logger),
		Transactions:  NewTransactions(tree, client.Transactions(), logger),
		Categories:    NewCategories(tree, client.Categories(), logger),
		EmailAccounts: NewEmailAccounts(tree, client, now, logger),
		Dashboard:     NewDashboard(tree, client, logger),
	}
}

// Close releases the session subscription.
func (s *Stores) Close() {
	s.Auth.Close()
}
