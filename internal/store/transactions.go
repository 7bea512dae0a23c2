package store

import (
	"context"
	"fmt"

	"financemonkey/fm-cli/internal/api"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/state"
)

// Transactions is the transaction store.
type Transactions struct {
	*Resource[models.Transaction]
}

func NewTransactions(tree *state.Tree, endpoint api.Endpoint[models.Transaction], logger logging.Logger) *Transactions {
	r := NewResource(tree, state.TransactionsSlot, endpoint, logger)
	r.messages = defaultMessages("transaction", "transactions")
	return &Transactions{Resource: r}
}

// Get returns a cached transaction, fetching the collection first when
// nothing has been loaded yet.
func (t *Transactions) Get(ctx context.Context, id string) (models.Transaction, error) {
	if tx, ok := t.State().Find(id); ok {
		return tx, nil
	}
	if !t.State().Fetched {
		if err := t.FetchAll(ctx); err != nil {
			return models.Transaction{}, err
		}
		if tx, ok := t.State().Find(id); ok {
			return tx, nil
		}
	}
	return models.Transaction{}, fmt.Errorf("transaction %s not found", id)
}
