package store

import (
	"context"
	"errors"
	"time"

	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/state"
)

// EmailAPI is the part of the API client the email store uses.
type EmailAPI interface {
	EmailAccounts(ctx context.Context) ([]models.EmailAccount, error)
	ConnectEmail(ctx context.Context, in models.EmailAccountInput) (models.EmailAccount, error)
	DisconnectEmail(ctx context.Context, id string) error
	FetchEmails(ctx context.Context, id string) error
}

var errUnsupported = errors.New("operation not supported for email accounts")

// emailEndpoint lets the generic store list and connect accounts. Accounts
// are never edited or deleted, only disconnected.
type emailEndpoint struct {
	api EmailAPI
}

func (e emailEndpoint) List(ctx context.Context) ([]models.EmailAccount, error) {
	return e.api.EmailAccounts(ctx)
}

func (e emailEndpoint) Create(ctx context.Context, a models.EmailAccount) (models.EmailAccount, error) {
	return e.api.ConnectEmail(ctx, models.EmailAccountInput{Email: a.Email, Provider: a.Provider, Description: a.Description})
}

func (e emailEndpoint) Update(context.Context, models.EmailAccount) (models.EmailAccount, error) {
	return models.EmailAccount{}, errUnsupported
}

func (e emailEndpoint) Delete(context.Context, string) error {
	return errUnsupported
}

// EmailAccounts is the email account store.
type EmailAccounts struct {
	*Resource[models.EmailAccount]
	api EmailAPI
	now func() time.Time
}

// NewEmailAccounts builds the store. now stamps LastSynced after a sync;
// nil means time.Now.
func NewEmailAccounts(tree *state.Tree, emailAPI EmailAPI, now func() time.Time, logger logging.Logger) *EmailAccounts {
	if now == nil {
		now = time.Now
	}
	r := NewResource[models.EmailAccount](tree, state.EmailAccountsSlot, emailEndpoint{api: emailAPI}, logger)
	r.messages = messages{
		fetch:  "Failed to fetch email accounts",
		create: "Failed to connect email account",
		update: "Failed to disconnect email account",
		delete: "Failed to disconnect email account",
	}
	return &EmailAccounts{Resource: r, api: emailAPI, now: now}
}

func connection(status state.ConnectionStatus) reducer {
	return func(s state.State) state.State {
		s.EmailConnection = status
		return s
	}
}

// ConnectionStatus returns the state of the connect flow.
func (e *EmailAccounts) ConnectionStatus() state.ConnectionStatus {
	return e.tree.GetState().EmailConnection
}

// Connect registers a mailbox and appends the server record.
func (e *EmailAccounts) Connect(ctx context.Context, in models.EmailAccountInput) (models.EmailAccount, error) {
	ctx, o := e.begin(ctx, "connect", connection(state.ConnectionConnecting))
	created, err := e.api.ConnectEmail(ctx, in)
	if err != nil {
		return models.EmailAccount{}, e.reject(o, "connect", err, e.messages.create, connection(state.ConnectionFailed))
	}

	e.settle(o, "connect", func(res state.Resource[models.EmailAccount]) (state.Resource[models.EmailAccount], bool) {
		return res.Append(created, o.seq), true
	}, connection(state.ConnectionSuccess))
	e.logger.Info("Connected email account", logging.F(logging.FieldRecordID, created.ID))
	return created, nil
}

// Disconnect revokes access and keeps the record with Connected false.
func (e *EmailAccounts) Disconnect(ctx context.Context, id string) error {
	ctx, o := e.begin(ctx, "disconnect")
	if err := e.api.DisconnectEmail(ctx, id); err != nil {
		return e.reject(o, "disconnect", err, "Failed to disconnect email account")
	}

	applied := e.settle(o, "disconnect", func(res state.Resource[models.EmailAccount]) (state.Resource[models.EmailAccount], bool) {
		a, ok := res.Find(id)
		if !ok {
			return res, false
		}
		a.Connected = false
		return res.Put(a, o.seq)
	})
	if !applied {
		e.logger.Debug("Disconnected account not in cache", logging.F(logging.FieldRecordID, id))
	}
	return nil
}

// Sync asks the server to scan the mailbox now and stamps LastSynced.
func (e *EmailAccounts) Sync(ctx context.Context, id string) error {
	ctx, o := e.begin(ctx, "sync")
	if err := e.api.FetchEmails(ctx, id); err != nil {
		return e.reject(o, "sync", err, "Failed to fetch email data")
	}

	stamp := models.NewTimestamp(e.now())
	e.settle(o, "sync", func(res state.Resource[models.EmailAccount]) (state.Resource[models.EmailAccount], bool) {
		a, ok := res.Find(id)
		if !ok {
			return res, false
		}
		a.LastSynced = stamp
		return res.Put(a, o.seq)
	})
	return nil
}

// ResetConnectionStatus returns the connect flow to idle.
func (e *EmailAccounts) ResetConnectionStatus() {
	e.tree.Dispatch(state.NewAction("emailAccounts/resetConnectionStatus", connection(state.ConnectionIdle)))
}
