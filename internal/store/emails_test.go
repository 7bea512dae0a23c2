package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/state"
)

func TestEmailAccountsLifecycle(t *testing.T) {
	l := newLive(t)
	l.login(t)
	ctx := context.Background()
	emails := l.stores.EmailAccounts

	assert.Equal(t, state.ConnectionIdle, emails.ConnectionStatus())

	var statuses []state.ConnectionStatus
	unsubscribe := l.stores.Tree.Subscribe(func(c state.Commit) {
		statuses = append(statuses, c.State.EmailConnection)
	})
	acct, err := emails.Connect(ctx, models.EmailAccountInput{Email: "ada@gmail.com", Provider: models.ProviderGmail})
	unsubscribe()
	require.NoError(t, err)
	assert.Equal(t, []state.ConnectionStatus{state.ConnectionConnecting, state.ConnectionSuccess}, statuses)

	require.NoError(t, emails.Sync(ctx, acct.ID))
	got, ok := emails.State().Find(acct.ID)
	require.True(t, ok)
	require.NotNil(t, got.LastSynced)
	assert.True(t, got.LastSynced.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	require.NoError(t, emails.Disconnect(ctx, acct.ID))
	got, ok = emails.State().Find(acct.ID)
	require.True(t, ok, "disconnect keeps the record")
	assert.False(t, got.Connected)

	emails.ResetConnectionStatus()
	assert.Equal(t, state.ConnectionIdle, emails.ConnectionStatus())

	require.NoError(t, emails.FetchAll(ctx))
	assert.Len(t, emails.Items(), 1)
}

func TestEmailConnectFailure(t *testing.T) {
	l := newLive(t)
	l.login(t)
	l.server.FailNext(http.MethodPost, "/emails/connect", http.StatusBadGateway, "")

	_, err := l.stores.EmailAccounts.Connect(context.Background(), models.EmailAccountInput{Email: "ada@gmail.com", Provider: models.ProviderGmail})
	require.Error(t, err)
	assert.Equal(t, state.ConnectionFailed, l.stores.EmailAccounts.ConnectionStatus())
	assert.Equal(t, "Failed to connect email account", l.stores.EmailAccounts.State().Error)
	assert.Empty(t, l.stores.EmailAccounts.Items())
}

func TestEmailSyncFailureMessage(t *testing.T) {
	l := newLive(t)
	l.login(t)

	err := l.stores.EmailAccounts.Sync(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "Email account not found", l.stores.EmailAccounts.State().Error)
}
