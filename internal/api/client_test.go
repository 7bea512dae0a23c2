package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/fakeapi"
	"financemonkey/fm-cli/internal/gateway"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/session"
)

func newClient(t *testing.T, loggedIn bool) (*Client, *fakeapi.Server, *session.Service) {
	t.Helper()
	srv := fakeapi.New(t)

	svc, err := session.NewService(session.NewMemoryStorage(), nil)
	require.NoError(t, err)
	gw, err := gateway.New(gateway.Config{BaseURL: srv.BaseURL()}, svc, nil, nil)
	require.NoError(t, err)
	svc.SetRefresher(gw)

	if loggedIn {
		srv.AddUser("Ada", "ada@example.com", "correct horse")
		require.NoError(t, svc.Login(srv.IssueSession("ada@example.com")))
	}
	return NewClient(gw), srv, svc
}

func TestClient_Auth(t *testing.T) {
	client, srv, _ := newClient(t, false)
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, models.Registration{Name: "Ada", Email: "ada@example.com", Password: "password1"}))
	assert.True(t, srv.HasUser("ada@example.com"))

	err := client.Register(ctx, models.Registration{Name: "Ada", Email: "ada@example.com", Password: "password1"})
	assert.True(t, apierror.IsStatus(err, http.StatusConflict))

	resp, err := client.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Ada", resp.User.Name)

	_, err = client.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", apierror.Message(err, "Login failed"))

	google, err := client.GoogleLogin(ctx, models.GoogleProfile{Email: "grace@example.com", Name: "Grace", GoogleID: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", google.User.Email)
}

func TestClient_TransactionsCRUD(t *testing.T) {
	client, _, _ := newClient(t, true)
	ctx := context.Background()
	ep := client.Transactions()

	created, err := ep.Create(ctx, models.Transaction{
		Amount:          decimal.RequireFromString("-42.10"),
		Currency:        "CHF",
		Vendor:          "Coop",
		Description:     "Groceries",
		TransactionDate: "2024-01-15",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("-42.10")))

	created.Vendor = "Migros"
	updated, err := ep.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Migros", updated.Vendor)

	list, err := ep.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Migros", list[0].Vendor)

	require.NoError(t, ep.Delete(ctx, created.ID))
	list, err = ep.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = ep.Delete(ctx, created.ID)
	assert.True(t, apierror.IsStatus(err, http.StatusNotFound))
}

func TestClient_CategoryDeleteConflict(t *testing.T) {
	client, srv, _ := newClient(t, true)
	srv.Lock()
	srv.Categories = []models.Category{
		{ID: "food", Name: "Food"},
		{ID: "groceries", Name: "Groceries", ParentCategoryID: "food"},
	}
	srv.Unlock()

	err := client.Categories().Delete(context.Background(), "food")
	assert.True(t, apierror.IsStatus(err, http.StatusConflict))
}

func TestClient_EmailLifecycle(t *testing.T) {
	client, _, _ := newClient(t, true)
	ctx := context.Background()

	acct, err := client.ConnectEmail(ctx, models.EmailAccountInput{Email: "ada@gmail.com", Provider: models.ProviderGmail})
	require.NoError(t, err)
	assert.True(t, acct.Connected)

	require.NoError(t, client.FetchEmails(ctx, acct.ID))
	require.NoError(t, client.DisconnectEmail(ctx, acct.ID))

	accounts, err := client.EmailAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.False(t, accounts[0].Connected)
	assert.NotNil(t, accounts[0].LastSynced)
}

func TestClient_DashboardSummaryQuery(t *testing.T) {
	client, srv, _ := newClient(t, true)
	srv.Lock()
	srv.Summary = models.DashboardSummary{TotalTransactions: 5, Balance: decimal.RequireFromString("120.50")}
	srv.Unlock()

	summary, err := client.DashboardSummary(context.Background(), models.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalTransactions)
	assert.True(t, summary.Balance.Equal(decimal.RequireFromString("120.50")))

	calls := srv.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "/dashboard/summary", last.Path)
	assert.Equal(t, "endDate=2024-01-31&startDate=2024-01-01", last.Query)
}

func TestClient_Drive(t *testing.T) {
	client, srv, _ := newClient(t, true)
	ctx := context.Background()

	status, err := client.DriveStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Connected)

	_, err = client.DriveExport(ctx)
	assert.True(t, apierror.IsStatus(err, http.StatusBadRequest))

	srv.Lock()
	srv.Drive = models.DriveStatus{Connected: true, FolderName: "Finance Monkey"}
	srv.Unlock()

	result, err := client.DriveExport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "exported", result.Status)

	files, err := client.DriveFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, result.FileID, files[0].ID)
}

func TestClient_ExpiredTokenIsRefreshedTransparently(t *testing.T) {
	client, srv, svc := newClient(t, true)
	before := svc.Token()
	srv.ExpireAccessTokens()

	_, err := client.Transactions().List(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, before, svc.Token())
	assert.Equal(t, 1, srv.CallCount(http.MethodPost, "/auth/refresh-token"))
	assert.Equal(t, 2, srv.CallCount(http.MethodGet, "/transactions"))
}

type cannedSender struct {
	body []byte
}

func (s cannedSender) Send(_ context.Context, _ *gateway.Request) (*gateway.Response, error) {
	return &gateway.Response{Status: http.StatusOK, Body: s.body}, nil
}

func TestClient_WriteWithoutRecordFails(t *testing.T) {
	ctx := context.Background()
	tx := models.Transaction{ID: "tx-1", Vendor: "Coop"}

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "empty object", body: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(cannedSender{body: []byte(tt.body)})

			_, err := client.Transactions().Create(ctx, models.Transaction{Vendor: "Coop"})
			assert.ErrorIs(t, err, ErrNoRecord)

			_, err = client.Transactions().Update(ctx, tx)
			assert.ErrorIs(t, err, ErrNoRecord)

			_, err = client.ConnectEmail(ctx, models.EmailAccountInput{Email: "ada@example.com"})
			assert.ErrorIs(t, err, ErrNoRecord)
		})
	}

	client := NewClient(cannedSender{body: []byte(`{"id":"tx-1","vendor":"Coop"}`)})
	created, err := client.Transactions().Create(ctx, models.Transaction{Vendor: "Coop"})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", created.ID)
}
