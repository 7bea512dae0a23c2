package store

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financemonkey/fm-cli/internal/models"
)

func TestDashboardFetchSummaryForDateRange(t *testing.T) {
	l := newLive(t)
	l.login(t)
	l.server.Lock()
	l.server.Summary = models.DashboardSummary{
		TotalTransactions: 5,
		TotalIncome:       decimal.RequireFromString("500"),
		TotalExpense:      decimal.RequireFromString("379.50"),
		Balance:           decimal.RequireFromString("120.50"),
	}
	l.server.Unlock()
	l.server.ResetCalls()

	r := models.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"}
	require.NoError(t, l.stores.Dashboard.SetDateRange(r))
	require.NoError(t, l.stores.Dashboard.FetchSummary(context.Background(), r))

	calls := l.server.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, "/dashboard/summary", calls[0].Path)
	assert.Contains(t, calls[0].Query, "startDate=2024-01-01")
	assert.Contains(t, calls[0].Query, "endDate=2024-01-31")

	st := l.stores.Dashboard.State()
	require.NotNil(t, st.Summary)
	assert.True(t, st.Summary.Balance.Equal(decimal.RequireFromString("120.50")))
	assert.Equal(t, 5, st.Summary.TotalTransactions)
	assert.False(t, st.Loading())
	assert.Equal(t, r, st.DateRange)
}

func TestDashboardFetchFailureKeepsSummary(t *testing.T) {
	l := newLive(t)
	l.login(t)
	ctx := context.Background()
	r := models.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"}

	require.NoError(t, l.stores.Dashboard.FetchSummary(ctx, r))
	l.server.FailNext(http.MethodGet, "/dashboard/summary", http.StatusInternalServerError, "")

	require.Error(t, l.stores.Dashboard.FetchSummary(ctx, r))
	st := l.stores.Dashboard.State()
	assert.NotNil(t, st.Summary)
	assert.Equal(t, "Failed to fetch dashboard summary", st.Error)
}

func TestDashboardSetDateRangeValidates(t *testing.T) {
	d := NewDashboard(newTree(), nil, nil)
	assert.Error(t, d.SetDateRange(models.DateRange{StartDate: "2024-02-01", EndDate: "2024-01-01"}))
	assert.Error(t, d.SetDateRange(models.DateRange{StartDate: "yesterday", EndDate: "2024-01-01"}))
}
