package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/state"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "snapshot.db"), logging.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fetchedState() state.State {
	st := state.Initial(models.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"})
	st.Auth.Authenticated = true
	st.Transactions, _ = st.Transactions.Replace([]models.Transaction{
		{ID: "t2", Vendor: "Coop", Amount: decimal.RequireFromString("-12.5"), TransactionDate: "2024-01-03"},
		{ID: "t1", Vendor: "ACME", Amount: decimal.NewFromInt(5000), TransactionDate: "2024-01-25"},
	}, 1)
	st.Categories, _ = st.Categories.Replace([]models.Category{{ID: "c1", Name: "Food"}}, 2)
	st.Dashboard, _ = st.Dashboard.SetSummary(models.DashboardSummary{
		TotalTransactions: 2,
		Balance:           decimal.RequireFromString("120.50"),
	}, st.Dashboard.DateRange, 3)
	return st
}

func TestLoadEmpty(t *testing.T) {
	s := openStore(t)
	_, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, fetchedState()))

	loaded, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, loaded.Transactions.Items, 2)
	assert.Equal(t, "t2", loaded.Transactions.Items[0].ID, "order preserved")
	assert.True(t, loaded.Transactions.Items[0].Amount.Equal(decimal.RequireFromString("-12.5")))
	assert.Equal(t, []models.Category{{ID: "c1", Name: "Food"}}, loaded.Categories.Items)
	assert.Nil(t, loaded.EmailAccounts.Items, "never fetched")

	require.NotNil(t, loaded.Dashboard.Summary)
	assert.Equal(t, "120.5", loaded.Dashboard.Summary.Balance.String())
	assert.Equal(t, "2024-01-01", loaded.Dashboard.DateRange.StartDate)

	savedAt, ok, err := s.SavedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, savedAt.IsZero())
}

func TestSaveKeepsUnfetchedCollections(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, fetchedState()))

	// A later process that only fetched categories.
	st := state.Initial(models.DefaultDateRange(fixedNow()))
	st.Categories, _ = st.Categories.Replace([]models.Category{{ID: "c2", Name: "Travel"}}, 1)
	require.NoError(t, s.Save(ctx, st))

	loaded, _, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Transactions.Items, 2)
	assert.Equal(t, "c2", loaded.Categories.Items[0].ID)
}

func TestClear(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, fetchedState()))
	require.NoError(t, s.Clear(ctx))

	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), fetchedState()))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	_, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPersistFollowsTree(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	tree := state.NewTree(state.Initial(models.DefaultDateRange(fixedNow())))
	unsubscribe := s.Persist(tree)
	defer unsubscribe()

	tree.Dispatch(state.NewAction("categories/fetchAll/fulfilled", func(st state.State) state.State {
		st.Categories, _ = st.Categories.Replace([]models.Category{{ID: "c1", Name: "Food"}}, 1)
		return st
	}))
	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "nothing is saved while signed out")

	tree.Dispatch(state.NewAction("auth/sessionChanged", func(st state.State) state.State {
		st.Auth.Authenticated = true
		return st
	}))
	tree.Dispatch(state.NewAction("categories/fetchAll/fulfilled", func(st state.State) state.State {
		st.Categories, _ = st.Categories.Replace([]models.Category{{ID: "c1", Name: "Food"}, {ID: "c2", Name: "Travel"}}, 2)
		return st
	}))
	loaded, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, loaded.Categories.Items, 2)

	tree.Dispatch(state.NewAction("auth/sessionChanged", func(st state.State) state.State {
		st.Auth.Authenticated = false
		return st
	}))
	_, ok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "logout clears the snapshot")
}

func TestHydrateFromSnapshot(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, fetchedState()))
	saved, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	tree := state.NewTree(state.Initial(models.DefaultDateRange(fixedNow())))
	tree.Hydrate(saved)

	st := tree.GetState()
	assert.True(t, st.Transactions.FromSnapshot)
	assert.False(t, st.Transactions.Fetched)
	assert.Len(t, st.Transactions.Items, 2)
	assert.False(t, st.EmailAccounts.FromSnapshot, "never saved")
	assert.True(t, st.Dashboard.FromSnapshot)
	assert.Equal(t, "2024-01-31", st.Dashboard.DateRange.EndDate)
}

func TestSaveEmptyFetchedCollection(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	st := fetchedState()
	st.EmailAccounts, _ = st.EmailAccounts.Replace([]models.EmailAccount{}, 3)
	require.NoError(t, s.Save(ctx, st))

	loaded, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, loaded.EmailAccounts.Items)
	assert.Empty(t, loaded.EmailAccounts.Items)
}
