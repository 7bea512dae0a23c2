package state

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financemonkey/fm-cli/internal/models"
)

func setError(msg string) Action {
	return NewAction("setError", func(s State) State {
		s.Transactions.Error = msg
		return s
	})
}

func TestTree_DispatchBumpsVersion(t *testing.T) {
	tree := NewTree(Initial(models.DateRange{}))
	assert.Equal(t, uint64(0), tree.GetState().Version)

	c := tree.Dispatch(setError("x"))
	assert.Equal(t, uint64(1), c.Version)
	assert.Equal(t, "setError", c.Action)
	assert.Equal(t, "x", tree.GetState().Transactions.Error)
	assert.Equal(t, ConnectionIdle, tree.GetState().EmailConnection)
}

func TestTree_SnapshotsAreStable(t *testing.T) {
	tree := NewTree(State{})
	tree.Dispatch(NewAction("load", func(s State) State {
		s.Categories, _ = s.Categories.Replace(cats("1"), tree.NextSeq())
		return s
	}))
	snap := tree.GetState()

	tree.Dispatch(NewAction("add", func(s State) State {
		s.Categories = s.Categories.Append(models.Category{ID: "2"}, tree.NextSeq())
		return s
	}))

	assert.Len(t, snap.Categories.Items, 1)
	assert.Len(t, tree.GetState().Categories.Items, 2)
}

func TestTree_SubscribersSeeCommitOrder(t *testing.T) {
	tree := NewTree(State{})

	var got []uint64
	tree.Subscribe(func(c Commit) {
		got = append(got, c.Version)
		// Re-entrant dispatch must not deadlock and must be delivered after this one.
		if c.Action == "first" {
			tree.Dispatch(setError("from listener"))
		}
	})

	tree.Dispatch(NewAction("first", func(s State) State { return s }))
	tree.Dispatch(setError("last"))

	assert.Equal(t, []uint64{1, 2, 3}, got)
	assert.Equal(t, "last", tree.GetState().Transactions.Error)
}

func TestTree_ConcurrentDispatchDeliversEveryCommitInOrder(t *testing.T) {
	tree := NewTree(State{})

	var mu sync.Mutex
	var got []uint64
	tree.Subscribe(func(c Commit) {
		mu.Lock()
		got = append(got, c.Version)
		mu.Unlock()
	})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree.Dispatch(setError("x"))
		}()
	}
	wg.Wait()

	// Dispatch returns before delivery when another goroutine is draining.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == n
	}, defaultWait, tick)

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		assert.Equal(t, uint64(i+1), v)
	}
}

func TestTree_Unsubscribe(t *testing.T) {
	tree := NewTree(State{})
	calls := 0
	unsubscribe := tree.Subscribe(func(Commit) { calls++ })

	tree.Dispatch(setError("a"))
	unsubscribe()
	tree.Dispatch(setError("b"))

	assert.Equal(t, 1, calls)
}

func TestTree_Hydrate(t *testing.T) {
	tree := NewTree(Initial(models.DateRange{StartDate: "2024-02-01", EndDate: "2024-02-29"}))
	tree.Dispatch(NewAction("live", func(s State) State {
		s.Categories, _ = s.Categories.Replace(cats("live"), tree.NextSeq())
		return s
	}))

	var saved State
	saved.Transactions.Items = []models.Transaction{{ID: "t1"}}
	saved.Categories.Items = cats("cached")
	saved.Dashboard.Summary = &models.DashboardSummary{Balance: decimal.NewFromInt(10)}
	saved.Dashboard.SummaryRange = models.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"}

	tree.Hydrate(saved)
	s := tree.GetState()

	assert.True(t, s.Transactions.FromSnapshot)
	assert.Equal(t, "t1", s.Transactions.Items[0].ID)
	assert.Equal(t, cats("live"), s.Categories.Items, "live data wins over the snapshot")
	require.NotNil(t, s.Dashboard.Summary)
	assert.True(t, s.Dashboard.FromSnapshot)
	assert.Equal(t, "2024-01-01", s.Dashboard.DateRange.StartDate)
}

func TestDashboardState_SetSummary(t *testing.T) {
	jan := models.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"}
	feb := models.DateRange{StartDate: "2024-02-01", EndDate: "2024-02-29"}

	var d DashboardState
	assert.False(t, d.HasSummaryFor(jan))
	d, ok := d.SetSummary(models.DashboardSummary{TotalTransactions: 2}, jan, 5)
	require.True(t, ok)
	assert.True(t, d.HasSummaryFor(jan))
	assert.False(t, d.HasSummaryFor(feb))

	_, ok = d.SetSummary(models.DashboardSummary{TotalTransactions: 1}, feb, 4)
	assert.False(t, ok)
	assert.Equal(t, 2, d.Summary.TotalTransactions)
	assert.Equal(t, jan, d.SummaryRange)
}
