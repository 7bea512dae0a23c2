package state

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Action is a named state transition. Reduce must not mutate its input.
type Action interface {
	Name() string
	Reduce(State) State
}

type actionFunc struct {
	name   string
	reduce func(State) State
}

func (a actionFunc) Name() string { return a.name }
func (a actionFunc) Reduce(s State) State { return a.reduce(s) }

// NewAction wraps a reducer function.
func NewAction(name string, reduce func(State) State) Action {
	return actionFunc{name: name, reduce: reduce}
}

// Commit is delivered to subscribers after each dispatch.
type Commit struct {
	Version uint64
	Action  string
	State   State
}

// Tree is the application state tree. Dispatch is the only writer.
type Tree struct {
	seq atomic.Uint64

	mu       sync.Mutex
	state    State
	queue    []Commit
	draining bool

	subsMu sync.Mutex
	subs   map[int]func(Commit)
	nextID int
}

// NewTree returns a tree holding initial.
func NewTree(initial State) *Tree {
	return &Tree{state: initial, subs: map[int]func(Commit){}}
}

// GetState returns the current snapshot. Snapshots stay valid after later
// dispatches because reducers never write through shared slices.
func (t *Tree) GetState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// NextSeq hands out the tree-wide operation sequence number.
func (t *Tree) NextSeq() uint64 {
	return t.seq.Add(1)
}

// Dispatch applies a and notifies subscribers in commit order. Dispatches
// made while notifications are running, including from a listener, are
// committed immediately and delivered by the goroutine already draining
// the queue.
func (t *Tree) Dispatch(a Action) Commit {
	t.mu.Lock()
	next := a.Reduce(t.state)
	next.Version = t.state.Version + 1
	t.state = next
	commit := Commit{Version: next.Version, Action: a.Name(), State: next}
	t.queue = append(t.queue, commit)

	if t.draining {
		t.mu.Unlock()
		return commit
	}
	t.draining = true
	for len(t.queue) > 0 {
		batch := t.queue
		t.queue = nil
		t.mu.Unlock()
		t.deliver(batch)
		t.mu.Lock()
	}
	t.draining = false
	t.mu.Unlock()
	return commit
}

func (t *Tree) deliver(batch []Commit) {
	t.subsMu.Lock()
	ids := make([]int, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	fns := make(map[int]func(Commit), len(t.subs))
	for id, fn := range t.subs {
		fns[id] = fn
	}
	t.subsMu.Unlock()

	sort.Ints(ids)
	for _, c := range batch {
		for _, id := range ids {
			fns[id](c)
		}
	}
}

// Subscribe registers fn for every later commit. Listeners run in
// registration order.
func (t *Tree) Subscribe(fn func(Commit)) (unsubscribe func()) {
	t.subsMu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.subsMu.Unlock()

	return func() {
		t.subsMu.Lock()
		delete(t.subs, id)
		t.subsMu.Unlock()
	}
}

// ActionHydrate names the commit made by Hydrate.
const ActionHydrate = "hydrate"

// Hydrate seeds the collections from a previously persisted state. Slots
// already filled by a live fetch are left alone.
func (t *Tree) Hydrate(saved State) Commit {
	return t.Dispatch(NewAction(ActionHydrate, func(s State) State {
		s.Transactions = s.Transactions.Seed(saved.Transactions.Items)
		s.Categories = s.Categories.Seed(saved.Categories.Items)
		s.EmailAccounts = s.EmailAccounts.Seed(saved.EmailAccounts.Items)
		if s.Dashboard.Summary == nil && saved.Dashboard.Summary != nil {
			summary := *saved.Dashboard.Summary
			s.Dashboard.Summary = &summary
			s.Dashboard.FromSnapshot = true
			if r := saved.Dashboard.SummaryRange; r.StartDate != "" {
				s.Dashboard.DateRange = r
				s.Dashboard.SummaryRange = r
			}
		}
		return s
	}))
}
