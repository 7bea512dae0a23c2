package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"financemonkey/fm-cli/internal/api"
	"financemonkey/fm-cli/internal/fakeapi"
	"financemonkey/fm-cli/internal/gateway"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/session"
	"financemonkey/fm-cli/internal/state"
)

// hold pauses one endpoint call until released.
type hold struct {
	started chan struct{}
	release chan struct{}
}

// fakeEndpoint is an in-memory api.Endpoint whose calls can be paused to
// force out-of-order completion.
type fakeEndpoint[T models.Record] struct {
	mu    sync.Mutex
	items []T
	calls map[string]int
	errs  map[string]error
	holds map[string][]*hold
}

func newFakeEndpoint[T models.Record](items ...T) *fakeEndpoint[T] {
	return &fakeEndpoint[T]{
		items: items,
		calls: map[string]int{},
		errs:  map[string]error{},
		holds: map[string][]*hold{},
	}
}

// holdNext pauses the next call of method.
func (f *fakeEndpoint[T]) holdNext(method string) *hold {
	h := &hold{started: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.holds[method] = append(f.holds[method], h)
	f.mu.Unlock()
	return h
}

func (f *fakeEndpoint[T]) failNext(method string, err error) {
	f.mu.Lock()
	f.errs[method] = err
	f.mu.Unlock()
}

func (f *fakeEndpoint[T]) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeEndpoint[T]) enter(method string) error {
	f.mu.Lock()
	f.calls[method]++
	var h *hold
	if q := f.holds[method]; len(q) > 0 {
		h, f.holds[method] = q[0], q[1:]
	}
	f.mu.Unlock()

	if h != nil {
		close(h.started)
		<-h.release
	}

	// Errors are picked up on completion so a paused call can be failed late.
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.errs[method]
	delete(f.errs, method)
	return err
}

func (f *fakeEndpoint[T]) List(ctx context.Context) ([]T, error) {
	// Snapshot before any hold so a paused fetch returns what it saw.
	f.mu.Lock()
	snapshot := append([]T(nil), f.items...)
	f.mu.Unlock()
	if err := f.enter("List"); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (f *fakeEndpoint[T]) Create(ctx context.Context, record T) (T, error) {
	if err := f.enter("Create"); err != nil {
		var zero T
		return zero, err
	}
	f.mu.Lock()
	f.items = append(f.items, record)
	f.mu.Unlock()
	return record, nil
}

func (f *fakeEndpoint[T]) Update(ctx context.Context, record T) (T, error) {
	if err := f.enter("Update"); err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

func (f *fakeEndpoint[T]) Delete(ctx context.Context, id string) error {
	return f.enter("Delete")
}

var _ api.Endpoint[models.Category] = (*fakeEndpoint[models.Category])(nil)

func newTree() *state.Tree {
	return state.NewTree(state.Initial(models.DateRange{}))
}

// live wires the stores to the fake API over a real gateway and session.
type live struct {
	server  *fakeapi.Server
	session *session.Service
	stores  *Stores
}

func newLive(t *testing.T) *live {
	t.Helper()
	srv := fakeapi.New(t)
	srv.AddUser("Ada", "ada@example.com", "password1")

	svc, err := session.NewService(session.NewMemoryStorage(), nil)
	require.NoError(t, err)
	gw, err := gateway.New(gateway.Config{BaseURL: srv.BaseURL()}, svc, gateway.NewRouteRecorder(nil), nil)
	require.NoError(t, err)
	svc.SetRefresher(gw)

	clock := func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	stores := New(newTree(), api.NewClient(gw), svc, clock, logging.NewMockLogger())
	t.Cleanup(stores.Close)
	return &live{server: srv, session: svc, stores: stores}
}

func (l *live) login(t *testing.T) {
	t.Helper()
	require.NoError(t, l.stores.Auth.Login(context.Background(), models.Credentials{Email: "ada@example.com", Password: "password1"}))
}

func waitStarted(t *testing.T, h *hold) {
	t.Helper()
	select {
	case <-h.started:
	case <-time.After(2 * time.Second):
		t.Fatal("endpoint call never started")
	}
}

func category(id, name, parent string) models.Category {
	return models.Category{ID: id, Name: name, ParentCategoryID: parent}
}

func txn(i int) models.Transaction {
	return models.Transaction{ID: fmt.Sprintf("t%d", i), Vendor: fmt.Sprintf("vendor %d", i)}
}
