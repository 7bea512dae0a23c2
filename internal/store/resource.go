// Package store holds the resource stores. Each store issues API calls
// through an endpoint and reconciles the result into its slot of the
// state tree: fetch replaces the collection, create appends the server
// record, update replaces by id, delete drops by id. Failures leave the
// cached data in place.
package store

import (
	"context"

	"github.com/google/uuid"

	"financemonkey/fm-cli/internal/api"
	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/gateway"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/state"
)

// op identifies one tracked call.
type op struct {
	id  string
	seq uint64
}

// reducer is an extra state change folded into a tracked transition.
type reducer func(state.State) state.State

// Resource is the generic store over one collection slot.
type Resource[T models.Record] struct {
	tree     *state.Tree
	slot     state.Slot[T]
	endpoint api.Endpoint[T]
	logger   logging.Logger
	messages messages
}

// messages are the fallback texts stored when the server sends none.
type messages struct {
	fetch, create, update, delete string
}

func defaultMessages(noun, plural string) messages {
	return messages{
		fetch:  "Failed to fetch " + plural,
		create: "Failed to create " + noun,
		update: "Failed to update " + noun,
		delete: "Failed to delete " + noun,
	}
}

// NewResource builds a store for slot backed by endpoint.
func NewResource[T models.Record](tree *state.Tree, slot state.Slot[T], endpoint api.Endpoint[T], logger logging.Logger) *Resource[T] {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Resource[T]{
		tree:     tree,
		slot:     slot,
		endpoint: endpoint,
		logger:   logger.WithField(logging.FieldStore, slot.Name),
		messages: defaultMessages(slot.Name, slot.Name),
	}
}

// State returns the current slot value.
func (r *Resource[T]) State() state.Resource[T] {
	return r.slot.Get(r.tree.GetState())
}

// Items returns the cached collection.
func (r *Resource[T]) Items() []T {
	return r.State().Items
}

func (r *Resource[T]) begin(ctx context.Context, verb string, also ...reducer) (context.Context, op) {
	o := op{id: uuid.NewString(), seq: r.tree.NextSeq()}
	r.tree.Dispatch(state.NewAction(r.slot.Name+"/"+verb+"/pending", func(s state.State) state.State {
		s = r.slot.Set(s, r.slot.Get(s).Begin(o.id, o.seq))
		return apply(s, also)
	}))
	r.logger.Debug("Operation started",
		logging.F(logging.FieldOperation, verb),
		logging.F(logging.FieldOperationID, o.id))
	return gateway.WithOperationID(ctx, o.id), o
}

// settle records success. change applies the response to the collection
// and reports whether it was applied.
func (r *Resource[T]) settle(o op, verb string, change func(state.Resource[T]) (state.Resource[T], bool), also ...reducer) bool {
	applied := true
	r.tree.Dispatch(state.NewAction(r.slot.Name+"/"+verb+"/fulfilled", func(s state.State) state.State {
		res := r.slot.Get(s)
		if change != nil {
			res, applied = change(res)
		}
		s = r.slot.Set(s, res.Settle(o.id, o.seq, ""))
		return apply(s, also)
	}))
	return applied
}

func (r *Resource[T]) reject(o op, verb string, err error, fallback string, also ...reducer) error {
	msg := apierror.Message(err, fallback)
	r.tree.Dispatch(state.NewAction(r.slot.Name+"/"+verb+"/rejected", func(s state.State) state.State {
		s = r.slot.Set(s, r.slot.Get(s).Settle(o.id, o.seq, msg))
		return apply(s, also)
	}))
	r.logger.WithError(err).Warn("Operation failed",
		logging.F(logging.FieldOperation, verb),
		logging.F(logging.FieldOperationID, o.id))
	return err
}

func apply(s state.State, reducers []reducer) state.State {
	for _, fn := range reducers {
		s = fn(s)
	}
	return s
}

// FetchAll replaces the collection with the server's.
func (r *Resource[T]) FetchAll(ctx context.Context) error {
	ctx, o := r.begin(ctx, "fetchAll")
	items, err := r.endpoint.List(ctx)
	if err != nil {
		return r.reject(o, "fetchAll", err, r.messages.fetch)
	}
	if items == nil {
		items = []T{}
	}

	applied := r.settle(o, "fetchAll", func(res state.Resource[T]) (state.Resource[T], bool) {
		return res.Replace(items, o.seq)
	})
	if !applied {
		r.logger.Debug("Dropped fetch result older than the applied one",
			logging.F(logging.FieldOperationID, o.id))
		return nil
	}
	r.logger.Debug("Fetched collection", logging.F(logging.FieldCount, len(items)))
	return nil
}

// Create sends record and appends the server's canonical copy.
func (r *Resource[T]) Create(ctx context.Context, record T) (T, error) {
	ctx, o := r.begin(ctx, "create")
	created, err := r.endpoint.Create(ctx, record)
	if err != nil {
		var zero T
		return zero, r.reject(o, "create", err, r.messages.create)
	}

	r.settle(o, "create", func(res state.Resource[T]) (state.Resource[T], bool) {
		return res.Append(created, o.seq), true
	})
	r.logger.Info("Created record", logging.F(logging.FieldRecordID, created.Key()))
	return created, nil
}

// Update sends record and replaces the local copy with the response.
// A response for a record no longer cached, or one overtaken by a later
// mutation, is dropped.
func (r *Resource[T]) Update(ctx context.Context, record T) (T, error) {
	ctx, o := r.begin(ctx, "update")
	updated, err := r.endpoint.Update(ctx, record)
	if err != nil {
		var zero T
		return zero, r.reject(o, "update", err, r.messages.update)
	}

	applied := r.settle(o, "update", func(res state.Resource[T]) (state.Resource[T], bool) {
		return res.Put(updated, o.seq)
	})
	if !applied {
		r.logger.Debug("Dropped update response",
			logging.F(logging.FieldRecordID, updated.Key()),
			logging.F(logging.FieldOperationID, o.id))
	}
	return updated, nil
}

// Delete removes the record on the server, then locally.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	ctx, o := r.begin(ctx, "delete")
	if err := r.endpoint.Delete(ctx, id); err != nil {
		return r.reject(o, "delete", err, r.messages.delete)
	}

	r.settle(o, "delete", func(res state.Resource[T]) (state.Resource[T], bool) {
		return res.Remove(id, o.seq)
	})
	r.logger.Info("Deleted record", logging.F(logging.FieldRecordID, id))
	return nil
}

// ClearError drops the slot's error.
func (r *Resource[T]) ClearError() {
	r.tree.Dispatch(state.NewAction(r.slot.Name+"/clearError", func(s state.State) state.State {
		res := r.slot.Get(s)
		res.Ops = res.Ops.ClearError()
		return r.slot.Set(s, res)
	}))
}
