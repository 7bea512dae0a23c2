package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"financemonkey/fm-cli/internal/models"
)

// ErrNoRecord is returned when a create or update succeeds without the
// server sending back the stored record.
var ErrNoRecord = errors.New("server returned no record")

// record checks that out carries a key.
func record[T models.Record](out T, path string, err error) (T, error) {
	if err == nil && out.Key() == "" {
		err = fmt.Errorf("%s: %w", path, ErrNoRecord)
	}
	return out, err
}

// Endpoint is the CRUD surface of one REST collection.
type Endpoint[T models.Record] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, id string) error
}

type collection[T models.Record] struct {
	client *Client
	path   string
}

func (e *collection[T]) item(id string) string {
	return e.path + "/" + url.PathEscape(id)
}

func (e *collection[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := e.client.get(ctx, e.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *collection[T]) Create(ctx context.Context, rec T) (T, error) {
	var out T
	err := e.client.post(ctx, e.path, rec, &out)
	return record(out, e.path, err)
}

func (e *collection[T]) Update(ctx context.Context, rec T) (T, error) {
	var out T
	path := e.item(rec.Key())
	err := e.client.put(ctx, path, rec, &out)
	return record(out, path, err)
}

func (e *collection[T]) Delete(ctx context.Context, id string) error {
	return e.client.delete(ctx, e.item(id))
}

// Transactions is /transactions.
func (c *Client) Transactions() Endpoint[models.Transaction] {
	return &collection[models.Transaction]{client: c, path: "/transactions"}
}

// Categories is /categories.
func (c *Client) Categories() Endpoint[models.Category] {
	return &collection[models.Category]{client: c, path: "/categories"}
}
