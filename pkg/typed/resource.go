// Package typed provides type-safe JSON calls on top of core.SyncClient.
package typed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aretw0/mdwiki/pkg/core"
)

// Get issues a GET and decodes the body into T.
func Get[T any](ctx context.Context, client core.SyncClient, path string, query url.Values) (T, error) {
	var out T
	res, err := client.Do(ctx, core.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return out, err
	}
	return decode[T](res)
}

// List fetches one bunch of a collection.
func List[T any](ctx context.Context, client core.SyncClient, path string, bunch core.Bunch) ([]T, error) {
	items, err := Get[[]T](ctx, client, path, bunch.Query())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Exec issues a request whose reply body is irrelevant.
func Exec(ctx context.Context, client core.SyncClient, method, path string, body any) error {
	_, err := client.Do(ctx, core.Request{Method: method, Path: path, JSON: body})
	return err
}

func decode[T any](res *core.Response) (T, error) {
	var out T
	if len(res.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

// Resource is a typed view of one backend collection with the usual
// list/get/create/update/delete verbs.
type Resource[T any] struct {
	client core.SyncClient
	path   string
}

// NewResource binds a collection path (e.g. "/spaces") to a client.
func NewResource[T any](client core.SyncClient, path string) *Resource[T] {
	return &Resource[T]{client: client, path: path}
}

func (r *Resource[T]) item(id int) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

func (r *Resource[T]) List(ctx context.Context, bunch core.Bunch) ([]T, error) {
	return List[T](ctx, r.client, r.path, bunch)
}

func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	return Get[T](ctx, r.client, r.item(id), nil)
}

// Create posts body to the collection. The reply is not decoded; callers
// refetch the collection instead.
func (r *Resource[T]) Create(ctx context.Context, body any) error {
	return Exec(ctx, r.client, http.MethodPost, r.path, body)
}

// Update replaces item id with body.
func (r *Resource[T]) Update(ctx context.Context, id int, body any) error {
	return Exec(ctx, r.client, http.MethodPut, r.item(id), body)
}

func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	return Exec(ctx, r.client, http.MethodDelete, r.item(id), nil)
}
