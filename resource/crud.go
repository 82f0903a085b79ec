// Package resource maps portal entities onto marketplace API endpoints.
package resource

import (
	"context"
	"net/http"

	"marketplace-portal/apiclient"
	"marketplace-portal/model"
	"marketplace-portal/paging"
)

type actionError struct {
	msg    string
	status int
}

func (e *actionError) Error() string   { return e.msg }
func (e *actionError) HTTPStatus() int { return e.status }

var (
	ErrProtected      = &actionError{"super admin accounts cannot be deleted", http.StatusForbidden}
	ErrReasonRequired = &actionError{"a rejection reason is required", http.StatusUnprocessableEntity}
	ErrNotFound       = &actionError{"item not found on the current page", http.StatusNotFound}
	ErrReadOnly       = &actionError{"this list is read only", http.StatusMethodNotAllowed}
	ErrAdminOnly      = &actionError{"only admins can do this", http.StatusForbidden}
)

// CRUD is the generic list/create/update/delete binding of one entity.
// ListPath and CreatePath receive the session so owner-scoped collections
// can embed the owner id.
type CRUD[T any] struct {
	Client     *apiclient.Client
	ListPath   func(s model.Session) string
	CreatePath func(s model.Session) string
	ItemPath   func(id model.ID) string
	// Paged is false for endpoints that always return the full list.
	Paged bool
}

func (c CRUD[T]) List(ctx context.Context, s model.Session, q paging.Query) (model.Page[T], error) {
	query := q.Values()
	if !c.Paged {
		query.Del("page")
		query.Del("size")
	}
	body, err := c.Client.Get(ctx, c.ListPath(s), query)
	if err != nil {
		return model.Page[T]{}, err
	}
	return apiclient.DecodePage[T](body)
}

func (c CRUD[T]) Get(ctx context.Context, id model.ID) (T, error) {
	body, err := c.Client.Get(ctx, c.ItemPath(id), nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return apiclient.DecodeItem[T](body)
}

func (c CRUD[T]) Create(ctx context.Context, s model.Session, payload any) error {
	if c.CreatePath == nil {
		return ErrReadOnly
	}
	_, err := c.Client.Post(ctx, c.CreatePath(s), payload)
	return err
}

func (c CRUD[T]) Update(ctx context.Context, id model.ID, payload any) error {
	if c.ItemPath == nil {
		return ErrReadOnly
	}
	_, err := c.Client.Put(ctx, c.ItemPath(id), payload)
	return err
}

func (c CRUD[T]) Delete(ctx context.Context, id model.ID) error {
	if c.ItemPath == nil {
		return ErrReadOnly
	}
	return c.Client.Delete(ctx, c.ItemPath(id))
}

// Fixed returns a path function that ignores the session.
func Fixed(path string) func(model.Session) string {
	return func(model.Session) string { return path }
}

// Under returns an item path function "<prefix>/<id>".
func Under(prefix string) func(model.ID) string {
	return func(id model.ID) string { return prefix + "/" + id.String() }
}
