// Package paging keeps one page of a server-paginated collection in sync
// with navigation and filters.
package paging

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"marketplace-portal/model"
)

// ErrStale is returned by a refetch whose response arrived after a newer
// refetch had already been issued. Its result was discarded.
var ErrStale = staleError{}

type staleError struct{}

func (staleError) Error() string   { return "response superseded by a newer request" }
func (staleError) HTTPStatus() int { return http.StatusConflict }

// Query is what a single list request is parameterized by.
type Query struct {
	Page   int
	Size   int
	Filter url.Values
}

// Values encodes q as 0-based page/size query parameters plus the filter.
func (q Query) Values() url.Values {
	v := url.Values{}
	for k, vals := range q.Filter {
		for _, val := range vals {
			if val != "" {
				v.Add(k, val)
			}
		}
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	return v
}

type Fetcher[T any] func(ctx context.Context, q Query) (model.Page[T], error)

// State is a snapshot of the controller.
type State[T any] struct {
	PageIndex     int        `json:"pageIndex"`
	PageSize      int        `json:"pageSize"`
	TotalPages    int        `json:"totalPages"`
	TotalElements int        `json:"totalElements"`
	Items         []T        `json:"items"`
	Filter        url.Values `json:"filter,omitempty"`
	Error         string     `json:"error,omitempty"`
	Retry         bool       `json:"retry,omitempty"`
	Loaded        bool       `json:"loaded"`
}

type Controller[T any] struct {
	mu     sync.Mutex
	fetch  Fetcher[T]
	name   string
	state  State[T]
	issued uint64
}

func NewController[T any](name string, pageSize int, fetch Fetcher[T]) *Controller[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Controller[T]{
		fetch: fetch,
		name:  name,
		state: State[T]{PageSize: pageSize, Items: []T{}, Filter: url.Values{}},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Items = append([]T(nil), c.state.Items...)
	s.Filter = maps.Clone(c.state.Filter)
	return s
}

// SetPage moves to page n and refetches. Out of range pages are ignored
// and report false without issuing a request.
func (c *Controller[T]) SetPage(ctx context.Context, n int) (bool, error) {
	c.mu.Lock()
	if n < 0 || n >= c.state.TotalPages {
		c.mu.Unlock()
		return false, nil
	}
	c.state.PageIndex = n
	c.mu.Unlock()

	return true, c.Refetch(ctx)
}

// Position sets the page and filters the next fetch uses, without fetching.
// It lets a list that has not loaded yet start on a deep link. Negative
// pages and empty filter values are ignored.
func (c *Controller[T]) Position(page int, filter url.Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page >= 0 {
		c.state.PageIndex = page
	}
	for k := range filter {
		if v := filter.Get(k); v != "" {
			c.state.Filter.Set(k, v)
		}
	}
}

// SetFilter replaces one filter value, goes back to the first page and
// refetches. An empty value removes the filter.
func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) error {
	c.mu.Lock()
	if value == "" {
		c.state.Filter.Del(key)
	} else {
		c.state.Filter.Set(key, value)
	}
	c.state.PageIndex = 0
	c.mu.Unlock()

	return c.Refetch(ctx)
}

// Refetch loads the current page. On failure the previous items are kept
// and the error is recorded for the retry banner.
func (c *Controller[T]) Refetch(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	gen := c.issued
	q := Query{Page: c.state.PageIndex, Size: c.state.PageSize, Filter: maps.Clone(c.state.Filter)}
	c.mu.Unlock()

	page, err := c.fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.issued {
		slog.Debug("discarding stale page", "list", c.name, "page", q.Page, "generation", gen, "latest", c.issued)
		return ErrStale
	}

	if err != nil {
		slog.Error("list fetch failed", "list", c.name, "page", q.Page, "err", err)
		c.state.Error = err.Error()
		c.state.Retry = true
		return err
	}

	if page.Content == nil {
		page.Content = []T{}
	}
	c.state.Items = page.Content
	c.state.TotalPages = page.TotalPages
	c.state.TotalElements = page.TotalElements
	c.state.Error = ""
	c.state.Retry = false
	c.state.Loaded = true
	return nil
}

// AfterDelete refetches after an item on the current page was deleted. If
// that item was the only one on a page past the first, the controller steps
// back one page first so the user does not land on an empty page.
func (c *Controller[T]) AfterDelete(ctx context.Context) error {
	c.mu.Lock()
	if len(c.state.Items) <= 1 && c.state.PageIndex > 0 {
		c.state.PageIndex--
	}
	c.mu.Unlock()

	return c.Refetch(ctx)
}

// IsStale reports whether err only means a newer request won.
func IsStale(err error) bool {
	return errors.Is(err, ErrStale)
}
