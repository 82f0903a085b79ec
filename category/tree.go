// Package category holds the lazily loaded Category → SubCategory tree.
package category

import (
	"context"
	"log/slog"
	"sync"

	"marketplace-portal/model"
)

// Loader fetches the subcategories of one category.
type Loader func(ctx context.Context, categoryID model.ID) ([]model.SubCategory, error)

type Node struct {
	Category      model.Category      `json:"category"`
	SubCategories []model.SubCategory `json:"subCategories"`
	IsLoadingSubs bool                `json:"isLoadingSubs"`
	Expanded      bool                `json:"expanded"`
	Error         string              `json:"error,omitempty"`
}

// Tree keeps the category list, which categories are expanded and the
// children loaded so far. Children stay cached for the life of the tree.
type Tree struct {
	mu       sync.Mutex
	load     Loader
	order    []model.ID
	nodes    map[model.ID]*Node
	expanded map[model.ID]bool
	// gens counts invalidations per category; a load started under an
	// older generation is dropped when it returns.
	gens map[model.ID]uint64
}

func NewTree(load Loader) *Tree {
	return &Tree{
		load:     load,
		nodes:    map[model.ID]*Node{},
		expanded: map[model.ID]bool{},
		gens:     map[model.ID]uint64{},
	}
}

// SetCategories replaces the root list. Cached children and expansion of
// categories that are still present are kept.
func (t *Tree) SetCategories(categories []model.Category) {
	t.mu.Lock()
	defer t.mu.Unlock()

	nodes := make(map[model.ID]*Node, len(categories))
	order := make([]model.ID, 0, len(categories))
	for _, c := range categories {
		n := &Node{Category: c, SubCategories: []model.SubCategory{}}
		if old, ok := t.nodes[c.ID]; ok {
			n.SubCategories = old.SubCategories
			n.IsLoadingSubs = old.IsLoadingSubs
		}
		nodes[c.ID] = n
		order = append(order, c.ID)
	}
	for id := range t.expanded {
		if _, ok := nodes[id]; !ok {
			delete(t.expanded, id)
		}
	}
	t.nodes = nodes
	t.order = order
}

// Expand marks the category expanded and loads its children when none are
// cached yet.
func (t *Tree) Expand(ctx context.Context, id model.ID) error {
	t.mu.Lock()
	n, ok := t.nodes[id]
	if !ok {
		t.mu.Unlock()
		return ErrUnknownCategory
	}
	t.expanded[id] = true
	if len(n.SubCategories) > 0 || n.IsLoadingSubs {
		t.mu.Unlock()
		return nil
	}
	n.IsLoadingSubs = true
	n.Error = ""
	gen := t.gens[id]
	t.mu.Unlock()

	return t.fetch(ctx, id, gen)
}

// Collapse hides the children without dropping them.
func (t *Tree) Collapse(id model.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.expanded, id)
}

// Toggle expands a collapsed category and collapses an expanded one.
func (t *Tree) Toggle(ctx context.Context, id model.ID) (bool, error) {
	t.mu.Lock()
	open := t.expanded[id]
	t.mu.Unlock()

	if open {
		t.Collapse(id)
		return false, nil
	}
	return true, t.Expand(ctx, id)
}

// Invalidate drops the cached children after a subcategory was created,
// changed or deleted, and reloads them if the category is expanded. A load
// already in flight is superseded and its result discarded.
func (t *Tree) Invalidate(ctx context.Context, id model.ID) error {
	t.mu.Lock()
	n, ok := t.nodes[id]
	if !ok {
		t.mu.Unlock()
		return nil
	}
	t.gens[id]++
	gen := t.gens[id]
	n.SubCategories = []model.SubCategory{}
	reload := t.expanded[id]
	n.IsLoadingSubs = reload
	t.mu.Unlock()

	if !reload {
		return nil
	}
	return t.fetch(ctx, id, gen)
}

func (t *Tree) fetch(ctx context.Context, id model.ID, gen uint64) error {
	subs, err := t.load(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gens[id] != gen {
		slog.Debug("discarding stale subcategories", "category", id, "generation", gen, "latest", t.gens[id])
		return nil
	}
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	n.IsLoadingSubs = false
	if err != nil {
		slog.Error("failed to load subcategories", "category", id, "err", err)
		n.Error = err.Error()
		return err
	}
	if subs == nil {
		subs = []model.SubCategory{}
	}
	n.SubCategories = subs
	n.Error = ""
	return nil
}

// Expanded returns the ids of the expanded categories in list order.
func (t *Tree) Expanded() []model.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []model.ID{}
	for _, id := range t.order {
		if t.expanded[id] {
			out = append(out, id)
		}
	}
	return out
}

// Nodes returns a snapshot of the tree in list order.
func (t *Tree) Nodes() []Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Node, 0, len(t.order))
	for _, id := range t.order {
		n := *t.nodes[id]
		n.SubCategories = append([]model.SubCategory{}, n.SubCategories...)
		n.Expanded = t.expanded[id]
		out = append(out, n)
	}
	return out
}

// Category returns the category with the given id, if listed.
func (t *Tree) Category(id model.ID) (model.Category, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[id]
	if !ok {
		return model.Category{}, false
	}
	return n.Category, true
}
