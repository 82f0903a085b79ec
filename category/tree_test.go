package category

import (
	"context"
	"errors"
	"sync"
	"testing"

	"marketplace-portal/model"
)

type countingLoader struct {
	calls map[model.ID]int
	subs  map[model.ID][]model.SubCategory
	err   error
}

func (l *countingLoader) load(ctx context.Context, id model.ID) ([]model.SubCategory, error) {
	l.calls[id]++
	if l.err != nil {
		return nil, l.err
	}
	return l.subs[id], nil
}

func newTestTree() (*Tree, *countingLoader) {
	l := &countingLoader{
		calls: map[model.ID]int{},
		subs: map[model.ID][]model.SubCategory{
			"1": {{ID: "11", CategoryID: "1", NameEn: "Flyers"}, {ID: "12", CategoryID: "1", NameEn: "Posters"}},
			"2": {{ID: "21", CategoryID: "2", NameEn: "Mugs"}},
		},
	}
	tr := NewTree(l.load)
	tr.SetCategories([]model.Category{{ID: "1", NameEn: "Printing"}, {ID: "2", NameEn: "Gifts"}, {ID: "3", NameEn: "Empty"}})
	return tr, l
}

func TestExpand_FetchesOncePerCachedCategory(t *testing.T) {
	tr, l := newTestTree()
	ctx := context.Background()

	if err := tr.Expand(ctx, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr.Collapse("1")
	tr.Expand(ctx, "1")
	tr.Expand(ctx, "1")

	if l.calls["1"] != 1 {
		t.Fatalf("expected one fetch for cached category, got %d", l.calls["1"])
	}
	nodes := tr.Nodes()
	if len(nodes[0].SubCategories) != 2 || !nodes[0].Expanded {
		t.Fatalf("unexpected node %+v", nodes[0])
	}
}

func TestCollapse_KeepsChildren(t *testing.T) {
	tr, _ := newTestTree()
	tr.Expand(context.Background(), "2")
	tr.Collapse("2")

	n := tr.Nodes()[1]
	if n.Expanded {
		t.Fatalf("should be collapsed")
	}
	if len(n.SubCategories) != 1 {
		t.Fatalf("children should stay cached after collapse")
	}
}

func TestExpand_MultipleAtOnce(t *testing.T) {
	tr, _ := newTestTree()
	tr.Expand(context.Background(), "1")
	tr.Expand(context.Background(), "2")

	got := tr.Expanded()
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("expected both expanded, got %v", got)
	}
}

func TestExpand_EmptyCategoryRefetches(t *testing.T) {
	tr, l := newTestTree()
	tr.Expand(context.Background(), "3")
	tr.Collapse("3")
	tr.Expand(context.Background(), "3")
	if l.calls["3"] != 2 {
		t.Fatalf("a category with no cached children refetches on expand, got %d calls", l.calls["3"])
	}
}

func TestExpand_ErrorIsRecorded(t *testing.T) {
	tr, l := newTestTree()
	l.err = errors.New("down")
	if err := tr.Expand(context.Background(), "1"); err == nil {
		t.Fatalf("expected error")
	}
	n := tr.Nodes()[0]
	if n.Error != "down" || n.IsLoadingSubs {
		t.Fatalf("unexpected node %+v", n)
	}

	l.err = nil
	if err := tr.Expand(context.Background(), "1"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(tr.Nodes()[0].SubCategories) != 2 {
		t.Fatalf("retry should load children")
	}
}

func TestExpand_Unknown(t *testing.T) {
	tr, _ := newTestTree()
	if err := tr.Expand(context.Background(), "404"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	tr, l := newTestTree()
	open, _ := tr.Toggle(context.Background(), "1")
	if !open {
		t.Fatalf("first toggle should expand")
	}
	open, _ = tr.Toggle(context.Background(), "1")
	if open {
		t.Fatalf("second toggle should collapse")
	}
	if l.calls["1"] != 1 {
		t.Fatalf("unexpected fetch count %d", l.calls["1"])
	}
}

func TestInvalidate_ReloadsExpanded(t *testing.T) {
	tr, l := newTestTree()
	tr.Expand(context.Background(), "1")
	l.subs["1"] = append(l.subs["1"], model.SubCategory{ID: "13", CategoryID: "1"})

	if err := tr.Invalidate(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.calls["1"] != 2 || len(tr.Nodes()[0].SubCategories) != 3 {
		t.Fatalf("expected reload with 3 children, calls=%d", l.calls["1"])
	}

	tr.Expand(context.Background(), "2")
	tr.Collapse("2")
	tr.Invalidate(context.Background(), "2")
	if l.calls["2"] != 1 {
		t.Fatalf("collapsed category should not reload on invalidate")
	}
	if len(tr.Nodes()[1].SubCategories) != 0 {
		t.Fatalf("cache should be cleared")
	}
}

func TestSetCategories_KeepsCache(t *testing.T) {
	tr, l := newTestTree()
	tr.Expand(context.Background(), "1")
	tr.SetCategories([]model.Category{{ID: "1", NameEn: "Printing & Co"}})

	tr.Expand(context.Background(), "1")
	if l.calls["1"] != 1 {
		t.Fatalf("cache should survive a root refresh")
	}
	if n := tr.Nodes(); len(n) != 1 || n[0].Category.NameEn != "Printing & Co" {
		t.Fatalf("unexpected nodes %+v", n)
	}
}

func TestSelection_Schema(t *testing.T) {
	s := Selection{
		Checked:  map[string]bool{"note": true, "paperSize": true, "colorCount": false},
		Required: map[string]bool{"paperSize": true, "colorCount": true},
	}
	got, err := s.Schema()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unchecked fields must be dropped, got %+v", got)
	}
	if got[0].Key != "paperSize" || !got[0].Required || got[1].Key != "note" || got[1].Required {
		t.Fatalf("unexpected schema %+v", got)
	}
}

func TestSelection_UnknownKey(t *testing.T) {
	s := Selection{Checked: map[string]bool{"weight": true}}
	if _, err := s.Schema(); !errors.Is(err, ErrUnknownExtraField) {
		t.Fatalf("expected ErrUnknownExtraField, got %v", err)
	}
}

func TestSelectionOf_RoundTrip(t *testing.T) {
	fields := []model.ExtraField{
		{Key: "dimensions", Label: "Dimensions", Type: "text", Required: true},
		{Key: "legacy", Label: "Legacy", Type: "text"},
	}
	sel := SelectionOf(fields)
	if !sel.Checked["dimensions"] || !sel.Required["dimensions"] || sel.Checked["legacy"] {
		t.Fatalf("unexpected selection %+v", sel)
	}
	schema, _ := sel.Schema()
	if len(schema) != 1 || schema[0].Key != "dimensions" {
		t.Fatalf("unexpected schema %+v", schema)
	}
}

// gatedLoader blocks its first call until release is closed and answers
// every call with the children stored at the time it returns.
type gatedLoader struct {
	mu      sync.Mutex
	calls   int
	subs    []model.SubCategory
	started chan struct{}
	release chan struct{}
}

func (l *gatedLoader) load(ctx context.Context, id model.ID) ([]model.SubCategory, error) {
	l.mu.Lock()
	l.calls++
	first := l.calls == 1
	snapshot := append([]model.SubCategory{}, l.subs...)
	l.mu.Unlock()

	if first {
		close(l.started)
		<-l.release
	}
	return snapshot, nil
}

func TestInvalidate_DropsLoadInFlight(t *testing.T) {
	l := &gatedLoader{
		subs:    []model.SubCategory{{ID: "11", CategoryID: "1", NameEn: "Flyers"}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	tr := NewTree(l.load)
	tr.SetCategories([]model.Category{{ID: "1", NameEn: "Printing"}})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- tr.Expand(ctx, "1") }()
	<-l.started

	// a subcategory is created while the first load is still out
	l.mu.Lock()
	l.subs = append(l.subs, model.SubCategory{ID: "12", CategoryID: "1", NameEn: "Posters"})
	l.mu.Unlock()
	if err := tr.Invalidate(ctx, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	close(l.release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n := tr.Nodes()[0]
	if len(n.SubCategories) != 2 || n.IsLoadingSubs {
		t.Fatalf("expected the reloaded children to win, got %+v", n)
	}
}

func TestInvalidate_CollapsedDropsLoadInFlight(t *testing.T) {
	l := &gatedLoader{
		subs:    []model.SubCategory{{ID: "11", CategoryID: "1", NameEn: "Flyers"}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	tr := NewTree(l.load)
	tr.SetCategories([]model.Category{{ID: "1", NameEn: "Printing"}})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- tr.Expand(ctx, "1") }()
	<-l.started
	tr.Collapse("1")

	l.mu.Lock()
	l.subs = append(l.subs, model.SubCategory{ID: "12", CategoryID: "1", NameEn: "Posters"})
	l.mu.Unlock()
	tr.Invalidate(ctx, "1")

	close(l.release)
	<-done

	if n := tr.Nodes()[0]; len(n.SubCategories) != 0 || n.IsLoadingSubs {
		t.Fatalf("stale load must not fill the cache, got %+v", n)
	}

	tr.Expand(ctx, "1")
	if n := tr.Nodes()[0]; len(n.SubCategories) != 2 {
		t.Fatalf("re-expanding should load the new children, got %+v", n)
	}
	if l.calls != 2 {
		t.Fatalf("expected a second load, got %d", l.calls)
	}
}
