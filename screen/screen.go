// Package screen serves one paginated resource page: its list, footer,
// modal form and delete action, with state kept per signed-in user.
package screen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"marketplace-portal/form"
	"marketplace-portal/helper"
	"marketplace-portal/model"
	"marketplace-portal/paging"
	"marketplace-portal/resource"
	"marketplace-portal/workspace"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/spf13/cast"
)

// Recorder receives every successful mutation made through a screen.
type Recorder interface {
	Record(ctx context.Context, s model.Session, screen, action string, id model.ID)
}

// Config is everything that differs between two screens. Only Name and ID
// are mandatory; the list and mutations fall back to CRUD.
type Config[T any, P any] struct {
	Name  string
	Label string
	CRUD  resource.CRUD[T]
	ID    func(T) model.ID

	// form
	Defaults    func() form.Fields
	Seed        func(T) form.Fields
	Numeric     []string
	Attachments []string
	Build       func(s model.Session, f form.Fields) (P, error)

	// Filters are the query parameters forwarded to the list endpoint.
	Filters []string
	Card    func(T) resource.Card
	// Actions describes the per-item buttons, keyed by item id in the view.
	Actions func(T) any

	List         func(ctx context.Context, s model.Session, q paging.Query) (model.Page[T], error)
	Create       func(ctx context.Context, s model.Session, p P) error
	Update       func(ctx context.Context, s model.Session, id model.ID, p P) error
	BeforeDelete func(item T) error
	Delete       func(ctx context.Context, s model.Session, item T) error
}

// Deps are shared by all screens.
type Deps struct {
	PageSize int
	Validate *validator.Validate
	Uploader form.Uploader
	Recorder Recorder
}

type view[T any, P any] struct {
	list *paging.Controller[T]
	form *form.Controller[T, P]
}

type Screen[T any, P any] struct {
	cfg   Config[T, P]
	deps  Deps
	views *workspace.Registry[*view[T, P]]
}

func New[T any, P any](cfg Config[T, P], deps Deps) *Screen[T, P] {
	if cfg.Label == "" {
		cfg.Label = cfg.Name
	}
	if cfg.List == nil {
		cfg.List = cfg.CRUD.List
	}
	if cfg.Create == nil {
		cfg.Create = func(ctx context.Context, s model.Session, p P) error { return cfg.CRUD.Create(ctx, s, p) }
	}
	if cfg.Update == nil {
		cfg.Update = func(ctx context.Context, _ model.Session, id model.ID, p P) error { return cfg.CRUD.Update(ctx, id, p) }
	}
	if cfg.Delete == nil {
		cfg.Delete = func(ctx context.Context, _ model.Session, item T) error { return cfg.CRUD.Delete(ctx, cfg.ID(item)) }
	}
	if cfg.Seed == nil {
		cfg.Seed = func(T) form.Fields { return form.Fields{} }
	}
	if deps.Validate == nil {
		deps.Validate = form.NewValidator()
	}

	sc := &Screen[T, P]{cfg: cfg, deps: deps}
	sc.views = workspace.NewRegistry(cfg.Name, sc.newView)
	return sc
}

func (sc *Screen[T, P]) Name() string  { return sc.cfg.Name }
func (sc *Screen[T, P]) Label() string { return sc.cfg.Label }

// ReadOnly reports whether the screen has no form.
func (sc *Screen[T, P]) ReadOnly() bool { return sc.cfg.Build == nil }

func (sc *Screen[T, P]) newView(s model.Session) *view[T, P] {
	v := &view[T, P]{}
	v.list = paging.NewController(sc.cfg.Name, sc.deps.PageSize, func(ctx context.Context, q paging.Query) (model.Page[T], error) {
		return sc.cfg.List(ctx, s, q)
	})
	v.form = form.NewController(form.Config[T, P]{
		Name:        sc.cfg.Name,
		Defaults:    sc.cfg.Defaults,
		Seed:        sc.cfg.Seed,
		Numeric:     sc.cfg.Numeric,
		Attachments: sc.cfg.Attachments,
		ID:          sc.cfg.ID,
		Build: func(f form.Fields) (P, error) {
			if sc.cfg.Build == nil {
				var zero P
				return zero, resource.ErrReadOnly
			}
			return sc.cfg.Build(s, f)
		},
		Create: func(ctx context.Context, p P) error {
			if err := sc.cfg.Create(ctx, s, p); err != nil {
				return err
			}
			sc.record(ctx, s, "create", "")
			return nil
		},
		Update: func(ctx context.Context, id model.ID, p P) error {
			if err := sc.cfg.Update(ctx, s, id, p); err != nil {
				return err
			}
			sc.record(ctx, s, "update", id)
			return nil
		},
		OnSaved: v.list.Refetch,
	}, sc.deps.Validate, sc.deps.Uploader)
	return v
}

func (sc *Screen[T, P]) record(ctx context.Context, s model.Session, action string, id model.ID) {
	if sc.deps.Recorder != nil {
		sc.deps.Recorder.Record(ctx, s, sc.cfg.Name, action, id)
	}
}

// Register mounts the screen's routes on r, which is expected to be a
// subrouter for the screen's path prefix.
func (sc *Screen[T, P]) Register(r *mux.Router) {
	r.HandleFunc("", sc.handleList).Methods(http.MethodGet)
	r.HandleFunc("/", sc.handleList).Methods(http.MethodGet)
	r.HandleFunc("/form/new", sc.handleOpenCreate).Methods(http.MethodGet)
	r.HandleFunc("/form/fields", sc.handleSetFields).Methods(http.MethodPut)
	r.HandleFunc("/form", sc.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/form", sc.handleCloseForm).Methods(http.MethodDelete)
	r.HandleFunc("/{id}/form", sc.handleOpenEdit).Methods(http.MethodGet)
	r.HandleFunc("/{id}", sc.handleDelete).Methods(http.MethodDelete)
}

// ListView is what every list request returns.
type ListView[T any] struct {
	Screen  string           `json:"screen"`
	Items   []T              `json:"items"`
	Cards   []resource.Card  `json:"cards,omitempty"`
	Actions map[model.ID]any `json:"actions,omitempty"`
	Footer  paging.Footer    `json:"footer"`
	Filter  url.Values       `json:"filter,omitempty"`
	Error   string           `json:"error,omitempty"`
	Retry   bool             `json:"retry,omitempty"`
	Form    form.State       `json:"form"`
	Toast   *helper.Toast    `json:"toast,omitempty"`
}

// View builds the current list view of the session's workspace.
func (sc *Screen[T, P]) View(s model.Session, toast *helper.Toast) ListView[T] {
	v := sc.views.Get(s)
	st := v.list.Snapshot()
	out := ListView[T]{
		Screen: sc.cfg.Name,
		Items:  st.Items,
		Footer: paging.FooterFor(st),
		Filter: st.Filter,
		Error:  st.Error,
		Retry:  st.Retry,
		Form:   v.form.State(),
		Toast:  toast,
	}
	if sc.cfg.Card != nil {
		out.Cards = make([]resource.Card, 0, len(st.Items))
		for _, it := range st.Items {
			out.Cards = append(out.Cards, sc.cfg.Card(it))
		}
	}
	if sc.cfg.Actions != nil {
		out.Actions = make(map[model.ID]any, len(st.Items))
		for _, it := range st.Items {
			out.Actions[sc.cfg.ID(it)] = sc.cfg.Actions(it)
		}
	}
	return out
}

// Refresh refetches the session's current page, e.g. after an action
// outside the form.
func (sc *Screen[T, P]) Refresh(ctx context.Context, s model.Session) error {
	return sc.views.Get(s).list.Refetch(ctx)
}

// Item looks id up on the session's current page.
func (sc *Screen[T, P]) Item(s model.Session, id model.ID) (T, error) {
	for _, it := range sc.Items(s) {
		if sc.cfg.ID(it) == id {
			return it, nil
		}
	}
	var zero T
	return zero, resource.ErrNotFound
}

// Items returns the session's current page.
func (sc *Screen[T, P]) Items(s model.Session) []T {
	return sc.views.Get(s).list.Snapshot().Items
}

// Drop forgets the session's list and form.
func (sc *Screen[T, P]) Drop(s model.Session) {
	sc.views.Drop(s)
}

func (sc *Screen[T, P]) Sweep(maxIdle time.Duration) int {
	return sc.views.Sweep(maxIdle)
}

// Load applies the page and filter query parameters and fetches once.
// Revisiting the list always refetches.
func (sc *Screen[T, P]) Load(ctx context.Context, s model.Session, q url.Values) error {
	list := sc.views.Get(s).list

	page := -1
	if p := q.Get("page"); p != "" {
		n, err := cast.ToIntE(p)
		if err != nil {
			return &form.ValidationError{Fields: map[string]string{"page": "must be a number"}}
		}
		page = n
	}

	if !list.Snapshot().Loaded {
		return sc.firstLoad(ctx, list, page, q)
	}

	fetched := false
	for _, key := range sc.cfg.Filters {
		if !q.Has(key) || list.Snapshot().Filter.Get(key) == q.Get(key) {
			continue
		}
		if err := list.SetFilter(ctx, key, q.Get(key)); err != nil {
			return err
		}
		fetched = true
	}

	if page >= 0 && page != list.Snapshot().PageIndex {
		if moved, err := list.SetPage(ctx, page); moved {
			return err
		}
	}
	if fetched {
		return nil
	}
	return list.Refetch(ctx)
}

// firstLoad fetches the requested page and filters in one request. A page
// past the end falls back to the first page.
func (sc *Screen[T, P]) firstLoad(ctx context.Context, list *paging.Controller[T], page int, q url.Values) error {
	filter := url.Values{}
	for _, key := range sc.cfg.Filters {
		if q.Has(key) {
			filter.Set(key, q.Get(key))
		}
	}
	list.Position(page, filter)
	if err := list.Refetch(ctx); err != nil {
		return err
	}

	if st := list.Snapshot(); st.PageIndex > 0 && st.PageIndex >= st.TotalPages {
		list.Position(0, nil)
		return list.Refetch(ctx)
	}
	return nil
}

func (sc *Screen[T, P]) handleList(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	err := sc.Load(r.Context(), s, r.URL.Query())
	if err != nil && paging.IsStale(err) {
		helper.WriteError(w, err)
		return
	}
	status := http.StatusOK
	var toast *helper.Toast
	if err != nil {
		status = helper.StatusOf(err)
		toast = helper.ErrorToast(err)
	}
	helper.WriteJSON(w, status, sc.View(s, toast))
}

func (sc *Screen[T, P]) handleOpenCreate(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	if sc.ReadOnly() {
		helper.WriteError(w, resource.ErrReadOnly)
		return
	}
	f := sc.views.Get(s).form
	f.OpenCreate()
	helper.WriteJSON(w, http.StatusOK, f.State())
}

func (sc *Screen[T, P]) handleOpenEdit(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	if sc.ReadOnly() {
		helper.WriteError(w, resource.ErrReadOnly)
		return
	}
	item, err := sc.Item(s, model.ID(mux.Vars(r)["id"]))
	if err != nil {
		helper.WriteError(w, err)
		return
	}
	f := sc.views.Get(s).form
	f.OpenEdit(item)
	helper.WriteJSON(w, http.StatusOK, f.State())
}

func (sc *Screen[T, P]) handleSetFields(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	var values form.Fields
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		helper.WriteErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	f := sc.views.Get(s).form
	if err := f.Set(values); err != nil {
		helper.WriteError(w, err)
		return
	}
	helper.WriteJSON(w, http.StatusOK, f.State())
}

func (sc *Screen[T, P]) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	f := sc.views.Get(s).form
	mode := f.State().Mode
	if err := f.Submit(r.Context()); err != nil {
		slog.Warn("form submit failed", "screen", sc.cfg.Name, "user", s.UserInfo.ID, "err", err)
		helper.WriteJSON(w, helper.StatusOf(err), sc.View(s, helper.ErrorToast(err)))
		return
	}
	verb := "created"
	if mode == form.ModeEdit {
		verb = "updated"
	}
	helper.WriteJSON(w, http.StatusOK, sc.View(s, helper.SuccessToast(fmt.Sprintf("%s %s", sc.cfg.Label, verb))))
}

func (sc *Screen[T, P]) handleCloseForm(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	f := sc.views.Get(s).form
	f.Close()
	helper.WriteJSON(w, http.StatusOK, f.State())
}

func (sc *Screen[T, P]) handleDelete(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := model.ID(mux.Vars(r)["id"])
	item, err := sc.Item(s, id)
	if err == nil && sc.cfg.BeforeDelete != nil {
		err = sc.cfg.BeforeDelete(item)
	}
	if err == nil {
		err = sc.cfg.Delete(ctx, s, item)
	}
	if err != nil {
		helper.WriteJSON(w, helper.StatusOf(err), sc.View(s, helper.ErrorToast(err)))
		return
	}
	sc.record(ctx, s, "delete", id)

	if err := sc.views.Get(s).list.AfterDelete(ctx); err != nil && !paging.IsStale(err) {
		slog.Error("refetch after delete failed", "screen", sc.cfg.Name, "err", err)
	}
	helper.WriteJSON(w, http.StatusOK, sc.View(s, helper.SuccessToast(sc.cfg.Label+" deleted")))
}

func session(w http.ResponseWriter, r *http.Request) (model.Session, bool) {
	s, err := helper.SessionFromContext(r.Context())
	if err != nil {
		helper.WriteErrorJSON(w, http.StatusUnauthorized, err.Error())
		return s, false
	}
	return s, true
}
