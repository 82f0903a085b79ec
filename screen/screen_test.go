package screen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"marketplace-portal/apiclient"
	"marketplace-portal/form"
	"marketplace-portal/helper"
	"marketplace-portal/model"
	"marketplace-portal/resource"

	"github.com/gorilla/mux"
)

// adminStore is a paginating upstream for /api/admins.
type adminStore struct {
	mu      sync.Mutex
	admins  []model.AdminUser
	gets    int
	posts   int
	deletes int
	nextID  int
}

func (a *adminStore) handler() http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("GET /api/admins", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.gets++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		from := min(page*size, len(a.admins))
		to := min(from+size, len(a.admins))
		pages := (len(a.admins) + size - 1) / size
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content":       append([]model.AdminUser{}, a.admins[from:to]...),
			"totalElements": len(a.admins),
			"totalPages":    pages,
			"size":          size,
			"number":        page,
		})
	})
	m.HandleFunc("POST /api/admins", func(w http.ResponseWriter, r *http.Request) {
		var f model.AdminForm
		json.NewDecoder(r.Body).Decode(&f)
		a.mu.Lock()
		defer a.mu.Unlock()
		a.posts++
		a.nextID++
		a.admins = append(a.admins, model.AdminUser{ID: model.ID("n" + strconv.Itoa(a.nextID)), Name: f.Name, Email: f.Email, Role: f.Role})
		w.WriteHeader(http.StatusCreated)
	})
	m.HandleFunc("DELETE /api/admins/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.deletes++
		for i, ad := range a.admins {
			if ad.ID.String() == r.PathValue("id") {
				a.admins = append(a.admins[:i], a.admins[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return m
}

type memRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (m *memRecorder) Record(_ context.Context, _ model.Session, screen, action string, id model.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, screen+":"+action+":"+id.String())
}

var admin = model.Session{Role: model.RoleSuperAdmin, UserInfo: model.UserInfo{ID: "1"}}

func newAdminScreen(t *testing.T, store *adminStore, rec Recorder) http.Handler {
	t.Helper()
	up := httptest.NewServer(store.handler())
	t.Cleanup(up.Close)

	sc := New(Config[model.AdminUser, model.AdminForm]{
		Name:  model.ScreenAdmins,
		Label: "Admin",
		CRUD:  resource.Admins(apiclient.New(up.URL)),
		ID:    func(a model.AdminUser) model.ID { return a.ID },
		Defaults: func() form.Fields {
			return form.Fields{"role": model.RoleAdmin}
		},
		Seed: func(a model.AdminUser) form.Fields {
			return form.Fields{"name": a.Name, "email": a.Email, "phone": a.Phone, "role": a.Role}
		},
		Build: func(_ model.Session, f form.Fields) (model.AdminForm, error) {
			return model.AdminForm{
				Name:  f.String("name"),
				Email: f.String("email"),
				Phone: f.String("phone"),
				Role:  f.String("role"),
			}, nil
		},
		BeforeDelete: resource.GuardAdminDelete,
	}, Deps{PageSize: 2, Recorder: rec})

	r := mux.NewRouter()
	sc.Register(r.PathPrefix("/screens/admins").Subrouter())
	return r
}

func do(t *testing.T, h http.Handler, s *model.Session, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if s != nil {
		req = req.WithContext(helper.WithSession(req.Context(), *s))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) ListView[model.AdminUser] {
	t.Helper()
	var v ListView[model.AdminUser]
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func seedAdmins(n int) []model.AdminUser {
	out := make([]model.AdminUser, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.AdminUser{ID: model.ID(strconv.Itoa(i)), Name: "admin " + strconv.Itoa(i), Role: model.RoleAdmin})
	}
	return out
}

func TestScreen_RequiresSession(t *testing.T) {
	h := newAdminScreen(t, &adminStore{}, nil)
	if rr := do(t, h, nil, http.MethodGet, "/screens/admins", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestScreen_ListAndPageNavigation(t *testing.T) {
	h := newAdminScreen(t, &adminStore{admins: seedAdmins(5)}, nil)

	rr := do(t, h, &admin, http.MethodGet, "/screens/admins", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	v := decodeView(t, rr)
	if len(v.Items) != 2 || !v.Footer.Visible || v.Footer.TotalPages != 3 || v.Footer.From != 1 || v.Footer.To != 2 {
		t.Fatalf("unexpected first page %+v", v.Footer)
	}

	v = decodeView(t, do(t, h, &admin, http.MethodGet, "/screens/admins?page=2", ""))
	if v.Footer.CurrentPage != 2 || len(v.Items) != 1 || v.Items[0].ID != "5" {
		t.Fatalf("unexpected last page %+v items=%+v", v.Footer, v.Items)
	}

	// out of range pages leave the list where it was
	v = decodeView(t, do(t, h, &admin, http.MethodGet, "/screens/admins?page=9", ""))
	if v.Footer.CurrentPage != 2 {
		t.Fatalf("out of range page should be ignored, got %d", v.Footer.CurrentPage)
	}

	if rr := do(t, h, &admin, http.MethodGet, "/screens/admins?page=x", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("non numeric page should be 422, got %d", rr.Code)
	}
}

func TestScreen_CreateThroughForm(t *testing.T) {
	store := &adminStore{}
	rec := &memRecorder{}
	h := newAdminScreen(t, store, rec)
	do(t, h, &admin, http.MethodGet, "/screens/admins", "")

	if rr := do(t, h, &admin, http.MethodGet, "/screens/admins/form/new", ""); rr.Code != http.StatusOK {
		t.Fatalf("open form: %d", rr.Code)
	}
	do(t, h, &admin, http.MethodPut, "/screens/admins/form/fields", `{"name":"Mona","phone":"0100"}`)

	// email is missing: nothing is sent
	rr := do(t, h, &admin, http.MethodPost, "/screens/admins/form", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	v := decodeView(t, rr)
	if !v.Form.Open || v.Form.FieldErrors["email"] == "" {
		t.Fatalf("form should stay open with an email error, got %+v", v.Form)
	}
	if store.posts != 0 {
		t.Fatalf("invalid form must not reach the API")
	}

	do(t, h, &admin, http.MethodPut, "/screens/admins/form/fields", `{"email":"mona@example.com"}`)
	rr = do(t, h, &admin, http.MethodPost, "/screens/admins/form", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rr.Code, rr.Body.String())
	}
	v = decodeView(t, rr)
	if store.posts != 1 {
		t.Fatalf("expected one POST, got %d", store.posts)
	}
	if v.Form.Open {
		t.Fatalf("form should close after a successful save")
	}
	if len(v.Items) != 1 || v.Items[0].Name != "Mona" {
		t.Fatalf("list should be refetched with the new admin, got %+v", v.Items)
	}
	if v.Toast == nil || v.Toast.Kind != "success" || v.Toast.Message != "Admin created" || v.Toast.DismissMs != helper.ToastDuration {
		t.Fatalf("unexpected toast %+v", v.Toast)
	}
	if len(rec.actions) != 1 || rec.actions[0] != "admins:create:" {
		t.Fatalf("unexpected recorded actions %v", rec.actions)
	}
}

func TestScreen_DeleteLastItemStepsBack(t *testing.T) {
	store := &adminStore{admins: seedAdmins(3)}
	rec := &memRecorder{}
	h := newAdminScreen(t, store, rec)
	do(t, h, &admin, http.MethodGet, "/screens/admins", "")
	do(t, h, &admin, http.MethodGet, "/screens/admins?page=1", "")

	rr := do(t, h, &admin, http.MethodDelete, "/screens/admins/3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rr.Code, rr.Body.String())
	}
	v := decodeView(t, rr)
	if v.Footer.CurrentPage != 0 || v.Footer.TotalPages != 1 || len(v.Items) != 2 {
		t.Fatalf("expected to land on the first page, got %+v", v.Footer)
	}
	if rec.actions[0] != "admins:delete:3" {
		t.Fatalf("unexpected recorded actions %v", rec.actions)
	}
}

func TestScreen_DeleteSuperAdminRefused(t *testing.T) {
	store := &adminStore{admins: []model.AdminUser{{ID: "1", Name: "root", Role: model.RoleSuperAdmin}}}
	h := newAdminScreen(t, store, nil)
	do(t, h, &admin, http.MethodGet, "/screens/admins", "")

	rr := do(t, h, &admin, http.MethodDelete, "/screens/admins/1", "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if store.deletes != 0 {
		t.Fatalf("protected delete must not reach the API")
	}

	if rr := do(t, h, &admin, http.MethodDelete, "/screens/admins/404", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown id should be 404, got %d", rr.Code)
	}
}

func TestScreen_EditSeedsForm(t *testing.T) {
	h := newAdminScreen(t, &adminStore{admins: seedAdmins(1)}, nil)
	do(t, h, &admin, http.MethodGet, "/screens/admins", "")

	rr := do(t, h, &admin, http.MethodGet, "/screens/admins/1/form", "")
	var st form.State
	json.NewDecoder(rr.Body).Decode(&st)
	if st.Mode != form.ModeEdit || st.EditingID != "1" || st.Fields.String("name") != "admin 1" {
		t.Fatalf("unexpected edit state %+v", st)
	}

	rr = do(t, h, &admin, http.MethodDelete, "/screens/admins/form", "")
	json.NewDecoder(rr.Body).Decode(&st)
	if st.Open {
		t.Fatalf("form should be closed")
	}
}

func TestScreen_UpstreamFailureKeepsItems(t *testing.T) {
	store := &adminStore{admins: seedAdmins(2)}
	up := httptest.NewServer(store.handler())
	sc := New(Config[model.AdminUser, model.AdminForm]{
		Name: model.ScreenAdmins,
		CRUD: resource.Admins(apiclient.New(up.URL)),
		ID:   func(a model.AdminUser) model.ID { return a.ID },
	}, Deps{PageSize: 10})
	r := mux.NewRouter()
	sc.Register(r.PathPrefix("/screens/admins").Subrouter())

	do(t, r, &admin, http.MethodGet, "/screens/admins", "")
	up.Close()

	rr := do(t, r, &admin, http.MethodGet, "/screens/admins", "")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	v := decodeView(t, rr)
	if len(v.Items) != 2 || !v.Retry || v.Error == "" {
		t.Fatalf("failed refetch should keep items and offer retry, got %+v", v)
	}
}

func TestScreen_DeepLinkFetchesOnce(t *testing.T) {
	store := &adminStore{admins: seedAdmins(5)}
	h := newAdminScreen(t, store, nil)

	v := decodeView(t, do(t, h, &admin, http.MethodGet, "/screens/admins?page=2", ""))
	if v.Footer.CurrentPage != 2 || len(v.Items) != 1 || v.Items[0].ID != "5" {
		t.Fatalf("unexpected page %+v items=%+v", v.Footer, v.Items)
	}
	if store.gets != 1 {
		t.Fatalf("expected one upstream fetch, got %d", store.gets)
	}
}

func TestScreen_DeepLinkPastEndFallsBack(t *testing.T) {
	store := &adminStore{admins: seedAdmins(3)}
	h := newAdminScreen(t, store, nil)

	v := decodeView(t, do(t, h, &admin, http.MethodGet, "/screens/admins?page=7", ""))
	if v.Footer.CurrentPage != 0 || len(v.Items) != 2 {
		t.Fatalf("expected the first page, got %+v", v.Footer)
	}
}

func TestScreen_ReadOnlyRefusesForm(t *testing.T) {
	store := &adminStore{admins: seedAdmins(1)}
	up := httptest.NewServer(store.handler())
	t.Cleanup(up.Close)

	sc := New(Config[model.AdminUser, struct{}]{
		Name: model.ScreenAdmins,
		CRUD: resource.Admins(apiclient.New(up.URL)),
		ID:   func(a model.AdminUser) model.ID { return a.ID },
	}, Deps{PageSize: 2})
	r := mux.NewRouter()
	sc.Register(r.PathPrefix("/screens/admins").Subrouter())

	do(t, r, &admin, http.MethodGet, "/screens/admins", "")
	if rr := do(t, r, &admin, http.MethodGet, "/screens/admins/form/new", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for create, got %d", rr.Code)
	}
	if rr := do(t, r, &admin, http.MethodGet, "/screens/admins/1/form", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for edit, got %d", rr.Code)
	}
	if sc.View(admin, nil).Form.Open {
		t.Fatalf("form must stay closed")
	}
}
