package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"marketplace-portal/apiclient"
	"marketplace-portal/category"
	"marketplace-portal/form"
	"marketplace-portal/helper"
	"marketplace-portal/middleware"
	"marketplace-portal/model"
	"marketplace-portal/repository"
	"marketplace-portal/resource"
	"marketplace-portal/rfq"
	"marketplace-portal/screen"
	"marketplace-portal/uploads"
	"marketplace-portal/workspace"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/spf13/cast"
)

// portal holds everything the HTTP handlers share.
type portal struct {
	api      *apiclient.Client
	db       *sql.DB
	validate *validator.Validate
	activity *activityLog

	categoryCRUD resource.CRUD[model.Category]
	adSubs       *resource.AdSubscriptionService
	pending      *resource.PendingSubscriptionService
	subcats      *resource.SubCategoryService
	rfq          *rfq.Service

	advertisements  *screen.Screen[model.Advertisement, model.AdvertisementForm]
	packages        *screen.Screen[model.AdPackage, model.AdPackageForm]
	adSubscriptions *screen.Screen[model.AdSubscription, struct{}]
	team            *screen.Screen[model.StaffMember, model.StaffForm]
	admins          *screen.Screen[model.AdminUser, model.AdminForm]
	pendingSubs     *screen.Screen[model.PendingSubscription, struct{}]
	categories      *screen.Screen[model.Category, model.CategoryForm]
	offers          *screen.Screen[model.SpecialOffer, model.SpecialOfferForm]
	offersRFQ       *screen.Screen[model.RFQOffer, model.QuoteForm]
	trees           *workspace.Registry[*category.Tree]
}

func newPortal(cfg helper.Config, api *apiclient.Client, db *sql.DB, keys uploads.Keys) *portal {
	p := &portal{
		api:          api,
		db:           db,
		validate:     form.NewValidator(),
		activity:     &activityLog{db: db},
		categoryCRUD: resource.Categories(api),
		adSubs:       resource.NewAdSubscriptionService(api),
		pending:      resource.NewPendingSubscriptionService(api),
		subcats:      resource.NewSubCategoryService(api),
		rfq:          rfq.NewService(api),
	}

	deps := screen.Deps{
		PageSize: cfg.PageSize,
		Validate: p.validate,
		Uploader: uploads.NewTracker(api, db, keys, cfg.UploadTTL),
		Recorder: p.activity,
	}
	p.advertisements = advertisementScreen(p, deps)
	p.packages = adPackageScreen(p, deps)
	p.adSubscriptions = adSubscriptionScreen(p, deps)
	p.team = teamScreen(p, deps)
	p.admins = adminScreen(p, deps)
	p.pendingSubs = pendingSubscriptionScreen(p, deps)
	p.categories = categoryScreen(p, deps)
	p.offers = specialOfferScreen(p, deps)
	p.offersRFQ = rfqScreen(p, deps)
	p.trees = workspace.NewRegistry("category-tree", func(model.Session) *category.Tree {
		return category.NewTree(p.subcats.List)
	})
	return p
}

func (p *portal) sweepers() []workspace.Sweeper {
	return []workspace.Sweeper{
		p.advertisements, p.packages, p.adSubscriptions, p.team, p.admins,
		p.pendingSubs, p.categories, p.offers, p.offersRFQ, p.trees,
	}
}

func setupRouter(p *portal) *mux.Router {
	r := mux.NewRouter()

	// login stays outside auth
	r.HandleFunc("/login", p.LoginHandler).Methods("POST")

	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.AuthMiddleware)

	api.HandleFunc("/session", SessionHandler).Methods("GET")
	api.HandleFunc("/logout", p.LogoutHandler).Methods("POST")
	api.HandleFunc("/activity", p.ActivityHandler).Methods("GET")
	api.HandleFunc("/uploads", p.UploadsHandler).Methods("GET")

	sub := screenRouter(api, model.ScreenAdvertisements)
	sub.HandleFunc("/subscription", p.ActiveSubscriptionHandler).Methods("GET")
	p.advertisements.Register(sub)

	p.packages.Register(screenRouter(api, model.ScreenAdPackages))

	sub = screenRouter(api, model.ScreenAdSubscriptions)
	sub.HandleFunc("/subscribe", p.SubscribeHandler).Methods("POST")
	sub.HandleFunc("/{id}/approve", p.ApproveAdSubscriptionHandler).Methods("POST")
	sub.HandleFunc("/{id}/reject", p.RejectAdSubscriptionHandler).Methods("POST")
	p.adSubscriptions.Register(sub)

	p.team.Register(screenRouter(api, model.ScreenTeam))
	p.admins.Register(screenRouter(api, model.ScreenAdmins))

	sub = screenRouter(api, model.ScreenPendingSubscriptions)
	sub.HandleFunc("/{id}/approve", p.ApprovePendingHandler).Methods("POST")
	sub.HandleFunc("/{id}/reject", p.RejectPendingHandler).Methods("POST")
	p.pendingSubs.Register(sub)

	sub = screenRouter(api, model.ScreenCategories)
	sub.HandleFunc("/tree", p.CategoryTreeHandler).Methods("GET")
	sub.HandleFunc("/extra-fields", ExtraFieldCatalogueHandler).Methods("GET")
	sub.HandleFunc("/{id}/toggle", p.ToggleCategoryHandler).Methods("POST")
	sub.HandleFunc("/{id}/extra-fields", p.SaveExtraFieldsHandler).Methods("PUT")
	sub.HandleFunc("/{id}/subcategories", p.CreateSubCategoryHandler).Methods("POST")
	sub.HandleFunc("/{id}/subcategories/{subId}", p.UpdateSubCategoryHandler).Methods("PUT")
	sub.HandleFunc("/{id}/subcategories/{subId}", p.DeleteSubCategoryHandler).Methods("DELETE")
	p.categories.Register(sub)

	p.offers.Register(screenRouter(api, model.ScreenSpecialOffers))

	sub = screenRouter(api, model.ScreenRFQ)
	sub.HandleFunc("/{id}/complete", p.CompleteOfferHandler).Methods("POST")
	p.offersRFQ.Register(sub)

	return r
}

// screenRouter returns the subrouter of one screen, gated by its id.
func screenRouter(api *mux.Router, name string) *mux.Router {
	sub := api.PathPrefix("/screens/" + name).Subrouter()
	sub.Use(middleware.RequireScreen(name))
	return sub
}

type loginResp struct {
	Token string `json:"token"`
}

// LoginHandler exchanges credentials for a marketplace token and returns
// the session it carries.
func (p *portal) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req model.LoginReq

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helper.WriteErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := form.Check(p.validate, req); err != nil {
		helper.WriteError(w, err)
		return
	}

	body, err := p.api.Post(r.Context(), "/api/auth/login", req)
	if err != nil {
		helper.WriteError(w, err)
		return
	}
	resp, err := apiclient.DecodeItem[loginResp](body)
	if err != nil || resp.Token == "" {
		helper.WriteErrorJSON(w, http.StatusBadGateway, "login response carried no token")
		return
	}

	s, err := helper.ParseSessionToken(resp.Token)
	if err != nil {
		log.Println("[login] marketplace token rejected:", err)
		helper.WriteErrorJSON(w, http.StatusBadGateway, "login response carried an invalid token")
		return
	}

	var data = struct {
		Token   string        `json:"token"`
		Session model.Session `json:"session"`
		Screens []string      `json:"screens"`
	}{
		Token:   resp.Token,
		Session: s,
		Screens: s.VisibleScreens(),
	}

	helper.WriteJSON(w, http.StatusOK, data)
}

func SessionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	helper.WriteJSON(w, http.StatusOK, map[string]any{
		"session": s,
		"screens": s.VisibleScreens(),
	})
}

// LogoutHandler forgets every list, form and tree kept for the session.
func (p *portal) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	p.advertisements.Drop(s)
	p.packages.Drop(s)
	p.adSubscriptions.Drop(s)
	p.team.Drop(s)
	p.admins.Drop(s)
	p.pendingSubs.Drop(s)
	p.categories.Drop(s)
	p.offers.Drop(s)
	p.offersRFQ.Drop(s)
	p.trees.Drop(s)
	w.WriteHeader(http.StatusNoContent)
}

// ActivityHandler lists recent mutations. Admins may look at anyone with
// ?user=; everybody else sees their own.
func (p *portal) ActivityHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	actor := s.UserInfo.ID.String()
	if s.IsAdmin() {
		actor = r.URL.Query().Get("user")
	}
	limit := min(cast.ToInt(r.URL.Query().Get("limit")), 200)
	if limit <= 0 {
		limit = 50
	}

	activities, err := repository.ListActivity(p.db, actor, limit)
	if err != nil {
		helper.WriteErrorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	helper.WriteJSON(w, http.StatusOK, activities)
}

// UploadsHandler lists uploads by status, orphaned by default.
func (p *portal) UploadsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	if !s.IsAdmin() {
		helper.WriteError(w, resource.ErrAdminOnly)
		return
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "":
		status = model.UploadOrphaned
	case model.UploadPending, model.UploadAttached, model.UploadOrphaned:
	default:
		helper.WriteErrorJSON(w, http.StatusBadRequest, "unknown upload status")
		return
	}

	list, err := repository.ListUploadsByStatus(p.db, status, 100)
	if err != nil {
		helper.WriteErrorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	helper.WriteJSON(w, http.StatusOK, list)
}

// activityLog records mutations in postgres. Failures are logged and never
// fail the request that caused them.
type activityLog struct {
	db *sql.DB
}

func (a *activityLog) Record(ctx context.Context, s model.Session, screen, action string, id model.ID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	_, err := repository.InsertActivity(ctx, a.db, model.Activity{
		ActorID:  s.UserInfo.ID.String(),
		Screen:   screen,
		Action:   action,
		EntityID: id.String(),
	})
	if err != nil {
		log.Printf("[activity] failed to record %s %s by user %s: %v", screen, action, s.UserInfo.ID, err)
	}
}

func currentSession(w http.ResponseWriter, r *http.Request) (model.Session, bool) {
	s, err := helper.SessionFromContext(r.Context())
	if err != nil {
		helper.WriteErrorJSON(w, http.StatusUnauthorized, err.Error())
		return s, false
	}
	return s, true
}
