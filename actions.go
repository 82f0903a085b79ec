package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"marketplace-portal/category"
	"marketplace-portal/form"
	"marketplace-portal/helper"
	"marketplace-portal/model"
	"marketplace-portal/paging"
	"marketplace-portal/resource"
	"marketplace-portal/screen"

	"github.com/gorilla/mux"
)

// runAction performs a one-click action on a listed item, records it,
// refetches the list and answers with the fresh view.
func runAction[T, P any](w http.ResponseWriter, r *http.Request, sc *screen.Screen[T, P], rec screen.Recorder, action, done string, do func(ctx context.Context, s model.Session, id model.ID) error) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	id := model.ID(mux.Vars(r)["id"])

	if err := do(ctx, s, id); err != nil {
		slog.Warn("action failed", "screen", sc.Name(), "action", action, "id", id, "err", err)
		helper.WriteJSON(w, helper.StatusOf(err), sc.View(s, helper.ErrorToast(err)))
		return
	}
	rec.Record(ctx, s, sc.Name(), action, id)

	if err := sc.Refresh(ctx, s); err != nil && !paging.IsStale(err) {
		slog.Error("refetch after action failed", "screen", sc.Name(), "err", err)
	}
	helper.WriteJSON(w, http.StatusOK, sc.View(s, helper.SuccessToast(done)))
}

func adminOnly(s model.Session) error {
	if !s.IsAdmin() {
		return resource.ErrAdminOnly
	}
	return nil
}

func (p *portal) ApproveAdSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	runAction(w, r, p.adSubscriptions, p.activity, "approve", "Subscription approved",
		func(ctx context.Context, s model.Session, id model.ID) error {
			if err := adminOnly(s); err != nil {
				return err
			}
			return p.adSubs.Approve(ctx, id)
		})
}

func (p *portal) RejectAdSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	runAction(w, r, p.adSubscriptions, p.activity, "reject", "Subscription rejected",
		func(ctx context.Context, s model.Session, id model.ID) error {
			if err := adminOnly(s); err != nil {
				return err
			}
			return p.adSubs.Reject(ctx, id)
		})
}

// SubscribeHandler requests an ad package for the session's supplier.
func (p *portal) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PackageID model.ID `json:"packageId" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helper.WriteErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	runAction(w, r, p.adSubscriptions, p.activity, "subscribe", "Subscription requested",
		func(ctx context.Context, s model.Session, _ model.ID) error {
			if err := form.Check(p.validate, req); err != nil {
				return err
			}
			return p.adSubs.Subscribe(ctx, s.SupplierID(), req.PackageID)
		})
}

// ActiveSubscriptionHandler tells the advertisement page whether the
// supplier may post. The upstream call ends with the request.
func (p *portal) ActiveSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	if s.IsAdmin() {
		helper.WriteJSON(w, http.StatusOK, map[string]any{"canPost": true})
		return
	}

	sub, err := p.adSubs.ActiveFor(r.Context(), s.SupplierID())
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		helper.WriteError(w, err)
		return
	}
	helper.WriteJSON(w, http.StatusOK, map[string]any{
		"canPost":      sub != nil,
		"subscription": sub,
	})
}

func (p *portal) ApprovePendingHandler(w http.ResponseWriter, r *http.Request) {
	runAction(w, r, p.pendingSubs, p.activity, "approve", "Subscription approved",
		func(ctx context.Context, s model.Session, id model.ID) error {
			if err := adminOnly(s); err != nil {
				return err
			}
			return p.pending.Approve(ctx, id)
		})
}

func (p *portal) RejectPendingHandler(w http.ResponseWriter, r *http.Request) {
	// no body is the same as a blank reason
	var req model.RejectForm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		helper.WriteErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	runAction(w, r, p.pendingSubs, p.activity, "reject", "Subscription rejected",
		func(ctx context.Context, s model.Session, id model.ID) error {
			if err := adminOnly(s); err != nil {
				return err
			}
			return p.pending.Reject(ctx, id, req.Reason)
		})
}

func (p *portal) CompleteOfferHandler(w http.ResponseWriter, r *http.Request) {
	runAction(w, r, p.offersRFQ, p.activity, "complete", "Offer completed",
		func(ctx context.Context, s model.Session, id model.ID) error {
			offer, err := p.offersRFQ.Item(s, id)
			if err != nil {
				return err
			}
			return p.rfq.Complete(ctx, offer)
		})
}

type treeView struct {
	Nodes    []category.Node `json:"nodes"`
	Expanded []model.ID      `json:"expanded"`
	Error    string          `json:"error,omitempty"`
	Toast    *helper.Toast   `json:"toast,omitempty"`
}

func (p *portal) writeTree(w http.ResponseWriter, s model.Session, err error, toast *helper.Toast) {
	t := p.trees.Get(s)
	v := treeView{Nodes: t.Nodes(), Expanded: t.Expanded(), Toast: toast}
	status := http.StatusOK
	if err != nil {
		status = helper.StatusOf(err)
		v.Error = err.Error()
		if toast == nil {
			v.Toast = helper.ErrorToast(err)
		}
	}
	helper.WriteJSON(w, status, v)
}

// syncTree copies the category list into the session's tree.
func (p *portal) syncTree(s model.Session) *category.Tree {
	t := p.trees.Get(s)
	t.SetCategories(p.categories.Items(s))
	return t
}

// CategoryTreeHandler loads the categories and returns the tree with the
// children cached so far.
func (p *portal) CategoryTreeHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	err := p.categories.Load(r.Context(), s, r.URL.Query())
	if paging.IsStale(err) {
		helper.WriteError(w, err)
		return
	}
	p.syncTree(s)
	p.writeTree(w, s, err, nil)
}

func (p *portal) ToggleCategoryHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id := model.ID(mux.Vars(r)["id"])
	_, err := p.syncTree(s).Toggle(r.Context(), id)
	p.writeTree(w, s, err, nil)
}

func ExtraFieldCatalogueHandler(w http.ResponseWriter, r *http.Request) {
	helper.WriteJSON(w, http.StatusOK, category.OptionalFields)
}

// SaveExtraFieldsHandler rebuilds a category's extra-field schema from the
// checkbox selection in the body.
func (p *portal) SaveExtraFieldsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var sel category.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		helper.WriteErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	id := model.ID(mux.Vars(r)["id"])
	err := p.saveExtraFields(ctx, s, id, sel)
	if err != nil {
		p.writeTree(w, s, err, nil)
		return
	}
	p.activity.Record(ctx, s, model.ScreenCategories, "extra-fields", id)

	if err := p.categories.Refresh(ctx, s); err != nil && !paging.IsStale(err) {
		slog.Error("refetch after extra-field save failed", "err", err)
	}
	p.syncTree(s)
	p.writeTree(w, s, nil, helper.SuccessToast("Extra fields saved"))
}

func (p *portal) saveExtraFields(ctx context.Context, s model.Session, id model.ID, sel category.Selection) error {
	c, err := p.categories.Item(s, id)
	if err != nil {
		return category.ErrUnknownCategory
	}
	schema, err := sel.Schema()
	if err != nil {
		return err
	}
	return p.categoryCRUD.Update(ctx, id, model.CategoryForm{
		NameEn:      c.NameEn,
		NameAr:      c.NameAr,
		ExtraFields: schema,
	})
}

func (p *portal) CreateSubCategoryHandler(w http.ResponseWriter, r *http.Request) {
	p.mutateSubCategory(w, r, "create-subcategory", "Subcategory created",
		func(ctx context.Context, catID model.ID, f model.SubCategoryForm) error {
			return p.subcats.Create(ctx, f)
		})
}

func (p *portal) UpdateSubCategoryHandler(w http.ResponseWriter, r *http.Request) {
	subID := model.ID(mux.Vars(r)["subId"])
	p.mutateSubCategory(w, r, "update-subcategory", "Subcategory updated",
		func(ctx context.Context, catID model.ID, f model.SubCategoryForm) error {
			return p.subcats.Update(ctx, subID, f)
		})
}

func (p *portal) DeleteSubCategoryHandler(w http.ResponseWriter, r *http.Request) {
	subID := model.ID(mux.Vars(r)["subId"])
	p.mutateSubCategory(w, r, "delete-subcategory", "Subcategory deleted",
		func(ctx context.Context, catID model.ID, _ model.SubCategoryForm) error {
			return p.subcats.Delete(ctx, subID)
		})
}

// mutateSubCategory runs a subcategory change and drops the parent's cached
// children so the tree shows the server's list. Delete carries no body.
func (p *portal) mutateSubCategory(w http.ResponseWriter, r *http.Request, action, done string, do func(ctx context.Context, catID model.ID, f model.SubCategoryForm) error) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	catID := model.ID(mux.Vars(r)["id"])
	p.syncTree(s)

	var f model.SubCategoryForm
	if r.Method != http.MethodDelete {
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			helper.WriteErrorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}
		f.CategoryID = catID
		if err := form.Check(p.validate, f); err != nil {
			p.writeTree(w, s, err, nil)
			return
		}
	}

	if err := do(ctx, catID, f); err != nil {
		p.writeTree(w, s, err, nil)
		return
	}
	p.activity.Record(ctx, s, model.ScreenCategories, action, catID)

	if err := p.trees.Get(s).Invalidate(ctx, catID); err != nil {
		slog.Error("reloading subcategories failed", "category", catID, "err", err)
	}
	p.writeTree(w, s, nil, helper.SuccessToast(done))
}
