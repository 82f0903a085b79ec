package resource

import (
	"context"
	"fmt"
	"strings"

	"marketplace-portal/apiclient"
	"marketplace-portal/model"
)

// GuardAdminDelete refuses to delete a SUPER_ADMIN before any request is
// made.
func GuardAdminDelete(a model.AdminUser) error {
	if a.Role == model.RoleSuperAdmin {
		return ErrProtected
	}
	return nil
}

type AdSubscriptionService struct {
	client *apiclient.Client
}

func NewAdSubscriptionService(c *apiclient.Client) *AdSubscriptionService {
	return &AdSubscriptionService{client: c}
}

func (s *AdSubscriptionService) Approve(ctx context.Context, id model.ID) error {
	_, err := s.client.Patch(ctx, fmt.Sprintf("/api/ad-subscriptions/%s/approve", id), nil)
	return err
}

func (s *AdSubscriptionService) Reject(ctx context.Context, id model.ID) error {
	_, err := s.client.Patch(ctx, fmt.Sprintf("/api/ad-subscriptions/%s/reject", id), nil)
	return err
}

// Subscribe asks for a package on behalf of a supplier. The request starts
// out PENDING until an admin decides.
func (s *AdSubscriptionService) Subscribe(ctx context.Context, supplierID, packageID model.ID) error {
	_, err := s.client.Post(ctx, "/api/ad-subscriptions", map[string]model.ID{
		"supplierId": supplierID,
		"packageId":  packageID,
	})
	return err
}

// ActiveFor returns the supplier's usable subscription, if any. It is tied
// to ctx so a closed page stops waiting for it.
func (s *AdSubscriptionService) ActiveFor(ctx context.Context, supplierID model.ID) (*model.AdSubscription, error) {
	body, err := s.client.Get(ctx, fmt.Sprintf("/api/ad-subscriptions/supplier/%s", supplierID), nil)
	if err != nil {
		return nil, err
	}
	page, err := apiclient.DecodePage[model.AdSubscription](body)
	if err != nil {
		return nil, err
	}
	for _, sub := range page.Content {
		if sub.Usable() {
			return &sub, nil
		}
	}
	return nil, nil
}

type PendingSubscriptionService struct {
	client *apiclient.Client
}

func NewPendingSubscriptionService(c *apiclient.Client) *PendingSubscriptionService {
	return &PendingSubscriptionService{client: c}
}

func (s *PendingSubscriptionService) Approve(ctx context.Context, id model.ID) error {
	_, err := s.client.Put(ctx, fmt.Sprintf("/api/subscriptions/%s/approve", id), nil)
	return err
}

// Reject needs a non-blank reason; a blank one never reaches the API.
func (s *PendingSubscriptionService) Reject(ctx context.Context, id model.ID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	_, err := s.client.Put(ctx, fmt.Sprintf("/api/subscriptions/%s/reject", id), model.RejectForm{Reason: reason})
	return err
}

type SubCategoryService struct {
	client *apiclient.Client
}

func NewSubCategoryService(c *apiclient.Client) *SubCategoryService {
	return &SubCategoryService{client: c}
}

func (s *SubCategoryService) List(ctx context.Context, categoryID model.ID) ([]model.SubCategory, error) {
	body, err := s.client.Get(ctx, fmt.Sprintf("/api/categories/%s/subcategories", categoryID), nil)
	if err != nil {
		return nil, err
	}
	page, err := apiclient.DecodePage[model.SubCategory](body)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

func (s *SubCategoryService) Create(ctx context.Context, f model.SubCategoryForm) error {
	_, err := s.client.Post(ctx, fmt.Sprintf("/api/categories/%s/subcategories", f.CategoryID), f)
	return err
}

func (s *SubCategoryService) Update(ctx context.Context, id model.ID, f model.SubCategoryForm) error {
	_, err := s.client.Put(ctx, "/api/subcategories/"+id.String(), f)
	return err
}

func (s *SubCategoryService) Delete(ctx context.Context, id model.ID) error {
	return s.client.Delete(ctx, "/api/subcategories/"+id.String())
}
