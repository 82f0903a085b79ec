package main

import (
	"context"

	"marketplace-portal/category"
	"marketplace-portal/form"
	"marketplace-portal/model"
	"marketplace-portal/paging"
	"marketplace-portal/resource"
	"marketplace-portal/rfq"
	"marketplace-portal/screen"
)

func advertisementScreen(p *portal, deps screen.Deps) *screen.Screen[model.Advertisement, model.AdvertisementForm] {
	return screen.New(screen.Config[model.Advertisement, model.AdvertisementForm]{
		Name:        model.ScreenAdvertisements,
		Label:       "Advertisement",
		CRUD:        resource.Advertisements(p.api),
		ID:          func(a model.Advertisement) model.ID { return a.ID },
		Attachments: []string{"imageUrl"},
		Filters:     []string{"featured"},
		Seed: func(a model.Advertisement) form.Fields {
			return form.Fields{"text": a.Text, "imageUrl": a.ImageURL, "packageId": a.PackageID.String(), "featured": a.Featured}
		},
		Build: func(_ model.Session, f form.Fields) (model.AdvertisementForm, error) {
			return model.AdvertisementForm{
				Text:      f.String("text"),
				ImageURL:  f.String("imageUrl"),
				PackageID: f.ID("packageId"),
				Featured:  f.Bool("featured"),
			}, nil
		},
	}, deps)
}

func adPackageScreen(p *portal, deps screen.Deps) *screen.Screen[model.AdPackage, model.AdPackageForm] {
	return screen.New(screen.Config[model.AdPackage, model.AdPackageForm]{
		Name:    model.ScreenAdPackages,
		Label:   "Ad package",
		CRUD:    resource.AdPackages(p.api),
		ID:      func(a model.AdPackage) model.ID { return a.ID },
		Card:    resource.PackageCard,
		Numeric: []string{"numberOfDays", "pricePerAd", "featuredPrice", "sortOrder"},
		Defaults: func() form.Fields {
			return form.Fields{"active": true, "sortOrder": 0}
		},
		Seed: func(a model.AdPackage) form.Fields {
			return form.Fields{
				"nameEn":        a.NameEn,
				"nameAr":        a.NameAr,
				"numberOfDays":  a.NumberOfDays,
				"pricePerAd":    a.PricePerAd.String(),
				"featuredPrice": a.FeaturedPrice.String(),
				"active":        a.Active,
				"sortOrder":     a.SortOrder,
			}
		},
		Build: func(_ model.Session, f form.Fields) (model.AdPackageForm, error) {
			return model.AdPackageForm{
				NameEn:        f.String("nameEn"),
				NameAr:        f.String("nameAr"),
				NumberOfDays:  f.Int("numberOfDays"),
				PricePerAd:    f.Decimal("pricePerAd"),
				FeaturedPrice: f.Decimal("featuredPrice"),
				Active:        f.Bool("active"),
				SortOrder:     f.Int("sortOrder"),
			}, nil
		},
	}, deps)
}

func adSubscriptionScreen(p *portal, deps screen.Deps) *screen.Screen[model.AdSubscription, struct{}] {
	return screen.New(screen.Config[model.AdSubscription, struct{}]{
		Name:    model.ScreenAdSubscriptions,
		Label:   "Subscription",
		CRUD:    resource.AdSubscriptionList(p.api),
		ID:      func(s model.AdSubscription) model.ID { return s.ID },
		Card:    resource.SubscriptionCard,
		Filters: []string{"status"},
	}, deps)
}

func teamScreen(p *portal, deps screen.Deps) *screen.Screen[model.StaffMember, model.StaffForm] {
	return screen.New(screen.Config[model.StaffMember, model.StaffForm]{
		Name:        model.ScreenTeam,
		Label:       "Team member",
		CRUD:        resource.Team(p.api),
		ID:          func(m model.StaffMember) model.ID { return m.ID },
		Attachments: []string{"profileImage"},
		Defaults: func() form.Fields {
			return form.Fields{"role": model.RoleStaff, "allowedScreens": []string{}}
		},
		Seed: func(m model.StaffMember) form.Fields {
			return form.Fields{
				"name":           m.Name,
				"email":          m.Email,
				"phone":          m.Phone,
				"role":           m.Role,
				"allowedScreens": m.AllowedScreens,
				"profileImage":   m.ProfileImage,
			}
		},
		Build: func(s model.Session, f form.Fields) (model.StaffForm, error) {
			return model.StaffForm{
				Name:           f.String("name"),
				Email:          f.String("email"),
				Phone:          f.String("phone"),
				Role:           f.String("role"),
				Password:       f.String("password"),
				AllowedScreens: f.Strings("allowedScreens"),
				ProfileImage:   f.String("profileImage"),
				OwnerID:        s.UserInfo.ID,
			}, nil
		},
	}, deps)
}

func adminScreen(p *portal, deps screen.Deps) *screen.Screen[model.AdminUser, model.AdminForm] {
	return screen.New(screen.Config[model.AdminUser, model.AdminForm]{
		Name:  model.ScreenAdmins,
		Label: "Admin",
		CRUD:  resource.Admins(p.api),
		ID:    func(a model.AdminUser) model.ID { return a.ID },
		Defaults: func() form.Fields {
			return form.Fields{"role": model.RoleAdmin}
		},
		Seed: func(a model.AdminUser) form.Fields {
			return form.Fields{"name": a.Name, "email": a.Email, "phone": a.Phone, "role": a.Role}
		},
		Build: func(_ model.Session, f form.Fields) (model.AdminForm, error) {
			return model.AdminForm{
				Name:            f.String("name"),
				Email:           f.String("email"),
				Phone:           f.String("phone"),
				Role:            f.String("role"),
				Password:        f.String("password"),
				ConfirmPassword: f.String("confirmPassword"),
			}, nil
		},
		BeforeDelete: resource.GuardAdminDelete,
	}, deps)
}

func pendingSubscriptionScreen(p *portal, deps screen.Deps) *screen.Screen[model.PendingSubscription, struct{}] {
	return screen.New(screen.Config[model.PendingSubscription, struct{}]{
		Name:  model.ScreenPendingSubscriptions,
		Label: "Subscription request",
		CRUD:  resource.PendingSubscriptionList(p.api),
		ID:    func(s model.PendingSubscription) model.ID { return s.ID },
	}, deps)
}

// categoryScreen edits the category itself; the extra-field schema comes
// from the "extraFields" and "requiredFields" checkbox lists.
func categoryScreen(p *portal, deps screen.Deps) *screen.Screen[model.Category, model.CategoryForm] {
	return screen.New(screen.Config[model.Category, model.CategoryForm]{
		Name:  model.ScreenCategories,
		Label: "Category",
		CRUD:  p.categoryCRUD,
		ID:    func(c model.Category) model.ID { return c.ID },
		Defaults: func() form.Fields {
			return form.Fields{"extraFields": []string{}, "requiredFields": []string{}}
		},
		Seed: func(c model.Category) form.Fields {
			sel := category.SelectionOf(c.ExtraFields)
			return form.Fields{
				"nameEn":         c.NameEn,
				"nameAr":         c.NameAr,
				"extraFields":    keys(sel.Checked),
				"requiredFields": keys(sel.Required),
			}
		},
		Build: func(_ model.Session, f form.Fields) (model.CategoryForm, error) {
			schema, err := selectionFrom(f).Schema()
			if err != nil {
				return model.CategoryForm{}, err
			}
			return model.CategoryForm{
				NameEn:      f.String("nameEn"),
				NameAr:      f.String("nameAr"),
				ExtraFields: schema,
			}, nil
		},
	}, deps)
}

func specialOfferScreen(p *portal, deps screen.Deps) *screen.Screen[model.SpecialOffer, model.SpecialOfferForm] {
	return screen.New(screen.Config[model.SpecialOffer, model.SpecialOfferForm]{
		Name:    model.ScreenSpecialOffers,
		Label:   "Special offer",
		CRUD:    resource.SpecialOffers(p.api),
		ID:      func(o model.SpecialOffer) model.ID { return o.ID },
		Card:    resource.SpecialOfferCard,
		Numeric: []string{"discountPercentage"},
		Defaults: func() form.Fields {
			return form.Fields{"active": true}
		},
		Seed: func(o model.SpecialOffer) form.Fields {
			return form.Fields{
				"productId":          o.ProductID.String(),
				"discountPercentage": o.DiscountPercentage.String(),
				"startDate":          o.StartDate,
				"endDate":            o.EndDate,
				"active":             o.Active,
			}
		},
		Build: func(s model.Session, f form.Fields) (model.SpecialOfferForm, error) {
			return model.SpecialOfferForm{
				ProductID:          f.ID("productId"),
				DiscountPercentage: f.Decimal("discountPercentage"),
				StartDate:          f.String("startDate"),
				EndDate:            f.String("endDate"),
				Active:             f.Bool("active"),
				SupplierID:         s.SupplierID(),
			}, nil
		},
	}, deps)
}

// rfqScreen lists the supplier's offers. Its form is the quote form; an
// offer is never created or deleted from the portal.
func rfqScreen(p *portal, deps screen.Deps) *screen.Screen[model.RFQOffer, model.QuoteForm] {
	return screen.New(screen.Config[model.RFQOffer, model.QuoteForm]{
		Name:    model.ScreenRFQ,
		Label:   "Quote",
		ID:      func(o model.RFQOffer) model.ID { return o.ID },
		Filters: []string{"status"},
		Numeric: []string{"price", "shippingCost", "availableQuantity"},
		Actions: func(o model.RFQOffer) any { return rfq.ActionsFor(o) },
		Seed: func(o model.RFQOffer) form.Fields {
			f := form.Fields{"availableQuantity": o.Quantity}
			if r := o.SupplierResponse; r != nil {
				f["price"] = r.Price.String()
				f["shippingCost"] = r.ShippingCost.String()
				f["estimatedDelivery"] = r.EstimatedDelivery
				f["availableQuantity"] = r.AvailableQuantity
				f["shippingInfo"] = r.ShippingInfo
			}
			return f
		},
		Build: func(_ model.Session, f form.Fields) (model.QuoteForm, error) {
			return model.QuoteForm{
				Price:             f.Decimal("price"),
				ShippingCost:      f.Decimal("shippingCost"),
				EstimatedDelivery: f.String("estimatedDelivery"),
				AvailableQuantity: f.Int("availableQuantity"),
				ShippingInfo:      f.String("shippingInfo"),
			}, nil
		},
		List: func(ctx context.Context, s model.Session, q paging.Query) (model.Page[model.RFQOffer], error) {
			return p.rfq.List(ctx, s.SupplierID(), q)
		},
		Create: func(context.Context, model.Session, model.QuoteForm) error {
			return resource.ErrReadOnly
		},
		Update: func(ctx context.Context, _ model.Session, id model.ID, q model.QuoteForm) error {
			// the status gate needs the server's current view of the offer
			offer, err := p.rfq.Get(ctx, id)
			if err != nil {
				return err
			}
			return p.rfq.SubmitQuote(ctx, offer, q)
		},
		Delete: func(context.Context, model.Session, model.RFQOffer) error {
			return resource.ErrReadOnly
		},
	}, deps)
}

func selectionFrom(f form.Fields) category.Selection {
	sel := category.Selection{Checked: map[string]bool{}, Required: map[string]bool{}}
	for _, k := range f.Strings("extraFields") {
		sel.Checked[k] = true
	}
	for _, k := range f.Strings("requiredFields") {
		sel.Required[k] = true
	}
	return sel
}

// keys returns the set members in catalogue order.
func keys(set map[string]bool) []string {
	out := []string{}
	for _, f := range category.OptionalFields {
		if set[f.Key] {
			out = append(out, f.Key)
		}
	}
	return out
}
