package resource

import (
	"fmt"

	"marketplace-portal/apiclient"
	"marketplace-portal/model"
)

func Advertisements(c *apiclient.Client) CRUD[model.Advertisement] {
	return CRUD[model.Advertisement]{
		Client: c,
		ListPath: func(s model.Session) string {
			if s.IsAdmin() {
				return "/api/advertisements"
			}
			return fmt.Sprintf("/api/suppliers/%s/advertisements", s.SupplierID())
		},
		CreatePath: Fixed("/api/advertisements"),
		ItemPath:   Under("/api/advertisements"),
		Paged:      true,
	}
}

// AdPackages always come back as the full list.
func AdPackages(c *apiclient.Client) CRUD[model.AdPackage] {
	return CRUD[model.AdPackage]{
		Client:     c,
		ListPath:   Fixed("/api/ad-packages"),
		CreatePath: Fixed("/api/ad-packages"),
		ItemPath:   Under("/api/ad-packages"),
	}
}

// Team is the "my team" list, owned by the signed-in user.
func Team(c *apiclient.Client) CRUD[model.StaffMember] {
	return CRUD[model.StaffMember]{
		Client: c,
		ListPath: func(s model.Session) string {
			return fmt.Sprintf("/api/staff/owner/%s", s.UserInfo.ID)
		},
		CreatePath: Fixed("/api/staff"),
		ItemPath:   Under("/api/staff"),
		Paged:      true,
	}
}

func Admins(c *apiclient.Client) CRUD[model.AdminUser] {
	return CRUD[model.AdminUser]{
		Client:     c,
		ListPath:   Fixed("/api/admins"),
		CreatePath: Fixed("/api/admins"),
		ItemPath:   Under("/api/admins"),
		Paged:      true,
	}
}

// Categories are listed in full; subcategories hang off each category.
func Categories(c *apiclient.Client) CRUD[model.Category] {
	return CRUD[model.Category]{
		Client:     c,
		ListPath:   Fixed("/api/categories"),
		CreatePath: Fixed("/api/categories"),
		ItemPath:   Under("/api/categories"),
	}
}

func SpecialOffers(c *apiclient.Client) CRUD[model.SpecialOffer] {
	return CRUD[model.SpecialOffer]{
		Client: c,
		ListPath: func(s model.Session) string {
			return fmt.Sprintf("/api/suppliers/%s/special-offers", s.SupplierID())
		},
		CreatePath: Fixed("/api/special-offers"),
		ItemPath:   Under("/api/special-offers"),
		Paged:      true,
	}
}

// AdSubscriptionList is read only here; decisions go through
// AdSubscriptionService. Suppliers only see their own requests.
func AdSubscriptionList(c *apiclient.Client) CRUD[model.AdSubscription] {
	return CRUD[model.AdSubscription]{
		Client: c,
		ListPath: func(s model.Session) string {
			if s.IsAdmin() {
				return "/api/ad-subscriptions"
			}
			return fmt.Sprintf("/api/ad-subscriptions/supplier/%s", s.SupplierID())
		},
		Paged: true,
	}
}

func PendingSubscriptionList(c *apiclient.Client) CRUD[model.PendingSubscription] {
	return CRUD[model.PendingSubscription]{
		Client:   c,
		ListPath: Fixed("/api/subscriptions/pending"),
		Paged:    true,
	}
}
