package model

import "slices"

// Screen ids, also used as the allowedScreens values of a staff member.
const (
	ScreenAdvertisements       = "advertisements"
	ScreenAdPackages           = "ad-packages"
	ScreenAdSubscriptions      = "ad-subscriptions"
	ScreenTeam                 = "team"
	ScreenAdmins               = "admins"
	ScreenPendingSubscriptions = "pending-subscriptions"
	ScreenCategories           = "categories"
	ScreenSpecialOffers        = "special-offers"
	ScreenRFQ                  = "rfq"
)

// AllScreens is every screen in menu order.
var AllScreens = []string{
	ScreenAdvertisements,
	ScreenAdPackages,
	ScreenAdSubscriptions,
	ScreenTeam,
	ScreenAdmins,
	ScreenPendingSubscriptions,
	ScreenCategories,
	ScreenSpecialOffers,
	ScreenRFQ,
}

var supplierScreens = []string{
	ScreenAdvertisements,
	ScreenAdSubscriptions,
	ScreenTeam,
	ScreenSpecialOffers,
	ScreenRFQ,
}

type UserInfo struct {
	ID         ID     `json:"id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	SupplierID ID     `json:"supplierId,omitempty"`
}

// Session is the signed-in user's context. It is built once per request by
// the auth middleware and passed by value afterwards.
type Session struct {
	Role           string   `json:"role"`
	UserInfo       UserInfo `json:"userInfo"`
	AllowedScreens []string `json:"allowedScreens,omitempty"`
	Token          string   `json:"-"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin || s.Role == RoleSuperAdmin
}

// SupplierID is the supplier the session acts for. Staff members act for
// their owning supplier; suppliers act for themselves.
func (s Session) SupplierID() ID {
	if s.UserInfo.SupplierID != "" {
		return s.UserInfo.SupplierID
	}
	return s.UserInfo.ID
}

// CanSee reports whether the screen is visible for this session.
func (s Session) CanSee(screen string) bool {
	switch s.Role {
	case RoleAdmin, RoleSuperAdmin:
		return true
	case RoleSupplier:
		return slices.Contains(supplierScreens, screen)
	default:
		return slices.Contains(s.AllowedScreens, screen)
	}
}

// VisibleScreens lists the screens the session can open, in menu order.
func (s Session) VisibleScreens() []string {
	out := []string{}
	for _, id := range AllScreens {
		if s.CanSee(id) {
			out = append(out, id)
		}
	}
	return out
}
