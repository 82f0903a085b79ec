package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// upstream expects prices as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Advertisement struct {
	ID        ID     `json:"id"`
	Text      string `json:"text"`
	ImageURL  string `json:"imageUrl"`
	PackageID ID     `json:"packageId"`
	Featured  bool   `json:"featured"`
}

type AdPackage struct {
	ID            ID              `json:"id"`
	NameEn        string          `json:"nameEn"`
	NameAr        string          `json:"nameAr"`
	NumberOfDays  int             `json:"numberOfDays"`
	PricePerAd    decimal.Decimal `json:"pricePerAd"`
	FeaturedPrice decimal.Decimal `json:"featuredPrice"`
	Active        bool            `json:"active"`
	SortOrder     int             `json:"sortOrder"`
}

const (
	SubscriptionPending  = "PENDING"
	SubscriptionApproved = "APPROVED"
	SubscriptionRejected = "REJECTED"
)

type AdSubscription struct {
	ID           ID              `json:"id"`
	SupplierID   ID              `json:"supplierId"`
	PackageID    ID              `json:"packageId"`
	Status       string          `json:"status"`
	RemainingAds int             `json:"remainingAds"`
	TotalAds     int             `json:"totalAds"`
	Price        decimal.Decimal `json:"price"`
	StartDate    string          `json:"startDate,omitempty"`
	EndDate      string          `json:"endDate,omitempty"`
}

// Usable reports whether the subscription still allows posting ads.
func (s AdSubscription) Usable() bool {
	return s.Status == SubscriptionApproved && s.RemainingAds > 0
}

type StaffMember struct {
	ID             ID       `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Role           string   `json:"role"`
	AllowedScreens []string `json:"allowedScreens"`
	ProfileImage   string   `json:"profileImage,omitempty"`
}

const (
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleSupplier   = "SUPPLIER"
	RoleStaff      = "STAFF"
	RoleCustomer   = "CUSTOMER"
)

type AdminUser struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type PendingSubscription struct {
	ID          ID              `json:"id"`
	UserID      ID              `json:"userId"`
	PlanID      ID              `json:"planId"`
	Seats       int             `json:"seats"`
	ExtraSeats  int             `json:"extraSeats"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	ReceiptPath string          `json:"receiptPath"`
	Status      string          `json:"status"`
	SubmittedAt string          `json:"submittedAt"`
}

type ExtraField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type Category struct {
	ID          ID           `json:"id"`
	NameEn      string       `json:"nameEn"`
	NameAr      string       `json:"nameAr"`
	ExtraFields []ExtraField `json:"extraFields"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
}

type SubCategory struct {
	ID         ID     `json:"id"`
	CategoryID ID     `json:"categoryId"`
	NameEn     string `json:"nameEn"`
	NameAr     string `json:"nameAr"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

type SpecialOffer struct {
	ID                 ID              `json:"id"`
	ProductID          ID              `json:"productId"`
	ProductName        string          `json:"productName"`
	ProductImage       string          `json:"productImage,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	StartDate          string          `json:"startDate"`
	EndDate            string          `json:"endDate"`
	Active             bool            `json:"active"`
}

type SupplierResponse struct {
	Price             decimal.Decimal `json:"price"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
	AvailableQuantity int             `json:"availableQuantity"`
	ShippingInfo      string          `json:"shippingInfo,omitempty"`
}

type RFQOffer struct {
	ID               ID                `json:"id"`
	OrderID          ID                `json:"orderId"`
	SupplierID       ID                `json:"supplierId"`
	CustomerID       ID                `json:"customerId"`
	CustomerName     string            `json:"customerName,omitempty"`
	ProductID        ID                `json:"productId"`
	ProductName      string            `json:"productName,omitempty"`
	Quantity         int               `json:"quantity"`
	Status           string            `json:"status"`
	SupplierResponse *SupplierResponse `json:"supplierResponse,omitempty"`
}

// Activity is one mutation performed through the portal.
type Activity struct {
	ID        int       `json:"id"`
	ActorID   string    `json:"actor_id"`
	Screen    string    `json:"screen"`
	Action    string    `json:"action"`
	EntityID  string    `json:"entity_id"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	UploadPending  = "pending"
	UploadAttached = "attached"
	UploadOrphaned = "orphaned"
)

type Upload struct {
	ID        int       `json:"id"`
	URL       string    `json:"url"`
	ActorID   string    `json:"actor_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
