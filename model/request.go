package model

import "github.com/shopspring/decimal"

type AdvertisementForm struct {
	Text      string `json:"text" validate:"required"`
	ImageURL  string `json:"imageUrl" validate:"required"`
	PackageID ID     `json:"packageId" validate:"required"`
	Featured  bool   `json:"featured"`
}

type AdPackageForm struct {
	NameEn        string          `json:"nameEn" validate:"required"`
	NameAr        string          `json:"nameAr"`
	NumberOfDays  int             `json:"numberOfDays" validate:"required,min=1"`
	PricePerAd    decimal.Decimal `json:"pricePerAd"`
	FeaturedPrice decimal.Decimal `json:"featuredPrice"`
	Active        bool            `json:"active"`
	SortOrder     int             `json:"sortOrder" validate:"min=0"`
}

type StaffForm struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          string   `json:"phone" validate:"required"`
	Role           string   `json:"role" validate:"required"`
	Password       string   `json:"password,omitempty"`
	AllowedScreens []string `json:"allowedScreens"`
	ProfileImage   string   `json:"profileImage,omitempty"`
	OwnerID        ID       `json:"ownerId,omitempty"`
}

type AdminForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Role            string `json:"role" validate:"required,oneof=ADMIN SUPER_ADMIN"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
}

type CategoryForm struct {
	NameEn      string       `json:"nameEn" validate:"required"`
	NameAr      string       `json:"nameAr" validate:"required"`
	ExtraFields []ExtraField `json:"extraFields"`
}

type SubCategoryForm struct {
	CategoryID ID     `json:"categoryId" validate:"required"`
	NameEn     string `json:"nameEn" validate:"required"`
	NameAr     string `json:"nameAr" validate:"required"`
}

type SpecialOfferForm struct {
	ProductID          ID              `json:"productId" validate:"required"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	StartDate          string          `json:"startDate" validate:"required"`
	EndDate            string          `json:"endDate" validate:"required"`
	Active             bool            `json:"active"`
	SupplierID         ID              `json:"supplierId,omitempty"`
}

type QuoteForm struct {
	Price             decimal.Decimal `json:"price"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	EstimatedDelivery string          `json:"estimatedDelivery" validate:"required"`
	AvailableQuantity int             `json:"availableQuantity" validate:"required,min=1"`
	ShippingInfo      string          `json:"shippingInfo,omitempty"`
}

type RejectForm struct {
	Reason string `json:"reason" validate:"required"`
}

type LoginReq struct {
	EmailOrPhone string `json:"email_or_phone" validate:"required"`
	Password     string `json:"password" validate:"required"`
}
