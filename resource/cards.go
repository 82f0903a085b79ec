package resource

import (
	"fmt"

	"marketplace-portal/model"
)

const Currency = "EGP"

// Card is the display shape of one list item.
type Card struct {
	ID       model.ID `json:"id"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Lines    []string `json:"lines"`
	Badge    string   `json:"badge,omitempty"`
}

func Days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func PackageCard(p model.AdPackage) Card {
	badge := "Inactive"
	if p.Active {
		badge = "Active"
	}
	return Card{
		ID:       p.ID,
		Title:    p.NameEn,
		Subtitle: p.NameAr,
		Lines: []string{
			Days(p.NumberOfDays),
			p.PricePerAd.String() + " " + Currency,
			"Featured: " + p.FeaturedPrice.String() + " " + Currency,
		},
		Badge: badge,
	}
}

func SubscriptionCard(s model.AdSubscription) Card {
	lines := []string{fmt.Sprintf("%d / %d ads left", s.RemainingAds, s.TotalAds)}
	if !s.Price.IsZero() {
		lines = append(lines, s.Price.String()+" "+Currency)
	}
	if s.StartDate != "" || s.EndDate != "" {
		lines = append(lines, s.StartDate+" - "+s.EndDate)
	}
	return Card{
		ID:       s.ID,
		Title:    "Supplier " + s.SupplierID.String(),
		Subtitle: "Package " + s.PackageID.String(),
		Lines:    lines,
		Badge:    s.Status,
	}
}

func SpecialOfferCard(o model.SpecialOffer) Card {
	badge := "Inactive"
	if o.Active {
		badge = "Active"
	}
	return Card{
		ID:    o.ID,
		Title: o.ProductName,
		Lines: []string{
			o.DiscountPercentage.String() + "% off",
			o.StartDate + " - " + o.EndDate,
		},
		Badge: badge,
	}
}
