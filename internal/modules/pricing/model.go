// README: Pricing categories, selection variants and price breakdown.
package pricing

import (
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryPhotography       Category = "photography"
	CategoryPhotoEditing      Category = "photo_editing"
	CategoryVirtualStaging    Category = "virtual_staging"
	CategoryEnergyCertificate Category = "energy_certificate"
)

var Categories = []Category{
	CategoryPhotography,
	CategoryPhotoEditing,
	CategoryVirtualStaging,
	CategoryEnergyCertificate,
}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Item is one priced position. Quantity 0 counts as 1.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (i Item) quantity() int64 {
	if i.Quantity <= 0 {
		return 1
	}
	return int64(i.Quantity)
}

// LineTotal is Price × Quantity, unrounded.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.quantity()))
}

// Breakdown amounts are unrounded except Total.
type Breakdown struct {
	Items          []Item          `json:"items"`
	AdditionalFees decimal.Decimal `json:"additional_fees"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Selection is the category-specific pricing basis of an order. Exactly one variant per category.
type Selection interface {
	Category() Category
	// HasBasis reports whether the selection carries anything billable.
	HasBasis() bool
}

type Package struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Unit       string          `json:"unit"`
	PhotoCount int             `json:"photo_count"`
	Tier       string          `json:"tier"`
	Price      decimal.Decimal `json:"price"`
}

type AddOn struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Photography is a package shoot with optional add-ons. Units > 1 is a bulk booking of the
// same package and gets the tiered discount.
type Photography struct {
	Package *Package `json:"package,omitempty"`
	AddOns  []AddOn  `json:"add_ons,omitempty"`
	Units   int      `json:"units,omitempty"`
}

func (Photography) Category() Category { return CategoryPhotography }
func (p Photography) HasBasis() bool { return p.Package != nil }

type PhotoEditing struct {
	Photos    int             `json:"photos"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Options   []Item          `json:"options,omitempty"`
}

func (PhotoEditing) Category() Category { return CategoryPhotoEditing }
func (p PhotoEditing) HasBasis() bool { return p.Photos > 0 || len(p.Options) > 0 }

type VirtualStaging struct {
	Rooms      int             `json:"rooms"`
	RoomPrice  decimal.Decimal `json:"room_price"`
	Variations int             `json:"variations"`
}

func (VirtualStaging) Category() Category { return CategoryVirtualStaging }
func (v VirtualStaging) HasBasis() bool { return v.Rooms > 0 }

type EnergyCertificate struct {
	SKUs []Item `json:"skus"`
}

func (EnergyCertificate) Category() Category { return CategoryEnergyCertificate }
func (e EnergyCertificate) HasBasis() bool { return len(e.SKUs) > 0 }
