// README: Pricing service computes subtotal/tax/total breakdowns per service category.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var DefaultTaxRate = decimal.RequireFromString("0.19")

type Service struct {
	taxRate decimal.Decimal
}

func NewService(taxRate decimal.Decimal) *Service {
	return &Service{taxRate: taxRate}
}

func (s *Service) TaxRate() decimal.Decimal { return s.taxRate }

// Estimate prices a selection. travelCost is added as an additional fee; callers pass zero for
// categories that are not performed on site.
func (s *Service) Estimate(sel Selection, travelCost decimal.Decimal) Breakdown {
	return Price(sel, travelCost, s.taxRate)
}

// OnSite reports whether the category requires a visit and therefore bears travel cost.
func (c Category) OnSite() bool {
	return c == CategoryPhotography
}

// Price dispatches on the selection variant. An unknown variant is a programming error.
func Price(sel Selection, travelCost, taxRate decimal.Decimal) Breakdown {
	switch v := sel.(type) {
	case Photography:
		return Calculate(photographyItems(v), travelCost, taxRate)
	case PhotoEditing:
		return Calculate(editingItems(v), travelCost, taxRate)
	case VirtualStaging:
		return Calculate(stagingItems(v), travelCost, taxRate)
	case EnergyCertificate:
		return Calculate(certificateItems(v), travelCost, taxRate)
	default:
		panic(fmt.Sprintf("pricing: unsupported selection %T", sel))
	}
}

// Calculate sums the items and fees and applies tax. Only the total is rounded.
func Calculate(items []Item, additionalFees, taxRate decimal.Decimal) Breakdown {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	subtotal = subtotal.Add(additionalFees)
	tax := subtotal.Mul(taxRate)
	return Breakdown{
		Items:          items,
		AdditionalFees: additionalFees,
		Subtotal:       subtotal,
		TaxAmount:      tax,
		Total:          subtotal.Add(tax).Round(2),
	}
}

// TieredDiscountRate is the bulk package discount. Tiers are not cumulative.
func TieredDiscountRate(quantity int) decimal.Decimal {
	switch {
	case quantity >= 10:
		return decimal.RequireFromString("0.15")
	case quantity >= 5:
		return decimal.RequireFromString("0.10")
	case quantity >= 3:
		return decimal.RequireFromString("0.05")
	default:
		return decimal.Zero
	}
}

// EditingDiscountRate is the volume discount on the per-photo editing price.
func EditingDiscountRate(photos int) decimal.Decimal {
	switch {
	case photos >= 50:
		return decimal.RequireFromString("0.30")
	case photos >= 25:
		return decimal.RequireFromString("0.20")
	case photos >= 10:
		return decimal.RequireFromString("0.10")
	default:
		return decimal.Zero
	}
}

// StagingMultiplier is 1 + (variations-1) × 0.5 for more than one style variation.
func StagingMultiplier(variations int) decimal.Decimal {
	if variations <= 1 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(variations - 1)).Mul(decimal.NewFromFloat(0.5)))
}

func discounted(price, rate decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(rate))
}

func photographyItems(p Photography) []Item {
	var items []Item
	if p.Package != nil {
		units := p.Units
		if units < 1 {
			units = 1
		}
		items = append(items, Item{
			ID:       p.Package.ID,
			Name:     p.Package.Name,
			Price:    discounted(p.Package.Price, TieredDiscountRate(units)),
			Quantity: units,
		})
	}
	for _, a := range p.AddOns {
		items = append(items, Item{ID: a.ID, Name: a.Name, Price: a.Price, Quantity: 1})
	}
	return items
}

func editingItems(p PhotoEditing) []Item {
	var items []Item
	if p.Photos > 0 {
		items = append(items, Item{
			ID:       EditingServiceID,
			Name:     "Photo editing",
			Price:    discounted(p.UnitPrice, EditingDiscountRate(p.Photos)),
			Quantity: p.Photos,
		})
	}
	for _, o := range p.Options {
		o.Quantity = 1
		items = append(items, o)
	}
	return items
}

func stagingItems(v VirtualStaging) []Item {
	if v.Rooms <= 0 {
		return nil
	}
	return []Item{{
		ID:       StagingServiceID,
		Name:     "Virtual staging",
		Price:    v.RoomPrice.Mul(StagingMultiplier(v.Variations)),
		Quantity: v.Rooms,
	}}
}

func certificateItems(e EnergyCertificate) []Item {
	items := make([]Item, 0, len(e.SKUs))
	for _, sku := range e.SKUs {
		sku.Quantity = 1
		items = append(items, sku)
	}
	return items
}
