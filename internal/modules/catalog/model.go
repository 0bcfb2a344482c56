// README: Catalog products and add-ons resolved during submission.
package catalog

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

var ErrNotFound = errors.New("catalog entry not found")

// Product is a purchasable catalog row; photography packages are products with a unit.
type Product struct {
	ID        types.ID        `json:"id"`
	Category  string          `json:"category"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	BasePrice decimal.Decimal `json:"base_price"`
}

type AddOn struct {
	ID       types.ID        `json:"id"`
	Category string          `json:"category"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
}
