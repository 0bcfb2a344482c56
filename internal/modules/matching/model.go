// README: Provider eligibility results for a service location.
package matching

import (
	"github.com/shopspring/decimal"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

type Provider struct {
	ID         types.ID    `json:"id"`
	Position   types.Point `json:"position"`
	DistanceKm float64     `json:"distance_km"`
}

// Eligibility lists providers ranked nearest first.
type Eligibility struct {
	Available         bool            `json:"available"`
	Providers         []Provider      `json:"providers"`
	NearestDistanceKm float64         `json:"nearest_distance_km"`
	TravelCost        decimal.Decimal `json:"travel_cost"`
}

type TravelRule struct {
	IncludedKm float64
	PerKmRate  decimal.Decimal
}

// Cost charges every kilometre beyond IncludedKm.
func (r TravelRule) Cost(distanceKm float64) decimal.Decimal {
	extra := distanceKm - r.IncludedKm
	if extra <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(extra).Mul(r.PerKmRate)
}
