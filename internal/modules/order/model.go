// README: Order status flow and the in-memory wizard draft.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitted  Status = "submitted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllowedTransitions represents the persisted order flow as code. The wizard only ever
// performs draft -> submitted; the rest is driven by admins and providers.
var AllowedTransitions = map[Status][]Status{
	StatusDraft:      {StatusSubmitted, StatusCancelled},
	StatusSubmitted:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusDelivered, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

type Step int

const (
	StepLocation      Step = 1
	StepConfiguration Step = 2
	StepReview        Step = 3
)

// Address types stored alongside an order.
const (
	AddressTypeDraft    = "draft"
	AddressTypeShooting = "shooting_location"
)

type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Notes       string `json:"notes,omitempty"`
}

// Draft is a not-yet-submitted order owned by one wizard session.
//
// The location flag, distance and travel cost are unexported: they change only through
// ApplyEligibility and are reset by every address change.
type Draft struct {
	Step                Step
	Category            pricing.Category
	Address             Address
	Selection           pricing.Selection
	DraftOrderID        *types.ID
	OrderNumber         string
	RequestedAt         *time.Time
	AlternativeAt       *time.Time
	SpecialInstructions string

	locationValidated bool
	distanceKm        float64
	travelCost        decimal.Decimal
}

func NewDraft() Draft {
	return Draft{Step: StepLocation}
}

func (d *Draft) LocationValidated() bool     { return d.locationValidated }
func (d *Draft) DistanceKm() float64         { return d.distanceKm }
func (d *Draft) TravelCost() decimal.Decimal { return d.travelCost }

func (d *Draft) SetAddress(a Address) {
	d.Address = a
	d.ClearLocation()
}

// ApplyEligibility records a successful eligibility check for the current address.
func (d *Draft) ApplyEligibility(distanceKm float64, travelCost decimal.Decimal) {
	d.locationValidated = true
	d.distanceKm = distanceKm
	d.travelCost = travelCost
}

func (d *Draft) ClearLocation() {
	d.locationValidated = false
	d.distanceKm = 0
	d.travelCost = decimal.Zero
}

// TravelFee is the travel cost charged for the selected category; only on-site work pays it.
func (d *Draft) TravelFee() decimal.Decimal {
	if d.Category.OnSite() {
		return d.travelCost
	}
	return decimal.Zero
}

// Quote prices the current selection. ok is false when there is nothing to price yet.
func (d *Draft) Quote(p *pricing.Service) (pricing.Breakdown, bool) {
	if d.Selection == nil || !d.Selection.HasBasis() {
		return pricing.Breakdown{}, false
	}
	return p.Estimate(d.Selection, d.TravelFee()), true
}

// LineItem is a persisted order line.
type LineItem struct {
	OrderID    types.ID
	ProductID  *types.ID
	ServiceID  string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Metadata   []byte
}

type Upgrade struct {
	OrderID types.ID
	AddOnID types.ID
	Name    string
	Price   decimal.Decimal
}

// SubmittedRecord is the draft -> submitted update of the order row.
type SubmittedRecord struct {
	OrderID             types.ID
	Total               decimal.Decimal
	RequestedAt         *time.Time
	AlternativeAt       *time.Time
	SpecialInstructions string
}

// Submitted is handed to the notification fan-out once the order rows are written.
type Submitted struct {
	OrderID     types.ID         `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	UserID      types.ID         `json:"user_id"`
	Category    pricing.Category `json:"category"`
	Total       decimal.Decimal  `json:"total"`
	SubmittedAt time.Time        `json:"submitted_at"`
}
