// README: Wizard session errors, commands and the JSON view of a draft.
package wizard

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/order"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

var (
	ErrSessionNotFound     = errors.New("wizard session not found")
	ErrIncompleteAddress   = errors.New("address is incomplete")
	ErrGeocoderUnavailable = errors.New("geocoding is not configured; coordinates are required")
	ErrLocationUnavailable = errors.New("no provider serves this location")
	ErrAddressChanged      = errors.New("address changed during validation")
	ErrNoCategory          = errors.New("no service category selected")
	ErrCategoryMismatch    = errors.New("selection does not match the selected category")
	ErrUnknownItem         = errors.New("unknown catalog item")
	ErrNoSelection         = errors.New("nothing selected to price")
	ErrStepBlocked         = errors.New("step requirements not met")
	ErrSubmitInFlight      = errors.New("submission already in progress")
)

// StepBlockedError lists what keeps the draft on its current step.
type StepBlockedError struct {
	Step   order.Step
	Errors []string
}

func (e *StepBlockedError) Error() string { return ErrStepBlocked.Error() }
func (e *StepBlockedError) Unwrap() error { return ErrStepBlocked }

type ScheduleCommand struct {
	RequestedAt         *time.Time
	AlternativeAt       *time.Time
	SpecialInstructions string
}

// ConfigureRequest selects catalog entries by identifier. Only the fields of the session's
// category are read.
type ConfigureRequest struct {
	PackageID      string   `json:"package_id"`
	AddOnIDs       []string `json:"add_on_ids"`
	Units          int      `json:"units"`
	Photos         int      `json:"photos"`
	OptionIDs      []string `json:"option_ids"`
	Rooms          int      `json:"rooms"`
	Variations     int      `json:"variations"`
	CertificateIDs []string `json:"certificate_ids"`
}

type View struct {
	ID                  string            `json:"id"`
	UserID              types.ID          `json:"user_id"`
	DraftOrderID        *types.ID         `json:"draft_order_id"`
	OrderNumber         string            `json:"order_number"`
	Step                order.Step        `json:"step"`
	Category            pricing.Category  `json:"category,omitempty"`
	Address             order.Address     `json:"address"`
	LocationValidated   bool              `json:"location_validated"`
	DistanceKm          float64           `json:"distance_km,omitempty"`
	TravelCost          decimal.Decimal   `json:"travel_cost"`
	Selection           pricing.Selection `json:"selection,omitempty"`
	RequestedAt         *time.Time        `json:"requested_at,omitempty"`
	AlternativeAt       *time.Time        `json:"alternative_at,omitempty"`
	SpecialInstructions string            `json:"special_instructions,omitempty"`
	CanAdvance          bool              `json:"can_advance"`
	CanSubmit           bool              `json:"can_submit"`
	AutosaveRunning     bool              `json:"autosave_running"`
}
