// README: Notification records and the order-submitted event.
package notification

import (
	"time"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

const (
	TypeNewOrder       = "new_order"
	AdminOrdersLink    = "/admin/orders"
	RoleAdmin          = "admin"
	EventTypeSubmitted = "order_submitted"
)

type Notification struct {
	UserID  types.ID
	Type    string
	Title   string
	Message string
	Link    string
}

// OrderSubmittedEvent is published for the downstream assignment process.
type OrderSubmittedEvent struct {
	Type        string    `json:"type"`
	TraceID     string    `json:"trace_id,omitempty"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	Total       string    `json:"total"`
	SubmittedAt time.Time `json:"submitted_at"`
}
