// README: Notification service fans a submitted order out to every admin.
package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/order"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

type Repository interface {
	ListUserIDsByRole(ctx context.Context, role string) ([]types.ID, error)
	Insert(ctx context.Context, n Notification) error
}

type Service struct {
	repo      Repository
	publisher *Publisher
}

// NewService accepts a nil publisher; events are then not published.
func NewService(repo Repository, publisher *Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// NotifyAdmins writes one row per admin. The Kafka event that follows is best effort: the rows
// are what admins read, so a publish failure is only logged.
func (s *Service) NotifyAdmins(ctx context.Context, sub order.Submitted) error {
	admins, err := s.repo.ListUserIDsByRole(ctx, RoleAdmin)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	for _, id := range admins {
		if err := s.repo.Insert(ctx, Notification{
			UserID:  id,
			Type:    TypeNewOrder,
			Title:   "New order",
			Message: newOrderMessage(sub),
			Link:    AdminOrdersLink,
		}); err != nil {
			return fmt.Errorf("notify admin %s: %w", id, err)
		}
	}

	if s.publisher == nil {
		return nil
	}
	err = s.publisher.PublishOrderSubmitted(ctx, OrderSubmittedEvent{
		OrderID:     sub.OrderID.String(),
		OrderNumber: sub.OrderNumber,
		UserID:      sub.UserID.String(),
		Category:    string(sub.Category),
		Total:       sub.Total.StringFixed(2),
		SubmittedAt: sub.SubmittedAt,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("order_id", sub.OrderID.String()).Msg("publish order_submitted failed")
	}
	return nil
}

func newOrderMessage(sub order.Submitted) string {
	number := sub.OrderNumber
	if number == "" {
		number = sub.OrderID.String()
	}
	return fmt.Sprintf("Order %s (%s) was submitted, total %s EUR", number, sub.Category, sub.Total.StringFixed(2))
}
