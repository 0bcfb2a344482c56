// README: Order service creates the persisted draft shell for a new wizard session.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type DraftCreator interface {
	NextOrderNumber(ctx context.Context) (int64, error)
	CreateDraft(ctx context.Context, id, userID types.ID, orderNumber string) error
}

type Service struct {
	store DraftCreator
	now   func() time.Time
}

func NewService(store DraftCreator) *Service {
	return &Service{store: store, now: time.Now}
}

type CreateDraftCommand struct {
	UserID types.ID
}

type CreatedDraft struct {
	ID          types.ID
	OrderNumber string
}

// CreateDraft inserts an empty draft order. The order number comes from the database sequence;
// when that is unavailable an epoch-millis number keeps the wizard usable.
func (s *Service) CreateDraft(ctx context.Context, cmd CreateDraftCommand) (CreatedDraft, error) {
	if cmd.UserID == "" {
		return CreatedDraft{}, ErrBadRequest
	}
	now := s.now()
	number, err := s.store.NextOrderNumber(ctx)
	var orderNumber string
	if err != nil {
		orderNumber = FallbackOrderNumber(now)
		zerolog.Ctx(ctx).Warn().Err(err).Str("order_number", orderNumber).Msg("order number sequence unavailable, using fallback")
	} else {
		orderNumber = FormatOrderNumber(now.Year(), number)
	}

	id := types.ID(uuid.NewString())
	if err := s.store.CreateDraft(ctx, id, cmd.UserID, orderNumber); err != nil {
		return CreatedDraft{}, fmt.Errorf("create draft order: %w", err)
	}
	return CreatedDraft{ID: id, OrderNumber: orderNumber}, nil
}

func FormatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("SS-%d-%05d", year, seq)
}

func FallbackOrderNumber(now time.Time) string {
	return fmt.Sprintf("SS-%d-%d", now.Year(), now.UnixMilli())
}
