// README: Order store backed by PostgreSQL.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("order not found")
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) NextOrderNumber(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n)
	return n, err
}

func (s *Store) CreateDraft(ctx context.Context, id, userID types.ID, orderNumber string) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO orders (id, user_id, order_number, status, total_amount, created_at, updated_at)
        VALUES ($1, $2, $3, $4, 0, NOW(), NOW())`,
		string(id), string(userID), orderNumber, string(StatusDraft),
	)
	return err
}

func (s *Store) GetStatus(ctx context.Context, id types.ID) (Status, error) {
	var st Status
	err := s.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, string(id)).Scan(&st)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return st, nil
}

func (s *Store) UpdateDraftTotal(ctx context.Context, id types.ID, total decimal.Decimal) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE orders
        SET total_amount = $2::numeric, updated_at = NOW()
        WHERE id = $1 AND status = $3`,
		string(id), total.String(), string(StatusDraft),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpsertDraftAddress(ctx context.Context, orderID types.ID, a Address) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO addresses (order_id, address_type, street, house_number, postal_code, city, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (order_id, address_type) DO UPDATE
        SET street = EXCLUDED.street,
            house_number = EXCLUDED.house_number,
            postal_code = EXCLUDED.postal_code,
            city = EXCLUDED.city,
            notes = EXCLUDED.notes`,
		string(orderID), AddressTypeDraft, a.Street, a.HouseNumber, a.PostalCode, a.City, a.Notes,
	)
	return err
}

// MarkSubmitted only succeeds for an order still in draft, so a second submission of the same
// draft fails here before any rows are duplicated.
func (s *Store) MarkSubmitted(ctx context.Context, rec SubmittedRecord) error {
	if !CanTransition(StatusDraft, StatusSubmitted) {
		return ErrInvalidState
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE orders
        SET status = $2,
            total_amount = $3::numeric,
            requested_at = $4,
            alternative_at = $5,
            special_instructions = NULLIF($6, ''),
            submitted_at = NOW(),
            updated_at = NOW()
        WHERE id = $1 AND status = $7`,
		string(rec.OrderID), string(StatusSubmitted), rec.Total.String(),
		rec.RequestedAt, rec.AlternativeAt, rec.SpecialInstructions, string(StatusDraft),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s is not a draft: %w", rec.OrderID, ErrInvalidState)
	}
	return nil
}

func (s *Store) InsertLineItem(ctx context.Context, item LineItem) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO order_items (order_id, product_id, service_id, quantity, unit_price, total_price, metadata)
        VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7)`,
		string(item.OrderID), toStringPtr(item.ProductID), item.ServiceID, item.Quantity,
		item.UnitPrice.String(), item.TotalPrice.String(), item.Metadata,
	)
	return err
}

func (s *Store) InsertUpgrade(ctx context.Context, u Upgrade) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO order_upgrades (order_id, addon_id, name, price)
        VALUES ($1, $2, $3, $4::numeric)`,
		string(u.OrderID), string(u.AddOnID), u.Name, u.Price.String(),
	)
	return err
}

// InsertAddress appends an address row; unlike the draft address it is not upserted.
func (s *Store) InsertAddress(ctx context.Context, orderID types.ID, addressType string, a Address) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO addresses (order_id, address_type, street, house_number, postal_code, city, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(orderID), addressType, a.Street, a.HouseNumber, a.PostalCode, a.City, a.Notes,
	)
	return err
}

func toStringPtr(id *types.ID) *string {
	if id == nil {
		return nil
	}
	v := string(*id)
	return &v
}
