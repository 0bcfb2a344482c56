// README: Catalog store backed by PostgreSQL.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) FindPackage(ctx context.Context, category, name, unit string) (*Product, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, category, name, unit, base_price::text
		FROM products
		WHERE category = $1 AND name = $2 AND unit = $3 AND is_active
		LIMIT 1`, category, name, unit,
	)
	var p Product
	var price string
	err := row.Scan(&p.ID, &p.Category, &p.Name, &p.Unit, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.BasePrice, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %s price: %w", p.ID, err)
	}
	return &p, nil
}

func (s *Store) FindAddOn(ctx context.Context, category, name string) (*AddOn, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, category, name, price::text
		FROM addons
		WHERE category = $1 AND name = $2 AND is_active
		LIMIT 1`, category, name,
	)
	var a AddOn
	var price string
	err := row.Scan(&a.ID, &a.Category, &a.Name, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("addon %s price: %w", a.ID, err)
	}
	return &a, nil
}
