// README: Notification store backed by PostgreSQL.
package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) ListUserIDsByRole(ctx context.Context, role string) ([]types.ID, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id FROM user_roles WHERE role = $1 ORDER BY user_id`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, types.ID(id))
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, n Notification) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO notifications (user_id, type, title, message, link)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''))`,
		string(n.UserID), n.Type, n.Title, n.Message, n.Link,
	)
	return err
}
