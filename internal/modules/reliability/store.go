// README: Aggregates provider_assignments into per-provider outcome counts.
package reliability

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

// Outcomes counts a completed assignment as accepted too; it could not complete otherwise.
func (s *Store) Outcomes(ctx context.Context) ([]Outcome, error) {
	rows, err := s.db.Query(ctx, `
        SELECT provider_id,
               COUNT(*),
               COUNT(*) FILTER (WHERE status IN ('accepted', 'completed')),
               COUNT(*) FILTER (WHERE status = 'declined'),
               COUNT(*) FILTER (WHERE status = 'auto_declined'),
               COUNT(*) FILTER (WHERE status = 'completed')
        FROM provider_assignments
        GROUP BY provider_id
        ORDER BY provider_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var id string
		if err := rows.Scan(&id, &o.Total, &o.Accepted, &o.ManuallyDeclined, &o.AutoDeclinedOnTimeout, &o.Completed); err != nil {
			return nil, err
		}
		o.ProviderID = types.ID(id)
		out = append(out, o)
	}
	return out, rows.Err()
}
