package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

type SearchRepo struct {
	pool *pgxpool.Pool
}

func NewSearchRepo(pool *pgxpool.Pool) *SearchRepo {
	return &SearchRepo{pool: pool}
}

// Record stores a new search for the operator and fills spec.ID. Before the
// insert it purges everything beyond the newest keep entries, so the stored
// history never exceeds keep+1 rows per operator.
func (r *SearchRepo) Record(ctx context.Context, operatorID int64, spec *model.SearchSpec, keep int) error {
	if operatorID <= 0 || spec == nil {
		return fmt.Errorf("invalid search payload")
	}
	if keep < 0 {
		keep = 0
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
DELETE FROM searches
WHERE operator_id = $1
	AND id NOT IN (
		SELECT id FROM searches
		WHERE operator_id = $1
		ORDER BY updated_at DESC, id DESC
		LIMIT $2
	)
`, operatorID, keep); err != nil {
			return fmt.Errorf("trim search history: %w", err)
		}

		if err := tx.QueryRow(ctx, `
INSERT INTO searches (operator_id, sex_id, status_id, city_id, city_name, min_age, max_age, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
RETURNING id, updated_at
`, operatorID, int(spec.Sex), int(spec.Status), spec.CityID, spec.CityName,
			spec.MinAge, spec.MaxAge).Scan(&spec.ID, &spec.SavedAt); err != nil {
			return fmt.Errorf("insert search: %w", err)
		}
		return nil
	})
}

// ListByOperator returns the stored search history, newest first.
func (r *SearchRepo) ListByOperator(ctx context.Context, operatorID int64) ([]model.SearchSpec, error) {
	if operatorID <= 0 {
		return nil, fmt.Errorf("invalid operator id")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, sex_id, status_id, city_id, COALESCE(city_name, ''), min_age, max_age, updated_at
FROM searches
WHERE operator_id = $1
ORDER BY updated_at DESC, id DESC
`, operatorID)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	specs := make([]model.SearchSpec, 0, 10)
	for rows.Next() {
		var (
			spec   model.SearchSpec
			sexID  int
			status int
		)
		if err := rows.Scan(&spec.ID, &sexID, &status, &spec.CityID, &spec.CityName,
			&spec.MinAge, &spec.MaxAge, &spec.SavedAt); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		spec.Sex = enums.Sex(sexID)
		spec.Status = enums.LoveStatus(status)
		specs = append(specs, spec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate searches: %w", rows.Err())
	}
	return specs, nil
}
