package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

type OperatorRepo struct {
	pool *pgxpool.Pool
}

func NewOperatorRepo(pool *pgxpool.Pool) *OperatorRepo {
	return &OperatorRepo{pool: pool}
}

// Upsert inserts or updates an operator by directory id and fills op.ID.
// Country is sticky: an already stored country survives the update and is
// copied back into op, unless forceLocation is set because the operator
// explicitly picked a new country.
func (r *OperatorRepo) Upsert(ctx context.Context, op *model.Operator, forceLocation bool) error {
	if op == nil || op.DirectoryID == "" {
		return fmt.Errorf("invalid operator payload")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var (
			storedID          int64
			storedCountryID   int
			storedCountryName string
		)
		err := tx.QueryRow(ctx, `
SELECT id, COALESCE(country_id, 0), COALESCE(country_name, '')
FROM operators
WHERE directory_id = $1
FOR UPDATE
`, op.DirectoryID).Scan(&storedID, &storedCountryID, &storedCountryName)

		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// First contact: store the freshly observed location as is.
			return tx.QueryRow(ctx, `
INSERT INTO operators (
	directory_id, first_name, last_name, domain, sex_id,
	country_id, country_name, city_id, city_name, hometown,
	birth_day, birth_month, birth_year, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
RETURNING id
`, op.DirectoryID, op.FirstName, op.LastName, op.Domain, int(op.Sex),
				op.CountryID, op.CountryName, op.CityID, op.CityName, op.Hometown,
				op.Birth.Day, op.Birth.Month, op.Birth.Year).Scan(&op.ID)
		case err != nil:
			return fmt.Errorf("find operator: %w", err)
		}

		op.ID = storedID
		if !forceLocation && storedCountryID != 0 {
			// Stored country wins over the freshly observed one.
			op.CountryID = storedCountryID
			op.CountryName = storedCountryName
		}

		if _, err := tx.Exec(ctx, `
UPDATE operators SET
	first_name = $2,
	last_name = $3,
	domain = $4,
	sex_id = $5,
	country_id = $6,
	country_name = $7,
	city_id = $8,
	city_name = $9,
	hometown = $10,
	birth_day = $11,
	birth_month = $12,
	birth_year = $13,
	updated_at = NOW()
WHERE id = $1
`, op.ID, op.FirstName, op.LastName, op.Domain, int(op.Sex),
			op.CountryID, op.CountryName, op.CityID, op.CityName, op.Hometown,
			op.Birth.Day, op.Birth.Month, op.Birth.Year); err != nil {
			return fmt.Errorf("update operator: %w", err)
		}
		return nil
	})
}
