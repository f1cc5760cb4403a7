package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

type CandidateRepo struct {
	pool *pgxpool.Pool
}

func NewCandidateRepo(pool *pgxpool.Pool) *CandidateRepo {
	return &CandidateRepo{pool: pool}
}

// UpsertBatch stores every candidate by directory id, overwriting fields
// from the latest observation, fills ids back and links each row to the
// given search. The whole batch commits in one transaction.
func (r *CandidateRepo) UpsertBatch(ctx context.Context, searchID int64, candidates []*model.Candidate) error {
	if searchID <= 0 {
		return fmt.Errorf("invalid search id")
	}
	if len(candidates) == 0 {
		return nil
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, cand := range candidates {
			if cand == nil || cand.DirectoryID == "" {
				return fmt.Errorf("invalid candidate payload")
			}
			if err := tx.QueryRow(ctx, `
INSERT INTO candidates (
	directory_id, first_name, last_name, domain, sex_id,
	country_id, country_name, city_id, city_name, hometown,
	birth_day, birth_month, birth_year, last_seen, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
ON CONFLICT (directory_id) DO UPDATE SET
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	domain = EXCLUDED.domain,
	sex_id = EXCLUDED.sex_id,
	country_id = EXCLUDED.country_id,
	country_name = EXCLUDED.country_name,
	city_id = EXCLUDED.city_id,
	city_name = EXCLUDED.city_name,
	hometown = EXCLUDED.hometown,
	birth_day = EXCLUDED.birth_day,
	birth_month = EXCLUDED.birth_month,
	birth_year = EXCLUDED.birth_year,
	last_seen = EXCLUDED.last_seen,
	updated_at = NOW()
RETURNING id
`, cand.DirectoryID, cand.FirstName, cand.LastName, cand.Domain, int(cand.Sex),
				cand.CountryID, cand.CountryName, cand.CityID, cand.CityName, cand.Hometown,
				cand.Birth.Day, cand.Birth.Month, cand.Birth.Year, cand.LastSeen).Scan(&cand.ID); err != nil {
				return fmt.Errorf("upsert candidate %s: %w", cand.DirectoryID, err)
			}

			if _, err := tx.Exec(ctx, `
INSERT INTO search_candidates (search_id, candidate_id)
VALUES ($1, $2)
ON CONFLICT (search_id, candidate_id) DO NOTHING
`, searchID, cand.ID); err != nil {
				return fmt.Errorf("link candidate to search: %w", err)
			}
		}
		return nil
	})
}

func scanCandidate(row pgx.Rows) (*model.Candidate, error) {
	var (
		cand  model.Candidate
		sexID int
	)
	if err := row.Scan(&cand.ID, &cand.DirectoryID, &cand.FirstName, &cand.LastName,
		&cand.Domain, &sexID, &cand.CountryID, &cand.CountryName, &cand.CityID,
		&cand.CityName, &cand.Hometown, &cand.Birth.Day, &cand.Birth.Month,
		&cand.Birth.Year, &cand.LastSeen, &cand.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan candidate: %w", err)
	}
	cand.Sex = enums.Sex(sexID)
	return &cand, nil
}
