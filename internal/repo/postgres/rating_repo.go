package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

type RatingRepo struct {
	pool *pgxpool.Pool
}

func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

// RecordRating stores the operator's verdict for a candidate. Repeating the
// same verdict only bumps updated_at.
func (r *RatingRepo) RecordRating(ctx context.Context, operatorID, candidateID int64, rating enums.Rating) error {
	if operatorID <= 0 || candidateID <= 0 {
		return fmt.Errorf("invalid rating key")
	}
	if !rating.Valid() {
		return fmt.Errorf("invalid rating %q", rating)
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO operator_ratings (operator_id, candidate_id, rating)
VALUES ($1, $2, $3)
ON CONFLICT (operator_id, candidate_id) DO UPDATE SET
	rating = EXCLUDED.rating,
	updated_at = NOW()
`, operatorID, candidateID, string(rating))
	if err != nil {
		return fmt.Errorf("record rating: %w", err)
	}
	return nil
}

// MapByDirectoryIDs returns the stored ratings for the given directory ids,
// keyed by directory id. Ids without a stored rating are absent from the map.
func (r *RatingRepo) MapByDirectoryIDs(ctx context.Context, operatorID int64, directoryIDs []string) (map[string]enums.Rating, error) {
	if operatorID <= 0 {
		return nil, fmt.Errorf("invalid operator id")
	}
	if len(directoryIDs) == 0 {
		return map[string]enums.Rating{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT c.directory_id, r.rating
FROM operator_ratings r
JOIN candidates c ON c.id = r.candidate_id
WHERE r.operator_id = $1 AND c.directory_id = ANY($2)
`, operatorID, directoryIDs)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]enums.Rating, len(directoryIDs))
	for rows.Next() {
		var (
			directoryID string
			rating      string
		)
		if err := rows.Scan(&directoryID, &rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out[directoryID] = enums.Rating(rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// ListByRating returns the operator's candidates carrying the given rating,
// most recently rated first.
func (r *RatingRepo) ListByRating(ctx context.Context, operatorID int64, rating enums.Rating) ([]*model.Candidate, error) {
	if operatorID <= 0 {
		return nil, fmt.Errorf("invalid operator id")
	}
	if !rating.Valid() {
		return nil, fmt.Errorf("invalid rating %q", rating)
	}

	rows, err := r.pool.Query(ctx, `
SELECT c.id, c.directory_id, c.first_name, c.last_name, c.domain, c.sex_id,
	c.country_id, c.country_name, c.city_id, c.city_name, c.hometown,
	c.birth_day, c.birth_month, c.birth_year, c.last_seen, c.updated_at
FROM operator_ratings r
JOIN candidates c ON c.id = r.candidate_id
WHERE r.operator_id = $1 AND r.rating = $2
ORDER BY r.updated_at DESC, c.id DESC
`, operatorID, string(rating))
	if err != nil {
		return nil, fmt.Errorf("query rated candidates: %w", err)
	}
	defer rows.Close()

	var out []*model.Candidate
	for rows.Next() {
		cand, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		cand.Rating = rating
		out = append(out, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rated candidates: %w", err)
	}
	return out, nil
}
