package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

type PhotoRepo struct {
	pool *pgxpool.Pool
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

// Replace swaps the stored photo set of a candidate for the given one.
func (r *PhotoRepo) Replace(ctx context.Context, candidateID int64, photos []model.Photo) error {
	if candidateID <= 0 {
		return fmt.Errorf("invalid candidate id")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM photos WHERE candidate_id = $1`, candidateID); err != nil {
			return fmt.Errorf("clear photos: %w", err)
		}
		for _, photo := range photos {
			if _, err := tx.Exec(ctx, `
INSERT INTO photos (candidate_id, external_id, url, likes_count, comments_count, reposts_count)
VALUES ($1, $2, $3, $4, $5, $6)
`, candidateID, photo.ExternalID, photo.URL, photo.LikesCount, photo.CommentsCount, photo.RepostsCount); err != nil {
				return fmt.Errorf("insert photo: %w", err)
			}
		}
		return nil
	})
}

// ListByCandidate returns the stored photos in insertion order.
func (r *PhotoRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]model.Photo, error) {
	if candidateID <= 0 {
		return nil, fmt.Errorf("invalid candidate id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT external_id, url, likes_count, comments_count, reposts_count
FROM photos
WHERE candidate_id = $1
ORDER BY id
`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var out []model.Photo
	for rows.Next() {
		var photo model.Photo
		if err := rows.Scan(&photo.ExternalID, &photo.URL, &photo.LikesCount,
			&photo.CommentsCount, &photo.RepostsCount); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		out = append(out, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return out, nil
}
