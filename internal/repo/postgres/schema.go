package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS operators (
	id           BIGSERIAL PRIMARY KEY,
	directory_id TEXT NOT NULL UNIQUE,
	first_name   TEXT NOT NULL,
	last_name    TEXT,
	domain       TEXT,
	sex_id       INT,
	country_id   INT,
	country_name TEXT,
	city_id      INT,
	city_name    TEXT,
	hometown     TEXT,
	birth_day    INT,
	birth_month  INT,
	birth_year   INT,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS candidates (
	id           BIGSERIAL PRIMARY KEY,
	directory_id TEXT NOT NULL UNIQUE,
	first_name   TEXT NOT NULL,
	last_name    TEXT,
	domain       TEXT,
	sex_id       INT,
	country_id   INT,
	country_name TEXT,
	city_id      INT,
	city_name    TEXT,
	hometown     TEXT,
	birth_day    INT,
	birth_month  INT,
	birth_year   INT,
	last_seen    BIGINT,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS searches (
	id          BIGSERIAL PRIMARY KEY,
	operator_id BIGINT NOT NULL REFERENCES operators(id) ON DELETE CASCADE,
	sex_id      INT,
	status_id   INT,
	city_id     INT,
	city_name   TEXT,
	min_age     INT,
	max_age     INT,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS search_candidates (
	search_id    BIGINT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
	candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	PRIMARY KEY (search_id, candidate_id)
)`,
	`CREATE TABLE IF NOT EXISTS operator_ratings (
	operator_id  BIGINT NOT NULL REFERENCES operators(id) ON DELETE CASCADE,
	candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	rating       TEXT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (operator_id, candidate_id)
)`,
	`CREATE TABLE IF NOT EXISTS photos (
	id            BIGSERIAL PRIMARY KEY,
	candidate_id  BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	external_id   BIGINT NOT NULL,
	url           TEXT,
	likes_count   INT,
	comments_count INT,
	reposts_count INT,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
}

// dropStatements reverse dependency order so foreign keys never block a drop.
var dropStatements = []string{
	`DROP TABLE IF EXISTS photos CASCADE`,
	`DROP TABLE IF EXISTS operator_ratings CASCADE`,
	`DROP TABLE IF EXISTS search_candidates CASCADE`,
	`DROP TABLE IF EXISTS searches CASCADE`,
	`DROP TABLE IF EXISTS candidates CASCADE`,
	`DROP TABLE IF EXISTS operators CASCADE`,
}

// EnsureSchema creates all tables that do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}
		}
		return nil
	})
}

// ResetSchema drops every table and recreates it from scratch. Used by the
// one-shot storage rebuild flag at startup; all stored data is lost.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, stmt := range dropStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("drop tables: %w", err)
			}
		}
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("recreate schema: %w", err)
			}
		}
		return nil
	})
}
