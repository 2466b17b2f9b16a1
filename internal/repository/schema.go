package repository

import (
	"context"
	"fmt"
)

// EnsureSchema creates the geocache and donations tables if they do not
// exist. It is idempotent and safe to run on every pipeline start.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS geocache (
			key        TEXT PRIMARY KEY,
			lat        DOUBLE PRECISION NOT NULL,
			lon        DOUBLE PRECISION NOT NULL,
			is_exact   SMALLINT NOT NULL,
			updated_at TEXT NOT NULL
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS donations (
			id             BIGSERIAL PRIMARY KEY,
			donation_date  TEXT NOT NULL,
			city           TEXT NOT NULL,
			street         TEXT,
			num_house      TEXT,
			name           TEXT NOT NULL,
			from_hour      TEXT NOT NULL,
			to_hour        TEXT NOT NULL,
			scheduling_url TEXT,
			latitude       DOUBLE PRECISION NOT NULL,
			longitude      DOUBLE PRECISION NOT NULL,
			is_exact       SMALLINT NOT NULL DEFAULT 0
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_donations_date ON donations (donation_date);`,
		`CREATE INDEX IF NOT EXISTS idx_donations_city ON donations (city);`,
	}

	for _, statement := range statements {
		if _, err := r.db.Exec(ctx, statement); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}
