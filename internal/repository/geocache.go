package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avivlevi/donormap/internal/models"
)

// GetCachedLocation looks up a geocache entry by its normalized address key.
// A missing entry is not an error: it returns (nil, nil). A non-nil error
// means the cache itself is unavailable and resolution cannot proceed safely.
func (r *Repository) GetCachedLocation(ctx context.Context, key string) (*models.CacheEntry, error) {
	query := `
		SELECT lat, lon, is_exact, updated_at
		FROM geocache
		WHERE key = $1;
	`

	entry := models.CacheEntry{Key: key}
	var exact int16

	err := r.db.QueryRow(ctx, query, key).
		Scan(&entry.Coords.Latitude, &entry.Coords.Longitude, &exact, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query geocache entry: %w", err)
	}

	entry.Exact = exact != 0
	r.log.DebugContext(ctx, "Geocache hit", "key", key, "exact", entry.Exact)

	return &entry, nil
}

// SaveLocation upserts a geocache entry for the given key, overwriting any
// previous entry as a whole and stamping the current time. Repeated calls
// with the same arguments converge on the same stored row.
func (r *Repository) SaveLocation(ctx context.Context, key string, coords models.Coordinates, isExact bool) error {
	query := `
		INSERT INTO geocache (key, lat, lon, is_exact, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			is_exact = EXCLUDED.is_exact,
			updated_at = EXCLUDED.updated_at;
	`

	var exact int16
	if isExact {
		exact = 1
	}

	_, err := r.db.Exec(ctx, query, key, coords.Latitude, coords.Longitude, exact,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert geocache entry: %w", err)
	}

	return nil
}
