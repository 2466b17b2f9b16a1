package repository

import (
	"context"
	"fmt"

	"github.com/avivlevi/donormap/internal/models"
)

// ReplaceDonations clears the donations table and loads the given batch in a
// single transaction, so readers never observe a half-written run.
func (r *Repository) ReplaceDonations(ctx context.Context, donations []models.Donation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `DELETE FROM donations;`); err != nil {
		return fmt.Errorf("failed to clear donations table: %w", err)
	}

	insert := `
		INSERT INTO donations (
			donation_date, city, street, num_house, name,
			from_hour, to_hour, scheduling_url, latitude, longitude, is_exact
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	for _, donation := range donations {
		var exact int16
		if donation.Exact {
			exact = 1
		}

		_, err = tx.Exec(ctx, insert,
			donation.DonationDate, donation.City, donation.Street, donation.NumHouse, donation.Name,
			donation.FromHour, donation.ToHour, donation.SchedulingURL,
			donation.Latitude, donation.Longitude, exact,
		)
		if err != nil {
			return fmt.Errorf("failed to insert donation record: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit donations batch: %w", err)
	}

	r.log.DebugContext(ctx, "Donations table replaced", "records", len(donations))

	return nil
}

// DonationsByDate returns every donation station for one date (YYYY-MM-DD).
func (r *Repository) DonationsByDate(ctx context.Context, date string) ([]models.Donation, error) {
	query := `
		SELECT id, donation_date, city, street, num_house, name,
			from_hour, to_hour, scheduling_url, latitude, longitude, is_exact
		FROM donations
		WHERE donation_date = $1
		ORDER BY city, name;
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query donations by date: %w", err)
	}
	defer rows.Close()

	var donations []models.Donation
	for rows.Next() {
		var donation models.Donation
		var exact int16
		if errScan := rows.Scan(
			&donation.ID, &donation.DonationDate, &donation.City, &donation.Street,
			&donation.NumHouse, &donation.Name, &donation.FromHour, &donation.ToHour,
			&donation.SchedulingURL, &donation.Latitude, &donation.Longitude, &exact,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan donation record: %w", errScan)
		}
		donation.Exact = exact != 0
		donations = append(donations, donation)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return donations, nil
}

// Cities returns the distinct list of cities with donation stations.
func (r *Repository) Cities(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT city
		FROM donations
		ORDER BY city;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var city string
		if errScan := rows.Scan(&city); errScan != nil {
			return nil, fmt.Errorf("failed to scan city: %w", errScan)
		}
		cities = append(cities, city)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return cities, nil
}
