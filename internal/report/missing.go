// Package report writes the per-run CSV of station records the geocoder
// could not place, so operators can fix addresses by hand.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/avivlevi/donormap/internal/models"
)

// WriteMissing overwrites path with a CSV listing of unresolved stations.
// Nothing is written when the list is empty.
func WriteMissing(path string, stations []models.Station) error {
	if len(stations) == 0 {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create missing report: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err = writer.Write([]string{"city", "street", "num_house", "name", "donation_date"}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, station := range stations {
		record := []string{station.City, station.Street, station.NumHouse, station.Name, station.DateDonation}
		if err = writer.Write(record); err != nil {
			return fmt.Errorf("failed to write report record: %w", err)
		}
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	return nil
}
