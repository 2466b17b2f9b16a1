package models

// Donation is a fully processed donation-station record with resolved
// coordinates, as persisted and served to the map frontend.
type Donation struct {
	ID            int64   `json:"id"`
	DonationDate  string  `json:"donation_date"` // YYYY-MM-DD
	City          string  `json:"city"`
	Street        string  `json:"street"`
	NumHouse      string  `json:"num_house"`
	Name          string  `json:"name"`
	FromHour      string  `json:"from_hour"`
	ToHour        string  `json:"to_hour"`
	SchedulingURL string  `json:"scheduling_url"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Exact         bool    `json:"is_exact"` // false means the marker sits on the city centroid
}
