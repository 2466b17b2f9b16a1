package models

// Address holds the postal-address fields of a donation station as they
// arrive from the schedule provider. Every field is free text and may be
// empty or written in Hebrew.
type Address struct {
	City     string // City is the settlement name.
	Street   string // Street is the street name, often without a house number.
	NumHouse string // NumHouse is the house number as text ("5", "12a").
	Name     string // Name is the station or venue name ("Community Center").
}

// Station represents one raw donation-station record from the schedule API.
type Station struct {
	Address

	DateDonation  string // DateDonation is the raw timestamp, e.g. "2026-08-30T00:00:00".
	FromHour      string // FromHour is the opening time of the station.
	ToHour        string // ToHour is the closing time of the station.
	SchedulingURL string // SchedulingURL is the appointment booking link.
}
