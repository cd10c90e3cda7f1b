package model

import "time"

// Listing is one marketplace search result. Records that fail price parsing
// never become Listings; the fetch boundary drops them before they get here.
type Listing struct {
	Title        string
	Price        float64
	ShippingCost float64
	URL          string
	ImageURL     string
}

// TotalPrice is what a buyer actually pays for the listing.
func (l Listing) TotalPrice() float64 {
	return l.Price + l.ShippingCost
}

// Card is one tracked card. Query is the search text sent to the
// marketplace; GradingFee and ProfitThreshold override the global defaults
// when set above zero.
type Card struct {
	Name            string
	Query           string
	GradingFee      float64
	ProfitThreshold float64
}

// TierStats summarizes one grading tier's capped sample.
// Nil Average/Min/Max means no data for the tier; zero is a valid price and
// never stands in for "missing".
type TierStats struct {
	Sample  []Listing `json:"sample"`
	Count   int       `json:"count"`
	Average *float64  `json:"average,omitempty"`
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
}

// Report is the per-card bundle one monitor cycle produces: stats for every
// configured tier plus a profit estimate per graded tier. A nil profit means
// one side of the estimate had no data.
type Report struct {
	Card      Card                 `json:"card"`
	Tiers     map[string]TierStats `json:"tiers"`
	Profits   map[string]*float64  `json:"profits"`
	FetchedAt time.Time            `json:"fetchedAt"`
}
