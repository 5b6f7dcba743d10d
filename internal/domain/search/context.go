package search

import (
	"math"
	"time"
)

// SearchContext pins one logical search to a destination and stay window.
// It is immutable once a session has started; changing any field means a
// new session and a discarded continuation token.
type SearchContext struct {
	CityName     string
	CheckIn      time.Time
	CheckOut     time.Time
	InquiryToken string
	Nationality  string
}

// Nights returns the trip length in nights, never less than one. Same-day
// and inverted windows count as a single night so budget math stays sane.
func (c SearchContext) Nights() int {
	if c.CheckIn.IsZero() || c.CheckOut.IsZero() {
		return 1
	}
	nights := int(math.Ceil(c.CheckOut.Sub(c.CheckIn).Hours() / 24))
	if nights < 1 {
		return 1
	}
	return nights
}

// CheckInDate formats the check-in the way the provider path segments expect.
func (c SearchContext) CheckInDate() string {
	return c.CheckIn.Format("2006-01-02")
}

// CheckOutDate formats the check-out for provider path segments.
func (c SearchContext) CheckOutDate() string {
	return c.CheckOut.Format("2006-01-02")
}
