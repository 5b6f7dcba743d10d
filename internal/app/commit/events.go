package commit

import "time"

// SelectionCommitted is published after a hotel-day entry lands in the
// itinerary, for downstream consumers (reporting, linked-transfer sync).
type SelectionCommitted struct {
	ItineraryToken   string    `json:"itineraryToken"`
	HotelCode        string    `json:"hotelCode"`
	HotelName        string    `json:"hotelName"`
	RecommendationID string    `json:"recommendationId"`
	Kind             string    `json:"kind"`
	TotalRate        float64   `json:"totalRate,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	At               time.Time `json:"at"`
}

func (e SelectionCommitted) EventName() string     { return "hotel.selection.committed" }
func (e SelectionCommitted) AggregateID() string   { return e.ItineraryToken }
func (e SelectionCommitted) OccurredAt() time.Time { return e.At }
