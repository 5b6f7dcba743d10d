package catalog

import (
	"encoding/json"
	"log/slog"
	"sort"
)

// RoomInfo describes one physical room type of the selected hotel.
type RoomInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	BedType     string   `json:"bedType,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// RateOccupancy ties a rate to the room it prices and the party it covers.
type RateOccupancy struct {
	RoomID      string `json:"roomId"`
	NumOfAdults int    `json:"numOfAdults"`
	ChildAges   []int  `json:"childAges,omitempty"`
}

// RateInfo is one bookable rate.
type RateInfo struct {
	ID          string          `json:"id"`
	FinalRate   float64         `json:"finalRate"`
	BaseRate    float64         `json:"baseRate,omitempty"`
	Currency    string          `json:"currency"`
	BoardBasis  string          `json:"boardBasis,omitempty"`
	Refundable  bool            `json:"refundable"`
	Occupancies []RateOccupancy `json:"occupancies"`
}

// Recommendation bundles the rates the provider suggests booking together,
// one rate per room of the party.
type Recommendation struct {
	ID      string   `json:"id"`
	RateIDs []string `json:"rateIds"`
}

// RateCatalog is the normalized, addressable view of one hotel's rate data.
// Every recommendation in it references only rates present in Rates; dangling
// references are rejected at construction time, never at read time.
type RateCatalog struct {
	HotelID         string                    `json:"hotelId"`
	HotelName       string                    `json:"hotelName"`
	TraceID         string                    `json:"traceId"`
	ItineraryCode   string                    `json:"itineraryCode,omitempty"`
	Items           []json.RawMessage         `json:"items,omitempty"`
	Rooms           map[string]RoomInfo       `json:"rooms"`
	Rates           map[string]RateInfo       `json:"rates"`
	Recommendations map[string]Recommendation `json:"recommendations"`
}

// RawDetails mirrors the provider's hotel-details payload. Any of the three
// nested mappings may be missing or null on the wire.
type RawDetails struct {
	HotelID         string                    `json:"hotelId"`
	Name            string                    `json:"name"`
	TraceID         string                    `json:"traceId"`
	ItineraryCode   string                    `json:"itineraryCode"`
	Items           []json.RawMessage         `json:"items"`
	Rooms           map[string]RoomInfo       `json:"rooms"`
	Rates           map[string]RateInfo       `json:"rates"`
	Recommendations map[string]Recommendation `json:"recommendations"`
}

// Normalize builds a RateCatalog from a raw details payload. Missing sections
// become empty mappings. A recommendation referencing a rate id absent from
// the rates mapping is invalid and dropped with a warning; a rate occupancy
// referencing an unknown room is kept but flagged, since resolution validates
// room completeness per rate.
func Normalize(raw RawDetails, logger *slog.Logger) *RateCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	cat := &RateCatalog{
		HotelID:         raw.HotelID,
		HotelName:       raw.Name,
		TraceID:         raw.TraceID,
		ItineraryCode:   raw.ItineraryCode,
		Items:           raw.Items,
		Rooms:           make(map[string]RoomInfo, len(raw.Rooms)),
		Rates:           make(map[string]RateInfo, len(raw.Rates)),
		Recommendations: make(map[string]Recommendation, len(raw.Recommendations)),
	}
	for id, room := range raw.Rooms {
		if room.ID == "" {
			room.ID = id
		}
		cat.Rooms[id] = room
	}
	for id, rate := range raw.Rates {
		if rate.ID == "" {
			rate.ID = id
		}
		for _, occ := range rate.Occupancies {
			if occ.RoomID == "" {
				continue
			}
			if _, ok := cat.Rooms[occ.RoomID]; !ok {
				logger.Warn("rate references unknown room",
					"hotel_id", raw.HotelID, "rate_id", id, "room_id", occ.RoomID)
			}
		}
		cat.Rates[id] = rate
	}
	for id, rec := range raw.Recommendations {
		if rec.ID == "" {
			rec.ID = id
		}
		if dangling := cat.danglingRates(rec); len(dangling) > 0 {
			logger.Warn("dropping recommendation with unknown rate ids",
				"hotel_id", raw.HotelID, "recommendation_id", id, "rate_ids", dangling)
			continue
		}
		if len(rec.RateIDs) == 0 {
			logger.Warn("dropping empty recommendation",
				"hotel_id", raw.HotelID, "recommendation_id", id)
			continue
		}
		cat.Recommendations[id] = rec
	}
	return cat
}

func (c *RateCatalog) danglingRates(rec Recommendation) []string {
	var dangling []string
	for _, rateID := range rec.RateIDs {
		if _, ok := c.Rates[rateID]; !ok {
			dangling = append(dangling, rateID)
		}
	}
	return dangling
}

// RecommendationSummary is the price-level view the selection UI renders.
type RecommendationSummary struct {
	ID            string  `json:"id"`
	TotalPrice    float64 `json:"totalPrice"`
	Currency      string  `json:"currency"`
	RatesCount    int     `json:"ratesCount"`
	MixedCurrency bool    `json:"mixedCurrency,omitempty"`
}

// ListRecommendations sums each recommendation's rates into a bookable total,
// cheapest first. Currency comes from the first resolvable rate; a mix of
// currencies within one recommendation is a data anomaly and is flagged, not
// averaged away.
func (c *RateCatalog) ListRecommendations(logger *slog.Logger) []RecommendationSummary {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]RecommendationSummary, 0, len(c.Recommendations))
	for id, rec := range c.Recommendations {
		summary := RecommendationSummary{ID: id, RatesCount: len(rec.RateIDs)}
		for _, rateID := range rec.RateIDs {
			rate := c.Rates[rateID]
			summary.TotalPrice += rate.FinalRate
			if rate.Currency == "" {
				continue
			}
			if summary.Currency == "" {
				summary.Currency = rate.Currency
			} else if summary.Currency != rate.Currency {
				summary.MixedCurrency = true
			}
		}
		if summary.MixedCurrency {
			logger.Warn("recommendation mixes currencies",
				"hotel_id", c.HotelID, "recommendation_id", id, "currency", summary.Currency)
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPrice != out[j].TotalPrice {
			return out[i].TotalPrice < out[j].TotalPrice
		}
		return out[i].ID < out[j].ID
	})
	return out
}
