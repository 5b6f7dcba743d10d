package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownRecommendation is returned when the requested recommendation id
// is not part of the catalog, typically because it was rejected during
// normalization or the agent is working off a stale details view.
var ErrUnknownRecommendation = errors.New("catalog: unknown recommendation")

// IncompleteRateDataError names the rate that cannot be allocated. Resolution
// is all-or-nothing: a partial allocation must never reach the booking step,
// where the provider would reject it or book the wrong room count.
type IncompleteRateDataError struct {
	RateID string
	Reason string
}

func (e *IncompleteRateDataError) Error() string {
	return fmt.Sprintf("catalog: rate %s: %s", e.RateID, e.Reason)
}

// Allocation is one room/rate pair ready for the provider's select-room call.
type Allocation struct {
	RateID    string              `json:"rateId"`
	RoomID    string              `json:"roomId"`
	Occupancy AllocationOccupancy `json:"occupancy"`
}

type AllocationOccupancy struct {
	Adults    int   `json:"adults"`
	ChildAges []int `json:"childAges,omitempty"`
}

// Resolve maps a chosen recommendation to its room/rate allocations, one per
// rate id and in the recommendation's order. Any rate missing its occupancy
// data, or referencing a room the catalog does not hold, fails the whole
// resolution.
func Resolve(recommendationID string, cat *RateCatalog) ([]Allocation, error) {
	rec, ok := cat.Recommendations[recommendationID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecommendation, recommendationID)
	}
	out := make([]Allocation, 0, len(rec.RateIDs))
	for _, rateID := range rec.RateIDs {
		if rateID == "" {
			return nil, &IncompleteRateDataError{RateID: rateID, Reason: "empty rate id"}
		}
		rate, ok := cat.Rates[rateID]
		if !ok {
			return nil, &IncompleteRateDataError{RateID: rateID, Reason: "rate not present in catalog"}
		}
		if len(rate.Occupancies) == 0 {
			return nil, &IncompleteRateDataError{RateID: rateID, Reason: "rate has no occupancy data"}
		}
		occ := rate.Occupancies[0]
		if occ.RoomID == "" {
			return nil, &IncompleteRateDataError{RateID: rateID, Reason: "occupancy has no room id"}
		}
		if _, ok := cat.Rooms[occ.RoomID]; !ok {
			return nil, &IncompleteRateDataError{RateID: rateID, Reason: fmt.Sprintf("room %s not present in catalog", occ.RoomID)}
		}
		out = append(out, Allocation{
			RateID: rateID,
			RoomID: occ.RoomID,
			Occupancy: AllocationOccupancy{
				Adults:    occ.NumOfAdults,
				ChildAges: occ.ChildAges,
			},
		})
	}
	return out, nil
}
