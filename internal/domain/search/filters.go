package search

import (
	"sort"
	"strings"

	"tripdesk/internal/domain/party"
)

// SortOrder identifies a supported result ordering.
type SortOrder string

const (
	SortRelevance  SortOrder = "relevance"
	SortPriceAsc   SortOrder = "priceAsc"
	SortPriceDesc  SortOrder = "priceDesc"
	SortRatingDesc SortOrder = "ratingDesc"
	SortNameAsc    SortOrder = "nameAsc"
)

// PricePoint is the UI price bucket, expressed per night per adult.
// Max marks the open-ended "no limit" bucket; a zero Amount with Max unset
// means the agent picked no bucket at all. Either way no budget is sent.
type PricePoint struct {
	Amount float64
	Max    bool
}

// FilterState is a snapshot of the sidebar filter UI. Empty fields mean
// "no constraint" and are omitted from the provider query entirely.
type FilterState struct {
	TextSearch          string
	StarRatings         []int
	ReviewRatingBuckets []int
	AmenityFlags        []string
	PricePoint          PricePoint
	PropertyType        string
	Tags                []string
}

// FilterBy is the provider's filter fragment. Every field is omitempty on
// purpose: the provider treats absence, not an empty value, as unconstrained.
type FilterBy struct {
	FreeText      string   `json:"freeText,omitempty"`
	Ratings       []int    `json:"ratings,omitempty"`
	ReviewRatings []int    `json:"reviewRatings,omitempty"`
	Facilities    []string `json:"facilities,omitempty"`
	FreeBreakfast bool     `json:"freeBreakfast,omitempty"`
	Type          string   `json:"type,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// SortBy is the provider's sort fragment: a discriminant id/value pair plus
// the resolved trip budget, all in one object.
type SortBy struct {
	ID     int     `json:"id"`
	Value  string  `json:"value"`
	Order  string  `json:"order,omitempty"`
	Budget float64 `json:"budget,omitempty"`
}

var sortCodes = map[SortOrder]SortBy{
	SortRelevance:  {ID: 1, Value: "relevance"},
	SortPriceAsc:   {ID: 2, Value: "finalRate", Order: "asc"},
	SortPriceDesc:  {ID: 3, Value: "finalRate", Order: "desc"},
	SortRatingDesc: {ID: 4, Value: "rating", Order: "desc"},
	SortNameAsc:    {ID: 5, Value: "name", Order: "asc"},
}

// Amenity flags map to the provider's facility names; free breakfast is a
// standalone boolean on the rate, not a facility.
const AmenityFreeBreakfast = "freeBreakfast"

var amenityFacilities = map[string]string{
	"wifi":           "WiFi",
	"pool":           "Swimming Pool",
	"spa":            "Spa",
	"parking":        "Parking",
	"gym":            "Fitness Centre",
	"restaurant":     "Restaurant",
	"bar":            "Bar",
	"airportShuttle": "Airport Shuttle",
	"roomService":    "Room Service",
	"petFriendly":    "Pets Allowed",
}

// BudgetCeiling converts the per-night-per-adult price point into the absolute
// trip budget the provider compares final rates against. This is the one place
// that rule lives; every call path must go through it. A "max" bucket or an
// unset bucket yields zero, meaning unconstrained.
func BudgetCeiling(point PricePoint, stay SearchContext, p party.PartyConfiguration) float64 {
	if point.Max || point.Amount <= 0 {
		return 0
	}
	return point.Amount * float64(stay.Nights()) * float64(party.TotalAdults(p))
}

// BuildQuery translates the UI filter snapshot and sort choice into the
// provider's filterBy/sortBy fragments. filterBy is nil when every filter is
// empty so the key is absent from the request body. sortBy is always present.
func BuildQuery(filters FilterState, order SortOrder, stay SearchContext, p party.PartyConfiguration) (*FilterBy, SortBy) {
	sortBy, ok := sortCodes[order]
	if !ok {
		sortBy = sortCodes[SortRelevance]
	}
	sortBy.Budget = BudgetCeiling(filters.PricePoint, stay, p)

	fb := FilterBy{
		FreeText: strings.TrimSpace(filters.TextSearch),
		Ratings:  dedupeSorted(filters.StarRatings, false),
		Type:     strings.TrimSpace(filters.PropertyType),
		Tags:     cleanTokens(filters.Tags),
	}
	// review buckets go out descending, per the provider contract
	fb.ReviewRatings = dedupeSorted(filters.ReviewRatingBuckets, true)
	for _, flag := range filters.AmenityFlags {
		flag = strings.TrimSpace(flag)
		if flag == AmenityFreeBreakfast {
			fb.FreeBreakfast = true
			continue
		}
		if facility, ok := amenityFacilities[flag]; ok {
			fb.Facilities = append(fb.Facilities, facility)
		}
	}
	sort.Strings(fb.Facilities)

	if fb.isEmpty() {
		return nil, sortBy
	}
	return &fb, sortBy
}

func (f FilterBy) isEmpty() bool {
	return f.FreeText == "" &&
		len(f.Ratings) == 0 &&
		len(f.ReviewRatings) == 0 &&
		len(f.Facilities) == 0 &&
		!f.FreeBreakfast &&
		f.Type == "" &&
		len(f.Tags) == 0
}

func dedupeSorted(values []int, descending bool) []int {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v < 1 || v > 5 {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	if descending {
		sort.Sort(sort.Reverse(sort.IntSlice(out)))
	} else {
		sort.Ints(out)
	}
	return out
}

func cleanTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
