package search

// HotelSummary is one search hit as the provider returns it.
type HotelSummary struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	StarRating   float64      `json:"starRating"`
	Images       []string     `json:"images"`
	Facilities   []string     `json:"facilities"`
	Reviews      []Review     `json:"reviews"`
	Availability Availability `json:"availability"`
}

type Review struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

type Availability struct {
	Rate    SummaryRate `json:"rate"`
	Options RateOptions `json:"options"`
}

type SummaryRate struct {
	FinalRate float64 `json:"finalRate"`
	Currency  string  `json:"currency"`
}

type RateOptions struct {
	FreeBreakfast    bool `json:"freeBreakfast"`
	FreeCancellation bool `json:"freeCancellation"`
	PayAtHotel       bool `json:"payAtHotel"`
	Refundable       bool `json:"refundable"`
}

// Page is one page of search results. ContinuationToken is scoped to the
// context+filter combination that produced it and must never be reused
// across a context change.
type Page struct {
	Hotels            []HotelSummary `json:"hotels"`
	ContinuationToken string         `json:"-"`
	PageNumber        int            `json:"pageNumber"`
	HasNextPage       bool           `json:"hasNextPage"`
	TotalCount        int            `json:"totalCount"`
	FilteredCount     int            `json:"filteredCount"`
}
