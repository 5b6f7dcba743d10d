package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tripdesk/internal/app/session"
	"tripdesk/internal/domain/party"
	"tripdesk/internal/domain/search"
)

type searchRequestBody struct {
	Occupancies []party.Occupancy `json:"occupancies"`
	Page        int               `json:"page"`
	Nationality string            `json:"nationality"`
	TraceID     string            `json:"traceId,omitempty"`
	FilterBy    *search.FilterBy  `json:"filterBy,omitempty"`
	SortBy      search.SortBy     `json:"sortBy"`
}

type searchEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Results []searchResult `json:"results"`
	} `json:"data"`
}

type searchResult struct {
	Data          []search.HotelSummary `json:"data"`
	TraceID       string                `json:"traceId"`
	CurrentPage   int                   `json:"currentPage"`
	NextPage      int                   `json:"nextPage"`
	TotalCount    int                   `json:"totalCount"`
	FilteredCount int                   `json:"filteredCount"`
}

// FetchPage requests one page of the hotel search. Page 1 opens a provider
// search session; later pages must echo the traceId the first response
// returned. An empty result set is a valid page, not an error.
func (c *Client) FetchPage(ctx context.Context, req session.PageRequest) (search.Page, error) {
	path := fmt.Sprintf("/hotels/%s/%s/%s/%s",
		url.PathEscape(req.Stay.InquiryToken),
		url.PathEscape(req.Stay.CityName),
		req.Stay.CheckInDate(),
		req.Stay.CheckOutDate(),
	)
	body := searchRequestBody{
		Occupancies: req.Occupancies,
		Page:        req.Page,
		Nationality: req.Stay.Nationality,
		TraceID:     req.TraceID,
		FilterBy:    req.FilterBy,
		SortBy:      req.SortBy,
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, path, req.Stay.InquiryToken, body)
	if err != nil {
		return search.Page{}, err
	}
	var envelope searchEnvelope
	if err := c.do(httpReq, &envelope); err != nil {
		return search.Page{}, err
	}
	if len(envelope.Data.Results) == 0 {
		return search.Page{Hotels: []search.HotelSummary{}, PageNumber: req.Page}, nil
	}
	res := envelope.Data.Results[0]
	hotels := res.Data
	if hotels == nil {
		hotels = []search.HotelSummary{}
	}
	return search.Page{
		Hotels:            hotels,
		ContinuationToken: res.TraceID,
		PageNumber:        res.CurrentPage,
		HasNextPage:       res.NextPage > 0,
		TotalCount:        res.TotalCount,
		FilteredCount:     res.FilteredCount,
	}, nil
}

var _ session.Pager = (*Client)(nil)
