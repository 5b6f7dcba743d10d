package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tripdesk/internal/app/commit"
)

type selectionEnvelope struct {
	Data commit.Selection `json:"data"`
}

// SelectRoom executes the provider's room-selection step for a resolved
// recommendation.
func (c *Client) SelectRoom(ctx context.Context, req commit.SelectRoomRequest) (commit.Selection, error) {
	path := fmt.Sprintf("/hotels/%s/%s/select-room",
		url.PathEscape(req.InquiryToken),
		url.PathEscape(req.HotelID),
	)
	httpReq, err := c.newRequest(ctx, http.MethodPost, path, req.InquiryToken, req)
	if err != nil {
		return commit.Selection{}, err
	}
	var envelope selectionEnvelope
	if err := c.do(httpReq, &envelope); err != nil {
		return commit.Selection{}, err
	}
	return envelope.Data, nil
}

// AddHotel appends a new hotel-day entry to the itinerary.
func (c *Client) AddHotel(ctx context.Context, req commit.ItineraryRequest) (commit.ItineraryResult, error) {
	return c.writeItinerary(ctx, http.MethodPost, req)
}

// ReplaceHotel swaps an existing hotel-day entry for the new selection.
func (c *Client) ReplaceHotel(ctx context.Context, req commit.ItineraryRequest) (commit.ItineraryResult, error) {
	return c.writeItinerary(ctx, http.MethodPut, req)
}

func (c *Client) writeItinerary(ctx context.Context, method string, req commit.ItineraryRequest) (commit.ItineraryResult, error) {
	path := fmt.Sprintf("/itinerary/%s/hotel", url.PathEscape(req.ItineraryToken))
	httpReq, err := c.newRequest(ctx, method, path, req.InquiryToken, req)
	if err != nil {
		return commit.ItineraryResult{}, err
	}
	var result commit.ItineraryResult
	if err := c.do(httpReq, &result); err != nil {
		return commit.ItineraryResult{}, err
	}
	return result, nil
}

var (
	_ commit.RoomSelector    = (*Client)(nil)
	_ commit.ItineraryWriter = (*Client)(nil)
)
