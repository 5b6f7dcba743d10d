package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tripdesk/internal/domain/catalog"
)

// DetailsRequest identifies one hotel within an open search session.
type DetailsRequest struct {
	InquiryToken string
	HotelID      string
	TraceID      string
	CityName     string
	CheckIn      string
}

type detailsEnvelope struct {
	Success bool               `json:"success"`
	Data    catalog.RawDetails `json:"data"`
}

// FetchDetails loads the raw rate/room/recommendation payload for one hotel.
// The result is normalized by the catalog package, never used directly.
func (c *Client) FetchDetails(ctx context.Context, req DetailsRequest) (catalog.RawDetails, error) {
	query := url.Values{}
	query.Set("traceId", req.TraceID)
	query.Set("cityName", req.CityName)
	query.Set("checkIn", req.CheckIn)
	path := fmt.Sprintf("/hotels/%s/%s/details?%s",
		url.PathEscape(req.InquiryToken),
		url.PathEscape(req.HotelID),
		query.Encode(),
	)
	httpReq, err := c.newRequest(ctx, http.MethodGet, path, req.InquiryToken, nil)
	if err != nil {
		return catalog.RawDetails{}, err
	}
	var envelope detailsEnvelope
	if err := c.do(httpReq, &envelope); err != nil {
		return catalog.RawDetails{}, err
	}
	if envelope.Data.TraceID == "" {
		envelope.Data.TraceID = req.TraceID
	}
	if envelope.Data.HotelID == "" {
		envelope.Data.HotelID = req.HotelID
	}
	return envelope.Data, nil
}
