package commit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	appoutbox "tripdesk/internal/app/outbox"
	"tripdesk/internal/domain/catalog"
	"tripdesk/internal/domain/search"
)

// Kind selects between adding a fresh hotel-day entry and replacing one.
type Kind string

const (
	KindAdd     Kind = "add"
	KindReplace Kind = "replace"
)

var (
	// ErrMissingReplacementTarget is raised before any network call when a
	// replace commit arrives without the hotel code it should replace.
	ErrMissingReplacementTarget = errors.New("commit: replace requires oldHotelCode")
	// ErrNothingSelected guards Commit being called without a prior SelectRoom.
	ErrNothingSelected = errors.New("commit: no room selection to commit")
)

// ProviderSelectionError wraps a failed select-room call. The whole commit
// aborts; nothing is written to the itinerary.
type ProviderSelectionError struct {
	Err error
}

func (e *ProviderSelectionError) Error() string {
	return fmt.Sprintf("commit: room selection failed: %v", e.Err)
}

func (e *ProviderSelectionError) Unwrap() error { return e.Err }

// SelectRoomRequest is the provider's select-room body.
type SelectRoomRequest struct {
	RoomsAndRateAllocations []catalog.Allocation `json:"roomsAndRateAllocations"`
	RecommendationID        string               `json:"recommendationId"`
	Items                   []json.RawMessage    `json:"items,omitempty"`
	ItineraryCode           string               `json:"itineraryCode,omitempty"`
	TraceID                 string               `json:"traceId"`
	InquiryToken            string               `json:"inquiryToken"`
	CityName                string               `json:"cityName"`
	Date                    string               `json:"date"`
	HotelID                 string               `json:"-"`
}

// Selection is the provider's select-room response plus the request context
// needed to commit it.
type Selection struct {
	HotelCode        string               `json:"hotelCode"`
	HotelName        string               `json:"hotelName"`
	ItineraryCode    string               `json:"itineraryCode"`
	Items            []json.RawMessage    `json:"items"`
	TotalRate        float64              `json:"totalRate"`
	Currency         string               `json:"currency"`
	RecommendationID string               `json:"-"`
	Allocations      []catalog.Allocation `json:"-"`
}

// RoomSelector is the provider's room-selection step.
type RoomSelector interface {
	SelectRoom(ctx context.Context, req SelectRoomRequest) (Selection, error)
}

// NewHotelDetails is what the itinerary service stores for the hotel day.
type NewHotelDetails struct {
	HotelCode        string               `json:"hotelCode"`
	HotelName        string               `json:"hotelName"`
	ItineraryCode    string               `json:"itineraryCode"`
	Items            []json.RawMessage    `json:"items"`
	RecommendationID string               `json:"recommendationId"`
	Allocations      []catalog.Allocation `json:"roomsAndRateAllocations"`
	TotalRate        float64              `json:"totalRate,omitempty"`
	Currency         string               `json:"currency,omitempty"`
}

// ItineraryRequest is the add/replace body for the itinerary service.
type ItineraryRequest struct {
	ItineraryToken  string          `json:"-"`
	InquiryToken    string          `json:"-"`
	CityName        string          `json:"cityName"`
	CheckIn         string          `json:"checkIn"`
	CheckOut        string          `json:"checkOut"`
	OldHotelCode    string          `json:"oldHotelCode,omitempty"`
	NewHotelDetails NewHotelDetails `json:"newHotelDetails"`
}

// ItineraryResult mirrors the itinerary service response. PartialSuccess
// means the hotel landed but a dependent update (linked transfers) failed;
// that is success with a warning, never an error.
type ItineraryResult struct {
	Success        bool   `json:"success"`
	PartialSuccess bool   `json:"partialSuccess"`
	Message        string `json:"message"`
}

// ItineraryWriter mutates the itinerary.
type ItineraryWriter interface {
	AddHotel(ctx context.Context, req ItineraryRequest) (ItineraryResult, error)
	ReplaceHotel(ctx context.Context, req ItineraryRequest) (ItineraryResult, error)
}

// ItineraryContext is the caller-held state for the commit step.
type ItineraryContext struct {
	ItineraryToken string
	InquiryToken   string
	CityName       string
	CheckIn        time.Time
	CheckOut       time.Time
	OldHotelCode   string
}

// CommitResult is reported back to the CRM.
type CommitResult struct {
	HotelName       string               `json:"hotelName"`
	FinalAllocation []catalog.Allocation `json:"finalAllocation"`
	Committed       bool                 `json:"committed"`
	Warning         string               `json:"warning,omitempty"`
}

// Committer runs the two-step commit: select the room with the provider,
// then add or replace the hotel-day entry in the itinerary.
type Committer struct {
	Selector  RoomSelector
	Itinerary ItineraryWriter
	Outbox    appoutbox.Outbox
	Encoder   appoutbox.Encoder
	Logger    *slog.Logger
}

// SelectRoom executes the provider's room-selection step for a resolved
// allocation. The returned Selection carries the allocation so Commit can
// echo it back even when the provider response is sparse.
func (c *Committer) SelectRoom(ctx context.Context, cat *catalog.RateCatalog, recommendationID string, allocations []catalog.Allocation, stay search.SearchContext) (Selection, error) {
	if len(allocations) == 0 {
		return Selection{}, &ProviderSelectionError{Err: errors.New("empty allocation")}
	}
	req := SelectRoomRequest{
		RoomsAndRateAllocations: allocations,
		RecommendationID:        recommendationID,
		Items:                   cat.Items,
		ItineraryCode:           cat.ItineraryCode,
		TraceID:                 cat.TraceID,
		InquiryToken:            stay.InquiryToken,
		CityName:                stay.CityName,
		Date:                    stay.CheckInDate(),
		HotelID:                 cat.HotelID,
	}
	sel, err := c.Selector.SelectRoom(ctx, req)
	if err != nil {
		return Selection{}, &ProviderSelectionError{Err: err}
	}
	sel.RecommendationID = recommendationID
	sel.Allocations = allocations
	if sel.HotelCode == "" {
		sel.HotelCode = cat.HotelID
	}
	if sel.HotelName == "" {
		sel.HotelName = cat.HotelName
	}
	return sel, nil
}

// Commit writes the selection into the itinerary. Fields the provider omitted
// from the selection response are reconciled against the pre-fetched catalog
// before a last-resort synthetic placeholder; every fallback tier is logged so
// data-quality regressions stay visible.
func (c *Committer) Commit(ctx context.Context, kind Kind, sel Selection, cat *catalog.RateCatalog, itin ItineraryContext) (CommitResult, error) {
	if kind == KindReplace && itin.OldHotelCode == "" {
		return CommitResult{}, ErrMissingReplacementTarget
	}
	if len(sel.Allocations) == 0 {
		return CommitResult{}, ErrNothingSelected
	}

	details := NewHotelDetails{
		HotelCode:        sel.HotelCode,
		HotelName:        sel.HotelName,
		ItineraryCode:    c.reconcileItineraryCode(sel, cat),
		Items:            c.reconcileItems(sel, cat),
		RecommendationID: sel.RecommendationID,
		Allocations:      sel.Allocations,
		TotalRate:        sel.TotalRate,
		Currency:         sel.Currency,
	}

	req := ItineraryRequest{
		ItineraryToken:  itin.ItineraryToken,
		InquiryToken:    itin.InquiryToken,
		CityName:        itin.CityName,
		CheckIn:         itin.CheckIn.Format("2006-01-02"),
		CheckOut:        itin.CheckOut.Format("2006-01-02"),
		NewHotelDetails: details,
	}

	var (
		res ItineraryResult
		err error
	)
	switch kind {
	case KindReplace:
		req.OldHotelCode = itin.OldHotelCode
		res, err = c.Itinerary.ReplaceHotel(ctx, req)
	default:
		res, err = c.Itinerary.AddHotel(ctx, req)
	}
	if err != nil {
		return CommitResult{}, err
	}
	if !res.Success && !res.PartialSuccess {
		return CommitResult{}, fmt.Errorf("commit: itinerary update rejected: %s", res.Message)
	}

	result := CommitResult{
		HotelName:       details.HotelName,
		FinalAllocation: sel.Allocations,
		Committed:       true,
	}
	if res.PartialSuccess {
		result.Warning = res.Message
		if result.Warning == "" {
			result.Warning = "hotel committed but a dependent itinerary update failed"
		}
		c.log().Warn("itinerary commit partially succeeded",
			"hotel_code", details.HotelCode, "message", res.Message)
	}

	if err := appoutbox.Record(ctx, c.Outbox, c.Encoder, SelectionCommitted{
		ItineraryToken:   itin.ItineraryToken,
		HotelCode:        details.HotelCode,
		HotelName:        details.HotelName,
		RecommendationID: sel.RecommendationID,
		Kind:             string(kind),
		TotalRate:        sel.TotalRate,
		Currency:         sel.Currency,
		At:               time.Now().UTC(),
	}); err != nil {
		// the booking stands; only the event publication is degraded
		c.log().Error("recording commit event failed", "hotel_code", details.HotelCode, "error", err)
	}
	return result, nil
}

func (c *Committer) reconcileItems(sel Selection, cat *catalog.RateCatalog) []json.RawMessage {
	if len(sel.Items) > 0 {
		return sel.Items
	}
	if cat != nil && len(cat.Items) > 0 {
		c.log().Warn("provider selection omitted items, using catalog context",
			"hotel_code", sel.HotelCode)
		return cat.Items
	}
	c.log().Warn("provider selection omitted items, synthesizing placeholder",
		"hotel_code", sel.HotelCode)
	placeholder, _ := json.Marshal(map[string]string{"code": sel.HotelCode, "type": "hotel"})
	return []json.RawMessage{placeholder}
}

func (c *Committer) reconcileItineraryCode(sel Selection, cat *catalog.RateCatalog) string {
	if sel.ItineraryCode != "" {
		return sel.ItineraryCode
	}
	if cat != nil && cat.ItineraryCode != "" {
		c.log().Warn("provider selection omitted itinerary code, using catalog context",
			"hotel_code", sel.HotelCode)
		return cat.ItineraryCode
	}
	c.log().Warn("provider selection omitted itinerary code, synthesizing placeholder",
		"hotel_code", sel.HotelCode)
	return "local-" + sel.HotelCode
}

func (c *Committer) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
