package ginserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripdesk/internal/app/session"
	"tripdesk/internal/domain/party"
	"tripdesk/internal/domain/search"
	"tripdesk/internal/infra/storage/memory"
)

// SearchHandler wires the search session machinery to HTTP.
type SearchHandler struct {
	Registry *memory.SessionRegistry
	Pager    session.Pager
	Logger   *slog.Logger
}

type roomRequest struct {
	Adults   []*int `json:"adults"`
	Children []*int `json:"children"`
}

type filtersRequest struct {
	TextSearch    string          `json:"textSearch"`
	StarRatings   []int           `json:"starRatings"`
	ReviewRatings []int           `json:"reviewRatings"`
	Amenities     []string        `json:"amenities"`
	PricePoint    json.RawMessage `json:"pricePoint"`
	PropertyType  string          `json:"propertyType"`
	Tags          []string        `json:"tags"`
}

type startSearchRequest struct {
	CityName     string         `json:"cityName" binding:"required"`
	CheckIn      string         `json:"checkIn" binding:"required"`
	CheckOut     string         `json:"checkOut" binding:"required"`
	InquiryToken string         `json:"inquiryToken" binding:"required"`
	Nationality  string         `json:"nationality"`
	Rooms        []roomRequest  `json:"rooms" binding:"required"`
	Filters      filtersRequest `json:"filters"`
	Sort         string         `json:"sort"`
}

type searchResponse struct {
	SessionID string      `json:"sessionId"`
	Page      search.Page `json:"page"`
}

// Start opens a new search session. A live session for the same inquiry
// token is cancelled and replaced before the first page is requested.
func (h SearchHandler) Start(c *gin.Context) {
	if h.Registry == nil || h.Pager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search handler unavailable"})
		return
	}
	var req startSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stay, err := req.searchContext()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pty := req.party()
	occupancies, err := party.ToOccupancies(pty)
	if err != nil {
		writeError(c, err)
		return
	}
	filters, err := req.Filters.filterState()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filterBy, sortBy := search.BuildQuery(filters, search.SortOrder(req.Sort), stay, pty)

	sess := session.New(uuid.NewString(), h.Pager, stay, occupancies, filterBy, sortBy, h.Logger)
	if retired := h.Registry.Replace(sess); retired != nil && h.Logger != nil {
		h.Logger.Info("retired superseded search session",
			"old_session_id", retired.ID(), "session_id", sess.ID())
	}
	page, err := sess.Start(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchResponse{SessionID: sess.ID(), Page: page})
}

// Next fetches the following page of an open session.
func (h SearchHandler) Next(c *gin.Context) {
	sess, ok := h.Registry.Get(c.Param("sessionID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown search session"})
		return
	}
	page, err := sess.NextPage(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchResponse{SessionID: sess.ID(), Page: page})
}

// Cancel aborts and forgets the session.
func (h SearchHandler) Cancel(c *gin.Context) {
	h.Registry.Remove(c.Param("sessionID"))
	c.Status(http.StatusNoContent)
}

func (r startSearchRequest) searchContext() (search.SearchContext, error) {
	checkIn, err := time.Parse("2006-01-02", r.CheckIn)
	if err != nil {
		return search.SearchContext{}, err
	}
	checkOut, err := time.Parse("2006-01-02", r.CheckOut)
	if err != nil {
		return search.SearchContext{}, err
	}
	return search.SearchContext{
		CityName:     strings.TrimSpace(r.CityName),
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		InquiryToken: r.InquiryToken,
		Nationality:  r.Nationality,
	}, nil
}

func (r startSearchRequest) party() party.PartyConfiguration {
	rooms := make(party.PartyConfiguration, 0, len(r.Rooms))
	for _, room := range r.Rooms {
		rooms = append(rooms, party.Room{Adults: room.Adults, Children: room.Children})
	}
	return rooms
}

func (f filtersRequest) filterState() (search.FilterState, error) {
	point, err := parsePricePoint(f.PricePoint)
	if err != nil {
		return search.FilterState{}, err
	}
	return search.FilterState{
		TextSearch:          f.TextSearch,
		StarRatings:         f.StarRatings,
		ReviewRatingBuckets: f.ReviewRatings,
		AmenityFlags:        f.Amenities,
		PricePoint:          point,
		PropertyType:        f.PropertyType,
		Tags:                f.Tags,
	}, nil
}

// parsePricePoint accepts the UI's price bucket: a number, the string "max",
// or nothing at all.
func parsePricePoint(raw json.RawMessage) (search.PricePoint, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return search.PricePoint{}, nil
	}
	if trimmed == `"max"` {
		return search.PricePoint{Max: true}, nil
	}
	unquoted := strings.Trim(trimmed, `"`)
	amount, err := strconv.ParseFloat(unquoted, 64)
	if err != nil {
		return search.PricePoint{}, err
	}
	return search.PricePoint{Amount: amount}, nil
}

var _ SearchHTTP = SearchHandler{}
