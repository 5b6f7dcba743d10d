package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/commit"
	"tripdesk/internal/app/session"
	"tripdesk/internal/domain/catalog"
	"tripdesk/internal/infra/provider"
	"tripdesk/internal/infra/storage/memory"
)

// DetailsFetcher loads the raw rate payload for one hotel of a session.
type DetailsFetcher interface {
	FetchDetails(ctx context.Context, req provider.DetailsRequest) (catalog.RawDetails, error)
}

// HotelHandler serves per-hotel rate details and the two-step commit.
type HotelHandler struct {
	Registry  *memory.SessionRegistry
	Fetcher   DetailsFetcher
	Cache     catalog.Cache
	Committer *commit.Committer
	Logger    *slog.Logger
}

type detailsResponse struct {
	Catalog         *catalog.RateCatalog            `json:"catalog"`
	Recommendations []catalog.RecommendationSummary `json:"recommendations"`
}

type commitRequest struct {
	RecommendationID string `json:"recommendationId" binding:"required"`
	Kind             string `json:"kind"`
	ItineraryToken   string `json:"itineraryToken" binding:"required"`
	OldHotelCode     string `json:"oldHotelCode"`
}

// Details fetches the hotel's rate data, normalizes it, caches the catalog
// under the session, and returns it with the priced recommendation list.
func (h HotelHandler) Details(c *gin.Context) {
	sessionID := c.Param("sessionID")
	hotelID := c.Param("hotelID")
	sess, ok := h.Registry.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown search session"})
		return
	}
	cat, err := h.loadCatalog(c.Request.Context(), sess, sessionID, hotelID, false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detailsResponse{
		Catalog:         cat,
		Recommendations: cat.ListRecommendations(h.Logger),
	})
}

// Commit resolves the chosen recommendation against the cached catalog and
// runs select-room plus the itinerary write.
func (h HotelHandler) Commit(c *gin.Context) {
	sessionID := c.Param("sessionID")
	hotelID := c.Param("hotelID")
	sess, ok := h.Registry.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown search session"})
		return
	}
	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := commit.KindAdd
	if req.Kind == string(commit.KindReplace) {
		kind = commit.KindReplace
	}
	if kind == commit.KindReplace && req.OldHotelCode == "" {
		writeError(c, commit.ErrMissingReplacementTarget)
		return
	}

	cat, err := h.loadCatalog(c.Request.Context(), sess, sessionID, hotelID, true)
	if err != nil {
		writeError(c, err)
		return
	}
	allocations, err := catalog.Resolve(req.RecommendationID, cat)
	if err != nil {
		writeError(c, err)
		return
	}

	stay := sess.Stay()
	sel, err := h.Committer.SelectRoom(c.Request.Context(), cat, req.RecommendationID, allocations, stay)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.Committer.Commit(c.Request.Context(), kind, sel, cat, commit.ItineraryContext{
		ItineraryToken: req.ItineraryToken,
		InquiryToken:   stay.InquiryToken,
		CityName:       stay.CityName,
		CheckIn:        stay.CheckIn,
		CheckOut:       stay.CheckOut,
		OldHotelCode:   req.OldHotelCode,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// loadCatalog serves the normalized catalog from the session cache; on a miss
// it refetches from the provider so a commit never fails only because the
// cache entry expired between details and commit.
func (h HotelHandler) loadCatalog(ctx context.Context, sess *session.Session, sessionID, hotelID string, preferCache bool) (*catalog.RateCatalog, error) {
	key := sessionID + "/" + hotelID
	if preferCache && h.Cache != nil {
		cat, ok, err := h.Cache.Get(ctx, key)
		if err != nil && h.Logger != nil {
			h.Logger.Warn("catalog cache read failed", "key", key, "error", err)
		}
		if ok {
			return cat, nil
		}
	}
	stay := sess.Stay()
	raw, err := h.Fetcher.FetchDetails(ctx, provider.DetailsRequest{
		InquiryToken: stay.InquiryToken,
		HotelID:      hotelID,
		TraceID:      sess.TraceID(),
		CityName:     stay.CityName,
		CheckIn:      stay.CheckInDate(),
	})
	if err != nil {
		return nil, err
	}
	cat := catalog.Normalize(raw, h.Logger)
	if h.Cache != nil {
		putCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.Cache.Put(putCtx, key, cat); err != nil && h.Logger != nil {
			h.Logger.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return cat, nil
}

var _ HotelHTTP = HotelHandler{}
