package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/commit"
	"tripdesk/internal/app/session"
	"tripdesk/internal/domain/catalog"
	"tripdesk/internal/domain/search"
	"tripdesk/internal/infra/provider"
	"tripdesk/internal/infra/storage/memory"
)

type pagerFunc func(ctx context.Context, req session.PageRequest) (search.Page, error)

func (f pagerFunc) FetchPage(ctx context.Context, req session.PageRequest) (search.Page, error) {
	return f(ctx, req)
}

type detailsFunc func(ctx context.Context, req provider.DetailsRequest) (catalog.RawDetails, error)

func (f detailsFunc) FetchDetails(ctx context.Context, req provider.DetailsRequest) (catalog.RawDetails, error) {
	return f(ctx, req)
}

func okPager(hasNext bool) session.Pager {
	return pagerFunc(func(ctx context.Context, req session.PageRequest) (search.Page, error) {
		return search.Page{
			Hotels:            []search.HotelSummary{},
			ContinuationToken: "trace-1",
			PageNumber:        req.Page,
			HasNextPage:       hasNext,
		}, nil
	})
}

func newRouter(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	if h.Search != nil {
		api.POST("/hotels/search", h.Search.Start)
		api.POST("/hotels/search/:sessionID/next", h.Search.Next)
		api.DELETE("/hotels/search/:sessionID", h.Search.Cancel)
	}
	if h.Hotel != nil {
		api.GET("/hotels/search/:sessionID/:hotelID", h.Hotel.Details)
		api.POST("/hotels/search/:sessionID/:hotelID/commit", h.Hotel.Commit)
	}
	return router
}

func startBody() map[string]any {
	return map[string]any{
		"cityName":     "Lisbon",
		"checkIn":      "2026-03-10",
		"checkOut":     "2026-03-13",
		"inquiryToken": "inq-7",
		"rooms": []map[string]any{
			{"adults": []any{30, 28}, "children": []any{nil}},
		},
		"filters": map[string]any{"pricePoint": 2000},
		"sort":    "priceAsc",
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStartSearch(t *testing.T) {
	registry := memory.NewSessionRegistry()
	router := newRouter(Handlers{Search: SearchHandler{Registry: registry, Pager: okPager(true)}})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/hotels/search", startBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID string      `json:"sessionId"`
		Page      search.Page `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" || resp.Page.PageNumber != 1 || !resp.Page.HasNextPage {
		t.Fatalf("resp = %+v", resp)
	}
	if _, ok := registry.Get(resp.SessionID); !ok {
		t.Fatal("session not registered")
	}
}

func TestStartSearchInvalidParty(t *testing.T) {
	router := newRouter(Handlers{Search: SearchHandler{Registry: memory.NewSessionRegistry(), Pager: okPager(true)}})
	body := startBody()
	body["rooms"] = []map[string]any{{"adults": []any{}, "children": []any{}}}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/hotels/search", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestNextOnExhaustedSession(t *testing.T) {
	registry := memory.NewSessionRegistry()
	router := newRouter(Handlers{Search: SearchHandler{Registry: registry, Pager: okPager(false)}})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/hotels/search", startBody())
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/hotels/search/"+resp.SessionID+"/next", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for exhausted session", rec.Code)
	}
}

func TestNextUnknownSession(t *testing.T) {
	router := newRouter(Handlers{Search: SearchHandler{Registry: memory.NewSessionRegistry(), Pager: okPager(true)}})
	rec := doJSON(t, router, http.MethodPost, "/api/v1/hotels/search/nope/next", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCancelSearch(t *testing.T) {
	registry := memory.NewSessionRegistry()
	router := newRouter(Handlers{Search: SearchHandler{Registry: registry, Pager: okPager(true)}})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/hotels/search", startBody())
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/hotels/search/"+resp.SessionID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, ok := registry.Get(resp.SessionID); ok {
		t.Fatal("cancelled session still registered")
	}
}

func hotelFixture(t *testing.T, registry *memory.SessionRegistry, details DetailsFetcher) (string, *gin.Engine, *memory.CatalogCache) {
	t.Helper()
	cache := memory.NewCatalogCache(time.Minute)
	committer := &commit.Committer{}
	router := newRouter(Handlers{
		Search: SearchHandler{Registry: registry, Pager: okPager(true)},
		Hotel:  HotelHandler{Registry: registry, Fetcher: details, Cache: cache, Committer: committer},
	})
	rec := doJSON(t, router, http.MethodPost, "/api/v1/hotels/search", startBody())
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.SessionID == "" {
		t.Fatalf("start failed: %d %s", rec.Code, rec.Body.String())
	}
	return resp.SessionID, router, cache
}

func TestDetails(t *testing.T) {
	registry := memory.NewSessionRegistry()
	var gotReq provider.DetailsRequest
	details := detailsFunc(func(ctx context.Context, req provider.DetailsRequest) (catalog.RawDetails, error) {
		gotReq = req
		return catalog.RawDetails{
			HotelID: req.HotelID,
			Name:    "Hotel Aurora",
			Rooms:   map[string]catalog.RoomInfo{"room-a": {Name: "Double"}},
			Rates: map[string]catalog.RateInfo{
				"rate-1": {FinalRate: 180, Currency: "EUR", Occupancies: []catalog.RateOccupancy{{RoomID: "room-a", NumOfAdults: 2}}},
			},
			Recommendations: map[string]catalog.Recommendation{"rec-1": {RateIDs: []string{"rate-1"}}},
		}, nil
	})
	sessionID, router, _ := hotelFixture(t, registry, details)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/hotels/search/"+sessionID+"/H1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if gotReq.InquiryToken != "inq-7" || gotReq.TraceID != "trace-1" || gotReq.HotelID != "H1" {
		t.Fatalf("details request = %+v", gotReq)
	}
	var resp struct {
		Catalog         *catalog.RateCatalog            `json:"catalog"`
		Recommendations []catalog.RecommendationSummary `json:"recommendations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].TotalPrice != 180 {
		t.Fatalf("recommendations = %+v", resp.Recommendations)
	}
}

func TestDetailsUnknownSession(t *testing.T) {
	router := newRouter(Handlers{Hotel: HotelHandler{Registry: memory.NewSessionRegistry()}})
	rec := doJSON(t, router, http.MethodGet, "/api/v1/hotels/search/nope/H1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDetailsProviderDown(t *testing.T) {
	registry := memory.NewSessionRegistry()
	details := detailsFunc(func(ctx context.Context, req provider.DetailsRequest) (catalog.RawDetails, error) {
		return catalog.RawDetails{}, &provider.HTTPError{Status: http.StatusServiceUnavailable, Message: "down"}
	})
	sessionID, router, _ := hotelFixture(t, registry, details)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/hotels/search/"+sessionID+"/H1", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var resp struct {
		Retryable bool `json:"retryable"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Retryable {
		t.Fatalf("body = %s, want retryable", rec.Body.String())
	}
}

func TestCommitMissingReplacementTarget(t *testing.T) {
	registry := memory.NewSessionRegistry()
	called := false
	details := detailsFunc(func(ctx context.Context, req provider.DetailsRequest) (catalog.RawDetails, error) {
		called = true
		return catalog.RawDetails{}, nil
	})
	sessionID, router, _ := hotelFixture(t, registry, details)

	body := map[string]any{"recommendationId": "rec-1", "kind": "replace", "itineraryToken": "itin-1"}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/hotels/search/"+sessionID+"/H1/commit", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if called {
		t.Fatal("details fetched despite invalid commit request")
	}
}

func TestWriteErrorRateGone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	writeError(c, &commit.ProviderSelectionError{Err: &provider.HTTPError{Status: http.StatusConflict, Message: "gone"}})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var resp struct {
		Reselect bool `json:"reselect"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Reselect {
		t.Fatalf("body = %s, want reselect flag", rec.Body.String())
	}
}

func TestWriteErrorSessionBusy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	writeError(c, session.ErrSessionBusy)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestWriteErrorNothingSelected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	writeError(c, commit.ErrNothingSelected)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWriteErrorIncompleteRate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	writeError(c, &catalog.IncompleteRateDataError{RateID: "rate-1", Reason: "no room id"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestParsePricePoint(t *testing.T) {
	cases := []struct {
		raw  string
		want search.PricePoint
	}{
		{raw: "", want: search.PricePoint{}},
		{raw: "null", want: search.PricePoint{}},
		{raw: `"max"`, want: search.PricePoint{Max: true}},
		{raw: "2000", want: search.PricePoint{Amount: 2000}},
		{raw: `"1500"`, want: search.PricePoint{Amount: 1500}},
	}
	for _, tc := range cases {
		got, err := parsePricePoint(json.RawMessage(tc.raw))
		if err != nil {
			t.Fatalf("parsePricePoint(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parsePricePoint(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
	if _, err := parsePricePoint(json.RawMessage(`"cheap"`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWriteErrorFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	writeError(c, errors.New("unexpected"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
