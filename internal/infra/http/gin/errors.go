package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/commit"
	"tripdesk/internal/app/session"
	"tripdesk/internal/domain/catalog"
	"tripdesk/internal/domain/party"
	"tripdesk/internal/infra/provider"
)

// writeError maps engine errors onto HTTP responses the CRM can act on.
// The three messages a user must be able to tell apart: nothing matched the
// filters (not an error, handled by the search path), the provider is
// unreachable (retry), and the selected rate is gone (re-select).
func writeError(c *gin.Context, err error) {
	var partyErr *party.InvalidPartyError
	var rateErr *catalog.IncompleteRateDataError
	var selErr *commit.ProviderSelectionError
	var httpErr *provider.HTTPError

	switch {
	case errors.As(err, &partyErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": partyErr.Error()})
	case errors.Is(err, party.ErrEmptyParty):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrSessionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "a page request is already in flight for this search"})
	case errors.Is(err, session.ErrNoContinuationToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no further pages: start a new search first"})
	case errors.Is(err, session.ErrSessionCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": "this search was superseded by a newer one"})
	case errors.Is(err, catalog.ErrUnknownRecommendation):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rateErr.Error()})
	case errors.Is(err, commit.ErrMissingReplacementTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, commit.ErrNothingSelected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &selErr):
		if errors.As(selErr.Err, &httpErr) && httpErr.RateGone() {
			c.JSON(http.StatusConflict, gin.H{
				"error":    "selected rate is no longer available, pick another recommendation",
				"reselect": true,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": selErr.Error()})
	case errors.As(err, &httpErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "booking provider is unreachable",
			"detail":    httpErr.Error(),
			"retryable": httpErr.Retryable(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
