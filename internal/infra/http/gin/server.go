package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/infra/config"
	"tripdesk/internal/infra/obs"
)

type SearchHTTP interface {
	Start(c *gin.Context)
	Next(c *gin.Context)
	Cancel(c *gin.Context)
}

type HotelHTTP interface {
	Details(c *gin.Context)
	Commit(c *gin.Context)
}

type Handlers struct {
	Search SearchHTTP
	Hotel  HotelHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Inquiry-Token"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

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

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
