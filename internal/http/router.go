// Package http exposes the JSON API served by the "serve" subcommand:
// account registration and login, anime lookup/ingest, and watch-list
// management. All presentation of store errors lives here.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/aniping/aniping/internal/auth"
	"github.com/aniping/aniping/internal/tracker"
)

// RouterConfig carries the dependencies of the API router.
type RouterConfig struct {
	AuthService *auth.Service
	Tracker     *tracker.Service
}

// NewRouter creates and configures the API router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(auth.NewMiddleware(cfg.AuthService).Handler())

	router.GET("/health", HealthCheck)

	accounts := NewAccountController(cfg.AuthService)
	router.POST("/api/auth/register", accounts.Register)
	router.POST("/api/auth/login", accounts.Login)

	animes := NewAnimeController(cfg.Tracker)
	router.GET("/api/anime/:id", animes.Get)
	router.POST("/api/anime/:id/ingest", animes.Ingest)

	watch := NewWatchListController(cfg.Tracker)
	router.GET("/api/watchlist", watch.List)
	router.POST("/api/watchlist", watch.Add)
	router.PUT("/api/watchlist/:id", watch.Update)

	return router
}
