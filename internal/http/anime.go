package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aniping/aniping/internal/database/anime"
	"github.com/aniping/aniping/internal/jikan"
	"github.com/aniping/aniping/internal/tracker"
)

// AnimeController serves the local anime catalog.
type AnimeController struct {
	tracker *tracker.Service
}

// NewAnimeController creates a new AnimeController.
func NewAnimeController(svc *tracker.Service) *AnimeController {
	return &AnimeController{tracker: svc}
}

func malIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// Get returns one catalog row. Anime never fetches the remote API; use
// Ingest to populate the catalog.
func (ac *AnimeController) Get(c *gin.Context) {
	malID, ok := malIDParam(c)
	if !ok {
		return
	}

	record, err := ac.tracker.Anime(malID)
	if errors.Is(err, anime.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not in local catalog"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load anime"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// Ingest fetches the anime from the remote API and upserts it into the
// catalog. Responds 201 when a new row was created, 200 when an existing
// row was refreshed.
func (ac *AnimeController) Ingest(c *gin.Context) {
	malID, ok := malIDParam(c)
	if !ok {
		return
	}

	record, created, err := ac.tracker.Ingest(c.Request.Context(), malID)
	if errors.Is(err, jikan.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no anime with this id"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch anime metadata"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, record)
}
