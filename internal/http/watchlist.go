package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aniping/aniping/internal/auth"
	"github.com/aniping/aniping/internal/database/watchlist"
	"github.com/aniping/aniping/internal/entities"
	"github.com/aniping/aniping/internal/jikan"
	"github.com/aniping/aniping/internal/tracker"
)

// WatchListController manages the authenticated user's watch list.
type WatchListController struct {
	tracker *tracker.Service
}

// NewWatchListController creates a new WatchListController.
func NewWatchListController(svc *tracker.Service) *WatchListController {
	return &WatchListController{tracker: svc}
}

type addEntryRequest struct {
	MALID           int                  `json:"mal_id" binding:"required"`
	EpisodesWatched int                  `json:"episodes_watched"`
	Status          entities.WatchStatus `json:"status"`
}

type updateEntryRequest struct {
	EpisodesWatched int                  `json:"episodes_watched"`
	Status          entities.WatchStatus `json:"status" binding:"required"`
}

// List returns the user's watch list, ordered by mal_id ascending.
func (wc *WatchListController) List(c *gin.Context) {
	userID := auth.GetUserID(c)
	entries, err := wc.tracker.WatchList(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load watch list"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// Add puts an anime on the watch list, ingesting its metadata on demand.
func (wc *WatchListController) Add(c *gin.Context) {
	userID := auth.GetUserID(c)

	var req addEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mal_id is required"})
		return
	}
	if req.Status == "" {
		req.Status = entities.StatusWatching
	}

	err := wc.tracker.AddToWatchList(c.Request.Context(), userID, req.MALID, req.EpisodesWatched, req.Status)
	switch {
	case errors.Is(err, watchlist.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "anime already in watch list"})
		return
	case errors.Is(err, jikan.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no anime with this id"})
		return
	case errors.Is(err, watchlist.ErrInvalidStatus), errors.Is(err, watchlist.ErrNegativeEpisodes):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add watch list entry"})
		return
	}

	c.Status(http.StatusCreated)
}

// Update changes the progress and status of an existing entry.
func (wc *WatchListController) Update(c *gin.Context) {
	userID := auth.GetUserID(c)

	malID, ok := malIDParam(c)
	if !ok {
		return
	}

	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	err := wc.tracker.UpdateWatchList(userID, malID, req.EpisodesWatched, req.Status)
	switch {
	case errors.Is(err, watchlist.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "anime is not on the watch list"})
		return
	case errors.Is(err, watchlist.ErrInvalidStatus), errors.Is(err, watchlist.ErrNegativeEpisodes):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update watch list entry"})
		return
	}

	c.Status(http.StatusNoContent)
}
