package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aniping/aniping/internal/auth"
	"github.com/aniping/aniping/internal/config"
	"github.com/aniping/aniping/internal/database/anime"
	"github.com/aniping/aniping/internal/database/users"
	"github.com/aniping/aniping/internal/database/watchlist"
	"github.com/aniping/aniping/internal/entities"
	"github.com/aniping/aniping/internal/jikan"
	"github.com/aniping/aniping/internal/tracker"
)

func setupTestRouter(t *testing.T, jikanRecords map[int]string) (*gin.Engine, func()) {
	gin.SetMode(gin.TestMode)

	dbPath := "./test_api_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Anime{}, &entities.User{}, &entities.WatchListEntry{})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var malID int
		if _, err := fmt.Sscanf(r.URL.Path, "/anime/%d/full", &malID); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, ok := jikanRecords[malID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": ` + body + `}`))
	}))

	client := jikan.NewClient(server.URL, 5*time.Second, 0)
	trackerSvc := tracker.NewService(client, anime.NewRepository(db), watchlist.NewRepository(db))
	authSvc := auth.NewService(users.NewRepository(db), config.Auth{BcryptCost: bcrypt.MinCost})

	router := NewRouter(RouterConfig{
		AuthService: authSvc,
		Tracker:     trackerSvc,
	})

	cleanup := func() {
		server.Close()
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return router, cleanup
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := doJSON(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "testuser",
		"email":    "test@email.com",
		"password": "testpassword",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "test@email.com",
		"password": "testpassword",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAPI_Health(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	w := doJSON(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_Register_DuplicateEmail(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	body := gin.H{"username": "testuser", "email": "test@email.com", "password": "testpassword"}
	w := doJSON(router, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_Login_WrongPassword(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	w := doJSON(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "testuser", "email": "test@email.com", "password": "testpassword",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "test@email.com", "password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "wrong password")
}

func TestAPI_Login_UnknownEmail(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	w := doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "nouser@email.com", "password": "testpassword",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no account")
}

func TestAPI_WatchList_RequiresAuth(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	w := doJSON(router, http.MethodGet, "/api/watchlist", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/watchlist", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_WatchListFlow(t *testing.T) {
	router, cleanup := setupTestRouter(t, map[int]string{
		5114: `{"mal_id": 5114, "title": "Fullmetal Alchemist: Brotherhood", "episodes": 64}`,
	})
	defer cleanup()

	token := registerAndLogin(t, router)

	// Add ingests the anime on demand.
	w := doJSON(router, http.MethodPost, "/api/watchlist", token, gin.H{
		"mal_id": 5114, "episodes_watched": 2, "status": "Watching",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Adding the same pair again conflicts.
	w = doJSON(router, http.MethodPost, "/api/watchlist", token, gin.H{"mal_id": 5114})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The catalog row is now readable.
	w = doJSON(router, http.MethodGet, "/api/anime/5114", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fullmetal Alchemist")

	// Update progress and status.
	w = doJSON(router, http.MethodPut, "/api/watchlist/5114", token, gin.H{
		"episodes_watched": 64, "status": "Completed",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	// The list reflects the update.
	w = doJSON(router, http.MethodGet, "/api/watchlist", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int `json:"count"`
		Entries []struct {
			MALID           int    `json:"mal_id"`
			EpisodesWatched int    `json:"episodes_watched"`
			Status          string `json:"status"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, 5114, resp.Entries[0].MALID)
	assert.Equal(t, 64, resp.Entries[0].EpisodesWatched)
	assert.Equal(t, "Completed", resp.Entries[0].Status)
}

func TestAPI_WatchList_UnknownAnime(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	token := registerAndLogin(t, router)

	w := doJSON(router, http.MethodPost, "/api/watchlist", token, gin.H{"mal_id": 42424242})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_WatchList_UpdateMissingEntry(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	token := registerAndLogin(t, router)

	w := doJSON(router, http.MethodPut, "/api/watchlist/20", token, gin.H{
		"episodes_watched": 10, "status": "Completed",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_AnimeIngest(t *testing.T) {
	router, cleanup := setupTestRouter(t, map[int]string{
		20: `{"mal_id": 20, "title": "Naruto", "episodes": 220}`,
	})
	defer cleanup()

	token := registerAndLogin(t, router)

	// First ingest creates.
	w := doJSON(router, http.MethodPost, "/api/anime/20/ingest", token, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Second ingest refreshes.
	w = doJSON(router, http.MethodPost, "/api/anime/20/ingest", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_Anime_NotInCatalog(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	token := registerAndLogin(t, router)

	w := doJSON(router, http.MethodGet, "/api/anime/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
