package anime

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aniping/aniping/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_anime_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Anime{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func testAnime(malID int, title string) *entities.Anime {
	episodes := 220
	return &entities.Anime{
		MALID:       malID,
		Title:       title,
		Episodes:    &episodes,
		Status:      "Finished Airing",
		AiredFrom:   "2002-10-03T00:00:00+00:00",
		AiredTo:     "2007-02-08T00:00:00+00:00",
		AiredString: "Oct 3, 2002 to Feb 8, 2007",
		Score:       8.01,
		Studios:     entities.NamedList{{Name: "Pierrot"}},
		Genres:      entities.NamedList{{Name: "Action"}, {Name: "Adventure"}},
	}
}

func TestRepository_Upsert_CreatesRow(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.Upsert(testAnime(20, "Naruto"))

	require.NoError(t, err)
	assert.True(t, created)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Upsert_SameIDUpdatesInPlace(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Upsert(testAnime(20, "Naruto"))
	require.NoError(t, err)

	refreshed := testAnime(20, "Naruto")
	refreshed.Score = 8.5
	created, err := repo.Upsert(refreshed)

	require.NoError(t, err)
	assert.False(t, created)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count) // no duplicate row

	stored, err := repo.GetByMALID(20)
	require.NoError(t, err)
	assert.Equal(t, 8.5, stored.Score)
}

func TestRepository_Upsert_RejectsInvalidID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Upsert(&entities.Anime{MALID: 0, Title: "Broken"})

	assert.Error(t, err)
}

func TestRepository_GetByMALID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Upsert(testAnime(20, "Naruto"))
	require.NoError(t, err)

	record, err := repo.GetByMALID(20)

	require.NoError(t, err)
	assert.Equal(t, "Naruto", record.Title)
	require.NotNil(t, record.Episodes)
	assert.Equal(t, 220, *record.Episodes)
	assert.Equal(t, []string{"Action", "Adventure"}, record.Genres.Names())
}

func TestRepository_GetByMALID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByMALID(999)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Exists(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Upsert(testAnime(20, "Naruto"))
	require.NoError(t, err)

	exists, err := repo.Exists(20)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(999)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_GetAll_OrderedByMALID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	for _, id := range []int{5114, 20, 1535} {
		_, err := repo.Upsert(testAnime(id, "Show"))
		require.NoError(t, err)
	}

	records, err := repo.GetAll()

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 20, records[0].MALID)
	assert.Equal(t, 1535, records[1].MALID)
	assert.Equal(t, 5114, records[2].MALID)
}

func TestRepository_GetAiring(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	finished := testAnime(20, "Naruto")
	_, err := repo.Upsert(finished)
	require.NoError(t, err)

	airing := testAnime(21, "One Piece")
	airing.Airing = true
	airing.Episodes = nil
	_, err = repo.Upsert(airing)
	require.NoError(t, err)

	records, err := repo.GetAiring()

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 21, records[0].MALID)
	assert.Nil(t, records[0].Episodes)
}
