package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniping/aniping/internal/entities"
)

func TestNew_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "aniping.db")

	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"anime_info", "users", "watch_list"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestNew_IsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "aniping.db")

	db, err := New(dbPath)
	require.NoError(t, err)

	require.NoError(t, db.DB.Create(&entities.Anime{MALID: 20, Title: "Naruto"}).Error)
	require.NoError(t, db.Close())

	// Re-opening migrates again without dropping anything.
	db, err = New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.DB.Model(&entities.Anime{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReset_DropsExistingData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "aniping.db")

	db, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.Anime{MALID: 20, Title: "Naruto"}).Error)
	require.NoError(t, db.Close())

	db, err = Reset(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.DB.Model(&entities.Anime{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReset_WorksWithoutExistingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fresh.db")

	db, err := Reset(dbPath)

	require.NoError(t, err)
	defer db.Close()
	assert.True(t, db.DB.Migrator().HasTable("users"))
}

func TestIsUniqueConstraintViolation_EmailIndex(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "aniping.db")

	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.DB.Create(&entities.User{Username: "a", Email: "dup@example.com", PasswordHash: "x"}).Error)
	err = db.DB.Create(&entities.User{Username: "b", Email: "dup@example.com", PasswordHash: "x"}).Error

	require.Error(t, err)
	assert.True(t, IsUniqueConstraintViolation(err))
}

func TestIsUniqueConstraintViolation_CompositePrimaryKey(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "aniping.db")

	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.DB.Create(&entities.Anime{MALID: 20, Title: "Naruto"}).Error)
	entry := entities.WatchListEntry{UserID: 1, MALID: 20, Status: entities.StatusWatching}
	require.NoError(t, db.DB.Create(&entry).Error)

	dup := entities.WatchListEntry{UserID: 1, MALID: 20, Status: entities.StatusCompleted}
	err = db.DB.Create(&dup).Error

	require.Error(t, err)
	assert.True(t, IsUniqueConstraintViolation(err))
}

func TestIsUniqueConstraintViolation_UnrelatedErrors(t *testing.T) {
	assert.False(t, IsUniqueConstraintViolation(nil))
	assert.False(t, IsUniqueConstraintViolation(os.ErrNotExist))
}
