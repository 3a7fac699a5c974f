package database

import (
	"errors"
	"fmt"
	"os"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aniping/aniping/internal/entities"
)

// Database owns the shared connection handle. All repositories operate on
// the same *gorm.DB; operations never open their own connections.
type Database struct {
	DB *gorm.DB
}

// New opens (creating if necessary) the SQLite database at dbPath and
// migrates the schema. Initialization is idempotent: when the tables already
// exist the migration is a no-op, the file is never dropped or recreated.
// Use Reset for an explicit destructive re-initialization.
func New(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Anime{},
		&entities.User{},
		&entities.WatchListEntry{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db}, nil
}

// Reset deletes the database file at dbPath, if any, and creates a fresh
// schema. Callers must ask the user before invoking this.
func Reset(dbPath string) (*Database, error) {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove existing database: %w", err)
	}
	return New(dbPath)
}

// IsUniqueConstraintViolation reports whether err is a unique or primary key
// constraint failure from SQLite. Repositories use it to map insert races to
// their domain sentinels: an existence pre-check alone is not enough, two
// concurrent inserts can both pass it.
func IsUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Close releases the underlying sql connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
