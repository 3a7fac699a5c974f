// Package anime provides database operations for the local anime catalog.
//
// # Usage
//
//	repo := anime.NewRepository(db)
//	record, created, err := repo.Upsert(parsed)
package anime

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/aniping/aniping/internal/entities"
)

// ErrNotFound is returned when no catalog row exists for the requested id.
var ErrNotFound = errors.New("anime not found")

// Repository handles all anime catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new anime repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores a catalog row keyed by mal_id. When a row with the same id
// already exists its columns are updated in place; re-ingesting an anime
// never creates a duplicate. The returned flag reports whether a new row
// was created.
func (r *Repository) Upsert(record *entities.Anime) (created bool, err error) {
	if record.MALID <= 0 {
		return false, fmt.Errorf("invalid mal_id %d", record.MALID)
	}

	var existing entities.Anime
	result := r.db.Where("mal_id = ?", record.MALID).First(&existing)
	if result.Error == nil {
		record.CreatedAt = existing.CreatedAt
		if err := r.db.Save(record).Error; err != nil {
			return false, fmt.Errorf("failed to update anime %d: %w", record.MALID, err)
		}
		return false, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check existing anime %d: %w", record.MALID, result.Error)
	}

	if err := r.db.Create(record).Error; err != nil {
		return false, fmt.Errorf("failed to create anime %d: %w", record.MALID, err)
	}
	return true, nil
}

// GetByMALID retrieves one catalog row.
func (r *Repository) GetByMALID(malID int) (*entities.Anime, error) {
	var record entities.Anime
	err := r.db.Where("mal_id = ?", malID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load anime %d: %w", malID, err)
	}
	return &record, nil
}

// Exists reports whether a catalog row is present for malID.
func (r *Repository) Exists(malID int) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Anime{}).Where("mal_id = ?", malID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check anime %d: %w", malID, err)
	}
	return count > 0, nil
}

// GetAll returns every catalog row ordered by mal_id ascending.
func (r *Repository) GetAll() ([]entities.Anime, error) {
	var records []entities.Anime
	err := r.db.Order("mal_id ASC").Find(&records).Error
	return records, err
}

// GetAiring returns catalog rows whose airing flag is set, ordered by mal_id.
// The airing-schedule check uses this to limit notifications to shows that
// can actually have new episodes.
func (r *Repository) GetAiring() ([]entities.Anime, error) {
	var records []entities.Anime
	err := r.db.Where("airing = ?", true).Order("mal_id ASC").Find(&records).Error
	return records, err
}

// Count returns the number of catalog rows.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Anime{}).Count(&count).Error
	return count, err
}
