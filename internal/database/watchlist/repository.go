// Package watchlist provides database operations for per-user watch-list
// entries. The (user_id, mal_id) pair identifies exactly one entry.
//
// # Usage
//
//	repo := watchlist.NewRepository(db)
//	err := repo.Add(userID, malID, 0, entities.StatusWatching)
package watchlist

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/aniping/aniping/internal/database"
	"github.com/aniping/aniping/internal/entities"
)

var (
	// ErrAlreadyExists is returned when the (user, anime) pair is already
	// on the watch list.
	ErrAlreadyExists = errors.New("anime already in watch list")

	// ErrNotFound is returned when no entry exists for the (user, anime)
	// pair.
	ErrNotFound = errors.New("watch list entry not found")

	// ErrInvalidStatus is returned for statuses outside the known set.
	ErrInvalidStatus = errors.New("invalid watch status")

	// ErrNegativeEpisodes is returned when the episode count is below zero.
	ErrNegativeEpisodes = errors.New("episodes watched cannot be negative")
)

// Repository handles all watch-list database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new watch-list repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func validate(episodesWatched int, status entities.WatchStatus) error {
	if episodesWatched < 0 {
		return ErrNegativeEpisodes
	}
	if !entities.ValidWatchStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

// Add inserts a new entry. A second insert for the same (user, anime) pair
// is rejected with ErrAlreadyExists, leaving the stored row untouched.
func (r *Repository) Add(userID uint, malID int, episodesWatched int, status entities.WatchStatus) error {
	if err := validate(episodesWatched, status); err != nil {
		return err
	}

	var existing entities.WatchListEntry
	err := r.db.Where("user_id = ? AND mal_id = ?", userID, malID).First(&existing).Error
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check watch list: %w", err)
	}

	entry := entities.WatchListEntry{
		UserID:          userID,
		MALID:           malID,
		EpisodesWatched: episodesWatched,
		Status:          status,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		// Two concurrent adds for the same pair can both pass the existence
		// check; the composite primary key catches the loser.
		if database.IsUniqueConstraintViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to add watch list entry: %w", err)
	}
	return nil
}

// Update sets the episode progress and status of an existing entry. When no
// row matches the pair (zero rows affected) it fails with ErrNotFound and
// writes nothing.
func (r *Repository) Update(userID uint, malID int, episodesWatched int, status entities.WatchStatus) error {
	if err := validate(episodesWatched, status); err != nil {
		return err
	}

	result := r.db.Model(&entities.WatchListEntry{}).
		Where("user_id = ? AND mal_id = ?", userID, malID).
		Updates(map[string]any{
			"episodes_watched": episodesWatched,
			"status":           status,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update watch list entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Get retrieves a single entry with its anime record preloaded.
func (r *Repository) Get(userID uint, malID int) (*entities.WatchListEntry, error) {
	var entry entities.WatchListEntry
	err := r.db.Preload("Anime").
		Where("user_id = ? AND mal_id = ?", userID, malID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load watch list entry: %w", err)
	}
	return &entry, nil
}

// ListForUser returns a user's entries with anime records preloaded,
// ordered by mal_id ascending.
func (r *Repository) ListForUser(userID uint) ([]entities.WatchListEntry, error) {
	var entries []entities.WatchListEntry
	err := r.db.Preload("Anime").
		Where("user_id = ?", userID).
		Order("mal_id ASC").
		Find(&entries).Error
	return entries, err
}

// WatcherIDs returns the ids of users who have malID on their watch list
// with one of the given statuses. An empty status set matches any status.
func (r *Repository) WatcherIDs(malID int, statuses ...entities.WatchStatus) ([]uint, error) {
	query := r.db.Model(&entities.WatchListEntry{}).Where("mal_id = ?", malID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var ids []uint
	err := query.Order("user_id ASC").Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list watchers for anime %d: %w", malID, err)
	}
	return ids, nil
}

// Count returns the number of entries for a user.
func (r *Repository) Count(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.WatchListEntry{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
