// Package tracker wires the Jikan client and the local stores into the
// user-facing operations: ingesting anime metadata and maintaining
// watch lists.
package tracker

import (
	"context"
	"fmt"

	"github.com/aniping/aniping/internal/database/anime"
	"github.com/aniping/aniping/internal/database/watchlist"
	"github.com/aniping/aniping/internal/entities"
	"github.com/aniping/aniping/internal/jikan"
)

// Service implements the tracking operations on top of the repositories.
type Service struct {
	client *jikan.Client
	animes *anime.Repository
	watch  *watchlist.Repository
}

// NewService creates a tracker service.
func NewService(client *jikan.Client, animes *anime.Repository, watch *watchlist.Repository) *Service {
	return &Service{
		client: client,
		animes: animes,
		watch:  watch,
	}
}

// Ingest fetches the full record for malID from the API and upserts it into
// the local catalog. Returns the stored record and whether a new row was
// created (as opposed to an existing one being refreshed). An unknown id
// fails with jikan.ErrNotFound before anything is written.
func (s *Service) Ingest(ctx context.Context, malID int) (*entities.Anime, bool, error) {
	data, err := s.client.AnimeFull(ctx, malID)
	if err != nil {
		return nil, false, err
	}

	record, err := data.ToEntity()
	if err != nil {
		return nil, false, err
	}

	created, err := s.animes.Upsert(record)
	if err != nil {
		return nil, false, err
	}
	return record, created, nil
}

// IngestRaw upserts a raw JSON anime record (either bare or wrapped in the
// API's data envelope) without touching the network.
func (s *Service) IngestRaw(raw []byte) (*entities.Anime, bool, error) {
	record, err := jikan.ParseAnime(raw)
	if err != nil {
		return nil, false, err
	}
	created, err := s.animes.Upsert(record)
	if err != nil {
		return nil, false, err
	}
	return record, created, nil
}

// ensureAnime guarantees the catalog row exists, ingesting on demand.
// Watch-list entries always reference a real catalog row.
func (s *Service) ensureAnime(ctx context.Context, malID int) error {
	exists, err := s.animes.Exists(malID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, _, err := s.Ingest(ctx, malID); err != nil {
		return err
	}
	return nil
}

// AddToWatchList puts an anime on the user's watch list, fetching its
// metadata first when the catalog does not have it yet. A pair already on
// the list fails with watchlist.ErrAlreadyExists; an id unknown to the API
// fails with jikan.ErrNotFound and writes nothing.
func (s *Service) AddToWatchList(ctx context.Context, userID uint, malID int, episodesWatched int, status entities.WatchStatus) error {
	if err := s.ensureAnime(ctx, malID); err != nil {
		return err
	}
	return s.watch.Add(userID, malID, episodesWatched, status)
}

// UpdateWatchList updates progress and status of an existing entry.
func (s *Service) UpdateWatchList(userID uint, malID int, episodesWatched int, status entities.WatchStatus) error {
	return s.watch.Update(userID, malID, episodesWatched, status)
}

// WatchList returns the user's entries with anime metadata attached,
// ordered by mal_id ascending.
func (s *Service) WatchList(userID uint) ([]entities.WatchListEntry, error) {
	return s.watch.ListForUser(userID)
}

// Anime returns one catalog row.
func (s *Service) Anime(malID int) (*entities.Anime, error) {
	return s.animes.GetByMALID(malID)
}

// TopAnime lists the API's current top-ranked shows for the browse menu.
func (s *Service) TopAnime(ctx context.Context, limit int) ([]jikan.Anime, error) {
	list, err := s.client.TopAnime(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch top anime: %w", err)
	}
	return list, nil
}
