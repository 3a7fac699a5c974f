package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/aniping/aniping/internal/database/anime"
	"github.com/aniping/aniping/internal/tracker"
)

// RefreshAnimeTask re-fetches one catalog row from the API so that
// episode counts, score and airing state stay current. This closes the
// gap of ingested rows never being updated after the first fetch.
type RefreshAnimeTask struct {
	MALID int `json:"mal_id"`
}

// Config returns the queue configuration for refresh tasks.
func (t RefreshAnimeTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_anime",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshAnimeProcessor creates the processor for RefreshAnimeTask.
func RefreshAnimeProcessor(svc *tracker.Service, log *logrus.Logger) backlite.QueueProcessor[RefreshAnimeTask] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(ctx context.Context, task RefreshAnimeTask) error {
		record, _, err := svc.Ingest(ctx, task.MALID)
		if err != nil {
			return fmt.Errorf("refresh anime %d: %w", task.MALID, err)
		}
		log.Infof("[task] refreshed anime %d (%s)", record.MALID, record.Title)
		return nil
	}
}

// NewRefreshAnimeQueue creates a backlite queue for refresh tasks.
func NewRefreshAnimeQueue(svc *tracker.Service, log *logrus.Logger) backlite.Queue {
	return backlite.NewQueue(RefreshAnimeProcessor(svc, log))
}

// EnqueueAiringRefresh queues one refresh task per currently-airing catalog
// row. Finished shows keep their stored metadata.
func EnqueueAiringRefresh(ctx context.Context, client *Client, animes *anime.Repository) (int, error) {
	records, err := animes.GetAiring()
	if err != nil {
		return 0, fmt.Errorf("load airing anime: %w", err)
	}

	for _, record := range records {
		if _, err := client.Add(RefreshAnimeTask{MALID: record.MALID}).Ctx(ctx).Save(); err != nil {
			return 0, fmt.Errorf("enqueue refresh for anime %d: %w", record.MALID, err)
		}
	}
	return len(records), nil
}
