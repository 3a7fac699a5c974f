package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/aniping/aniping/internal/database/anime"
)

// RefreshScheduler periodically enqueues a metadata refresh task for every
// currently-airing show in the catalog.
type RefreshScheduler struct {
	client   *Client
	animes   *anime.Repository
	schedule string
	log      *logrus.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewRefreshScheduler creates a scheduler. schedule is a standard five-field
// cron expression.
func NewRefreshScheduler(client *Client, animes *anime.Repository, schedule string, log *logrus.Logger) *RefreshScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RefreshScheduler{
		client:   client,
		animes:   animes,
		schedule: schedule,
		log:      log,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *RefreshScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		queued, err := EnqueueAiringRefresh(ctx, s.client, s.animes)
		if err != nil {
			s.log.Errorf("metadata refresh: %v", err)
			return
		}
		s.log.Infof("metadata refresh: queued %d task(s)", queued)
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	s.log.Infof("metadata refresh: scheduled with %q", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	ctx := s.cron.Stop()
	s.mu.Unlock()

	<-ctx.Done()
	s.log.Info("metadata refresh: stopped")
}
