// Package scheduler runs the periodic airing check: once per schedule tick
// it asks the API which shows broadcast today and notifies the watchers of
// every currently-airing show on someone's watch list.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/aniping/aniping/internal/database/anime"
	"github.com/aniping/aniping/internal/database/watchlist"
	"github.com/aniping/aniping/internal/entities"
	"github.com/aniping/aniping/internal/jikan"
	"github.com/aniping/aniping/internal/notify"
)

// Notifier delivers one episode announcement to a set of users.
type Notifier interface {
	NotifyEpisode(msg notify.NewEpisodeMessage, userIDs []uint)
}

// AiringScheduler manages the periodic airing check.
type AiringScheduler struct {
	animes   *anime.Repository
	watch    *watchlist.Repository
	client   *jikan.Client
	notifier Notifier
	schedule string
	log      *logrus.Logger

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	isChecking bool
}

// NewAiringScheduler creates a scheduler instance. schedule is a standard
// five-field cron expression.
func NewAiringScheduler(animes *anime.Repository, watch *watchlist.Repository, client *jikan.Client, notifier Notifier, schedule string, log *logrus.Logger) *AiringScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AiringScheduler{
		animes:   animes,
		watch:    watch,
		client:   client,
		notifier: notifier,
		schedule: schedule,
		log:      log,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *AiringScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunCheck(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	s.log.Infof("airing check: scheduled with %q", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running check to finish.
func (s *AiringScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	ctx := s.cron.Stop()
	s.mu.Unlock()

	// Wait outside the lock: an in-flight check reacquires it to clear
	// isChecking before its cron job completes.
	<-ctx.Done()
	s.log.Info("airing check: stopped")
}

// RunCheck performs one airing check immediately. Overlapping runs are
// skipped rather than queued.
func (s *AiringScheduler) RunCheck(ctx context.Context) {
	s.mu.Lock()
	if s.isChecking {
		s.mu.Unlock()
		s.log.Info("airing check: skipped (already running)")
		return
	}
	s.isChecking = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isChecking = false
		s.mu.Unlock()
	}()

	day := strings.ToLower(time.Now().Weekday().String())
	s.log.Infof("airing check: fetching %s schedule", day)

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	scheduled, err := s.client.Schedule(ctx, day)
	if err != nil {
		s.log.Errorf("airing check: failed to fetch schedule: %v", err)
		return
	}

	onAirToday := make(map[int]bool, len(scheduled))
	for _, a := range scheduled {
		onAirToday[a.MALID] = true
	}

	airing, err := s.animes.GetAiring()
	if err != nil {
		s.log.Errorf("airing check: failed to load catalog: %v", err)
		return
	}

	var notified int
	for _, record := range airing {
		if !onAirToday[record.MALID] {
			continue
		}

		watchers, err := s.watch.WatcherIDs(record.MALID, entities.StatusWatching, entities.StatusRewatching)
		if err != nil {
			s.log.Errorf("airing check: %v", err)
			continue
		}
		if len(watchers) == 0 {
			continue
		}

		msg := notify.NewEpisodeMessage{
			MALID:     record.MALID,
			Title:     record.DisplayTitle(),
			Broadcast: record.BroadcastString,
		}
		if len(record.Streaming) > 0 {
			msg.Streaming = record.Streaming[0].Name
		}
		s.notifier.NotifyEpisode(msg, watchers)
		notified++
	}

	s.log.Infof("airing check: done, %d show(s) announced", notified)
}

// IsRunning reports whether the scheduler is active.
func (s *AiringScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
