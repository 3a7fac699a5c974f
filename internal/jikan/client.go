// Package jikan is a client for the Jikan v4 REST API, the unofficial
// MyAnimeList mirror the tracker pulls anime metadata from.
package jikan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when the API reports no anime for the id.
	ErrNotFound = errors.New("anime not found")
)

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Client fetches anime metadata from the Jikan API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewClient creates a Jikan API client. The public instance throttles
// callers to roughly one request per second, so the client self-limits
// with the given interval.
func NewClient(baseURL string, timeout, rateLimit time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: newRateLimiter(rateLimit),
	}
}

// AnimeFull fetches the complete record for one anime by its MAL id.
// A 404 response yields ErrNotFound; any other non-200 status is a
// transport-level failure.
func (c *Client) AnimeFull(ctx context.Context, malID int) (*Anime, error) {
	if malID <= 0 {
		return nil, fmt.Errorf("invalid mal_id %d", malID)
	}

	var env envelope
	status, err := c.get(ctx, fmt.Sprintf("%s/anime/%d/full", c.baseURL, malID), &env)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status != http.StatusOK:
		return nil, fmt.Errorf("unexpected status: %d", status)
	}

	if env.Data == nil {
		return nil, fmt.Errorf("response missing data object")
	}
	return env.Data, nil
}

// Schedule fetches the broadcast schedule, optionally filtered to one
// weekday (lowercase English day name).
func (c *Client) Schedule(ctx context.Context, day string) ([]Anime, error) {
	endpoint := c.baseURL + "/schedules"
	if day != "" {
		day = strings.ToLower(day)
		if !weekdays[day] {
			return nil, fmt.Errorf("invalid weekday %q", day)
		}
		endpoint += "?filter=" + url.QueryEscape(day)
	}

	var env listEnvelope
	status, err := c.get(ctx, endpoint, &env)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", status)
	}
	return env.Data, nil
}

// TopAnime fetches the current top-ranked anime, at most limit entries
// (the API caps one page at 25).
func (c *Client) TopAnime(ctx context.Context, limit int) ([]Anime, error) {
	endpoint := c.baseURL + "/top/anime"
	if limit > 0 {
		endpoint += fmt.Sprintf("?limit=%d", limit)
	}

	var env listEnvelope
	status, err := c.get(ctx, endpoint, &env)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", status)
	}
	return env.Data, nil
}

// get performs one rate-limited GET and decodes a JSON body when the
// status carries one. The status code is always returned so callers can
// map 404 to their own semantics.
func (c *Client) get(ctx context.Context, endpoint string, out any) (int, error) {
	c.rateLimiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "AniPing/1.0 (https://github.com/aniping/aniping)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
