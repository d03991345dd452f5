package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"receptionist_backend/platform/logger"
)

const cacheKey = "listings:feed"

// Source loads the listing feed over HTTP with a Redis cache in front and a
// last-known-good in-process copy behind it. All methods are safe for
// concurrent use.
type Source struct {
	feedURL string
	ttl     time.Duration
	rdb     *redis.Client
	httpc   *http.Client
	log     *logger.Logger

	mu     sync.RWMutex
	cached []Listing
}

// NewSource builds a feed-backed source. rdb may be nil, in which case only
// the in-process copy is used between fetches.
func NewSource(feedURL string, ttl time.Duration, rdb *redis.Client, log *logger.Logger) *Source {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Source{
		feedURL: feedURL,
		ttl:     ttl,
		rdb:     rdb,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// NewStaticSource wraps a fixed listing set, for demo mode and tests.
func NewStaticSource(items []Listing, log *logger.Logger) *Source {
	return &Source{cached: items, log: log}
}

// Load returns the current listing set. Feed or cache failures degrade to
// the last successfully loaded copy rather than erroring the request.
func (s *Source) Load(ctx context.Context) []Listing {
	if s.feedURL == "" {
		return s.snapshot()
	}

	if items, ok := s.fromRedis(ctx); ok {
		s.store(items)
		return items
	}

	items, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn("listing feed fetch failed, serving last known copy", "error", err)
		return s.snapshot()
	}
	s.store(items)
	s.toRedis(ctx, items)
	return items
}

func (s *Source) snapshot() []Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

func (s *Source) store(items []Listing) {
	s.mu.Lock()
	s.cached = items
	s.mu.Unlock()
}

func (s *Source) fromRedis(ctx context.Context) ([]Listing, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("listings cache read failed", "error", err)
		}
		return nil, false
	}
	var items []Listing
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (s *Source) toRedis(ctx context.Context, items []Listing) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
		s.log.Warn("listings cache write failed", "error", err)
	}
}

func (s *Source) fetch(ctx context.Context) ([]Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing feed returned status %d", resp.StatusCode)
	}
	return ParseCSV(resp.Body)
}

// Search loads the feed and ranks it against the query.
func (s *Source) Search(ctx context.Context, q Query) []Listing {
	return Search(s.Load(ctx), q)
}
