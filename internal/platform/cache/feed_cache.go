package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"school_journal/internal/domain/model"
)

// FeedCache keeps a teacher's own feed in Redis for a short TTL. A
// teacher's feed depends only on rows they created, and every mutation
// of those rows runs through the journal service, which invalidates the
// entry. Student feeds are time-gated and are never cached.
type FeedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFeedCache(rdb *redis.Client, ttl time.Duration) *FeedCache {
	return &FeedCache{rdb: rdb, ttl: ttl}
}

func key(userID string) string {
	return "feed:teacher:" + userID
}

// Get returns the cached feed and whether it was present. Cache errors
// are treated as misses.
func (c *FeedCache) Get(ctx context.Context, userID string) ([]model.Journal, bool) {
	raw, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var journals []model.Journal
	if err := json.Unmarshal(raw, &journals); err != nil {
		return nil, false
	}
	return journals, true
}

func (c *FeedCache) Set(ctx context.Context, userID string, journals []model.Journal) error {
	raw, err := json.Marshal(journals)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(userID), raw, c.ttl).Err()
}

func (c *FeedCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, key(userID)).Err()
}
