package redis

import (
	"context"
	"encoding/json"
	"time"

	"smartquiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ScoreCache is a Redis-backed implementation of app.ScoreCache, letting the
// read-through copy survive client restarts. Writes are best-effort: a Redis
// hiccup degrades to an empty cached view, never to a failure, since the
// cache is not the source of truth.
//
// Layout:
//
//	scores:user:{userID}  JSON array of that user's records
//	scores:all            JSON array of every record in received order
//	scores:stale          "1" while an optimistic append awaits reconciliation
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	return &ScoreCache{client: client, ttl: ttl}
}

func (c *ScoreCache) Append(rec domain.ScoreRecord) {
	ctx := context.Background()
	c.setList(ctx, c.userKey(rec.UserID), append(c.readList(ctx, c.userKey(rec.UserID)), rec))
	c.setList(ctx, c.allKey(), append(c.readList(ctx, c.allKey()), rec))
	_ = c.client.Set(ctx, c.staleKey(), "1", c.ttl).Err()
}

func (c *ScoreCache) ReplaceUser(userID string, recs []domain.ScoreRecord) {
	ctx := context.Background()
	c.setList(ctx, c.userKey(userID), recs)
	c.rebuildAll(ctx, userID, recs)
	_ = c.client.Del(ctx, c.staleKey()).Err()
}

func (c *ScoreCache) ReplaceAll(recs []domain.ScoreRecord) {
	ctx := context.Background()
	byUser := make(map[string][]domain.ScoreRecord)
	for _, rec := range recs {
		byUser[rec.UserID] = append(byUser[rec.UserID], rec)
	}
	for userID, userRecs := range byUser {
		c.setList(ctx, c.userKey(userID), userRecs)
	}
	c.setList(ctx, c.allKey(), recs)
	_ = c.client.Del(ctx, c.staleKey()).Err()
}

func (c *ScoreCache) ForUser(userID string) []domain.ScoreRecord {
	return c.readList(context.Background(), c.userKey(userID))
}

func (c *ScoreCache) All() []domain.ScoreRecord {
	return c.readList(context.Background(), c.allKey())
}

func (c *ScoreCache) Stale() bool {
	n, err := c.client.Exists(context.Background(), c.staleKey()).Result()
	return err == nil && n > 0
}

func (c *ScoreCache) Clear() {
	ctx := context.Background()
	for _, rec := range c.readList(ctx, c.allKey()) {
		_ = c.client.Del(ctx, c.userKey(rec.UserID)).Err()
	}
	_ = c.client.Del(ctx, c.allKey(), c.staleKey()).Err()
}

func (c *ScoreCache) readList(ctx context.Context, key string) []domain.ScoreRecord {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var recs []domain.ScoreRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil
	}
	return recs
}

func (c *ScoreCache) setList(ctx context.Context, key string, recs []domain.ScoreRecord) {
	if recs == nil {
		recs = []domain.ScoreRecord{}
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
}

// rebuildAll swaps one user's run inside the flat list, preserving everyone
// else's received order.
func (c *ScoreCache) rebuildAll(ctx context.Context, userID string, recs []domain.ScoreRecord) {
	all := c.readList(ctx, c.allKey())
	merged := make([]domain.ScoreRecord, 0, len(all)+len(recs))
	for _, rec := range all {
		if rec.UserID != userID {
			merged = append(merged, rec)
		}
	}
	merged = append(merged, recs...)
	c.setList(ctx, c.allKey(), merged)
}

func (c *ScoreCache) userKey(userID string) string { return "scores:user:" + userID }
func (c *ScoreCache) allKey() string               { return "scores:all" }
func (c *ScoreCache) staleKey() string             { return "scores:stale" }
