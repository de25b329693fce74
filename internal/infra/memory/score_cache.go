package memory

import (
	"sync"

	"smartquiz/internal/domain"
)

// ScoreCache is the in-process implementation of app.ScoreCache: a
// read-through copy of score records that is marked stale by optimistic
// appends and reconciled by the next successful fetch.
type ScoreCache struct {
	mu      sync.RWMutex
	byUser  map[string][]domain.ScoreRecord
	ordered []domain.ScoreRecord
	stale   bool
}

func NewScoreCache() *ScoreCache {
	return &ScoreCache{byUser: make(map[string][]domain.ScoreRecord)}
}

func (c *ScoreCache) Append(rec domain.ScoreRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byUser[rec.UserID] = append(c.byUser[rec.UserID], rec)
	c.ordered = append(c.ordered, rec)
	c.stale = true
}

func (c *ScoreCache) ReplaceUser(userID string, recs []domain.ScoreRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byUser[userID] = append([]domain.ScoreRecord(nil), recs...)
	c.rebuildOrderedLocked()
	c.stale = false
}

func (c *ScoreCache) ReplaceAll(recs []domain.ScoreRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byUser = make(map[string][]domain.ScoreRecord)
	c.ordered = append([]domain.ScoreRecord(nil), recs...)
	for _, rec := range recs {
		c.byUser[rec.UserID] = append(c.byUser[rec.UserID], rec)
	}
	c.stale = false
}

func (c *ScoreCache) ForUser(userID string) []domain.ScoreRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.ScoreRecord(nil), c.byUser[userID]...)
}

func (c *ScoreCache) All() []domain.ScoreRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.ScoreRecord(nil), c.ordered...)
}

func (c *ScoreCache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

func (c *ScoreCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byUser = make(map[string][]domain.ScoreRecord)
	c.ordered = nil
	c.stale = false
}

// rebuildOrderedLocked rebuilds the flat list after a per-user replace,
// keeping each user's run in its fetched order.
func (c *ScoreCache) rebuildOrderedLocked() {
	c.ordered = c.ordered[:0]
	for _, recs := range c.byUser {
		c.ordered = append(c.ordered, recs...)
	}
}
