package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"smartquiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionBank caches the question snapshot with TTL so repeated quiz starts
// do not re-fetch from the gateway. The snapshot is read-only; the bank owns
// nothing beyond the cached copy.
type QuestionBank struct {
	gateway Gateway
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu        sync.RWMutex
	snapshot  []domain.Question
	expiresAt time.Time
}

func NewQuestionBank(gateway Gateway, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		gateway: gateway,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Snapshot returns the cached question set, fetching through the gateway on
// miss or expiry. Concurrent misses collapse into one fetch.
func (b *QuestionBank) Snapshot(ctx context.Context) ([]domain.Question, error) {
	now := b.clock()

	b.mu.RLock()
	if b.snapshot != nil && b.expiresAt.After(now) {
		snap := b.snapshot
		b.mu.RUnlock()
		return snap, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do("questions", func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if b.snapshot != nil && b.expiresAt.After(now) {
			snap := b.snapshot
			b.mu.RUnlock()
			return snap, nil
		}
		b.mu.RUnlock()

		questions, err := b.gateway.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.snapshot = questions
		b.expiresAt = now.Add(b.ttlWithJitter())
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached snapshot; called after admin question mutations.
func (b *QuestionBank) Invalidate() {
	b.mu.Lock()
	b.snapshot = nil
	b.expiresAt = time.Time{}
	b.mu.Unlock()
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
