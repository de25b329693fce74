package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"smartquiz/internal/domain"
)

func newTestCache(t *testing.T) (*ScoreCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewScoreCache(client, time.Minute), mr
}

func TestAppendSetsKeysAndStaleFlag(t *testing.T) {
	cache, mr := newTestCache(t)

	cache.Append(domain.ScoreRecord{ID: "local-1", UserID: "u1", CorrectCount: 7, TotalQuestions: 10})

	if !mr.Exists("scores:user:u1") || !mr.Exists("scores:all") {
		t.Fatalf("expected score keys to be set")
	}
	if !mr.Exists("scores:stale") {
		t.Fatalf("expected the stale marker after an optimistic append")
	}
	if !cache.Stale() {
		t.Fatalf("expected Stale() to report true")
	}

	got := cache.ForUser("u1")
	if len(got) != 1 || got[0].ID != "local-1" {
		t.Fatalf("expected the appended record back, got %+v", got)
	}
}

func TestReplaceUserClearsStaleAndMergesAll(t *testing.T) {
	cache, mr := newTestCache(t)

	cache.Append(domain.ScoreRecord{ID: "other", UserID: "u2", CorrectCount: 5, TotalQuestions: 10})
	cache.Append(domain.ScoreRecord{ID: "local-1", UserID: "u1", CorrectCount: 7, TotalQuestions: 10})

	cache.ReplaceUser("u1", []domain.ScoreRecord{
		{ID: "srv-1", UserID: "u1", CorrectCount: 7, TotalQuestions: 10},
		{ID: "srv-2", UserID: "u1", CorrectCount: 9, TotalQuestions: 10},
	})

	if mr.Exists("scores:stale") {
		t.Fatalf("expected the stale marker to be removed")
	}
	got := cache.ForUser("u1")
	if len(got) != 2 || got[0].ID != "srv-1" || got[1].ID != "srv-2" {
		t.Fatalf("expected server records in order, got %+v", got)
	}

	// The flat list keeps u2's record and swaps in u1's fresh run.
	all := cache.All()
	if len(all) != 3 || all[0].ID != "other" {
		t.Fatalf("expected merged flat list, got %+v", all)
	}
}

func TestReplaceAllOverwritesEverything(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Append(domain.ScoreRecord{ID: "local-1", UserID: "u1", CorrectCount: 1, TotalQuestions: 10})
	cache.ReplaceAll([]domain.ScoreRecord{
		{ID: "srv-1", UserID: "u1", CorrectCount: 5, TotalQuestions: 10},
		{ID: "srv-2", UserID: "u2", CorrectCount: 6, TotalQuestions: 10},
	})

	if cache.Stale() {
		t.Fatalf("expected stale cleared after a full replace")
	}
	if all := cache.All(); len(all) != 2 || all[0].ID != "srv-1" {
		t.Fatalf("unexpected flat list %+v", all)
	}
	if got := cache.ForUser("u2"); len(got) != 1 || got[0].ID != "srv-2" {
		t.Fatalf("expected the per-user key rebuilt, got %+v", got)
	}
}

func TestClearRemovesAllKeys(t *testing.T) {
	cache, mr := newTestCache(t)

	cache.Append(domain.ScoreRecord{ID: "r1", UserID: "u1", CorrectCount: 7, TotalQuestions: 10})
	cache.Clear()

	if mr.Exists("scores:user:u1") || mr.Exists("scores:all") || mr.Exists("scores:stale") {
		t.Fatalf("expected every score key to be removed")
	}
	if cache.Stale() || len(cache.All()) != 0 {
		t.Fatalf("expected an empty cache after clear")
	}
}

func TestReadsDegradeToEmptyWhenRedisIsDown(t *testing.T) {
	cache, mr := newTestCache(t)
	cache.Append(domain.ScoreRecord{ID: "r1", UserID: "u1", CorrectCount: 7, TotalQuestions: 10})
	mr.Close()

	if got := cache.ForUser("u1"); got != nil {
		t.Fatalf("expected an empty view when redis is unreachable, got %+v", got)
	}
	if cache.Stale() {
		t.Fatalf("an unreachable cache must not report stale")
	}
}
