package app

import (
	"context"

	"smartquiz/internal/domain"
)

// Gateway is the sole channel through which users, questions, and scores are
// fetched or persisted. Implementations map transport failures to the domain
// error taxonomy; callers never see raw transport errors.
type Gateway interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (domain.Identity, error)
	ListUsers(ctx context.Context) ([]domain.Identity, error)
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	QuestionCount(ctx context.Context) (int, error)
	SaveScore(ctx context.Context, userID string, correctCount, totalQuestions int) (domain.ScoreRecord, error)
	ScoresForUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error)
	AllScores(ctx context.Context) ([]domain.ScoreRecord, error)
}

// ScoreCache is the local read-through copy of score records, keyed by user.
// It is never the source of truth: Append marks the cache stale, and the next
// Replace reconciles it from the authoritative store regardless of local edits.
type ScoreCache interface {
	// Append records an optimistic local entry and marks the cache stale.
	Append(rec domain.ScoreRecord)
	// ReplaceUser overwrites one user's records with a fresh fetch and clears
	// the stale flag.
	ReplaceUser(userID string, recs []domain.ScoreRecord)
	// ReplaceAll overwrites the whole cache with a fresh fetch and clears the
	// stale flag.
	ReplaceAll(recs []domain.ScoreRecord)
	// ForUser returns a user's records in insertion order.
	ForUser(userID string) []domain.ScoreRecord
	// All returns every cached record in insertion order.
	All() []domain.ScoreRecord
	// Stale reports whether an optimistic write awaits reconciliation.
	Stale() bool
	// Clear empties the cache; called on logout.
	Clear()
}
