package memory

import (
	"context"
	"sync"
	"time"

	"smartquiz/internal/domain"
	"github.com/google/uuid"
)

type user struct {
	identity domain.Identity
	password string
}

// Store is the in-memory server-side store, used when no Postgres is
// configured and in tests.
type Store struct {
	mu        sync.RWMutex
	users     []user
	questions []domain.Question
	scores    []domain.ScoreRecord
	clock     func() time.Time
}

func NewStore() *Store {
	return &Store{clock: time.Now}
}

// NewStoreWithClock is test-only for deterministic score timestamps.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{clock: now}
}

func (s *Store) Authenticate(_ context.Context, username, password string) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.identity.Username == username && u.password == password {
			return u.identity, nil
		}
	}
	return domain.Identity{}, domain.ErrInvalidCredentials
}

func (s *Store) ListUsers(_ context.Context) ([]domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Identity, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.identity)
	}
	return out, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]domain.Identity, error) {
	all, _ := s.ListUsers(ctx)
	students := all[:0:0]
	for _, id := range all {
		if id.Role == domain.RoleStudent {
			students = append(students, id)
		}
	}
	return students, nil
}

func (s *Store) CreateUser(_ context.Context, username, password, displayName string, role domain.Role) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.identity.Username == username {
			return domain.Identity{}, domain.ErrUsernameTaken
		}
	}
	identity := domain.Identity{
		ID:          uuid.NewString(),
		Username:    username,
		DisplayName: displayName,
		Role:        role,
	}
	s.users = append(s.users, user{identity: identity, password: password})
	return identity, nil
}

func (s *Store) ListQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Question(nil), s.questions...), nil
}

func (s *Store) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = uuid.NewString()
	s.questions = append(s.questions, q)
	return q, nil
}

func (s *Store) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.questions {
		if s.questions[i].ID == id {
			s.questions = append(s.questions[:i], s.questions[i+1:]...)
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

func (s *Store) CountQuestions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions), nil
}

func (s *Store) SaveScore(_ context.Context, userID string, correctCount, totalQuestions int) (domain.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := false
	for _, u := range s.users {
		if u.identity.ID == userID {
			known = true
			break
		}
	}
	if !known {
		return domain.ScoreRecord{}, domain.ErrUserNotFound
	}
	rec := domain.ScoreRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		CorrectCount:   correctCount,
		TotalQuestions: totalQuestions,
		Timestamp:      s.clock(),
	}
	s.scores = append(s.scores, rec)
	return rec, nil
}

// ScoresForUser returns one user's records in attempt order.
func (s *Store) ScoresForUser(_ context.Context, userID string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ScoreRecord
	for _, rec := range s.scores {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) BestForUser(ctx context.Context, userID string) (int, error) {
	records, _ := s.ScoresForUser(ctx, userID)
	best := 0
	for _, rec := range records {
		if p := rec.Percentage(); p > best {
			best = p
		}
	}
	return best, nil
}

func (s *Store) AllScores(_ context.Context) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ScoreRecord(nil), s.scores...), nil
}
